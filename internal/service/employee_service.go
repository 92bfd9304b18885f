package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/k25dtcn010/project-base/internal/models"
	appErrors "github.com/k25dtcn010/project-base/pkg/errors"
)

type employeeRepository interface {
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error)
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	FindByCode(ctx context.Context, code string) (*models.Employee, error)
	Create(ctx context.Context, employee *models.Employee) error
	Update(ctx context.Context, employee *models.Employee) error
}

// CreateEmployeeRequest adds a member to the roster.
type CreateEmployeeRequest struct {
	EmployeeCode string  `json:"employee_code" validate:"required"`
	FullName     string  `json:"full_name" validate:"required"`
	Gender       *string `json:"gender"`
	Position     *string `json:"position"`
	Role         *string `json:"role"`
	Department   *string `json:"department"`
	Phone        *string `json:"phone"`
	Education    *string `json:"education"`
	StartDate    *string `json:"start_date"`
}

// UpdateEmployeeRequest updates mutable fields on an employee.
type UpdateEmployeeRequest struct {
	FullName   string  `json:"full_name" validate:"required"`
	Gender     *string `json:"gender"`
	Position   *string `json:"position"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
	Phone      *string `json:"phone"`
	Education  *string `json:"education"`
	StartDate  *string `json:"start_date"`
	Active     *bool   `json:"active"`
}

// EmployeeService manages the roster, including bulk CSV imports exported
// from the HR spreadsheet.
type EmployeeService struct {
	repo      employeeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEmployeeService creates a new employee service instance.
func NewEmployeeService(repo employeeRepository, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated employees.
func (s *EmployeeService) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, *models.Pagination, error) {
	employees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return employees, pagination, nil
}

// Get returns an employee by ID.
func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	return employee, nil
}

// Create adds a new employee ensuring code uniqueness.
func (s *EmployeeService) Create(ctx context.Context, req CreateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}

	if _, err := s.repo.FindByCode(ctx, req.EmployeeCode); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "employee code already exists")
	} else if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check employee code")
	}

	employee := &models.Employee{
		EmployeeCode: req.EmployeeCode,
		FullName:     req.FullName,
		Gender:       req.Gender,
		Position:     req.Position,
		Role:         req.Role,
		Department:   req.Department,
		Phone:        normalizePhone(req.Phone),
		Education:    req.Education,
		StartDate:    parseFlexibleDate(req.StartDate),
		Active:       true,
	}
	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create employee")
	}

	s.logger.Info("employee created",
		zap.String("employee_id", employee.ID),
		zap.String("employee_code", employee.EmployeeCode))
	return employee, nil
}

// Update modifies an existing employee.
func (s *EmployeeService) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}

	employee, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	employee.FullName = req.FullName
	employee.Gender = req.Gender
	employee.Position = req.Position
	employee.Role = req.Role
	employee.Department = req.Department
	employee.Phone = normalizePhone(req.Phone)
	employee.Education = req.Education
	employee.StartDate = parseFlexibleDate(req.StartDate)
	if req.Active != nil {
		employee.Active = *req.Active
	}
	if err := s.repo.Update(ctx, employee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update employee")
	}

	s.logger.Info("employee updated", zap.String("employee_id", employee.ID))
	return employee, nil
}

// ImportCSV ingests a roster export. Headers are the Vietnamese column names
// the HR spreadsheet produces; rows are matched on employee code, creating
// new employees and updating existing ones.
func (s *EmployeeService) ImportCSV(ctx context.Context, r io.Reader) (*models.EmployeeImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "csv file is empty or unreadable")
	}
	// Spreadsheet exports often carry a UTF-8 BOM on the first header.
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.TrimSpace(h)] = i
	}

	result := &models.EmployeeImportResult{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			result.Skipped++
			continue
		}

		field := func(names ...string) string {
			for _, name := range names {
				if i, ok := index[name]; ok && i < len(record) {
					if v := strings.TrimSpace(record[i]); v != "" {
						return v
					}
				}
			}
			return ""
		}

		code := field("Mã NV", "Mã nhân viên")
		fullName := field("Họ Và Tên")
		if code == "" || fullName == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: missing employee code or full name", line))
			result.Skipped++
			continue
		}

		gender := strings.ToLower(field("Giới Tính"))
		position := strings.ToLower(field("Chức Vụ"))
		role := strings.ToLower(field("Nhiệm vụ"))
		department := strings.ToLower(field("Phòng Ban"))
		phoneRaw := field("Số Điện Thoại", "Số Điện Thoại (string)")
		education := field("Trình độ", "Nghề Nghiệp/Trình Độ", "Nghề nghiệp/Trình độ")
		startDateRaw := field("Ngày Bắt Đầu")

		if err := s.upsertFromCSV(ctx, result, code, fullName, gender, position, role, department, phoneRaw, education, startDateRaw); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			result.Skipped++
		}
	}

	s.logger.Info("employee import complete",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *EmployeeService) upsertFromCSV(ctx context.Context, result *models.EmployeeImportResult, code, fullName, gender, position, role, department, phoneRaw, education, startDateRaw string) error {
	phone := normalizePhone(strPtr(phoneRaw))
	startDate := parseFlexibleDate(strPtr(startDateRaw))

	existing, err := s.repo.FindByCode(ctx, code)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("load employee %s: %w", code, err)
	}

	if existing != nil {
		existing.FullName = fullName
		existing.Gender = strPtr(gender)
		existing.Position = strPtr(position)
		existing.Role = strPtr(role)
		existing.Department = strPtr(department)
		existing.Phone = phone
		existing.Education = strPtr(education)
		existing.StartDate = startDate
		if err := s.repo.Update(ctx, existing); err != nil {
			return fmt.Errorf("update employee %s: %w", code, err)
		}
		result.Updated++
		return nil
	}

	employee := &models.Employee{
		EmployeeCode: code,
		FullName:     fullName,
		Gender:       strPtr(gender),
		Position:     strPtr(position),
		Role:         strPtr(role),
		Department:   strPtr(department),
		Phone:        phone,
		Education:    strPtr(education),
		StartDate:    startDate,
		Active:       true,
	}
	if err := s.repo.Create(ctx, employee); err != nil {
		return fmt.Errorf("create employee %s: %w", code, err)
	}
	result.Created++
	return nil
}

var (
	phoneCleanPattern   = regexp.MustCompile(`[^\d+]`)
	flexibleDatePattern = regexp.MustCompile(`^(\d{1,2})[/\-](\d{1,2})[/\-](\d{4})$`)
)

// normalizePhone strips everything except digits and a leading plus.
func normalizePhone(raw *string) *string {
	if raw == nil {
		return nil
	}
	cleaned := phoneCleanPattern.ReplaceAllString(*raw, "")
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// parseFlexibleDate accepts DD/MM/YYYY and DD-MM-YYYY with one or two digit
// day and month components. Invalid dates return nil.
func parseFlexibleDate(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	match := flexibleDatePattern.FindStringSubmatch(strings.TrimSpace(*raw))
	if match == nil {
		return nil
	}
	day, _ := strconv.Atoi(match[1])
	month, _ := strconv.Atoi(match[2])
	year, _ := strconv.Atoi(match[3])

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return nil
	}
	return &t
}

func strPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
