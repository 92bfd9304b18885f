package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/k25dtcn010/project-base/internal/models"
)

type mockEmployeeRepo struct {
	byCode  map[string]models.Employee
	created []models.Employee
	updated []models.Employee
}

func (m *mockEmployeeRepo) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	return nil, 0, nil
}

func (m *mockEmployeeRepo) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	for _, e := range m.byCode {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockEmployeeRepo) FindByCode(ctx context.Context, code string) (*models.Employee, error) {
	if e, ok := m.byCode[code]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEmployeeRepo) Create(ctx context.Context, employee *models.Employee) error {
	if m.byCode == nil {
		m.byCode = make(map[string]models.Employee)
	}
	employee.ID = "emp-" + employee.EmployeeCode
	m.byCode[employee.EmployeeCode] = *employee
	m.created = append(m.created, *employee)
	return nil
}

func (m *mockEmployeeRepo) Update(ctx context.Context, employee *models.Employee) error {
	m.byCode[employee.EmployeeCode] = *employee
	m.updated = append(m.updated, *employee)
	return nil
}

func TestEmployeeServiceImportCSV(t *testing.T) {
	repo := &mockEmployeeRepo{byCode: map[string]models.Employee{
		"NV002": {ID: "emp-NV002", EmployeeCode: "NV002", FullName: "Tên cũ", Active: true},
	}}
	svc := NewEmployeeService(repo, validator.New(), zap.NewNop())

	csvData := "\uFEFF" + strings.Join([]string{
		"Mã NV,Họ Và Tên,Giới Tính,Chức Vụ,Phòng Ban,Số Điện Thoại,Ngày Bắt Đầu",
		"NV001,Nguyễn Văn A,Nam,Nhân viên,Phòng IT,090 123 4567,15/01/2024",
		"NV002,Trần Thị B,Nữ,Quản lý,Phòng Nhân Sự,0912345678,01/02/2023",
		",Thiếu mã,Nam,Nhân viên,Phòng IT,,",
	}, "\n")

	result, err := svc.ImportCSV(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)

	created := repo.byCode["NV001"]
	assert.Equal(t, "Nguyễn Văn A", created.FullName)
	require.NotNil(t, created.Phone)
	assert.Equal(t, "0901234567", *created.Phone)
	require.NotNil(t, created.StartDate)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *created.StartDate)

	updated := repo.byCode["NV002"]
	assert.Equal(t, "Trần Thị B", updated.FullName)
}

func TestEmployeeServiceCreateRejectsDuplicateCode(t *testing.T) {
	repo := &mockEmployeeRepo{byCode: map[string]models.Employee{
		"NV001": {ID: "emp-NV001", EmployeeCode: "NV001", FullName: "Nguyễn Văn A"},
	}}
	svc := NewEmployeeService(repo, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateEmployeeRequest{EmployeeCode: "NV001", FullName: "Khác"})
	require.Error(t, err)
	assert.Empty(t, repo.created)
}

func TestParseFlexibleDate(t *testing.T) {
	cases := []struct {
		raw  string
		want *time.Time
	}{
		{"15/01/2024", timeDatePtr(2024, 1, 15)},
		{"1/2/2024", timeDatePtr(2024, 2, 1)},
		{"15-01-2024", timeDatePtr(2024, 1, 15)},
		{"31/02/2024", nil},
		{"2024-01-15", nil},
		{"", nil},
	}
	for _, tc := range cases {
		got := parseFlexibleDate(&tc.raw)
		if tc.want == nil {
			assert.Nil(t, got, tc.raw)
		} else {
			require.NotNil(t, got, tc.raw)
			assert.Equal(t, *tc.want, *got, tc.raw)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	raw := "+84 90 123-4567"
	got := normalizePhone(&raw)
	require.NotNil(t, got)
	assert.Equal(t, "+84901234567", *got)

	empty := " - "
	assert.Nil(t, normalizePhone(&empty))
	assert.Nil(t, normalizePhone(nil))
}

func timeDatePtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}
