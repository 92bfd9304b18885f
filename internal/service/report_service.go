package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/k25dtcn010/project-base/internal/models"
	appErrors "github.com/k25dtcn010/project-base/pkg/errors"
	"github.com/k25dtcn010/project-base/pkg/export"
)

type reportAttendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, int, error)
	ListShifts(ctx context.Context, attendanceID string) ([]models.AttendanceShiftDetail, error)
}

// ReportService renders attendance history and its reconciled segments into
// downloadable CSV and PDF documents.
type ReportService struct {
	repo   reportAttendanceRepository
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	loc    *time.Location
	logger *zap.Logger
}

// NewReportService creates a new report service instance.
func NewReportService(repo reportAttendanceRepository, csv *export.CSVExporter, pdf *export.PDFExporter, loc *time.Location, logger *zap.Logger) *ReportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{repo: repo, csv: csv, pdf: pdf, loc: loc, logger: logger}
}

var attendanceReportHeaders = []string{
	"Employee Code", "Employee Name", "Work Date", "Shift",
	"Actual Start", "Actual End", "Duration (min)", "Late (min)",
	"Early Leave (min)", "Overlap %", "Type", "Approved", "Note",
}

// ExportCSV renders an employee's attendance segments as CSV bytes.
func (s *ReportService) ExportCSV(ctx context.Context, filter models.AttendanceFilter) ([]byte, error) {
	dataset, err := s.buildDataset(ctx, filter)
	if err != nil {
		return nil, err
	}
	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
	}
	return payload, nil
}

// ExportPDF renders an employee's attendance segments as a tabular PDF.
func (s *ReportService) ExportPDF(ctx context.Context, filter models.AttendanceFilter, title string) ([]byte, error) {
	dataset, err := s.buildDataset(ctx, filter)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = "Attendance report"
	}
	payload, err := s.pdf.Render(dataset, title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
	}
	return payload, nil
}

func (s *ReportService) buildDataset(ctx context.Context, filter models.AttendanceFilter) (export.Dataset, error) {
	if filter.EmployeeID == "" {
		return export.Dataset{}, appErrors.Clone(appErrors.ErrValidation, "employee_id is required")
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 100
	}

	records, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance history")
	}

	rows := make([]map[string]string, 0, len(records))
	for _, record := range records {
		segments, err := s.repo.ListShifts(ctx, record.ID)
		if err != nil {
			return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance segments")
		}
		for _, seg := range segments {
			rows = append(rows, map[string]string{
				"Employee Code":     record.EmployeeCode,
				"Employee Name":     record.EmployeeName,
				"Work Date":         seg.WorkDate.In(s.loc).Format("2006-01-02"),
				"Shift":             fmt.Sprintf("%s (%s-%s)", seg.ShiftName, seg.ShiftStartTime, seg.ShiftEndTime),
				"Actual Start":      seg.ActualStartTime.In(s.loc).Format("15:04"),
				"Actual End":        seg.ActualEndTime.In(s.loc).Format("15:04"),
				"Duration (min)":    strconv.Itoa(seg.DurationMinutes),
				"Late (min)":        strconv.Itoa(seg.LateMinutes),
				"Early Leave (min)": strconv.Itoa(seg.EarlyLeaveMinutes),
				"Overlap %":         strconv.FormatFloat(seg.OverlapPercentage, 'f', 1, 64),
				"Type":              string(seg.ShiftType),
				"Approved":          strconv.FormatBool(seg.IsApproved),
				"Note":              seg.Note,
			})
		}
	}

	s.logger.Info("attendance report built",
		zap.String("employee_id", filter.EmployeeID),
		zap.Int("rows", len(rows)))
	return export.Dataset{Headers: attendanceReportHeaders, Rows: rows}, nil
}
