package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/k25dtcn010/project-base/internal/models"
	"github.com/k25dtcn010/project-base/internal/service"
	"github.com/k25dtcn010/project-base/pkg/response"
)

// ReportHandler exposes attendance report downloads.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler constructs a report handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// ExportCSV godoc
// @Summary Export attendance CSV
// @Tags Reports
// @Produce text/csv
// @Param employeeId query string true "Employee ID"
// @Param from query string false "Start date (RFC3339)"
// @Param to query string false "End date (RFC3339)"
// @Success 200 {file} file
// @Router /reports/attendance.csv [get]
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	payload, err := h.service.ExportCSV(c.Request.Context(), reportFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("attendance-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", payload)
}

// ExportPDF godoc
// @Summary Export attendance PDF
// @Tags Reports
// @Produce application/pdf
// @Param employeeId query string true "Employee ID"
// @Param from query string false "Start date (RFC3339)"
// @Param to query string false "End date (RFC3339)"
// @Param title query string false "Report title"
// @Success 200 {file} file
// @Router /reports/attendance.pdf [get]
func (h *ReportHandler) ExportPDF(c *gin.Context) {
	payload, err := h.service.ExportPDF(c.Request.Context(), reportFilter(c), c.Query("title"))
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("attendance-%s.pdf", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", payload)
}

func reportFilter(c *gin.Context) models.AttendanceFilter {
	var filter models.AttendanceFilter
	filter.EmployeeID = c.Query("employeeId")
	if from := c.Query("from"); from != "" {
		if parsed, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = &parsed
		}
	}
	if to := c.Query("to"); to != "" {
		if parsed, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = &parsed
		}
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "100")); err == nil {
		filter.PageSize = size
	}
	return filter
}
