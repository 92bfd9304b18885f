package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/k25dtcn010/project-base/internal/models"
	"github.com/k25dtcn010/project-base/internal/service"
	appErrors "github.com/k25dtcn010/project-base/pkg/errors"
	"github.com/k25dtcn010/project-base/pkg/response"
)

// ScheduleHandler exposes shift schedule endpoints.
type ScheduleHandler struct {
	service *service.ScheduleService
}

// NewScheduleHandler constructs a schedule handler.
func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// List godoc
// @Summary List schedules
// @Description List schedules intersecting the requested window
// @Tags Schedules
// @Produce json
// @Param employeeId query string false "Filter by employee"
// @Param shiftId query string false "Filter by shift"
// @Param startDate query string false "Window start (2006-01-02)"
// @Param endDate query string false "Window end (2006-01-02)"
// @Success 200 {object} response.Envelope
// @Router /shift-schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	var filter models.ShiftScheduleFilter
	filter.EmployeeID = c.Query("employeeId")
	filter.ShiftID = c.Query("shiftId")
	filter.StartDate = parseDateQuery(c, "startDate")
	filter.EndDate = parseDateQuery(c, "endDate")

	schedules, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}

// Get godoc
// @Summary Get schedule
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /shift-schedules/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// ListByEmployee godoc
// @Summary List employee schedules
// @Tags Schedules
// @Produce json
// @Param employeeId path string true "Employee ID"
// @Param startDate query string false "Window start (2006-01-02)"
// @Param endDate query string false "Window end (2006-01-02)"
// @Success 200 {object} response.Envelope
// @Router /shift-schedules/employee/{employeeId} [get]
func (h *ScheduleHandler) ListByEmployee(c *gin.Context) {
	schedules, err := h.service.ListByEmployee(c.Request.Context(), c.Param("employeeId"), parseDateQuery(c, "startDate"), parseDateQuery(c, "endDate"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}

// Create godoc
// @Summary Create schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body service.CreateScheduleRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Router /shift-schedules [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req service.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	schedule, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// Update godoc
// @Summary Update schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body service.UpdateScheduleRequest true "Schedule payload"
// @Success 200 {object} response.Envelope
// @Router /shift-schedules/{id} [put]
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req service.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	schedule, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Delete godoc
// @Summary Delete schedule
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 204
// @Router /shift-schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func parseDateQuery(c *gin.Context, key string) *time.Time {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &parsed
}
