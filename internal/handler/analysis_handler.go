package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/k25dtcn010/project-base/internal/service"
	"github.com/k25dtcn010/project-base/pkg/response"
)

// AnalysisHandler exposes analysis endpoints.
type AnalysisHandler struct {
	service *service.AnalysisService
}

// NewAnalysisHandler constructs an analysis handler.
func NewAnalysisHandler(svc *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{service: svc}
}

// Analyze godoc
// @Summary Analyze attendance
// @Description Re-run segment analysis for a single attendance
// @Tags Analysis
// @Produce json
// @Param id path string true "Attendance ID"
// @Success 200 {object} response.Envelope
// @Router /analysis/attendance/{id} [post]
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	result, err := h.service.Analyze(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ReanalyzeAll godoc
// @Summary Re-analyze all attendances
// @Description Re-run segment analysis over every completed attendance
// @Tags Analysis
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analysis/reanalyze [post]
func (h *AnalysisHandler) ReanalyzeAll(c *gin.Context) {
	summary, err := h.service.ReanalyzeAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
