package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-roster-api/internal/dto"
	"github.com/noah-isme/school-roster-api/internal/middleware"
	"github.com/noah-isme/school-roster-api/internal/models"
	"github.com/noah-isme/school-roster-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context, viewer models.UserProfile) (*dto.DashboardSummary, bool, error)
	Classes(ctx context.Context, viewer models.UserProfile) (*dto.ClassesOverview, bool, error)
	Class(ctx context.Context, viewer models.UserProfile, grade string) (*dto.ClassDetail, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary godoc
// @Summary Roster summary
// @Description Totals and breakdowns over the caller's visible students
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	user, ok := viewer(c)
	if !ok {
		return
	}
	summary, hit, err := h.service.Summary(c.Request.Context(), user)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, summary, middleware.ExtractMeta(c))
}

// Classes godoc
// @Summary Per-class overview
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboard/classes [get]
func (h *DashboardHandler) Classes(c *gin.Context) {
	user, ok := viewer(c)
	if !ok {
		return
	}
	overview, hit, err := h.service.Classes(c.Request.Context(), user)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, overview, middleware.ExtractMeta(c))
}

// Class godoc
// @Summary Class detail
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param grade path string true "Grade label"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /dashboard/classes/{grade} [get]
func (h *DashboardHandler) Class(c *gin.Context) {
	user, ok := viewer(c)
	if !ok {
		return
	}
	detail, hit, err := h.service.Class(c.Request.Context(), user, c.Param("grade"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, detail, middleware.ExtractMeta(c))
}
