package handler

import (
	"github.com/gin-gonic/gin"

	appreferral "github.com/worldref/backend/internal/application/referral"
)

// StatsHandler handles statistics HTTP requests
type StatsHandler struct {
	BaseHandler
	statsService *appreferral.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *appreferral.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// Global godoc
// @Summary      Get global statistics
// @Description  Returns system-wide visitor and assignment totals
// @Tags         stats
// @Produce      json
// @Success      200 {object} APIResponse[GlobalStatsResponse]
// @Failure      503 {object} ErrorResponse
// @Router       /stats [get]
func (h *StatsHandler) Global(c *gin.Context) {
	stats, err := h.statsService.GetGlobalStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, GlobalStatsResponse{
		TotalVisitors:    stats.TotalVisitors,
		UniqueVisitors:   stats.UniqueVisitors,
		TotalAssignments: stats.TotalAssignments,
		ActiveMembers:    stats.ActiveMembers,
	})
}

// MyStats godoc
// @Summary      Get the caller's statistics
// @Description  Returns the authenticated member's referral performance
// @Tags         stats
// @Produce      json
// @Success      200 {object} APIResponse[UserStatsResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /me/stats [get]
func (h *StatsHandler) MyStats(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	stats, err := h.statsService.GetUserStats(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toUserStatsResponse(stats))
}
