package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appreferral "github.com/worldref/backend/internal/application/referral"
	"github.com/worldref/backend/internal/domain/shared"
)

// TrackerHandler handles click and visit tracking HTTP requests
type TrackerHandler struct {
	BaseHandler
	trackerService *appreferral.TrackerService
	fallbackURL    string
}

// NewTrackerHandler creates a new tracker handler. fallbackURL is where
// short-link visitors land when their code resolves to nothing.
func NewTrackerHandler(trackerService *appreferral.TrackerService, fallbackURL string) *TrackerHandler {
	return &TrackerHandler{
		trackerService: trackerService,
		fallbackURL:    fallbackURL,
	}
}

// Redirect godoc
// @Summary      Follow a referral short link
// @Description  Records the click and redirects the visitor to the member's referral link
// @Tags         tracking
// @Param        code path string true "Referral code"
// @Success      302
// @Failure      400 {object} ErrorResponse
// @Router       /r/{code} [get]
func (h *TrackerHandler) Redirect(c *gin.Context) {
	result, err := h.trackerService.RecordClick(c.Request.Context(), appreferral.RecordClickInput{
		ReferralCode: c.Param("code"),
		IPAddress:    c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
	})
	if err != nil {
		// A dead short link still sends the visitor somewhere useful
		if h.fallbackURL != "" && errors.Is(err, shared.ErrInvalidReferralCode) {
			c.Redirect(http.StatusFound, h.fallbackURL)
			return
		}
		h.HandleError(c, err)
		return
	}

	c.Redirect(http.StatusFound, result.ReferralLink)
}

// RecordClick godoc
// @Summary      Record a referral click
// @Description  Records a click against a referral code without redirecting
// @Tags         tracking
// @Produce      json
// @Param        code path string true "Referral code"
// @Success      200 {object} APIResponse[ClickResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /clicks/{code} [post]
func (h *TrackerHandler) RecordClick(c *gin.Context) {
	result, err := h.trackerService.RecordClick(c.Request.Context(), appreferral.RecordClickInput{
		ReferralCode: c.Param("code"),
		IPAddress:    c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ClickResponse{
		ClickID:      result.ClickID.String(),
		MemberID:     result.MemberID.String(),
		ReferralLink: result.ReferralLink,
	})
}

// Convert godoc
// @Summary      Convert a click
// @Description  Flags a recorded click as having led to a signup
// @Tags         tracking
// @Produce      json
// @Param        id path string true "Click ID"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /clicks/{id}/convert [post]
func (h *TrackerHandler) Convert(c *gin.Context) {
	clickID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid click ID")
		return
	}

	// The caller is the account that signed up through the click
	var newAccountID *uuid.UUID
	if accountID, err := getAccountID(c); err == nil {
		newAccountID = &accountID
	}

	if err := h.trackerService.MarkConversion(c.Request.Context(), clickID, newAccountID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RecordVisit godoc
// @Summary      Record a page visit
// @Description  Counts one landing page view for the global visit counter
// @Tags         tracking
// @Accept       json
// @Produce      json
// @Param        request body RecordVisitRequest false "Page view payload"
// @Success      204
// @Failure      503 {object} ErrorResponse
// @Router       /visits [post]
func (h *TrackerHandler) RecordVisit(c *gin.Context) {
	if err := h.trackerService.RecordVisit(c.Request.Context(), appreferral.RecordVisitInput{
		IPAddress: c.ClientIP(),
	}); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
