package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appreferral "github.com/worldref/backend/internal/application/referral"
)

// ReferralHandler handles allocation-related HTTP requests
type ReferralHandler struct {
	BaseHandler
	allocatorService *appreferral.AllocatorService
	trackerService   *appreferral.TrackerService
}

// NewReferralHandler creates a new referral handler
func NewReferralHandler(
	allocatorService *appreferral.AllocatorService,
	trackerService *appreferral.TrackerService,
) *ReferralHandler {
	return &ReferralHandler{
		allocatorService: allocatorService,
		trackerService:   trackerService,
	}
}

// Assign godoc
// @Summary      Assign a referral to the calling visitor
// @Description  Hands out the referral of the least loaded eligible member, reusing a recent pending assignment for repeat visitors
// @Tags         referrals
// @Produce      json
// @Success      200 {object} APIResponse[AssignmentResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /referrals/assign [post]
func (h *ReferralHandler) Assign(c *gin.Context) {
	result, err := h.allocatorService.AssignNext(c.Request.Context(), appreferral.AssignInput{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, AssignmentResponse{
		AssignmentID: result.AssignmentID.String(),
		MemberID:     result.MemberID.String(),
		MemberName:   result.MemberName,
		ReferralCode: result.ReferralCode,
		ReferralLink: result.ReferralLink,
		Reused:       result.Reused,
	})
}

// Complete godoc
// @Summary      Complete an assignment
// @Description  Marks the assignment converted and credits the member's reward
// @Tags         referrals
// @Accept       json
// @Produce      json
// @Param        id path string true "Assignment ID"
// @Param        request body CompleteAssignmentRequest false "Conversion attribution"
// @Success      200 {object} APIResponse[CompleteAssignmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /referrals/assignments/{id}/complete [post]
func (h *ReferralHandler) Complete(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid assignment ID")
		return
	}

	var req CompleteAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, "Invalid request body")
		return
	}

	var accountID *uuid.UUID
	if req.AccountID != "" {
		parsed, err := uuid.Parse(req.AccountID)
		if err != nil {
			h.BadRequest(c, "Invalid account ID")
			return
		}
		accountID = &parsed
	}

	result, err := h.allocatorService.CompleteAssignment(c.Request.Context(), appreferral.CompleteAssignmentInput{
		AssignmentID: assignmentID,
		AccountID:    accountID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, CompleteAssignmentResponse{
		AssignmentID: result.AssignmentID.String(),
		MemberID:     result.MemberID.String(),
		Reward:       result.Reward.InexactFloat64(),
		TotalEarned:  result.TotalEarned.InexactFloat64(),
	})
}

// Fail godoc
// @Summary      Fail an assignment
// @Description  Marks the assignment failed and releases the member's slot
// @Tags         referrals
// @Produce      json
// @Param        id path string true "Assignment ID"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /referrals/assignments/{id}/fail [post]
func (h *ReferralHandler) Fail(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid assignment ID")
		return
	}

	if err := h.allocatorService.FailAssignment(c.Request.Context(), assignmentID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Random godoc
// @Summary      Get a random referral
// @Description  Returns the referral of an arbitrary least-loaded eligible member and records the click; no capacity is reserved
// @Tags         referrals
// @Produce      json
// @Success      200 {object} APIResponse[RandomReferralResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /referrals/random [get]
func (h *ReferralHandler) Random(c *gin.Context) {
	result, err := h.trackerService.RandomReferral(c.Request.Context(), appreferral.RandomReferralInput{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, RandomReferralResponse{
		ClickID:      result.ClickID.String(),
		MemberID:     result.MemberID.String(),
		MemberName:   result.MemberName,
		ReferralCode: result.ReferralCode,
		ReferralLink: result.ReferralLink,
	})
}
