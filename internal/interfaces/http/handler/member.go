package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	appreferral "github.com/worldref/backend/internal/application/referral"
	"github.com/worldref/backend/internal/interfaces/http/dto"
	"github.com/worldref/backend/internal/interfaces/http/middleware"
)

// MemberHandler handles member directory HTTP requests
type MemberHandler struct {
	BaseHandler
	directoryService *appreferral.DirectoryService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(directoryService *appreferral.DirectoryService) *MemberHandler {
	return &MemberHandler{
		directoryService: directoryService,
	}
}

// List godoc
// @Summary      List members
// @Description  Returns a page of the member directory
// @Tags         members
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Match against name or referral code"
// @Success      200 {object} APIResponse[[]MemberResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /members [get]
func (h *MemberHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.directoryService.ListMembers(c.Request.Context(), appreferral.ListMembersInput{
		Keyword:  req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	members := make([]MemberResponse, len(result.Members))
	for i, info := range result.Members {
		members[i] = toMemberResponse(info)
	}

	h.SuccessWithMeta(c, members, result.Total, result.Page, req.PageSize)
}

// Get godoc
// @Summary      Get a member
// @Description  Returns one member by ID
// @Tags         members
// @Produce      json
// @Param        id path string true "Member ID"
// @Success      200 {object} APIResponse[MemberResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /members/{id} [get]
func (h *MemberHandler) Get(c *gin.Context) {
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid member ID")
		return
	}

	info, err := h.directoryService.GetMember(c.Request.Context(), memberID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toMemberResponse(*info))
}

// MyMember godoc
// @Summary      Get the caller's member record
// @Description  Returns the rotation member backing the authenticated account
// @Tags         members
// @Produce      json
// @Success      200 {object} APIResponse[MemberResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /me/member [get]
func (h *MemberHandler) MyMember(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	info, err := h.directoryService.GetMemberByAccount(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toMemberResponse(*info))
}

// SetReferralCode godoc
// @Summary      Set the caller's referral code
// @Description  Replaces the referral code backing the authenticated account, enrolling the member if needed
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        request body SetReferralCodeRequest true "New referral code"
// @Success      200 {object} APIResponse[MemberResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /me/referral-code [put]
func (h *MemberHandler) SetReferralCode(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req SetReferralCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			middleware.HandleValidationError(c, err)
			return
		}
		h.BadRequest(c, "Invalid request body")
		return
	}

	info, err := h.directoryService.SetReferralCode(c.Request.Context(), appreferral.SetReferralCodeInput{
		AccountID:    accountID,
		Name:         req.Name,
		ReferralCode: req.ReferralCode,
		ReferralLink: req.ReferralLink,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toMemberResponse(*info))
}

// SetCapacity godoc
// @Summary      Set a member's capacity
// @Description  Changes the member's maximum concurrent assignment count
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        id path string true "Member ID"
// @Param        request body SetCapacityRequest true "New capacity"
// @Success      200 {object} APIResponse[MemberResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /members/{id}/capacity [put]
func (h *MemberHandler) SetCapacity(c *gin.Context) {
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid member ID")
		return
	}

	var req SetCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	info, err := h.directoryService.SetCapacity(c.Request.Context(), appreferral.SetCapacityInput{
		MemberID:       memberID,
		MaxAssignments: req.MaxAssignments,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toMemberResponse(*info))
}

// Activate godoc
// @Summary      Activate a member
// @Description  Puts the member back into the allocation rotation
// @Tags         members
// @Produce      json
// @Param        id path string true "Member ID"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /members/{id}/activate [post]
func (h *MemberHandler) Activate(c *gin.Context) {
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid member ID")
		return
	}

	if err := h.directoryService.ActivateMember(c.Request.Context(), memberID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Deactivate godoc
// @Summary      Deactivate a member
// @Description  Pulls the member out of the allocation rotation
// @Tags         members
// @Produce      json
// @Param        id path string true "Member ID"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /members/{id}/deactivate [post]
func (h *MemberHandler) Deactivate(c *gin.Context) {
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid member ID")
		return
	}

	if err := h.directoryService.DeactivateMember(c.Request.Context(), memberID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
