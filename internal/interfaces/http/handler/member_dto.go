package handler

import (
	"time"

	appreferral "github.com/worldref/backend/internal/application/referral"
)

// MemberResponse represents a rotation member in API responses
// @Description Member details returned by the API
type MemberResponse struct {
	ID                 string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	AccountID          string  `json:"account_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	Name               string  `json:"name" example:"Alice"`
	ReferralCode       string  `json:"referral_code" example:"alice"`
	ReferralLink       string  `json:"referral_link" example:"https://worldcoin.org/join/alice"`
	CurrentAssignments int     `json:"current_assignments" example:"3"`
	MaxAssignments     int     `json:"max_assignments" example:"10"`
	RemainingSlots     int     `json:"remaining_slots" example:"7"`
	IsActive           bool    `json:"is_active" example:"true"`
	TotalEarned        float64 `json:"total_earned" example:"150"`
	CreatedAt          string  `json:"created_at" example:"2026-08-31T12:00:00Z"`
}

func toMemberResponse(info appreferral.MemberInfo) MemberResponse {
	return MemberResponse{
		ID:                 info.ID.String(),
		AccountID:          info.AccountID.String(),
		Name:               info.Name,
		ReferralCode:       info.ReferralCode,
		ReferralLink:       info.ReferralLink,
		CurrentAssignments: info.CurrentAssignments,
		MaxAssignments:     info.MaxAssignments,
		RemainingSlots:     info.RemainingSlots,
		IsActive:           info.IsActive,
		TotalEarned:        info.TotalEarned.InexactFloat64(),
		CreatedAt:          info.CreatedAt.Format(time.RFC3339),
	}
}

// SetReferralCodeRequest replaces the caller's referral code
// @Description New referral code for the authenticated member
type SetReferralCodeRequest struct {
	Name         string `json:"name" example:"Alice"`
	ReferralCode string `json:"referral_code" binding:"required,referralcode" example:"alice"`
	ReferralLink string `json:"referral_link" example:"https://worldcoin.org/join/alice"`
}

// SetCapacityRequest changes a member's assignment cap
// @Description New maximum concurrent assignment count
type SetCapacityRequest struct {
	MaxAssignments int `json:"max_assignments" binding:"required,min=1" example:"10"`
}
