package handler

import (
	"time"

	appreferral "github.com/worldref/backend/internal/application/referral"
)

// GlobalStatsResponse aggregates activity across the whole system
// @Description System-wide referral totals
type GlobalStatsResponse struct {
	TotalVisitors    int64 `json:"total_visitors" example:"1024"`
	UniqueVisitors   int64 `json:"unique_visitors" example:"512"`
	TotalAssignments int64 `json:"total_assignments" example:"256"`
	ActiveMembers    int64 `json:"active_members" example:"12"`
}

// ClickStatsResponse is a click entry in member stats
// @Description One recent click against the member's code
type ClickStatsResponse struct {
	ID          string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440003"`
	ClickedAt   string  `json:"clicked_at" example:"2026-08-31T12:00:00Z"`
	Converted   bool    `json:"converted" example:"false"`
	ConvertedAt *string `json:"converted_at,omitempty"`
}

// UserStatsResponse aggregates one member's referral performance
// @Description Per-member referral statistics
type UserStatsResponse struct {
	MemberID         string               `json:"member_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	TotalClicks      int64                `json:"total_clicks" example:"42"`
	TotalConversions int64                `json:"total_conversions" example:"7"`
	ConversionRate   float64              `json:"conversion_rate" example:"16.67"`
	TotalAssigned    int64                `json:"total_assigned" example:"20"`
	RemainingSlots   int                  `json:"remaining_slots" example:"3"`
	TotalEarned      float64              `json:"total_earned" example:"350"`
	RecentClicks     []ClickStatsResponse `json:"recent_clicks"`
}

func toUserStatsResponse(stats *appreferral.UserStats) UserStatsResponse {
	clicks := make([]ClickStatsResponse, len(stats.RecentClicks))
	for i, click := range stats.RecentClicks {
		entry := ClickStatsResponse{
			ID:        click.ID.String(),
			ClickedAt: click.ClickedAt.Format(time.RFC3339),
			Converted: click.Converted,
		}
		if click.ConvertedAt != nil {
			converted := click.ConvertedAt.Format(time.RFC3339)
			entry.ConvertedAt = &converted
		}
		clicks[i] = entry
	}

	return UserStatsResponse{
		MemberID:         stats.MemberID.String(),
		TotalClicks:      stats.TotalClicks,
		TotalConversions: stats.TotalConversions,
		ConversionRate:   stats.ConversionRate,
		TotalAssigned:    stats.TotalAssigned,
		RemainingSlots:   stats.RemainingSlots,
		TotalEarned:      stats.TotalEarned.InexactFloat64(),
		RecentClicks:     clicks,
	}
}
