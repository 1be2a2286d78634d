package referral

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/worldref/backend/internal/domain/referral"
)

// MemberInfo is the member projection handed to the interface layer
type MemberInfo struct {
	ID                 uuid.UUID
	AccountID          uuid.UUID
	Name               string
	ReferralCode       string
	ReferralLink       string
	CurrentAssignments int
	MaxAssignments     int
	RemainingSlots     int
	IsActive           bool
	TotalEarned        decimal.Decimal
	CreatedAt          time.Time
}

func toMemberInfo(member *referral.Member) MemberInfo {
	return MemberInfo{
		ID:                 member.ID,
		AccountID:          member.AccountID,
		Name:               member.Name,
		ReferralCode:       member.ReferralCode,
		ReferralLink:       member.ReferralLink,
		CurrentAssignments: member.CurrentAssignments,
		MaxAssignments:     member.MaxAssignments,
		RemainingSlots:     member.RemainingSlots(),
		IsActive:           member.IsActive,
		TotalEarned:        member.TotalEarned,
		CreatedAt:          member.CreatedAt,
	}
}

// ListMembersInput carries listing options for the member directory
type ListMembersInput struct {
	Keyword  string
	IsActive *bool
	Page     int
	PageSize int
}

// ListMembersResult is a page of members
type ListMembersResult struct {
	Members []MemberInfo
	Total   int64
	Page    int
}

// SetReferralCodeInput replaces the caller's referral code
type SetReferralCodeInput struct {
	AccountID    uuid.UUID
	Name         string
	ReferralCode string
	ReferralLink string
}

// SetCapacityInput changes a member's assignment cap
type SetCapacityInput struct {
	MemberID       uuid.UUID
	MaxAssignments int
}

// AssignInput carries the visitor identity for allocation
type AssignInput struct {
	IPAddress string
	UserAgent string
}

// AssignResult is the referral handed to a visitor
type AssignResult struct {
	AssignmentID uuid.UUID
	MemberID     uuid.UUID
	MemberName   string
	ReferralCode string
	ReferralLink string
	Reused       bool
}

// CompleteAssignmentInput marks an assignment converted
type CompleteAssignmentInput struct {
	AssignmentID uuid.UUID
	AccountID    *uuid.UUID
}

// CompleteAssignmentResult reports the credit applied
type CompleteAssignmentResult struct {
	AssignmentID uuid.UUID
	MemberID     uuid.UUID
	Reward       decimal.Decimal
	TotalEarned  decimal.Decimal
}

// RecordClickInput records a visit through a short link
type RecordClickInput struct {
	ReferralCode string
	IPAddress    string
	UserAgent    string
}

// RecordClickResult carries the click ID and where to send the visitor
type RecordClickResult struct {
	ClickID      uuid.UUID
	MemberID     uuid.UUID
	ReferralLink string
}

// RecordVisitInput counts a landing page view
type RecordVisitInput struct {
	IPAddress string
}

// RandomReferralInput carries the visitor identity for click attribution
type RandomReferralInput struct {
	IPAddress string
	UserAgent string
}

// RandomReferralResult is an arbitrary eligible referral
type RandomReferralResult struct {
	ClickID      uuid.UUID
	MemberID     uuid.UUID
	MemberName   string
	ReferralCode string
	ReferralLink string
}

// GlobalStats aggregates activity across the whole system. The JSON tags
// fix the cache encoding, which must stay stable across deploys.
type GlobalStats struct {
	TotalVisitors    int64 `json:"total_visitors"`
	UniqueVisitors   int64 `json:"unique_visitors"`
	TotalAssignments int64 `json:"total_assignments"`
	ActiveMembers    int64 `json:"active_members"`
}

// ClickInfo is the click projection used in member stats
type ClickInfo struct {
	ID          uuid.UUID
	ClickedAt   time.Time
	Converted   bool
	ConvertedAt *time.Time
}

// UserStats aggregates one member's referral performance
type UserStats struct {
	MemberID         uuid.UUID
	TotalClicks      int64
	TotalConversions int64
	ConversionRate   float64
	TotalAssigned    int64
	RemainingSlots   int
	TotalEarned      decimal.Decimal
	RecentClicks     []ClickInfo
}
