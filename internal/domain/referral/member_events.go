package referral

import (
	"github.com/shopspring/decimal"
	"github.com/worldref/backend/internal/domain/shared"
)

// Aggregate type constant for Member
const AggregateTypeMember = "Member"

// Member domain event types
const (
	EventTypeMemberCreated         = "MemberCreated"
	EventTypeMemberCodeChanged     = "MemberCodeChanged"
	EventTypeMemberCapacityChanged = "MemberCapacityChanged"
	EventTypeMemberStatusChanged   = "MemberStatusChanged"
	EventTypeEarningsCredited      = "EarningsCredited"
)

// MemberCreatedEvent is published when a member joins the rotation
type MemberCreatedEvent struct {
	shared.BaseDomainEvent
	Name         string `json:"name"`
	ReferralCode string `json:"referral_code"`
}

// NewMemberCreatedEvent creates a new MemberCreatedEvent
func NewMemberCreatedEvent(member *Member) *MemberCreatedEvent {
	return &MemberCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberCreated, AggregateTypeMember, member.ID),
		Name:            member.Name,
		ReferralCode:    member.ReferralCode,
	}
}

// MemberCodeChangedEvent is published when a member's referral code changes
type MemberCodeChangedEvent struct {
	shared.BaseDomainEvent
	OldCode string `json:"old_code"`
	NewCode string `json:"new_code"`
}

// NewMemberCodeChangedEvent creates a new MemberCodeChangedEvent
func NewMemberCodeChangedEvent(member *Member, oldCode string) *MemberCodeChangedEvent {
	return &MemberCodeChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberCodeChanged, AggregateTypeMember, member.ID),
		OldCode:         oldCode,
		NewCode:         member.ReferralCode,
	}
}

// MemberCapacityChangedEvent is published when the assignment cap changes
type MemberCapacityChangedEvent struct {
	shared.BaseDomainEvent
	OldMax int `json:"old_max"`
	NewMax int `json:"new_max"`
}

// NewMemberCapacityChangedEvent creates a new MemberCapacityChangedEvent
func NewMemberCapacityChangedEvent(member *Member, oldMax int) *MemberCapacityChangedEvent {
	return &MemberCapacityChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberCapacityChanged, AggregateTypeMember, member.ID),
		OldMax:          oldMax,
		NewMax:          member.MaxAssignments,
	}
}

// MemberStatusChangedEvent is published when a member enters or leaves the rotation
type MemberStatusChangedEvent struct {
	shared.BaseDomainEvent
	IsActive bool `json:"is_active"`
}

// NewMemberStatusChangedEvent creates a new MemberStatusChangedEvent
func NewMemberStatusChangedEvent(member *Member) *MemberStatusChangedEvent {
	return &MemberStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberStatusChanged, AggregateTypeMember, member.ID),
		IsActive:        member.IsActive,
	}
}

// EarningsCreditedEvent is published when a reward lands on a member
type EarningsCreditedEvent struct {
	shared.BaseDomainEvent
	Amount      decimal.Decimal `json:"amount"`
	TotalEarned decimal.Decimal `json:"total_earned"`
}

// NewEarningsCreditedEvent creates a new EarningsCreditedEvent
func NewEarningsCreditedEvent(member *Member, amount decimal.Decimal) *EarningsCreditedEvent {
	return &EarningsCreditedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEarningsCredited, AggregateTypeMember, member.ID),
		Amount:          amount,
		TotalEarned:     member.TotalEarned,
	}
}
