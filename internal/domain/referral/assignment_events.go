package referral

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/worldref/backend/internal/domain/shared"
)

// Aggregate type constant for Assignment
const AggregateTypeAssignment = "Assignment"

// Assignment domain event types
const (
	EventTypeAssignmentCreated   = "AssignmentCreated"
	EventTypeAssignmentCompleted = "AssignmentCompleted"
	EventTypeAssignmentFailed    = "AssignmentFailed"
)

// AssignmentCreatedEvent is published when a visitor is assigned a referral
type AssignmentCreatedEvent struct {
	shared.BaseDomainEvent
	MemberID     uuid.UUID `json:"member_id"`
	ReferralCode string    `json:"referral_code"`
}

// NewAssignmentCreatedEvent creates a new AssignmentCreatedEvent
func NewAssignmentCreatedEvent(assignment *Assignment) *AssignmentCreatedEvent {
	return &AssignmentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssignmentCreated, AggregateTypeAssignment, assignment.ID),
		MemberID:        assignment.MemberID,
		ReferralCode:    assignment.ReferralCode,
	}
}

// AssignmentCompletedEvent is published when an assignment converts
type AssignmentCompletedEvent struct {
	shared.BaseDomainEvent
	MemberID uuid.UUID       `json:"member_id"`
	Reward   decimal.Decimal `json:"reward"`
}

// NewAssignmentCompletedEvent creates a new AssignmentCompletedEvent
func NewAssignmentCompletedEvent(assignment *Assignment) *AssignmentCompletedEvent {
	return &AssignmentCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssignmentCompleted, AggregateTypeAssignment, assignment.ID),
		MemberID:        assignment.MemberID,
		Reward:          assignment.RewardAmount,
	}
}

// AssignmentFailedEvent is published when an assignment is abandoned
type AssignmentFailedEvent struct {
	shared.BaseDomainEvent
	MemberID uuid.UUID `json:"member_id"`
}

// NewAssignmentFailedEvent creates a new AssignmentFailedEvent
func NewAssignmentFailedEvent(assignment *Assignment) *AssignmentFailedEvent {
	return &AssignmentFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssignmentFailed, AggregateTypeAssignment, assignment.ID),
		MemberID:        assignment.MemberID,
	}
}
