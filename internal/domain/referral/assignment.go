package referral

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/worldref/backend/internal/domain/shared"
)

// AssignmentStatus represents the lifecycle state of an assignment
type AssignmentStatus string

const (
	AssignmentStatusPending   AssignmentStatus = "pending"
	AssignmentStatusCompleted AssignmentStatus = "completed"
	AssignmentStatusFailed    AssignmentStatus = "failed"
)

// Assignment records one visitor being handed a member's referral.
// It holds the slot it reserved on the member until it completes or fails.
type Assignment struct {
	shared.BaseAggregateRoot
	MemberID     uuid.UUID
	AccountID    *uuid.UUID // visitor's account, when known
	IPAddress    string
	UserAgent    string
	ReferralCode string
	Status       AssignmentStatus
	RewardAmount decimal.Decimal
	AssignedAt   time.Time
	CompletedAt  *time.Time
}

// NewAssignment creates a pending assignment against a member
func NewAssignment(memberID uuid.UUID, referralCode, ipAddress, userAgent string) (*Assignment, error) {
	if memberID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEMBER_ID", "Member ID cannot be empty")
	}
	if len(ipAddress) > 45 {
		return nil, shared.NewDomainError("INVALID_IP", "IP address cannot exceed 45 characters")
	}
	if len(userAgent) > 500 {
		userAgent = userAgent[:500]
	}

	now := time.Now()
	assignment := &Assignment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		MemberID:          memberID,
		IPAddress:         strings.TrimSpace(ipAddress),
		UserAgent:         userAgent,
		ReferralCode:      referralCode,
		Status:            AssignmentStatusPending,
		RewardAmount:      decimal.Zero,
		AssignedAt:        now,
	}

	assignment.AddDomainEvent(NewAssignmentCreatedEvent(assignment))

	return assignment, nil
}

// Complete marks the assignment as converted and records the reward
// that the member earns for it. The visitor's account is attached when
// the conversion was authenticated.
func (a *Assignment) Complete(accountID *uuid.UUID, reward decimal.Decimal) error {
	if a.Status == AssignmentStatusCompleted {
		return shared.NewDomainError("ALREADY_COMPLETED", "Assignment is already completed")
	}
	if a.Status == AssignmentStatusFailed {
		return shared.NewDomainError("ALREADY_FAILED", "Cannot complete a failed assignment")
	}
	if reward.IsNegative() {
		return shared.NewDomainError("INVALID_REWARD", "Reward amount cannot be negative")
	}

	now := time.Now()
	a.Status = AssignmentStatusCompleted
	a.AccountID = accountID
	a.RewardAmount = reward
	a.CompletedAt = &now
	a.UpdatedAt = now
	a.IncrementVersion()

	a.AddDomainEvent(NewAssignmentCompletedEvent(a))

	return nil
}

// Fail marks the assignment as abandoned so its slot can be released
func (a *Assignment) Fail() error {
	if a.Status != AssignmentStatusPending {
		return shared.NewDomainError("NOT_PENDING", "Only pending assignments can fail")
	}

	a.Status = AssignmentStatusFailed
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewAssignmentFailedEvent(a))

	return nil
}

// IsPending returns true while the assignment holds a slot
func (a *Assignment) IsPending() bool {
	return a.Status == AssignmentStatusPending
}
