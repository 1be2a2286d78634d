package referral

import (
	"time"

	"github.com/google/uuid"
	"github.com/worldref/backend/internal/domain/shared"
)

// Click records one visit through a member's short link.
// Marking a click converted is idempotent; repeating it only refreshes
// the conversion timestamp.
type Click struct {
	shared.BaseAggregateRoot
	MemberID           uuid.UUID
	ReferralCode       string
	IPAddress          string
	UserAgent          string
	ClickedAt          time.Time
	Converted          bool
	ConvertedAt        *time.Time
	ConvertedAccountID *uuid.UUID
}

// NewClick records a click on a member's referral link
func NewClick(memberID uuid.UUID, referralCode, ipAddress, userAgent string) (*Click, error) {
	if memberID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEMBER_ID", "Member ID cannot be empty")
	}
	if len(ipAddress) > 45 {
		return nil, shared.NewDomainError("INVALID_IP", "IP address cannot exceed 45 characters")
	}
	if len(userAgent) > 500 {
		userAgent = userAgent[:500]
	}

	click := &Click{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		MemberID:          memberID,
		ReferralCode:      referralCode,
		IPAddress:         ipAddress,
		UserAgent:         userAgent,
		ClickedAt:         time.Now(),
	}

	click.AddDomainEvent(NewClickRecordedEvent(click))

	return click, nil
}

// MarkConverted flags the click as having led to a signup. The new
// account is optional; anonymous conversions carry no reference.
func (c *Click) MarkConverted(accountID *uuid.UUID) {
	now := time.Now()
	firstConversion := !c.Converted
	c.Converted = true
	c.ConvertedAt = &now
	if accountID != nil {
		c.ConvertedAccountID = accountID
	}
	c.UpdatedAt = now
	c.IncrementVersion()

	if firstConversion {
		c.AddDomainEvent(NewClickConvertedEvent(c))
	}
}

// Aggregate type constant for Click
const AggregateTypeClick = "Click"

// Click domain event types
const (
	EventTypeClickRecorded  = "ClickRecorded"
	EventTypeClickConverted = "ClickConverted"
)

// ClickRecordedEvent is published when a referral link is clicked
type ClickRecordedEvent struct {
	shared.BaseDomainEvent
	MemberID     uuid.UUID `json:"member_id"`
	ReferralCode string    `json:"referral_code"`
}

// NewClickRecordedEvent creates a new ClickRecordedEvent
func NewClickRecordedEvent(click *Click) *ClickRecordedEvent {
	return &ClickRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClickRecorded, AggregateTypeClick, click.ID),
		MemberID:        click.MemberID,
		ReferralCode:    click.ReferralCode,
	}
}

// ClickConvertedEvent is published the first time a click converts
type ClickConvertedEvent struct {
	shared.BaseDomainEvent
	MemberID uuid.UUID `json:"member_id"`
}

// NewClickConvertedEvent creates a new ClickConvertedEvent
func NewClickConvertedEvent(click *Click) *ClickConvertedEvent {
	return &ClickConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClickConverted, AggregateTypeClick, click.ID),
		MemberID:        click.MemberID,
	}
}
