package referral

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/worldref/backend/internal/domain/shared"
)

// DefaultMaxAssignments is the capacity a member starts with
const DefaultMaxAssignments = 10

// Member represents a participant who hands out their referral link.
// It is the aggregate root for referral capacity and earnings. A member
// with an empty referral code is out of the rotation.
type Member struct {
	shared.BaseAggregateRoot
	AccountID          uuid.UUID
	Name               string
	ReferralCode       string
	ReferralLink       string
	CurrentAssignments int
	MaxAssignments     int
	IsActive           bool
	TotalEarned        decimal.Decimal
}

// NewMember creates a member for an account with an initial referral code
func NewMember(accountID uuid.UUID, name, code, link string) (*Member, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_ID", "Account ID cannot be empty")
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	if code != "" {
		if err := ValidateReferralCode(code); err != nil {
			return nil, err
		}
	}
	if err := validateLink(link); err != nil {
		return nil, err
	}

	member := &Member{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AccountID:         accountID,
		Name:              strings.TrimSpace(name),
		ReferralCode:      code,
		ReferralLink:      strings.TrimSpace(link),
		MaxAssignments:    DefaultMaxAssignments,
		IsActive:          code != "",
		TotalEarned:       decimal.Zero,
	}

	member.AddDomainEvent(NewMemberCreatedEvent(member))

	return member, nil
}

// ChangeCode replaces the member's referral code and link.
// An empty code takes the member out of the rotation.
func (m *Member) ChangeCode(code, link string) error {
	code = strings.TrimSpace(code)
	if code != "" {
		if err := ValidateReferralCode(code); err != nil {
			return err
		}
	}
	if err := validateLink(link); err != nil {
		return err
	}

	oldCode := m.ReferralCode
	m.ReferralCode = code
	m.ReferralLink = strings.TrimSpace(link)
	m.IsActive = code != ""
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	m.AddDomainEvent(NewMemberCodeChangedEvent(m, oldCode))

	return nil
}

// ReserveSlot claims one assignment slot for a visitor
func (m *Member) ReserveSlot() error {
	if !m.IsActive {
		return shared.ErrCapacityExhausted
	}
	if m.CurrentAssignments >= m.MaxAssignments {
		return shared.ErrCapacityExhausted
	}

	m.CurrentAssignments++
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	return nil
}

// ReleaseSlot returns one assignment slot, typically after a failure
func (m *Member) ReleaseSlot() {
	if m.CurrentAssignments > 0 {
		m.CurrentAssignments--
	}
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
}

// SetCapacity changes the maximum number of concurrent assignments.
// Lowering it below the current count is allowed; the member simply
// receives no new visitors until assignments drain.
func (m *Member) SetCapacity(maxAssignments int) error {
	if maxAssignments < 1 {
		return shared.NewDomainError("INVALID_CAPACITY", "Capacity must be at least 1")
	}
	if maxAssignments > 10000 {
		return shared.NewDomainError("INVALID_CAPACITY", "Capacity cannot exceed 10000")
	}

	oldMax := m.MaxAssignments
	m.MaxAssignments = maxAssignments
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	m.AddDomainEvent(NewMemberCapacityChangedEvent(m, oldMax))

	return nil
}

// CreditEarnings adds a reward to the member's running total
func (m *Member) CreditEarnings(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_REWARD", "Reward amount must be positive")
	}

	m.TotalEarned = m.TotalEarned.Add(amount)
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	m.AddDomainEvent(NewEarningsCreditedEvent(m, amount))

	return nil
}

// Activate puts the member back into the rotation
func (m *Member) Activate() error {
	if m.ReferralCode == "" {
		return shared.NewDomainError("NO_REFERRAL_CODE", "Cannot activate a member without a referral code")
	}
	if m.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Member is already active")
	}

	m.IsActive = true
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	m.AddDomainEvent(NewMemberStatusChangedEvent(m))

	return nil
}

// Deactivate removes the member from the rotation
func (m *Member) Deactivate() error {
	if !m.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Member is already inactive")
	}

	m.IsActive = false
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	m.AddDomainEvent(NewMemberStatusChangedEvent(m))

	return nil
}

// HasCapacity returns true if the member can take another assignment
func (m *Member) HasCapacity() bool {
	return m.IsActive && m.CurrentAssignments < m.MaxAssignments
}

// RemainingSlots returns how many assignments the member can still take
func (m *Member) RemainingSlots() int {
	remaining := m.MaxAssignments - m.CurrentAssignments
	if remaining < 0 {
		return 0
	}
	return remaining
}

var referralCodeRegex = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// ValidateReferralCode checks a non-empty referral code against format rules
func ValidateReferralCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_REFERRAL_CODE", "Referral code cannot be empty")
	}
	if len(code) > 64 {
		return shared.NewDomainError("INVALID_REFERRAL_CODE", "Referral code cannot exceed 64 characters")
	}
	if !referralCodeRegex.MatchString(code) {
		return shared.NewDomainError("INVALID_REFERRAL_CODE", "Referral code can only contain letters and numbers")
	}
	return nil
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	return nil
}

func validateLink(link string) error {
	link = strings.TrimSpace(link)
	if len(link) > 500 {
		return shared.NewDomainError("INVALID_LINK", "Referral link cannot exceed 500 characters")
	}
	return nil
}
