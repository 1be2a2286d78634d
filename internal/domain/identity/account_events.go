package identity

import (
	"github.com/worldref/backend/internal/domain/shared"
)

// Aggregate type constant for Account
const AggregateTypeAccount = "Account"

// Account domain event types
const (
	EventTypeAccountCreated  = "AccountCreated"
	EventTypeAccountVerified = "AccountVerified"
)

// AccountCreatedEvent is published when an account is first resolved
type AccountCreatedEvent struct {
	shared.BaseDomainEvent
	Provider   Provider `json:"provider"`
	ExternalID string   `json:"external_id"`
}

// NewAccountCreatedEvent creates a new AccountCreatedEvent
func NewAccountCreatedEvent(account *Account) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountCreated, AggregateTypeAccount, account.ID),
		Provider:        account.Provider,
		ExternalID:      account.ExternalID(),
	}
}

// AccountVerifiedEvent is published when a World ID verification level changes
type AccountVerifiedEvent struct {
	shared.BaseDomainEvent
	VerificationLevel VerificationLevel `json:"verification_level"`
}

// NewAccountVerifiedEvent creates a new AccountVerifiedEvent
func NewAccountVerifiedEvent(account *Account) *AccountVerifiedEvent {
	return &AccountVerifiedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeAccountVerified, AggregateTypeAccount, account.ID),
		VerificationLevel: account.VerificationLevel,
	}
}
