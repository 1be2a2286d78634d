package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/worldref/backend/internal/domain/shared"
)

// Provider identifies the external identity provider an account came from
type Provider string

const (
	ProviderWorldID Provider = "world_id"
	ProviderGoogle  Provider = "google"
)

// VerificationLevel represents the World ID proof strength
type VerificationLevel string

const (
	VerificationLevelOrb    VerificationLevel = "orb"
	VerificationLevelDevice VerificationLevel = "device"
)

// Account represents an authenticated person in the system.
// It is the aggregate root for identity operations. Each account is
// anchored to exactly one external identity: a World ID nullifier hash
// or a Google subject ID.
type Account struct {
	shared.BaseAggregateRoot
	Provider          Provider
	NullifierHash     string // set when Provider == ProviderWorldID
	Verified          bool
	VerificationLevel VerificationLevel
	GoogleUID         string // set when Provider == ProviderGoogle
	Email             string
	DisplayName       string
	AvatarURL         string
	LastLoginAt       *time.Time
}

// NewWorldIDAccount creates an account backed by a World ID proof
func NewWorldIDAccount(nullifierHash string, level VerificationLevel) (*Account, error) {
	nullifierHash = strings.TrimSpace(nullifierHash)
	if nullifierHash == "" {
		return nil, shared.NewDomainError("INVALID_NULLIFIER", "Nullifier hash cannot be empty")
	}
	if len(nullifierHash) > 256 {
		return nil, shared.NewDomainError("INVALID_NULLIFIER", "Nullifier hash cannot exceed 256 characters")
	}
	if level != VerificationLevelOrb && level != VerificationLevelDevice {
		return nil, shared.NewDomainError("INVALID_VERIFICATION_LEVEL", "Verification level must be orb or device")
	}

	account := &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Provider:          ProviderWorldID,
		NullifierHash:     nullifierHash,
		Verified:          true,
		VerificationLevel: level,
	}

	account.AddDomainEvent(NewAccountCreatedEvent(account))

	return account, nil
}

// NewGoogleAccount creates an account backed by a Google sign-in
func NewGoogleAccount(googleUID, email, displayName string) (*Account, error) {
	googleUID = strings.TrimSpace(googleUID)
	if googleUID == "" {
		return nil, shared.NewDomainError("INVALID_GOOGLE_UID", "Google UID cannot be empty")
	}
	if len(googleUID) > 128 {
		return nil, shared.NewDomainError("INVALID_GOOGLE_UID", "Google UID cannot exceed 128 characters")
	}
	if email != "" {
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		email = strings.ToLower(strings.TrimSpace(email))
	}

	account := &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Provider:          ProviderGoogle,
		GoogleUID:         googleUID,
		Email:             email,
		DisplayName:       strings.TrimSpace(displayName),
	}

	account.AddDomainEvent(NewAccountCreatedEvent(account))

	return account, nil
}

// ExternalID returns the provider-scoped identifier for the account
func (a *Account) ExternalID() string {
	if a.Provider == ProviderWorldID {
		return a.NullifierHash
	}
	return a.GoogleUID
}

// SetDisplayName sets the account's display name
func (a *Account) SetDisplayName(displayName string) error {
	if len(displayName) > 200 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}

	a.DisplayName = strings.TrimSpace(displayName)
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// SetEmail sets the account's email address
func (a *Account) SetEmail(email string) error {
	email = strings.TrimSpace(email)
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
		email = strings.ToLower(email)
	}

	a.Email = email
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// SetAvatarURL sets the account's avatar URL
func (a *Account) SetAvatarURL(avatarURL string) error {
	if len(avatarURL) > 500 {
		return shared.NewDomainError("INVALID_AVATAR", "Avatar URL cannot exceed 500 characters")
	}

	a.AvatarURL = avatarURL
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// UpgradeVerification raises the World ID verification level.
// Device proofs can be upgraded to orb; the reverse is never allowed.
func (a *Account) UpgradeVerification(level VerificationLevel) error {
	if a.Provider != ProviderWorldID {
		return shared.NewDomainError("NOT_WORLD_ID", "Only World ID accounts carry a verification level")
	}
	if a.VerificationLevel == VerificationLevelOrb && level == VerificationLevelDevice {
		return shared.NewDomainError("VERIFICATION_DOWNGRADE", "Cannot downgrade from orb to device verification")
	}
	if level != VerificationLevelOrb && level != VerificationLevelDevice {
		return shared.NewDomainError("INVALID_VERIFICATION_LEVEL", "Verification level must be orb or device")
	}

	if a.VerificationLevel != level {
		a.VerificationLevel = level
		a.Verified = true
		a.UpdatedAt = time.Now()
		a.IncrementVersion()
		a.AddDomainEvent(NewAccountVerifiedEvent(a))
	}

	return nil
}

// RecordLogin records a successful sign-in
func (a *Account) RecordLogin() {
	now := time.Now()
	a.LastLoginAt = &now
	a.UpdatedAt = now
	a.IncrementVersion()
}

// IsOrbVerified returns true for orb-level World ID accounts
func (a *Account) IsOrbVerified() bool {
	return a.Provider == ProviderWorldID && a.VerificationLevel == VerificationLevelOrb
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}

	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}

	return nil
}
