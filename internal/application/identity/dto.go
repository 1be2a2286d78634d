package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/worldref/backend/internal/domain/identity"
)

// ResolveInput carries the provider credential presented at sign-in
type ResolveInput struct {
	Provider          identity.Provider
	NullifierHash     string
	VerificationLevel identity.VerificationLevel
	GoogleUID         string
	Email             string
	DisplayName       string
}

// GetAccountInput identifies the account to load
type GetAccountInput struct {
	AccountID uuid.UUID
}

// ResolveResult is returned after an account is resolved or created
type ResolveResult struct {
	AccessToken string
	ExpiresAt   time.Time
	TokenType   string
	IsNew       bool
	Account     AccountInfo
}

// AccountInfo is the account projection handed to the interface layer
type AccountInfo struct {
	ID                uuid.UUID
	Provider          identity.Provider
	Verified          bool
	VerificationLevel identity.VerificationLevel
	Email             string
	DisplayName       string
	AvatarURL         string
	CreatedAt         time.Time
}

func toAccountInfo(account *identity.Account) AccountInfo {
	return AccountInfo{
		ID:                account.ID,
		Provider:          account.Provider,
		Verified:          account.Verified,
		VerificationLevel: account.VerificationLevel,
		Email:             account.Email,
		DisplayName:       account.DisplayName,
		AvatarURL:         account.AvatarURL,
		CreatedAt:         account.CreatedAt,
	}
}
