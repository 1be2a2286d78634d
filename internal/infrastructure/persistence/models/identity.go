package models

import (
	"time"

	"github.com/worldref/backend/internal/domain/identity"
	"github.com/worldref/backend/internal/domain/shared"
)

// AccountModel is the persistence model for the Account domain entity.
// The provider credential columns carry partial unique indexes so that
// two concurrent sign-ins with the same credential cannot both insert.
type AccountModel struct {
	AggregateModel
	Provider          string     `gorm:"type:varchar(20);not null;index"`
	NullifierHash     *string    `gorm:"type:varchar(256);uniqueIndex"`
	Verified          bool       `gorm:"not null;default:false"`
	VerificationLevel string     `gorm:"type:varchar(20)"`
	GoogleUID         *string    `gorm:"type:varchar(128);uniqueIndex"`
	Email             string     `gorm:"type:varchar(200)"`
	DisplayName       string     `gorm:"type:varchar(200)"`
	AvatarURL         string     `gorm:"type:varchar(500)"`
	LastLoginAt       *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account entity
func (m *AccountModel) ToDomain() *identity.Account {
	account := &identity.Account{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Provider:          identity.Provider(m.Provider),
		Verified:          m.Verified,
		VerificationLevel: identity.VerificationLevel(m.VerificationLevel),
		Email:             m.Email,
		DisplayName:       m.DisplayName,
		AvatarURL:         m.AvatarURL,
		LastLoginAt:       m.LastLoginAt,
	}
	if m.NullifierHash != nil {
		account.NullifierHash = *m.NullifierHash
	}
	if m.GoogleUID != nil {
		account.GoogleUID = *m.GoogleUID
	}
	return account
}

// FromDomain populates the persistence model from a domain Account entity.
// Empty credentials are stored as NULL so the partial unique indexes only
// bind the credential the provider actually uses.
func (m *AccountModel) FromDomain(a *identity.Account) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.Provider = string(a.Provider)
	m.Verified = a.Verified
	m.VerificationLevel = string(a.VerificationLevel)
	m.Email = a.Email
	m.DisplayName = a.DisplayName
	m.AvatarURL = a.AvatarURL
	m.LastLoginAt = a.LastLoginAt

	m.NullifierHash = nil
	if a.NullifierHash != "" {
		hash := a.NullifierHash
		m.NullifierHash = &hash
	}
	m.GoogleUID = nil
	if a.GoogleUID != "" {
		uid := a.GoogleUID
		m.GoogleUID = &uid
	}
}
