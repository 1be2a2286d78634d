package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/worldref/backend/internal/domain/identity"
	"github.com/worldref/backend/internal/domain/shared"
	"github.com/worldref/backend/internal/infrastructure/persistence/models"
)

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// Create inserts a new account. A unique violation on the provider
// credential is reported as ErrAlreadyExists so the caller can re-read
// the account the concurrent request created.
func (r *GormAccountRepository) Create(ctx context.Context, account *identity.Account) error {
	var model models.AccountModel
	model.FromDomain(account)

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update saves an existing account
func (r *GormAccountRepository) Update(ctx context.Context, account *identity.Account) error {
	var model models.AccountModel
	model.FromDomain(account)

	return r.db.WithContext(ctx).Save(&model).Error
}

// FindByID finds an account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNullifierHash finds a World ID account by its nullifier hash
func (r *GormAccountRepository) FindByNullifierHash(ctx context.Context, nullifierHash string) (*identity.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("nullifier_hash = ?", nullifierHash).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByGoogleUID finds a Google account by its subject ID
func (r *GormAccountRepository) FindByGoogleUID(ctx context.Context, googleUID string) (*identity.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("google_uid = ?", googleUID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Count returns the total number of accounts
func (r *GormAccountRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AccountModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// isUniqueViolation reports whether the error is a unique constraint
// violation. GORM's translated error covers the common drivers; the
// string check covers drivers that bypass translation.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "UNIQUE constraint")
}

// Ensure GormAccountRepository implements AccountRepository
var _ identity.AccountRepository = (*GormAccountRepository)(nil)
