package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/worldref/backend/internal/domain/referral"
	"github.com/worldref/backend/internal/domain/shared"
	"github.com/worldref/backend/internal/infrastructure/persistence/models"
)

// GormClickRepository implements ClickRepository using GORM
type GormClickRepository struct {
	db *gorm.DB
}

// NewGormClickRepository creates a new GormClickRepository
func NewGormClickRepository(db *gorm.DB) *GormClickRepository {
	return &GormClickRepository{db: db}
}

// Create inserts a new click record
func (r *GormClickRepository) Create(ctx context.Context, click *referral.Click) error {
	var model models.ClickModel
	model.FromDomain(click)

	return r.db.WithContext(ctx).Create(&model).Error
}

// Update saves an existing click record
func (r *GormClickRepository) Update(ctx context.Context, click *referral.Click) error {
	var model models.ClickModel
	model.FromDomain(click)

	return r.db.WithContext(ctx).Save(&model).Error
}

// FindByID finds a click by its ID
func (r *GormClickRepository) FindByID(ctx context.Context, id uuid.UUID) (*referral.Click, error) {
	var model models.ClickModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindRecentByMemberID returns the newest clicks for a member
func (r *GormClickRepository) FindRecentByMemberID(ctx context.Context, memberID uuid.UUID, limit int) ([]*referral.Click, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []models.ClickModel
	if err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("clicked_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	clicks := make([]*referral.Click, 0, len(rows))
	for i := range rows {
		clicks = append(clicks, rows[i].ToDomain())
	}
	return clicks, nil
}

// FindLatestUnconverted returns the newest unconverted click for a
// member and visitor IP
func (r *GormClickRepository) FindLatestUnconverted(ctx context.Context, memberID uuid.UUID, ipAddress string) (*referral.Click, error) {
	var model models.ClickModel
	if err := r.db.WithContext(ctx).
		Where("member_id = ? AND ip_address = ? AND converted = ?", memberID, ipAddress, false).
		Order("clicked_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// CountByMemberID returns the total clicks for a member
func (r *GormClickRepository) CountByMemberID(ctx context.Context, memberID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ClickModel{}).
		Where("member_id = ?", memberID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountConvertedByMemberID returns the converted clicks for a member
func (r *GormClickRepository) CountConvertedByMemberID(ctx context.Context, memberID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ClickModel{}).
		Where("member_id = ? AND converted = ?", memberID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Count returns the total number of clicks
func (r *GormClickRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ClickModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormClickRepository implements ClickRepository
var _ referral.ClickRepository = (*GormClickRepository)(nil)
