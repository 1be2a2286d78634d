package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/worldref/backend/internal/domain/referral"
	"github.com/worldref/backend/internal/domain/shared"
	"github.com/worldref/backend/internal/infrastructure/persistence/models"
)

// GormMemberRepository implements MemberRepository using GORM
type GormMemberRepository struct {
	db *gorm.DB
}

// NewGormMemberRepository creates a new GormMemberRepository
func NewGormMemberRepository(db *gorm.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

// Create inserts a new member
func (r *GormMemberRepository) Create(ctx context.Context, member *referral.Member) error {
	var model models.MemberModel
	model.FromDomain(member)

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return translateMemberUniqueViolation(err)
		}
		return err
	}
	return nil
}

// Update saves an existing member
func (r *GormMemberRepository) Update(ctx context.Context, member *referral.Member) error {
	var model models.MemberModel
	model.FromDomain(member)

	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return translateMemberUniqueViolation(err)
		}
		return err
	}
	return nil
}

// translateMemberUniqueViolation maps a unique violation to the domain
// error the caller expects. The referral code index backs the CODE_TAKEN
// contract; any other duplicate is the one-member-per-account constraint.
func translateMemberUniqueViolation(err error) error {
	if strings.Contains(err.Error(), "idx_members_referral_code") {
		return shared.NewDomainError("CODE_TAKEN", "Referral code is already in use")
	}
	return shared.ErrAlreadyExists
}

// FindByID finds a member by its ID
func (r *GormMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*referral.Member, error) {
	var model models.MemberModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAccountID finds the member owned by an account
func (r *GormMemberRepository) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*referral.Member, error) {
	var model models.MemberModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a member by referral code
func (r *GormMemberRepository) FindByCode(ctx context.Context, code string) (*referral.Member, error) {
	var model models.MemberModel
	if err := r.db.WithContext(ctx).
		Where("referral_code = ?", code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns members matching the filter with the total count
func (r *GormMemberRepository) FindAll(ctx context.Context, filter referral.MemberFilter) ([]*referral.Member, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MemberModel{})

	if filter.Keyword != "" {
		keyword := "%" + filter.Keyword + "%"
		query = query.Where("name ILIKE ? OR referral_code ILIKE ?", keyword, keyword)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.MemberModel
	if err := query.
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	members := make([]*referral.Member, 0, len(rows))
	for i := range rows {
		members = append(members, rows[i].ToDomain())
	}
	return members, total, nil
}

// FindEligible returns active members with spare capacity, least loaded
// first. Creation time breaks ties so early joiners fill up first.
func (r *GormMemberRepository) FindEligible(ctx context.Context) ([]*referral.Member, error) {
	var rows []models.MemberModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND current_assignments < max_assignments", true).
		Order("current_assignments ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	members := make([]*referral.Member, 0, len(rows))
	for i := range rows {
		members = append(members, rows[i].ToDomain())
	}
	return members, nil
}

// ReserveSlot atomically claims one assignment slot. The guard in the
// WHERE clause makes concurrent reservations safe: only one of two
// racing requests can take the last slot.
func (r *GormMemberRepository) ReserveSlot(ctx context.Context, memberID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.MemberModel{}).
		Where("id = ? AND is_active = ? AND current_assignments < max_assignments", memberID, true).
		Updates(map[string]interface{}{
			"current_assignments": gorm.Expr("current_assignments + 1"),
			"updated_at":          time.Now(),
			"version":             gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReleaseSlot atomically returns one assignment slot. The guard keeps
// the count from going negative if a release is replayed.
func (r *GormMemberRepository) ReleaseSlot(ctx context.Context, memberID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.MemberModel{}).
		Where("id = ? AND current_assignments > 0", memberID).
		Updates(map[string]interface{}{
			"current_assignments": gorm.Expr("current_assignments - 1"),
			"updated_at":          time.Now(),
			"version":             gorm.Expr("version + 1"),
		}).Error
}

// ExistsByCode checks if a referral code is already taken
func (r *GormMemberRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.MemberModel{}).
		Where("referral_code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountActive returns the number of members in the rotation
func (r *GormMemberRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.MemberModel{}).
		Where("is_active = ?", true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormMemberRepository implements MemberRepository
var _ referral.MemberRepository = (*GormMemberRepository)(nil)
