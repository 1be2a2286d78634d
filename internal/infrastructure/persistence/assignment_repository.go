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

// GormAssignmentRepository implements AssignmentRepository using GORM
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewGormAssignmentRepository creates a new GormAssignmentRepository
func NewGormAssignmentRepository(db *gorm.DB) *GormAssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// Create inserts a new assignment
func (r *GormAssignmentRepository) Create(ctx context.Context, assignment *referral.Assignment) error {
	var model models.AssignmentModel
	model.FromDomain(assignment)

	return r.db.WithContext(ctx).Create(&model).Error
}

// Update saves an existing assignment
func (r *GormAssignmentRepository) Update(ctx context.Context, assignment *referral.Assignment) error {
	var model models.AssignmentModel
	model.FromDomain(assignment)

	return r.db.WithContext(ctx).Save(&model).Error
}

// FindByID finds an assignment by its ID
func (r *GormAssignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*referral.Assignment, error) {
	var model models.AssignmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByMemberID returns assignments for a member, newest first
func (r *GormAssignmentRepository) FindByMemberID(ctx context.Context, memberID uuid.UUID, limit int) ([]*referral.Assignment, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []models.AssignmentModel
	if err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("assigned_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	assignments := make([]*referral.Assignment, 0, len(rows))
	for i := range rows {
		assignments = append(assignments, rows[i].ToDomain())
	}
	return assignments, nil
}

// FindPendingByIP returns the most recent pending assignment for an IP
// address. Used to hand repeat visitors the referral they already have.
func (r *GormAssignmentRepository) FindPendingByIP(ctx context.Context, ipAddress string) (*referral.Assignment, error) {
	var model models.AssignmentModel
	if err := r.db.WithContext(ctx).
		Where("ip_address = ? AND status = ?", ipAddress, string(referral.AssignmentStatusPending)).
		Order("assigned_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Count returns the total number of assignments
func (r *GormAssignmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AssignmentModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus returns the number of assignments in a given state
func (r *GormAssignmentRepository) CountByStatus(ctx context.Context, status referral.AssignmentStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AssignmentModel{}).
		Where("status = ?", string(status)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByMemberID returns the number of assignments for a member
func (r *GormAssignmentRepository) CountByMemberID(ctx context.Context, memberID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AssignmentModel{}).
		Where("member_id = ?", memberID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormAssignmentRepository implements AssignmentRepository
var _ referral.AssignmentRepository = (*GormAssignmentRepository)(nil)
