package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/worldref/backend/internal/infrastructure/persistence/models"
	"github.com/worldref/backend/internal/infrastructure/telemetry"
)

// GormRotationMetricsProvider feeds the telemetry gauges from the
// members table.
type GormRotationMetricsProvider struct {
	db *gorm.DB
}

// NewGormRotationMetricsProvider creates a new GormRotationMetricsProvider
func NewGormRotationMetricsProvider(db *gorm.DB) *GormRotationMetricsProvider {
	return &GormRotationMetricsProvider{db: db}
}

// GetActiveMemberCount returns the number of members in the rotation
func (p *GormRotationMetricsProvider) GetActiveMemberCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).Model(&models.MemberModel{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}

// GetAvailableSlotCount returns the total spare capacity across active members
func (p *GormRotationMetricsProvider) GetAvailableSlotCount(ctx context.Context) (int64, error) {
	var total int64
	err := p.db.WithContext(ctx).Model(&models.MemberModel{}).
		Where("is_active = ? AND current_assignments < max_assignments", true).
		Select("COALESCE(SUM(max_assignments - current_assignments), 0)").
		Scan(&total).Error
	return total, err
}

// Ensure GormRotationMetricsProvider implements RotationMetricsProvider
var _ telemetry.RotationMetricsProvider = (*GormRotationMetricsProvider)(nil)
