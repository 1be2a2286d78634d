package referral

import (
	"context"

	"github.com/google/uuid"
)

// ClickRepository defines the interface for click persistence
type ClickRepository interface {
	// Create creates a new click record
	Create(ctx context.Context, click *Click) error

	// Update updates an existing click record
	Update(ctx context.Context, click *Click) error

	// FindByID finds a click by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Click, error)

	// FindRecentByMemberID returns the newest clicks for a member
	FindRecentByMemberID(ctx context.Context, memberID uuid.UUID, limit int) ([]*Click, error)

	// FindLatestUnconverted returns the newest unconverted click for a
	// member and visitor IP, used to close the loop on conversion
	FindLatestUnconverted(ctx context.Context, memberID uuid.UUID, ipAddress string) (*Click, error)

	// CountByMemberID returns the total clicks for a member
	CountByMemberID(ctx context.Context, memberID uuid.UUID) (int64, error)

	// CountConvertedByMemberID returns the converted clicks for a member
	CountConvertedByMemberID(ctx context.Context, memberID uuid.UUID) (int64, error)

	// Count returns the total number of clicks
	Count(ctx context.Context) (int64, error)
}
