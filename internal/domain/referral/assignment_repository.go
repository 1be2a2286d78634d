package referral

import (
	"context"

	"github.com/google/uuid"
)

// AssignmentRepository defines the interface for assignment persistence
type AssignmentRepository interface {
	// Create creates a new assignment
	Create(ctx context.Context, assignment *Assignment) error

	// Update updates an existing assignment
	Update(ctx context.Context, assignment *Assignment) error

	// FindByID finds an assignment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Assignment, error)

	// FindByMemberID returns assignments for a member, newest first
	FindByMemberID(ctx context.Context, memberID uuid.UUID, limit int) ([]*Assignment, error)

	// FindPendingByIP returns the most recent pending assignment for an
	// IP address, used to hand repeat visitors the same referral
	FindPendingByIP(ctx context.Context, ipAddress string) (*Assignment, error)

	// Count returns the total number of assignments
	Count(ctx context.Context) (int64, error)

	// CountByStatus returns the number of assignments in a given state
	CountByStatus(ctx context.Context, status AssignmentStatus) (int64, error)

	// CountByMemberID returns the number of assignments for a member
	CountByMemberID(ctx context.Context, memberID uuid.UUID) (int64, error)
}
