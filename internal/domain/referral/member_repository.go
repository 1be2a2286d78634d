package referral

import (
	"context"

	"github.com/google/uuid"
)

// MemberRepository defines the interface for member persistence
type MemberRepository interface {
	// Create creates a new member
	Create(ctx context.Context, member *Member) error

	// Update updates an existing member
	Update(ctx context.Context, member *Member) error

	// FindByID finds a member by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Member, error)

	// FindByAccountID finds the member owned by an account
	FindByAccountID(ctx context.Context, accountID uuid.UUID) (*Member, error)

	// FindByCode finds a member by referral code
	FindByCode(ctx context.Context, code string) (*Member, error)

	// FindAll returns members matching the filter with the total count
	FindAll(ctx context.Context, filter MemberFilter) ([]*Member, int64, error)

	// FindEligible returns active members with spare capacity, ordered
	// by current assignment count ascending, then by creation time
	FindEligible(ctx context.Context) ([]*Member, error)

	// ReserveSlot atomically claims one assignment slot. It returns
	// false when the member is inactive or already at capacity.
	ReserveSlot(ctx context.Context, memberID uuid.UUID) (bool, error)

	// ReleaseSlot atomically returns one assignment slot
	ReleaseSlot(ctx context.Context, memberID uuid.UUID) error

	// ExistsByCode checks if a referral code is already taken
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// CountActive returns the number of members in the rotation
	CountActive(ctx context.Context) (int64, error)
}

// MemberFilter contains filter options for querying members
type MemberFilter struct {
	// Search keyword for name or referral code
	Keyword string

	// Filter by active status
	IsActive *bool

	// Pagination
	Page     int
	PageSize int
}

// NewMemberFilter creates a filter with default pagination
func NewMemberFilter() MemberFilter {
	return MemberFilter{
		Page:     1,
		PageSize: 20,
	}
}

// WithKeyword sets the search keyword
func (f MemberFilter) WithKeyword(keyword string) MemberFilter {
	f.Keyword = keyword
	return f
}

// WithActive sets the active status filter
func (f MemberFilter) WithActive(active bool) MemberFilter {
	f.IsActive = &active
	return f
}

// WithPagination sets pagination parameters
func (f MemberFilter) WithPagination(page, pageSize int) MemberFilter {
	f.Page = page
	f.PageSize = pageSize
	return f
}

// Offset returns the offset for pagination
func (f MemberFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Limit returns the limit for pagination
func (f MemberFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
