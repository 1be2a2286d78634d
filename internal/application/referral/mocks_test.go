package referral

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/worldref/backend/internal/domain/identity"
	"github.com/worldref/backend/internal/domain/referral"
)

// MockMemberRepository is a mock implementation of referral.MemberRepository
type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Create(ctx context.Context, member *referral.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepository) Update(ctx context.Context, member *referral.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*referral.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*referral.Member), args.Error(1)
}

func (m *MockMemberRepository) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*referral.Member, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*referral.Member), args.Error(1)
}

func (m *MockMemberRepository) FindByCode(ctx context.Context, code string) (*referral.Member, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*referral.Member), args.Error(1)
}

func (m *MockMemberRepository) FindAll(ctx context.Context, filter referral.MemberFilter) ([]*referral.Member, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*referral.Member), args.Get(1).(int64), args.Error(2)
}

func (m *MockMemberRepository) FindEligible(ctx context.Context) ([]*referral.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*referral.Member), args.Error(1)
}

func (m *MockMemberRepository) ReserveSlot(ctx context.Context, memberID uuid.UUID) (bool, error) {
	args := m.Called(ctx, memberID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMemberRepository) ReleaseSlot(ctx context.Context, memberID uuid.UUID) error {
	args := m.Called(ctx, memberID)
	return args.Error(0)
}

func (m *MockMemberRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockMemberRepository) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockAssignmentRepository is a mock implementation of referral.AssignmentRepository
type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) Create(ctx context.Context, assignment *referral.Assignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *MockAssignmentRepository) Update(ctx context.Context, assignment *referral.Assignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *MockAssignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*referral.Assignment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*referral.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) FindByMemberID(ctx context.Context, memberID uuid.UUID, limit int) ([]*referral.Assignment, error) {
	args := m.Called(ctx, memberID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*referral.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) FindPendingByIP(ctx context.Context, ipAddress string) (*referral.Assignment, error) {
	args := m.Called(ctx, ipAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*referral.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAssignmentRepository) CountByStatus(ctx context.Context, status referral.AssignmentStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAssignmentRepository) CountByMemberID(ctx context.Context, memberID uuid.UUID) (int64, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(int64), args.Error(1)
}

// MockClickRepository is a mock implementation of referral.ClickRepository
type MockClickRepository struct {
	mock.Mock
}

func (m *MockClickRepository) Create(ctx context.Context, click *referral.Click) error {
	args := m.Called(ctx, click)
	return args.Error(0)
}

func (m *MockClickRepository) Update(ctx context.Context, click *referral.Click) error {
	args := m.Called(ctx, click)
	return args.Error(0)
}

func (m *MockClickRepository) FindByID(ctx context.Context, id uuid.UUID) (*referral.Click, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*referral.Click), args.Error(1)
}

func (m *MockClickRepository) FindRecentByMemberID(ctx context.Context, memberID uuid.UUID, limit int) ([]*referral.Click, error) {
	args := m.Called(ctx, memberID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*referral.Click), args.Error(1)
}

func (m *MockClickRepository) FindLatestUnconverted(ctx context.Context, memberID uuid.UUID, ipAddress string) (*referral.Click, error) {
	args := m.Called(ctx, memberID, ipAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*referral.Click), args.Error(1)
}

func (m *MockClickRepository) CountByMemberID(ctx context.Context, memberID uuid.UUID) (int64, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClickRepository) CountConvertedByMemberID(ctx context.Context, memberID uuid.UUID) (int64, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClickRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockAccountRepository is a mock implementation of identity.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *identity.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) Update(ctx context.Context, account *identity.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByNullifierHash(ctx context.Context, nullifierHash string) (*identity.Account, error) {
	args := m.Called(ctx, nullifierHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByGoogleUID(ctx context.Context, googleUID string) (*identity.Account, error) {
	args := m.Called(ctx, googleUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Account), args.Error(1)
}

func (m *MockAccountRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockVisitCounter is a mock implementation of VisitCounter
type MockVisitCounter struct {
	mock.Mock
}

func (m *MockVisitCounter) RecordVisit(ctx context.Context, ipAddress string) error {
	args := m.Called(ctx, ipAddress)
	return args.Error(0)
}

func (m *MockVisitCounter) Totals(ctx context.Context) (int64, int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

// MockStatsCache is a mock implementation of StatsCache
type MockStatsCache struct {
	mock.Mock
}

func (m *MockStatsCache) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockStatsCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}
