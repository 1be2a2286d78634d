package referral

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/worldref/backend/internal/domain/referral"
	"github.com/worldref/backend/internal/domain/shared"
)

func newStats(
	memberRepo *MockMemberRepository,
	assignmentRepo *MockAssignmentRepository,
	clickRepo *MockClickRepository,
	visits *MockVisitCounter,
	cache StatsCache,
) *StatsService {
	cfg := StatsServiceConfig{CacheTTL: 30 * time.Second, RecentClickLimit: 10}
	return NewStatsService(memberRepo, assignmentRepo, clickRepo, visits, cache, cfg, zap.NewNop())
}

func TestStatsService_GetGlobalStats(t *testing.T) {
	ctx := context.Background()

	t.Run("computes totals and caches them", func(t *testing.T) {
		memberRepo := new(MockMemberRepository)
		assignmentRepo := new(MockAssignmentRepository)
		visits := new(MockVisitCounter)
		cache := new(MockStatsCache)
		service := newStats(memberRepo, assignmentRepo, new(MockClickRepository), visits, cache)

		cache.On("Get", ctx, "stats:global").Return("", false, nil)
		visits.On("Totals", ctx).Return(int64(120), int64(75), nil)
		assignmentRepo.On("Count", ctx).Return(int64(40), nil)
		memberRepo.On("CountActive", ctx).Return(int64(8), nil)
		cache.On("Set", ctx, "stats:global", mock.AnythingOfType("string"), 30*time.Second).Return(nil)

		stats, err := service.GetGlobalStats(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(120), stats.TotalVisitors)
		assert.Equal(t, int64(75), stats.UniqueVisitors)
		assert.Equal(t, int64(40), stats.TotalAssignments)
		assert.Equal(t, int64(8), stats.ActiveMembers)
		cache.AssertExpectations(t)
	})

	t.Run("serves a fresh cache entry without touching storage", func(t *testing.T) {
		memberRepo := new(MockMemberRepository)
		assignmentRepo := new(MockAssignmentRepository)
		visits := new(MockVisitCounter)
		cache := new(MockStatsCache)
		service := newStats(memberRepo, assignmentRepo, new(MockClickRepository), visits, cache)

		payload, err := json.Marshal(&GlobalStats{TotalVisitors: 99, UniqueVisitors: 50, TotalAssignments: 10, ActiveMembers: 3})
		require.NoError(t, err)
		cache.On("Get", ctx, "stats:global").Return(string(payload), true, nil)

		stats, err := service.GetGlobalStats(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(99), stats.TotalVisitors)
		visits.AssertNotCalled(t, "Totals", ctx)
		assignmentRepo.AssertNotCalled(t, "Count", ctx)
	})

	t.Run("corrupt cache entry falls back to recompute", func(t *testing.T) {
		memberRepo := new(MockMemberRepository)
		assignmentRepo := new(MockAssignmentRepository)
		visits := new(MockVisitCounter)
		cache := new(MockStatsCache)
		service := newStats(memberRepo, assignmentRepo, new(MockClickRepository), visits, cache)

		cache.On("Get", ctx, "stats:global").Return("{not json", true, nil)
		visits.On("Totals", ctx).Return(int64(5), int64(5), nil)
		assignmentRepo.On("Count", ctx).Return(int64(1), nil)
		memberRepo.On("CountActive", ctx).Return(int64(1), nil)
		cache.On("Set", ctx, "stats:global", mock.AnythingOfType("string"), 30*time.Second).Return(nil)

		stats, err := service.GetGlobalStats(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(5), stats.TotalVisitors)
	})

	t.Run("works without a cache", func(t *testing.T) {
		memberRepo := new(MockMemberRepository)
		assignmentRepo := new(MockAssignmentRepository)
		visits := new(MockVisitCounter)
		service := newStats(memberRepo, assignmentRepo, new(MockClickRepository), visits, nil)

		visits.On("Totals", ctx).Return(int64(1), int64(1), nil)
		assignmentRepo.On("Count", ctx).Return(int64(0), nil)
		memberRepo.On("CountActive", ctx).Return(int64(0), nil)

		stats, err := service.GetGlobalStats(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.TotalVisitors)
	})
}

func TestStatsService_GetUserStats(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates the member's performance", func(t *testing.T) {
		memberRepo := new(MockMemberRepository)
		assignmentRepo := new(MockAssignmentRepository)
		clickRepo := new(MockClickRepository)
		service := newStats(memberRepo, assignmentRepo, clickRepo, new(MockVisitCounter), nil)

		accountID := uuid.New()
		member, err := referral.NewMember(accountID, "Alice", "alice", "")
		require.NoError(t, err)
		member.CurrentAssignments = 4

		click, err := referral.NewClick(member.ID, "alice", "203.0.113.7", "")
		require.NoError(t, err)
		click.MarkConverted(nil)

		memberRepo.On("FindByAccountID", ctx, accountID).Return(member, nil)
		clickRepo.On("CountByMemberID", ctx, member.ID).Return(int64(20), nil)
		clickRepo.On("CountConvertedByMemberID", ctx, member.ID).Return(int64(5), nil)
		assignmentRepo.On("CountByMemberID", ctx, member.ID).Return(int64(4), nil)
		clickRepo.On("FindRecentByMemberID", ctx, member.ID, 10).Return([]*referral.Click{click}, nil)

		stats, err := service.GetUserStats(ctx, accountID)

		require.NoError(t, err)
		assert.Equal(t, int64(20), stats.TotalClicks)
		assert.Equal(t, int64(5), stats.TotalConversions)
		assert.InDelta(t, 25.0, stats.ConversionRate, 1e-9)
		assert.Equal(t, int64(4), stats.TotalAssigned)
		assert.Equal(t, 6, stats.RemainingSlots)
		require.Len(t, stats.RecentClicks, 1)
		assert.True(t, stats.RecentClicks[0].Converted)
	})

	t.Run("zero clicks means zero rate", func(t *testing.T) {
		memberRepo := new(MockMemberRepository)
		assignmentRepo := new(MockAssignmentRepository)
		clickRepo := new(MockClickRepository)
		service := newStats(memberRepo, assignmentRepo, clickRepo, new(MockVisitCounter), nil)

		accountID := uuid.New()
		member, err := referral.NewMember(accountID, "Alice", "alice", "")
		require.NoError(t, err)

		memberRepo.On("FindByAccountID", ctx, accountID).Return(member, nil)
		clickRepo.On("CountByMemberID", ctx, member.ID).Return(int64(0), nil)
		clickRepo.On("CountConvertedByMemberID", ctx, member.ID).Return(int64(0), nil)
		assignmentRepo.On("CountByMemberID", ctx, member.ID).Return(int64(0), nil)
		clickRepo.On("FindRecentByMemberID", ctx, member.ID, 10).Return([]*referral.Click{}, nil)

		stats, err := service.GetUserStats(ctx, accountID)

		require.NoError(t, err)
		assert.Zero(t, stats.ConversionRate)
	})

	t.Run("honors the configured click history limit", func(t *testing.T) {
		memberRepo := new(MockMemberRepository)
		assignmentRepo := new(MockAssignmentRepository)
		clickRepo := new(MockClickRepository)
		cfg := StatsServiceConfig{CacheTTL: time.Minute, RecentClickLimit: 3}
		service := NewStatsService(memberRepo, assignmentRepo, clickRepo, new(MockVisitCounter), nil, cfg, zap.NewNop())

		accountID := uuid.New()
		member, err := referral.NewMember(accountID, "Alice", "alice", "")
		require.NoError(t, err)

		memberRepo.On("FindByAccountID", ctx, accountID).Return(member, nil)
		clickRepo.On("CountByMemberID", ctx, member.ID).Return(int64(0), nil)
		clickRepo.On("CountConvertedByMemberID", ctx, member.ID).Return(int64(0), nil)
		assignmentRepo.On("CountByMemberID", ctx, member.ID).Return(int64(0), nil)
		clickRepo.On("FindRecentByMemberID", ctx, member.ID, 3).Return([]*referral.Click{}, nil)

		_, err = service.GetUserStats(ctx, accountID)

		require.NoError(t, err)
		clickRepo.AssertExpectations(t)
	})

	t.Run("account without a member record", func(t *testing.T) {
		memberRepo := new(MockMemberRepository)
		service := newStats(memberRepo, new(MockAssignmentRepository), new(MockClickRepository), new(MockVisitCounter), nil)

		accountID := uuid.New()
		memberRepo.On("FindByAccountID", ctx, accountID).Return(nil, shared.ErrNotFound)

		_, err := service.GetUserStats(ctx, accountID)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "MEMBER_NOT_FOUND", domainErr.Code)
	})
}
