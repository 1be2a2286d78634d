package referral

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worldref/backend/internal/domain/referral"
	"github.com/worldref/backend/internal/domain/shared"
)

// StatsCache caches expensive aggregates. Implementations are free to
// lose entries at any time; the stats service treats a miss as a reason
// to recompute, never as an error.
type StatsCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

const globalStatsCacheKey = "stats:global"

// StatsServiceConfig contains configuration for the stats service
type StatsServiceConfig struct {
	CacheTTL         time.Duration // how long the global aggregate stays cached
	RecentClickLimit int           // click history returned with member stats
}

// DefaultStatsServiceConfig returns default configuration
func DefaultStatsServiceConfig() StatsServiceConfig {
	return StatsServiceConfig{
		CacheTTL:         time.Minute,
		RecentClickLimit: 10,
	}
}

// StatsService aggregates system-wide and per-member referral figures.
type StatsService struct {
	memberRepo     referral.MemberRepository
	assignmentRepo referral.AssignmentRepository
	clickRepo      referral.ClickRepository
	visits         VisitCounter
	cache          StatsCache
	config         StatsServiceConfig
	logger         *zap.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(
	memberRepo referral.MemberRepository,
	assignmentRepo referral.AssignmentRepository,
	clickRepo referral.ClickRepository,
	visits VisitCounter,
	cache StatsCache,
	config StatsServiceConfig,
	logger *zap.Logger,
) *StatsService {
	if config.RecentClickLimit <= 0 {
		config.RecentClickLimit = DefaultStatsServiceConfig().RecentClickLimit
	}
	return &StatsService{
		memberRepo:     memberRepo,
		assignmentRepo: assignmentRepo,
		clickRepo:      clickRepo,
		visits:         visits,
		cache:          cache,
		config:         config,
		logger:         logger,
	}
}

// GetGlobalStats returns system-wide totals, served from cache when fresh
func (s *StatsService) GetGlobalStats(ctx context.Context) (*GlobalStats, error) {
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, globalStatsCacheKey); err == nil && ok {
			var stats GlobalStats
			if jsonErr := json.Unmarshal([]byte(cached), &stats); jsonErr == nil {
				return &stats, nil
			}
		}
	}

	total, unique, err := s.visits.Totals(ctx)
	if err != nil {
		s.logger.Error("Failed to read visit totals", zap.Error(err))
		return nil, shared.ErrStorageUnavailable
	}

	assignments, err := s.assignmentRepo.Count(ctx)
	if err != nil {
		return nil, shared.ErrStorageUnavailable
	}

	activeMembers, err := s.memberRepo.CountActive(ctx)
	if err != nil {
		return nil, shared.ErrStorageUnavailable
	}

	stats := &GlobalStats{
		TotalVisitors:    total,
		UniqueVisitors:   unique,
		TotalAssignments: assignments,
		ActiveMembers:    activeMembers,
	}

	if s.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if cacheErr := s.cache.Set(ctx, globalStatsCacheKey, string(payload), s.config.CacheTTL); cacheErr != nil {
				s.logger.Warn("Failed to cache global stats", zap.Error(cacheErr))
			}
		}
	}

	return stats, nil
}

// GetUserStats returns the referral performance of the member owned by
// an account.
func (s *StatsService) GetUserStats(ctx context.Context, accountID uuid.UUID) (*UserStats, error) {
	member, err := s.memberRepo.FindByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("MEMBER_NOT_FOUND", "Member not found")
		}
		return nil, shared.ErrStorageUnavailable
	}

	totalClicks, err := s.clickRepo.CountByMemberID(ctx, member.ID)
	if err != nil {
		return nil, shared.ErrStorageUnavailable
	}

	conversions, err := s.clickRepo.CountConvertedByMemberID(ctx, member.ID)
	if err != nil {
		return nil, shared.ErrStorageUnavailable
	}

	assigned, err := s.assignmentRepo.CountByMemberID(ctx, member.ID)
	if err != nil {
		return nil, shared.ErrStorageUnavailable
	}

	recent, err := s.clickRepo.FindRecentByMemberID(ctx, member.ID, s.config.RecentClickLimit)
	if err != nil {
		return nil, shared.ErrStorageUnavailable
	}

	recentInfos := make([]ClickInfo, 0, len(recent))
	for _, c := range recent {
		recentInfos = append(recentInfos, ClickInfo{
			ID:          c.ID,
			ClickedAt:   c.ClickedAt,
			Converted:   c.Converted,
			ConvertedAt: c.ConvertedAt,
		})
	}

	// Percentage of clicks that converted. No clicks means zero, not NaN.
	var rate float64
	if totalClicks > 0 {
		rate = float64(conversions) / float64(totalClicks) * 100
	}

	return &UserStats{
		MemberID:         member.ID,
		TotalClicks:      totalClicks,
		TotalConversions: conversions,
		ConversionRate:   rate,
		TotalAssigned:    assigned,
		RemainingSlots:   member.RemainingSlots(),
		TotalEarned:      member.TotalEarned,
		RecentClicks:     recentInfos,
	}, nil
}
