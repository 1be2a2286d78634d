package referral

import (
	"context"
	"errors"
	"math/rand"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worldref/backend/internal/domain/referral"
	"github.com/worldref/backend/internal/domain/shared"
	"github.com/worldref/backend/internal/infrastructure/telemetry"
)

// VisitCounter tracks landing page traffic. Implementations keep a
// running total and a set of distinct visitor IPs.
type VisitCounter interface {
	// RecordVisit counts one page view for the given visitor IP
	RecordVisit(ctx context.Context, ipAddress string) error

	// Totals returns the running page view count and the distinct
	// visitor count
	Totals(ctx context.Context) (total int64, unique int64, err error)
}

// TrackerService records traffic: short link clicks, landing page
// visits, and click conversions.
type TrackerService struct {
	memberRepo     referral.MemberRepository
	clickRepo      referral.ClickRepository
	visits         VisitCounter
	metrics        *telemetry.ReferralMetrics
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewTrackerService creates a new tracker service
func NewTrackerService(
	memberRepo referral.MemberRepository,
	clickRepo referral.ClickRepository,
	visits VisitCounter,
	metrics *telemetry.ReferralMetrics,
	logger *zap.Logger,
) *TrackerService {
	return &TrackerService{
		memberRepo: memberRepo,
		clickRepo:  clickRepo,
		visits:     visits,
		metrics:    metrics,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher (optional)
func (s *TrackerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvents publishes and clears the aggregate's pending events
func (s *TrackerService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	// Publish events (errors are logged by the event bus, not propagated)
	_ = s.eventPublisher.Publish(ctx, events...)
	aggregate.ClearDomainEvents()
}

// RecordClick records a visit through a member's short link and returns
// where to send the visitor.
func (s *TrackerService) RecordClick(ctx context.Context, input RecordClickInput) (*RecordClickResult, error) {
	if input.ReferralCode == "" {
		return nil, shared.ErrInvalidReferralCode
	}
	if err := referral.ValidateReferralCode(input.ReferralCode); err != nil {
		return nil, shared.ErrInvalidReferralCode
	}

	member, err := s.memberRepo.FindByCode(ctx, input.ReferralCode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidReferralCode
		}
		s.logger.Error("Member lookup failed", zap.Error(err))
		return nil, shared.ErrStorageUnavailable
	}

	click, err := referral.NewClick(member.ID, member.ReferralCode, input.IPAddress, input.UserAgent)
	if err != nil {
		return nil, err
	}

	if err := s.clickRepo.Create(ctx, click); err != nil {
		s.logger.Error("Failed to record click", zap.Error(err))
		return nil, shared.ErrStorageUnavailable
	}

	s.publishEvents(ctx, click)
	s.metrics.RecordClick(ctx)
	s.logger.Info("Click recorded",
		zap.String("member_id", member.ID.String()),
		zap.String("referral_code", member.ReferralCode))

	return &RecordClickResult{
		ClickID:      click.ID,
		MemberID:     member.ID,
		ReferralLink: member.ReferralLink,
	}, nil
}

// MarkConversion flags a click as having led to a signup, optionally
// recording the account created from it. Converting the same click
// again only refreshes the timestamp.
func (s *TrackerService) MarkConversion(ctx context.Context, clickID uuid.UUID, newAccountID *uuid.UUID) error {
	click, err := s.clickRepo.FindByID(ctx, clickID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrClickNotFound
		}
		return shared.ErrStorageUnavailable
	}

	click.MarkConverted(newAccountID)

	if err := s.clickRepo.Update(ctx, click); err != nil {
		s.logger.Error("Failed to mark click converted", zap.Error(err))
		return shared.ErrStorageUnavailable
	}

	s.publishEvents(ctx, click)
	s.metrics.RecordConversion(ctx)
	s.logger.Info("Click converted", zap.String("click_id", clickID.String()))

	return nil
}

// RecordVisit counts one landing page view
func (s *TrackerService) RecordVisit(ctx context.Context, input RecordVisitInput) error {
	if err := s.visits.RecordVisit(ctx, input.IPAddress); err != nil {
		s.logger.Error("Failed to record visit", zap.Error(err))
		return shared.ErrStorageUnavailable
	}

	s.metrics.RecordVisit(ctx)
	return nil
}

// RandomReferral returns the referral of an arbitrary least-loaded
// eligible member and records the click. Unlike AssignNext it reserves
// no capacity; it is a browse affordance.
func (s *TrackerService) RandomReferral(ctx context.Context, input RandomReferralInput) (*RandomReferralResult, error) {
	members, err := s.memberRepo.FindEligible(ctx)
	if err != nil {
		s.logger.Error("Failed to load eligible members", zap.Error(err))
		return nil, shared.ErrStorageUnavailable
	}
	if len(members) == 0 {
		return nil, shared.ErrNoneAvailable
	}

	// FindEligible orders by load; pick randomly among the members tied
	// at the lowest assignment count so the two flows stay fair.
	leastLoaded := 1
	for leastLoaded < len(members) &&
		members[leastLoaded].CurrentAssignments == members[0].CurrentAssignments {
		leastLoaded++
	}
	member := members[rand.Intn(leastLoaded)]

	click, err := referral.NewClick(member.ID, member.ReferralCode, input.IPAddress, input.UserAgent)
	if err != nil {
		return nil, err
	}
	if err := s.clickRepo.Create(ctx, click); err != nil {
		s.logger.Error("Failed to record click", zap.Error(err))
		return nil, shared.ErrStorageUnavailable
	}

	s.publishEvents(ctx, click)
	s.metrics.RecordClick(ctx)

	return &RandomReferralResult{
		ClickID:      click.ID,
		MemberID:     member.ID,
		MemberName:   member.Name,
		ReferralCode: member.ReferralCode,
		ReferralLink: member.ReferralLink,
	}, nil
}
