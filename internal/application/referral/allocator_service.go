package referral

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/worldref/backend/internal/domain/referral"
	"github.com/worldref/backend/internal/domain/shared"
	"github.com/worldref/backend/internal/infrastructure/telemetry"
)

// AllocatorServiceConfig contains configuration for the allocator
type AllocatorServiceConfig struct {
	RewardAmount decimal.Decimal // credited to the member per completed assignment
	ReuseWindow  time.Duration   // repeat visitors within this window keep their assignment
}

// DefaultAllocatorServiceConfig returns default configuration
func DefaultAllocatorServiceConfig() AllocatorServiceConfig {
	return AllocatorServiceConfig{
		RewardAmount: decimal.NewFromInt(50),
		ReuseWindow:  24 * time.Hour,
	}
}

// AllocatorService hands each visitor the referral of the least loaded
// eligible member. Allocation runs in a transaction so the member's slot
// count and the assignment row always move together.
type AllocatorService struct {
	scope          TransactionScope
	config         AllocatorServiceConfig
	metrics        *telemetry.ReferralMetrics
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewAllocatorService creates a new allocator service
func NewAllocatorService(
	scope TransactionScope,
	config AllocatorServiceConfig,
	metrics *telemetry.ReferralMetrics,
	logger *zap.Logger,
) *AllocatorService {
	return &AllocatorService{
		scope:   scope,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher (optional)
func (s *AllocatorService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvents publishes and clears the aggregate's pending events
func (s *AllocatorService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
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

// AssignNext assigns the visitor to the eligible member with the fewest
// current assignments, breaking ties by who joined first. A visitor who
// already holds a recent pending assignment gets the same referral back.
func (s *AllocatorService) AssignNext(ctx context.Context, input AssignInput) (*AssignResult, error) {
	var result *AssignResult
	var created *referral.Assignment

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		// An empty address carries no identity, so there is nothing to
		// hand back and every such visitor gets a fresh assignment.
		if input.IPAddress != "" {
			if reused := s.findReusable(ctx, repos, input.IPAddress); reused != nil {
				result = reused
				return nil
			}
		}

		members, err := repos.MemberRepo().FindEligible(ctx)
		if err != nil {
			s.logger.Error("Failed to load eligible members", zap.Error(err))
			return shared.ErrStorageUnavailable
		}
		if len(members) == 0 {
			return shared.ErrNoneAvailable
		}

		for _, member := range members {
			reserved, err := repos.MemberRepo().ReserveSlot(ctx, member.ID)
			if err != nil {
				s.logger.Error("Slot reservation failed", zap.Error(err))
				return shared.ErrStorageUnavailable
			}
			if !reserved {
				// Lost the race for this member, try the next one
				continue
			}

			assignment, err := referral.NewAssignment(member.ID, member.ReferralCode, input.IPAddress, input.UserAgent)
			if err != nil {
				return err
			}
			if err := repos.AssignmentRepo().Create(ctx, assignment); err != nil {
				s.logger.Error("Failed to create assignment", zap.Error(err))
				return shared.ErrStorageUnavailable
			}

			created = assignment
			result = &AssignResult{
				AssignmentID: assignment.ID,
				MemberID:     member.ID,
				MemberName:   member.Name,
				ReferralCode: member.ReferralCode,
				ReferralLink: member.ReferralLink,
			}
			return nil
		}

		return shared.ErrNoneAvailable
	})

	if err != nil {
		if errors.Is(err, shared.ErrNoneAvailable) {
			s.metrics.RecordAssignment(ctx, telemetry.AssignmentOutcomeExhausted)
			s.logger.Warn("No members available for assignment", zap.String("ip", input.IPAddress))
		}
		return nil, err
	}

	if result.Reused {
		s.metrics.RecordAssignment(ctx, telemetry.AssignmentOutcomeReused)
	} else {
		s.publishEvents(ctx, created)
		s.metrics.RecordAssignment(ctx, telemetry.AssignmentOutcomeAssigned)
		s.logger.Info("Visitor assigned",
			zap.String("member_id", result.MemberID.String()),
			zap.String("referral_code", result.ReferralCode))
	}

	return result, nil
}

// CompleteAssignment marks an assignment converted and credits the
// member's reward in the same transaction.
func (s *AllocatorService) CompleteAssignment(ctx context.Context, input CompleteAssignmentInput) (*CompleteAssignmentResult, error) {
	var result *CompleteAssignmentResult
	var completed *referral.Assignment
	var credited *referral.Member
	var converted *referral.Click

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		assignment, err := repos.AssignmentRepo().FindByID(ctx, input.AssignmentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("ASSIGNMENT_NOT_FOUND", "Assignment not found")
			}
			return shared.ErrStorageUnavailable
		}

		if err := assignment.Complete(input.AccountID, s.config.RewardAmount); err != nil {
			return err
		}

		member, err := repos.MemberRepo().FindByID(ctx, assignment.MemberID)
		if err != nil {
			s.logger.Error("Assignment references missing member",
				zap.String("assignment_id", assignment.ID.String()),
				zap.Error(err))
			return shared.ErrStorageUnavailable
		}

		if err := member.CreditEarnings(s.config.RewardAmount); err != nil {
			return err
		}

		if err := repos.MemberRepo().Update(ctx, member); err != nil {
			return shared.ErrStorageUnavailable
		}
		if err := repos.AssignmentRepo().Update(ctx, assignment); err != nil {
			return shared.ErrStorageUnavailable
		}

		// The visitor's click on this member's referral, if one was
		// recorded, converts in the same transaction.
		if assignment.IPAddress != "" {
			click, err := repos.ClickRepo().FindLatestUnconverted(ctx, assignment.MemberID, assignment.IPAddress)
			switch {
			case err == nil:
				click.MarkConverted(input.AccountID)
				if err := repos.ClickRepo().Update(ctx, click); err != nil {
					return shared.ErrStorageUnavailable
				}
				converted = click
			case !errors.Is(err, shared.ErrNotFound):
				return shared.ErrStorageUnavailable
			}
		}

		completed = assignment
		credited = member
		result = &CompleteAssignmentResult{
			AssignmentID: assignment.ID,
			MemberID:     member.ID,
			Reward:       s.config.RewardAmount,
			TotalEarned:  member.TotalEarned,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, completed)
	s.publishEvents(ctx, credited)
	if converted != nil {
		s.publishEvents(ctx, converted)
	}
	s.metrics.RecordConversion(ctx)
	s.logger.Info("Assignment completed",
		zap.String("assignment_id", result.AssignmentID.String()),
		zap.String("member_id", result.MemberID.String()),
		zap.String("reward", result.Reward.String()))

	return result, nil
}

// FailAssignment abandons a pending assignment and releases its slot
func (s *AllocatorService) FailAssignment(ctx context.Context, assignmentID uuid.UUID) error {
	var failed *referral.Assignment

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		assignment, err := repos.AssignmentRepo().FindByID(ctx, assignmentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("ASSIGNMENT_NOT_FOUND", "Assignment not found")
			}
			return shared.ErrStorageUnavailable
		}

		if err := assignment.Fail(); err != nil {
			return err
		}

		if err := repos.MemberRepo().ReleaseSlot(ctx, assignment.MemberID); err != nil {
			return shared.ErrStorageUnavailable
		}
		if err := repos.AssignmentRepo().Update(ctx, assignment); err != nil {
			return shared.ErrStorageUnavailable
		}
		failed = assignment
		return nil
	})

	if err != nil {
		return err
	}

	s.publishEvents(ctx, failed)
	s.metrics.RecordAssignment(ctx, telemetry.AssignmentOutcomeFailed)
	s.logger.Info("Assignment failed, slot released", zap.String("assignment_id", assignmentID.String()))

	return nil
}

func (s *AllocatorService) findReusable(ctx context.Context, repos TransactionalRepositories, ipAddress string) *AssignResult {
	assignment, err := repos.AssignmentRepo().FindPendingByIP(ctx, ipAddress)
	if err != nil {
		return nil
	}
	if time.Since(assignment.AssignedAt) > s.config.ReuseWindow {
		return nil
	}

	member, err := repos.MemberRepo().FindByID(ctx, assignment.MemberID)
	if err != nil {
		return nil
	}

	return &AssignResult{
		AssignmentID: assignment.ID,
		MemberID:     member.ID,
		MemberName:   member.Name,
		ReferralCode: assignment.ReferralCode,
		ReferralLink: member.ReferralLink,
		Reused:       true,
	}
}
