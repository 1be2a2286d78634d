package referral

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worldref/backend/internal/domain/identity"
	"github.com/worldref/backend/internal/domain/referral"
	"github.com/worldref/backend/internal/domain/shared"
)

// DirectoryService manages the member roster: who is in the rotation,
// under what code, and with how much capacity.
type DirectoryService struct {
	memberRepo     referral.MemberRepository
	accountRepo    identity.AccountRepository
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewDirectoryService creates a new directory service
func NewDirectoryService(
	memberRepo referral.MemberRepository,
	accountRepo identity.AccountRepository,
	logger *zap.Logger,
) *DirectoryService {
	return &DirectoryService{
		memberRepo:  memberRepo,
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher (optional)
func (s *DirectoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvents publishes and clears the aggregate's pending events
func (s *DirectoryService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
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

// ListMembers returns a page of the member directory
func (s *DirectoryService) ListMembers(ctx context.Context, input ListMembersInput) (*ListMembersResult, error) {
	filter := referral.NewMemberFilter().
		WithKeyword(input.Keyword).
		WithPagination(input.Page, input.PageSize)
	if input.IsActive != nil {
		filter = filter.WithActive(*input.IsActive)
	}

	members, total, err := s.memberRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list members", zap.Error(err))
		return nil, shared.ErrStorageUnavailable
	}

	infos := make([]MemberInfo, 0, len(members))
	for _, m := range members {
		infos = append(infos, toMemberInfo(m))
	}

	return &ListMembersResult{
		Members: infos,
		Total:   total,
		Page:    filter.Page,
	}, nil
}

// ListEligible returns the members currently able to take visitors,
// least loaded first.
func (s *DirectoryService) ListEligible(ctx context.Context) ([]MemberInfo, error) {
	members, err := s.memberRepo.FindEligible(ctx)
	if err != nil {
		s.logger.Error("Failed to list eligible members", zap.Error(err))
		return nil, shared.ErrStorageUnavailable
	}

	infos := make([]MemberInfo, 0, len(members))
	for _, m := range members {
		infos = append(infos, toMemberInfo(m))
	}
	return infos, nil
}

// GetMember returns one member by ID
func (s *DirectoryService) GetMember(ctx context.Context, memberID uuid.UUID) (*MemberInfo, error) {
	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("MEMBER_NOT_FOUND", "Member not found")
		}
		return nil, shared.ErrStorageUnavailable
	}

	info := toMemberInfo(member)
	return &info, nil
}

// GetMemberByAccount returns the member owned by an account
func (s *DirectoryService) GetMemberByAccount(ctx context.Context, accountID uuid.UUID) (*MemberInfo, error) {
	member, err := s.memberRepo.FindByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("MEMBER_NOT_FOUND", "Member not found")
		}
		return nil, shared.ErrStorageUnavailable
	}

	info := toMemberInfo(member)
	return &info, nil
}

// SetReferralCode upserts the caller's referral code. A member record is
// created lazily on first use; setting an empty code takes the member
// out of the rotation without deleting history.
func (s *DirectoryService) SetReferralCode(ctx context.Context, input SetReferralCodeInput) (*MemberInfo, error) {
	if input.ReferralCode != "" {
		if err := referral.ValidateReferralCode(input.ReferralCode); err != nil {
			return nil, err
		}
	}

	member, err := s.memberRepo.FindByAccountID(ctx, input.AccountID)
	switch {
	case err == nil:
		if input.ReferralCode != "" && input.ReferralCode != member.ReferralCode {
			if takenErr := s.codeTakenByOther(ctx, input.ReferralCode, member.ID); takenErr != nil {
				return nil, takenErr
			}
		}
		if err := member.ChangeCode(input.ReferralCode, input.ReferralLink); err != nil {
			return nil, err
		}
		if input.Name != "" {
			member.Name = input.Name
		}
		if err := s.memberRepo.Update(ctx, member); err != nil {
			s.logger.Error("Failed to update member code", zap.Error(err))
			return nil, shared.ErrStorageUnavailable
		}

	case errors.Is(err, shared.ErrNotFound):
		name := input.Name
		if name == "" {
			name = s.fallbackName(ctx, input.AccountID)
		}
		if input.ReferralCode != "" {
			if takenErr := s.codeTakenByOther(ctx, input.ReferralCode, uuid.Nil); takenErr != nil {
				return nil, takenErr
			}
		}
		member, err = referral.NewMember(input.AccountID, name, input.ReferralCode, input.ReferralLink)
		if err != nil {
			return nil, err
		}
		if err := s.memberRepo.Create(ctx, member); err != nil {
			s.logger.Error("Failed to create member", zap.Error(err))
			return nil, shared.ErrStorageUnavailable
		}

	default:
		s.logger.Error("Member lookup failed", zap.Error(err))
		return nil, shared.ErrStorageUnavailable
	}

	s.publishEvents(ctx, member)
	s.logger.Info("Referral code set",
		zap.String("member_id", member.ID.String()),
		zap.String("code", member.ReferralCode))

	info := toMemberInfo(member)
	return &info, nil
}

// SetCapacity changes a member's assignment cap
func (s *DirectoryService) SetCapacity(ctx context.Context, input SetCapacityInput) (*MemberInfo, error) {
	member, err := s.memberRepo.FindByID(ctx, input.MemberID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("MEMBER_NOT_FOUND", "Member not found")
		}
		return nil, shared.ErrStorageUnavailable
	}

	if err := member.SetCapacity(input.MaxAssignments); err != nil {
		return nil, err
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		s.logger.Error("Failed to update member capacity", zap.Error(err))
		return nil, shared.ErrStorageUnavailable
	}

	s.publishEvents(ctx, member)
	s.logger.Info("Member capacity changed",
		zap.String("member_id", member.ID.String()),
		zap.Int("max_assignments", member.MaxAssignments))

	info := toMemberInfo(member)
	return &info, nil
}

// ActivateMember puts a member back into the rotation
func (s *DirectoryService) ActivateMember(ctx context.Context, memberID uuid.UUID) error {
	return s.setActive(ctx, memberID, true)
}

// DeactivateMember removes a member from the rotation
func (s *DirectoryService) DeactivateMember(ctx context.Context, memberID uuid.UUID) error {
	return s.setActive(ctx, memberID, false)
}

func (s *DirectoryService) setActive(ctx context.Context, memberID uuid.UUID, active bool) error {
	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("MEMBER_NOT_FOUND", "Member not found")
		}
		return shared.ErrStorageUnavailable
	}

	if active {
		err = member.Activate()
	} else {
		err = member.Deactivate()
	}
	if err != nil {
		return err
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		s.logger.Error("Failed to update member status", zap.Error(err))
		return shared.ErrStorageUnavailable
	}

	s.publishEvents(ctx, member)
	s.logger.Info("Member status changed",
		zap.String("member_id", memberID.String()),
		zap.Bool("is_active", active))

	return nil
}

func (s *DirectoryService) codeTakenByOther(ctx context.Context, code string, selfID uuid.UUID) error {
	existing, err := s.memberRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return shared.ErrStorageUnavailable
	}
	if existing.ID != selfID {
		return shared.NewDomainError("CODE_TAKEN", "Referral code is already in use")
	}
	return nil
}

func (s *DirectoryService) fallbackName(ctx context.Context, accountID uuid.UUID) string {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return "Member"
	}
	if account.DisplayName != "" {
		return account.DisplayName
	}
	if account.Email != "" {
		return account.Email
	}
	return "Member"
}
