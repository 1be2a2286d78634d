package identity

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/worldref/backend/internal/domain/identity"
	"github.com/worldref/backend/internal/domain/shared"
	"github.com/worldref/backend/internal/infrastructure/auth"
)

// ResolverService maps provider credentials onto accounts. A credential
// resolves to the same account for its entire lifetime; accounts are
// created on first sight and never merged.
type ResolverService struct {
	accountRepo    identity.AccountRepository
	jwtService     *auth.JWTService
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewResolverService creates a new resolver service
func NewResolverService(
	accountRepo identity.AccountRepository,
	jwtService *auth.JWTService,
	logger *zap.Logger,
) *ResolverService {
	return &ResolverService{
		accountRepo: accountRepo,
		jwtService:  jwtService,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher (optional)
func (s *ResolverService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvents publishes and clears the aggregate's pending events
func (s *ResolverService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
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

// ResolveOrCreate finds the account behind a provider credential,
// creating it on first sight, and issues an access token for it.
func (s *ResolverService) ResolveOrCreate(ctx context.Context, input ResolveInput) (*ResolveResult, error) {
	account, isNew, err := s.resolve(ctx, input)
	if err != nil {
		return nil, err
	}

	account.RecordLogin()
	if err := s.accountRepo.Update(ctx, account); err != nil {
		s.logger.Error("Failed to record login", zap.Error(err))
		// Login bookkeeping is best effort
	}
	s.publishEvents(ctx, account)

	token, err := s.jwtService.GenerateToken(auth.GenerateTokenInput{
		AccountID: account.ID,
		Provider:  string(account.Provider),
	})
	if err != nil {
		s.logger.Error("Failed to generate access token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate access token")
	}

	s.logger.Info("Account resolved",
		zap.String("account_id", account.ID.String()),
		zap.String("provider", string(account.Provider)),
		zap.Bool("is_new", isNew))

	return &ResolveResult{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.ExpiresAt,
		TokenType:   token.TokenType,
		IsNew:       isNew,
		Account:     toAccountInfo(account),
	}, nil
}

// GetAccount returns the account projection for an authenticated caller
func (s *ResolverService) GetAccount(ctx context.Context, input GetAccountInput) (*AccountInfo, error) {
	account, err := s.accountRepo.FindByID(ctx, input.AccountID)
	if err != nil {
		return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
	}

	info := toAccountInfo(account)
	return &info, nil
}

func (s *ResolverService) resolve(ctx context.Context, input ResolveInput) (*identity.Account, bool, error) {
	switch input.Provider {
	case identity.ProviderWorldID:
		return s.resolveWorldID(ctx, input)
	case identity.ProviderGoogle:
		return s.resolveGoogle(ctx, input)
	default:
		return nil, false, shared.NewDomainError("INVALID_PROVIDER", "Unknown identity provider")
	}
}

func (s *ResolverService) resolveWorldID(ctx context.Context, input ResolveInput) (*identity.Account, bool, error) {
	account, err := s.accountRepo.FindByNullifierHash(ctx, input.NullifierHash)
	if err == nil {
		// A stronger proof presented later upgrades the account
		if upgradeErr := account.UpgradeVerification(input.VerificationLevel); upgradeErr != nil &&
			input.VerificationLevel == identity.VerificationLevelOrb {
			return nil, false, upgradeErr
		}
		return account, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		s.logger.Error("Account lookup failed", zap.Error(err))
		return nil, false, shared.ErrStorageUnavailable
	}

	account, err = identity.NewWorldIDAccount(input.NullifierHash, input.VerificationLevel)
	if err != nil {
		return nil, false, err
	}

	return s.create(ctx, account, func() (*identity.Account, error) {
		return s.accountRepo.FindByNullifierHash(ctx, input.NullifierHash)
	})
}

func (s *ResolverService) resolveGoogle(ctx context.Context, input ResolveInput) (*identity.Account, bool, error) {
	account, err := s.accountRepo.FindByGoogleUID(ctx, input.GoogleUID)
	if err == nil {
		// Google is the source of truth for profile data, so a repeat
		// sign-in carries the freshest name and email
		if input.Email != "" && input.Email != account.Email {
			if emailErr := account.SetEmail(input.Email); emailErr != nil {
				return nil, false, emailErr
			}
		}
		if input.DisplayName != "" && input.DisplayName != account.DisplayName {
			if nameErr := account.SetDisplayName(input.DisplayName); nameErr != nil {
				return nil, false, nameErr
			}
		}
		return account, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		s.logger.Error("Account lookup failed", zap.Error(err))
		return nil, false, shared.ErrStorageUnavailable
	}

	account, err = identity.NewGoogleAccount(input.GoogleUID, input.Email, input.DisplayName)
	if err != nil {
		return nil, false, err
	}

	return s.create(ctx, account, func() (*identity.Account, error) {
		return s.accountRepo.FindByGoogleUID(ctx, input.GoogleUID)
	})
}

// create inserts the account, falling back to a re-read when a
// concurrent request won the insert race on the unique credential.
func (s *ResolverService) create(ctx context.Context, account *identity.Account, refind func() (*identity.Account, error)) (*identity.Account, bool, error) {
	err := s.accountRepo.Create(ctx, account)
	if err == nil {
		return account, true, nil
	}

	if errors.Is(err, shared.ErrAlreadyExists) {
		existing, findErr := refind()
		if findErr != nil {
			s.logger.Error("Credential resolved to no account after insert conflict", zap.Error(findErr))
			return nil, false, shared.ErrIdentityConflict
		}
		return existing, false, nil
	}

	s.logger.Error("Failed to create account", zap.Error(err))
	return nil, false, shared.ErrStorageUnavailable
}
