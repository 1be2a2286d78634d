package referral

import (
	"context"

	"github.com/worldref/backend/internal/domain/referral"
)

// TransactionScope provides transactional access to referral repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the referral repositories
// within a transaction. All repositories returned share the same
// underlying database transaction.
//
// Slot accounting notes:
//   - MemberRepo.ReserveSlot is a guarded update: it only claims a slot
//     while the member is active and under capacity, so two concurrent
//     allocations can never both take the last slot.
//   - Assignment rows and the member's slot count must change together,
//     which is why allocation always runs inside a scope.
type TransactionalRepositories interface {
	// MemberRepo returns the member repository scoped to the current transaction
	MemberRepo() referral.MemberRepository
	// AssignmentRepo returns the assignment repository scoped to the current transaction
	AssignmentRepo() referral.AssignmentRepository
	// ClickRepo returns the click repository scoped to the current transaction
	ClickRepo() referral.ClickRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing.
type NoOpTransactionScope struct {
	memberRepo     referral.MemberRepository
	assignmentRepo referral.AssignmentRepository
	clickRepo      referral.ClickRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	memberRepo referral.MemberRepository,
	assignmentRepo referral.AssignmentRepository,
	clickRepo referral.ClickRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		memberRepo:     memberRepo,
		assignmentRepo: assignmentRepo,
		clickRepo:      clickRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// MemberRepo returns the member repository.
func (s *NoOpTransactionScope) MemberRepo() referral.MemberRepository {
	return s.memberRepo
}

// AssignmentRepo returns the assignment repository.
func (s *NoOpTransactionScope) AssignmentRepo() referral.AssignmentRepository {
	return s.assignmentRepo
}

// ClickRepo returns the click repository.
func (s *NoOpTransactionScope) ClickRepo() referral.ClickRepository {
	return s.clickRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
