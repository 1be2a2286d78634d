package persistence

import (
	"context"

	"gorm.io/gorm"

	appreferral "github.com/worldref/backend/internal/application/referral"
	"github.com/worldref/backend/internal/domain/referral"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appreferral.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// MemberRepo returns the member repository scoped to the current transaction.
func (r *gormTransactionalRepositories) MemberRepo() referral.MemberRepository {
	return NewGormMemberRepository(r.tx)
}

// AssignmentRepo returns the assignment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) AssignmentRepo() referral.AssignmentRepository {
	return NewGormAssignmentRepository(r.tx)
}

// ClickRepo returns the click repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ClickRepo() referral.ClickRepository {
	return NewGormClickRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appreferral.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appreferral.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
