package identity

import (
	"context"

	"github.com/google/uuid"
)

// AccountRepository defines the interface for account persistence
type AccountRepository interface {
	// Create creates a new account
	Create(ctx context.Context, account *Account) error

	// Update updates an existing account
	Update(ctx context.Context, account *Account) error

	// FindByID finds an account by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// FindByNullifierHash finds a World ID account by its nullifier hash
	FindByNullifierHash(ctx context.Context, nullifierHash string) (*Account, error)

	// FindByGoogleUID finds a Google account by its subject ID
	FindByGoogleUID(ctx context.Context, googleUID string) (*Account, error)

	// Count returns the total number of accounts
	Count(ctx context.Context) (int64, error)
}
