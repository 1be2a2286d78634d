package referral

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worldref/backend/internal/domain/shared"
)

func TestNewMember(t *testing.T) {
	accountID := uuid.New()

	t.Run("creates active member with code", func(t *testing.T) {
		member, err := NewMember(accountID, "Alice", "alice2026", "https://worldcoin.org/join/alice2026")

		require.NoError(t, err)
		assert.Equal(t, accountID, member.AccountID)
		assert.Equal(t, "Alice", member.Name)
		assert.Equal(t, "alice2026", member.ReferralCode)
		assert.True(t, member.IsActive)
		assert.Equal(t, DefaultMaxAssignments, member.MaxAssignments)
		assert.Equal(t, 0, member.CurrentAssignments)
		assert.True(t, member.TotalEarned.IsZero())

		events := member.GetDomainEvents()
		assert.Len(t, events, 1)
		_, ok := events[0].(*MemberCreatedEvent)
		assert.True(t, ok)
	})

	t.Run("creates inactive member without code", func(t *testing.T) {
		member, err := NewMember(accountID, "Bob", "", "")

		require.NoError(t, err)
		assert.False(t, member.IsActive)
	})

	t.Run("fails with empty account id", func(t *testing.T) {
		_, err := NewMember(uuid.Nil, "Alice", "alice", "")

		assert.Error(t, err)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewMember(accountID, "  ", "alice", "")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be empty")
	})

	t.Run("fails with malformed code", func(t *testing.T) {
		_, err := NewMember(accountID, "Alice", "bad code!", "")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "only contain letters")
	})
}

func TestValidateReferralCode(t *testing.T) {
	t.Run("accepts plain alphanumeric codes", func(t *testing.T) {
		for _, code := range []string{"A1", "a", "ABCD1234", "alice2026"} {
			assert.NoError(t, ValidateReferralCode(code), code)
		}
	})

	t.Run("rejects punctuation and whitespace", func(t *testing.T) {
		for _, code := range []string{"ab-cd", "a_b", "bad code", "alice!"} {
			assert.Error(t, ValidateReferralCode(code), code)
		}
	})

	t.Run("rejects empty code", func(t *testing.T) {
		assert.Error(t, ValidateReferralCode(""))
	})

	t.Run("rejects overlong code", func(t *testing.T) {
		long := make([]byte, 65)
		for i := range long {
			long[i] = 'a'
		}

		assert.Error(t, ValidateReferralCode(string(long)))
	})
}

func TestMember_ChangeCode(t *testing.T) {
	t.Run("changes code and stays active", func(t *testing.T) {
		member, _ := NewMember(uuid.New(), "Alice", "alice1", "")
		member.ClearDomainEvents()

		err := member.ChangeCode("alice2", "https://example.com/r/alice2")

		require.NoError(t, err)
		assert.Equal(t, "alice2", member.ReferralCode)
		assert.True(t, member.IsActive)

		events := member.GetDomainEvents()
		require.Len(t, events, 1)
		changed, ok := events[0].(*MemberCodeChangedEvent)
		require.True(t, ok)
		assert.Equal(t, "alice1", changed.OldCode)
		assert.Equal(t, "alice2", changed.NewCode)
	})

	t.Run("empty code removes member from rotation", func(t *testing.T) {
		member, _ := NewMember(uuid.New(), "Alice", "alice1", "")

		err := member.ChangeCode("", "")

		require.NoError(t, err)
		assert.Empty(t, member.ReferralCode)
		assert.False(t, member.IsActive)
	})

	t.Run("rejects malformed code", func(t *testing.T) {
		member, _ := NewMember(uuid.New(), "Alice", "alice1", "")

		err := member.ChangeCode("has spaces", "")

		assert.Error(t, err)
		assert.Equal(t, "alice1", member.ReferralCode)
	})
}

func TestMember_ReserveSlot(t *testing.T) {
	t.Run("reserves until capacity", func(t *testing.T) {
		member, _ := NewMember(uuid.New(), "Alice", "alice", "")
		member.MaxAssignments = 2

		require.NoError(t, member.ReserveSlot())
		require.NoError(t, member.ReserveSlot())
		assert.Equal(t, 2, member.CurrentAssignments)
		assert.False(t, member.HasCapacity())

		err := member.ReserveSlot()
		assert.ErrorIs(t, err, shared.ErrCapacityExhausted)
		assert.Equal(t, 2, member.CurrentAssignments)
	})

	t.Run("inactive member cannot reserve", func(t *testing.T) {
		member, _ := NewMember(uuid.New(), "Bob", "", "")

		err := member.ReserveSlot()

		assert.ErrorIs(t, err, shared.ErrCapacityExhausted)
	})
}

func TestMember_ReleaseSlot(t *testing.T) {
	member, _ := NewMember(uuid.New(), "Alice", "alice", "")
	require.NoError(t, member.ReserveSlot())

	member.ReleaseSlot()
	assert.Equal(t, 0, member.CurrentAssignments)

	// Never goes negative
	member.ReleaseSlot()
	assert.Equal(t, 0, member.CurrentAssignments)
}

func TestMember_SetCapacity(t *testing.T) {
	member, _ := NewMember(uuid.New(), "Alice", "alice", "")

	t.Run("changes capacity", func(t *testing.T) {
		err := member.SetCapacity(25)

		require.NoError(t, err)
		assert.Equal(t, 25, member.MaxAssignments)
	})

	t.Run("allows capacity below current count", func(t *testing.T) {
		member.CurrentAssignments = 5

		err := member.SetCapacity(3)

		require.NoError(t, err)
		assert.False(t, member.HasCapacity())
		assert.Equal(t, 0, member.RemainingSlots())
	})

	t.Run("rejects zero capacity", func(t *testing.T) {
		err := member.SetCapacity(0)

		assert.Error(t, err)
	})
}

func TestMember_CreditEarnings(t *testing.T) {
	member, _ := NewMember(uuid.New(), "Alice", "alice", "")
	member.ClearDomainEvents()

	t.Run("accumulates rewards", func(t *testing.T) {
		require.NoError(t, member.CreditEarnings(decimal.NewFromInt(50)))
		require.NoError(t, member.CreditEarnings(decimal.NewFromInt(50)))

		assert.True(t, member.TotalEarned.Equal(decimal.NewFromInt(100)))
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		assert.Error(t, member.CreditEarnings(decimal.Zero))
		assert.Error(t, member.CreditEarnings(decimal.NewFromInt(-10)))
	})
}

func TestMember_ActivateDeactivate(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		member, _ := NewMember(uuid.New(), "Alice", "alice", "")

		require.NoError(t, member.Deactivate())
		assert.False(t, member.IsActive)
		assert.Error(t, member.Deactivate())

		require.NoError(t, member.Activate())
		assert.True(t, member.IsActive)
		assert.Error(t, member.Activate())
	})

	t.Run("cannot activate without code", func(t *testing.T) {
		member, _ := NewMember(uuid.New(), "Bob", "", "")

		err := member.Activate()

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "without a referral code")
	})
}
