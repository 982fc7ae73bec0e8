package businessflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionGateIsEntitled(t *testing.T) {
	ctx := context.Background()
	owner := Owner{ID: "owner-1", Email: "owner@example.com"}

	t.Run("Active", func(t *testing.T) {
		source := new(MockEntitlementSource)
		source.On("IsSubscriptionActive", ctx, "owner@example.com").Return(true, nil)

		entitlement, err := NewSubscriptionGate(source, 2).IsEntitled(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, EntitlementUnlimited, entitlement)
	})

	t.Run("Inactive", func(t *testing.T) {
		source := new(MockEntitlementSource)
		source.On("IsSubscriptionActive", ctx, "owner@example.com").Return(false, nil)

		entitlement, err := NewSubscriptionGate(source, 2).IsEntitled(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, EntitlementBounded, entitlement)
	})

	t.Run("NoEmail", func(t *testing.T) {
		source := new(MockEntitlementSource)

		entitlement, err := NewSubscriptionGate(source, 2).IsEntitled(ctx, Owner{ID: "owner-1", Email: "  "})
		require.NoError(t, err)
		assert.Equal(t, EntitlementBounded, entitlement)
		source.AssertNotCalled(t, "IsSubscriptionActive", mock.Anything, mock.Anything)
	})

	t.Run("NoSource", func(t *testing.T) {
		entitlement, err := NewSubscriptionGate(nil, 2).IsEntitled(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, EntitlementBounded, entitlement)
	})

	t.Run("LookupFailed", func(t *testing.T) {
		source := new(MockEntitlementSource)
		source.On("IsSubscriptionActive", ctx, "owner@example.com").Return(false, errors.New("status 500"))

		entitlement, err := NewSubscriptionGate(source, 2).IsEntitled(ctx, owner)
		assert.ErrorIs(t, err, ErrEntitlementLookupFailed)
		assert.True(t, IsUpstreamUnavailable(err))
		assert.Equal(t, EntitlementBounded, entitlement)
	})
}

func TestSubscriptionGateCheckCanCreate(t *testing.T) {
	ctx := context.Background()
	owner := Owner{ID: "owner-1", Email: "owner@example.com"}

	tests := []struct {
		name     string
		count    int64
		active   bool
		lookup   bool
		expected error
	}{
		{name: "BelowLimit", count: 1, expected: nil},
		{name: "AtLimitBounded", count: 2, lookup: true, active: false, expected: ErrLotLimitReached},
		{name: "AboveLimitBounded", count: 5, lookup: true, active: false, expected: ErrLotLimitReached},
		{name: "AtLimitUnlimited", count: 2, lookup: true, active: true, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := new(MockEntitlementSource)
			if tt.lookup {
				source.On("IsSubscriptionActive", ctx, owner.Email).Return(tt.active, nil)
			}

			err := NewSubscriptionGate(source, 2).CheckCanCreate(ctx, owner, tt.count)
			if tt.expected == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.expected)
			}
			if !tt.lookup {
				source.AssertNotCalled(t, "IsSubscriptionActive", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestSubscriptionGateZeroLimit(t *testing.T) {
	err := NewSubscriptionGate(nil, 0).CheckCanCreate(context.Background(), Owner{ID: "owner-1"}, 0)
	assert.ErrorIs(t, err, ErrLotLimitReached)
}
