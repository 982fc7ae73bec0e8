package businessflow

import (
	"context"
	"fmt"
	"strings"
)

// Entitlement tells whether an owner may hold unlimited lots
type Entitlement string

const (
	EntitlementBounded   Entitlement = "bounded"
	EntitlementUnlimited Entitlement = "unlimited"
)

func (e Entitlement) String() string {
	return string(e)
}

// EntitlementSource reports whether the email holds an active paid subscription
type EntitlementSource interface {
	IsSubscriptionActive(ctx context.Context, email string) (bool, error)
}

// SubscriptionGate decides how many lots an owner may hold
type SubscriptionGate interface {
	IsEntitled(ctx context.Context, owner Owner) (Entitlement, error)
	CheckCanCreate(ctx context.Context, owner Owner, currentCount int64) error
	FreeLotLimit() int
}

// SubscriptionGateImpl implements SubscriptionGate
type SubscriptionGateImpl struct {
	source       EntitlementSource
	freeLotLimit int
}

func NewSubscriptionGate(source EntitlementSource, freeLotLimit int) SubscriptionGate {
	return &SubscriptionGateImpl{source: source, freeLotLimit: freeLotLimit}
}

func (g *SubscriptionGateImpl) FreeLotLimit() int {
	return g.freeLotLimit
}

// IsEntitled is unlimited only for an owner whose email has an active subscription
func (g *SubscriptionGateImpl) IsEntitled(ctx context.Context, owner Owner) (Entitlement, error) {
	email := strings.TrimSpace(owner.Email)
	if email == "" || g.source == nil {
		return EntitlementBounded, nil
	}

	active, err := g.source.IsSubscriptionActive(ctx, email)
	if err != nil {
		return EntitlementBounded, fmt.Errorf("%w: %v", ErrEntitlementLookupFailed, err)
	}
	if active {
		return EntitlementUnlimited, nil
	}
	return EntitlementBounded, nil
}

// CheckCanCreate rejects a create when a bounded owner already holds the free allowance
func (g *SubscriptionGateImpl) CheckCanCreate(ctx context.Context, owner Owner, currentCount int64) error {
	if currentCount < int64(g.freeLotLimit) {
		return nil
	}

	entitlement, err := g.IsEntitled(ctx, owner)
	if err != nil {
		return err
	}
	if entitlement == EntitlementBounded {
		return ErrLotLimitReached
	}
	return nil
}
