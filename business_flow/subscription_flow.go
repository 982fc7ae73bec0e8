package businessflow

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/goldfolio/goldfolio-api/app/dto"
	"github.com/goldfolio/goldfolio-api/app/services"
	"github.com/goldfolio/goldfolio-api/utils"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ProductPriceSource returns the subscription product's formatted USD price
type ProductPriceSource interface {
	ProductPrice(ctx context.Context) (string, error)
}

// CurrencyConverter converts a USD amount to whole units of the target currency
type CurrencyConverter interface {
	ConvertUSD(ctx context.Context, amount decimal.Decimal, target string) (decimal.Decimal, error)
}

// SubscriptionFlow exposes the caller's subscription state and the subscription price
type SubscriptionFlow interface {
	Status(ctx context.Context, owner Owner) (*dto.SubscriptionStatusResponse, error)
	Price(ctx context.Context) (*dto.SubscriptionPriceResponse, error)
}

// SubscriptionFlowImpl implements SubscriptionFlow
type SubscriptionFlowImpl struct {
	gate      SubscriptionGate
	prices    ProductPriceSource
	converter CurrencyConverter
	cache     *services.TTLCache[string]
	currency  string
	log       zerolog.Logger
}

func NewSubscriptionFlow(
	gate SubscriptionGate,
	prices ProductPriceSource,
	converter CurrencyConverter,
	cache *services.TTLCache[string],
	currency string,
	log zerolog.Logger,
) SubscriptionFlow {
	return &SubscriptionFlowImpl{
		gate:      gate,
		prices:    prices,
		converter: converter,
		cache:     cache,
		currency:  currency,
		log:       log.With().Str("flow", "subscription").Logger(),
	}
}

func (f *SubscriptionFlowImpl) Status(ctx context.Context, owner Owner) (*dto.SubscriptionStatusResponse, error) {
	if !owner.Valid() {
		return nil, ErrOwnerRequired
	}

	entitlement, err := f.gate.IsEntitled(ctx, owner)
	if err != nil {
		return nil, err
	}

	return &dto.SubscriptionStatusResponse{
		Message:      "Subscription status retrieved successfully",
		IsActive:     entitlement == EntitlementUnlimited,
		Entitlement:  entitlement.String(),
		FreeLotLimit: f.gate.FreeLotLimit(),
	}, nil
}

// Price returns the yearly price in the local currency, or in USD when conversion is unavailable
func (f *SubscriptionFlowImpl) Price(ctx context.Context) (*dto.SubscriptionPriceResponse, error) {
	usd, err := f.productPrice(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.SubscriptionPriceResponse{
		Message:      "Subscription price retrieved successfully",
		PriceUSD:     usd,
		DisplayPrice: usd + "/year",
	}
	if f.cache != nil {
		if exp, ok := f.cache.ExpiresAt(); ok {
			resp.CachedUntil = utils.ToPtr(exp.UTC().Format(time.RFC3339))
		}
	}

	amount, err := ParseUSDPrice(usd)
	if err != nil || f.converter == nil {
		return resp, nil
	}
	local, err := f.converter.ConvertUSD(ctx, amount, f.currency)
	if err != nil {
		f.log.Warn().Err(err).Str("price_usd", usd).Msg("currency conversion failed; showing USD price")
		return resp, nil
	}

	idr := local.IntPart()
	resp.PriceIDR = &idr
	resp.DisplayPrice = "Rp" + FormatAmount(float64(idr)) + "/year"
	return resp, nil
}

func (f *SubscriptionFlowImpl) productPrice(ctx context.Context) (string, error) {
	if f.cache != nil {
		if v, ok := f.cache.Get(); ok {
			return v, nil
		}
	}
	price, err := f.prices.ProductPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubscriptionPriceFailed, err)
	}
	if f.cache != nil {
		f.cache.Set(price)
	}
	return price, nil
}

var usdAmountPattern = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// ParseUSDPrice reads the amount of a formatted price such as "$20", "$1,200" or "US$ 9.99".
// The decimal point is kept: "$9.99" is 9.99, not 999 as a digits-only strip would give.
func ParseUSDPrice(formatted string) (decimal.Decimal, error) {
	m := usdAmountPattern.FindString(formatted)
	if m == "" {
		return decimal.Zero, fmt.Errorf("no amount in %q", formatted)
	}
	return decimal.NewFromString(strings.ReplaceAll(m, ",", ""))
}
