package businessflow

import (
	"cmp"
	"slices"
	"strings"

	"github.com/goldfolio/goldfolio-api/models"
)

// SortKey names a ledger column that can be sorted on
type SortKey string

const (
	SortKeyCreatedAt         SortKey = "created_at"
	SortKeyUpdatedAt         SortKey = "updated_at"
	SortKeyGoldWeight        SortKey = "gold_weight"
	SortKeyGoldBuyingDate    SortKey = "gold_buying_date"
	SortKeyGoldBuyingPrice   SortKey = "gold_buying_price"
	SortKeyTodaySellingPrice SortKey = "today_selling_price"
	SortKeyGains             SortKey = "gains"
)

// Derived keys are computed from today's selling price
func (k SortKey) Derived() bool {
	return k == SortKeyTodaySellingPrice || k == SortKeyGains
}

func (k SortKey) Valid() bool {
	switch k {
	case SortKeyCreatedAt, SortKeyUpdatedAt, SortKeyGoldWeight, SortKeyGoldBuyingDate,
		SortKeyGoldBuyingPrice, SortKeyTodaySellingPrice, SortKeyGains:
		return true
	default:
		return false
	}
}

// ParseSortKey accepts the column name in any case
func ParseSortKey(s string) (SortKey, error) {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", ErrInvalidSortKey
	}
	return k, nil
}

type SortDirection string

const (
	SortAscending  SortDirection = "ascending"
	SortDescending SortDirection = "descending"
)

func (d SortDirection) Reverse() SortDirection {
	if d == SortAscending {
		return SortDescending
	}
	return SortAscending
}

// ParseSortDirection accepts "ascending"/"descending" and the short forms "asc"/"desc"
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ascending", "asc":
		return SortAscending, nil
	case "descending", "desc":
		return SortDescending, nil
	default:
		return "", ErrInvalidSortDirection
	}
}

// SortState is the active sort column and direction of a ledger view
type SortState struct {
	Key       SortKey
	Direction SortDirection
}

// DefaultSortState returns the initial view state: newest first when a price is known, store order otherwise
func DefaultSortState(priceKnown bool) *SortState {
	if !priceKnown {
		return nil
	}
	return &SortState{Key: SortKeyCreatedAt, Direction: SortDescending}
}

// ToggleSortWithPrice is the column-click rule of the priced view: a new column starts descending.
func ToggleSortWithPrice(current *SortState, requested SortKey) SortState {
	return toggleSort(current, requested, SortDescending)
}

// ToggleSortWithoutPrice is the column-click rule of the unpriced view: a new column starts ascending.
func ToggleSortWithoutPrice(current *SortState, requested SortKey) SortState {
	return toggleSort(current, requested, SortAscending)
}

func toggleSort(current *SortState, requested SortKey, initial SortDirection) SortState {
	if current == nil || current.Key != requested {
		return SortState{Key: requested, Direction: initial}
	}
	return SortState{Key: requested, Direction: current.Direction.Reverse()}
}

// SortLots returns a stably sorted copy of lots. Derived keys need a selling price.
func SortLots(lots []*models.PortfolioLot, key SortKey, dir SortDirection, sellingPricePerGram *int64) ([]*models.PortfolioLot, error) {
	if !key.Valid() {
		return nil, ErrInvalidSortKey
	}
	if dir != SortAscending && dir != SortDescending {
		return nil, ErrInvalidSortDirection
	}
	if key.Derived() && sellingPricePerGram == nil {
		return nil, ErrSortKeyUnavailable
	}

	compare := lotComparator(key, sellingPricePerGram)
	sorted := slices.Clone(lots)
	slices.SortStableFunc(sorted, func(a, b *models.PortfolioLot) int {
		if dir == SortDescending {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return sorted, nil
}

func lotComparator(key SortKey, price *int64) func(a, b *models.PortfolioLot) int {
	switch key {
	case SortKeyCreatedAt:
		return func(a, b *models.PortfolioLot) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortKeyUpdatedAt:
		return func(a, b *models.PortfolioLot) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	case SortKeyGoldWeight:
		return func(a, b *models.PortfolioLot) int { return cmp.Compare(a.GoldWeight, b.GoldWeight) }
	case SortKeyGoldBuyingDate:
		return func(a, b *models.PortfolioLot) int { return a.GoldBuyingDate.Compare(b.GoldBuyingDate) }
	case SortKeyGoldBuyingPrice:
		return func(a, b *models.PortfolioLot) int { return cmp.Compare(a.GoldBuyingPrice, b.GoldBuyingPrice) }
	case SortKeyTodaySellingPrice:
		return func(a, b *models.PortfolioLot) int {
			return cmp.Compare(SellingValue(a, *price), SellingValue(b, *price))
		}
	default: // SortKeyGains
		return func(a, b *models.PortfolioLot) int {
			return cmp.Compare(Gain(a, *price), Gain(b, *price))
		}
	}
}

// LedgerRow is one rendered lot. SellingValue and Gain are nil without a selling price.
type LedgerRow struct {
	Lot          *models.PortfolioLot
	SellingValue *float64
	Gain         *float64
}

// LedgerTotals aggregates the displayed rows
type LedgerTotals struct {
	TotalWeight float64
	TotalGain   *float64
}

// LedgerView is the render model of an owner's ledger
type LedgerView struct {
	Rows                []LedgerRow
	Totals              LedgerTotals
	Sort                *SortState
	SellingPriceText    string
	SellingPricePerGram *int64
}

// PriceKnown reports whether derived columns are present
func (v *LedgerView) PriceKnown() bool {
	return v.SellingPricePerGram != nil
}

// BuildLedgerView sorts lots by the given state and computes derived columns and totals.
// An empty or digitless sellingPriceText means no price is known; lots are then rendered
// without derived columns and a nil sort keeps the input order.
func BuildLedgerView(lots []*models.PortfolioLot, sort *SortState, sellingPriceText string) (*LedgerView, error) {
	view := &LedgerView{Sort: sort}

	if sellingPriceText != "" {
		if price, err := ParseSellingPrice(sellingPriceText); err == nil {
			view.SellingPricePerGram = &price
			view.SellingPriceText = sellingPriceText
		}
	}

	ordered := lots
	if sort != nil {
		sorted, err := SortLots(lots, sort.Key, sort.Direction, view.SellingPricePerGram)
		if err != nil {
			return nil, err
		}
		ordered = sorted
	}

	view.Rows = make([]LedgerRow, 0, len(ordered))
	for _, lot := range ordered {
		row := LedgerRow{Lot: lot}
		if view.SellingPricePerGram != nil {
			sv := SellingValue(lot, *view.SellingPricePerGram)
			g := Gain(lot, *view.SellingPricePerGram)
			row.SellingValue = &sv
			row.Gain = &g
		}
		view.Rows = append(view.Rows, row)
	}

	view.Totals.TotalWeight = TotalWeight(ordered)
	if view.SellingPricePerGram != nil {
		tg := TotalGain(ordered, *view.SellingPricePerGram)
		view.Totals.TotalGain = &tg
	}

	return view, nil
}
