package businessflow

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/goldfolio/goldfolio-api/app/dto"
	"github.com/goldfolio/goldfolio-api/config"
	"github.com/goldfolio/goldfolio-api/models"
	"github.com/goldfolio/goldfolio-api/repository"
	"github.com/goldfolio/goldfolio-api/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PortfolioFlow is the owner-scoped ledger of gold purchases
type PortfolioFlow interface {
	ListLots(ctx context.Context, req *dto.ListLotsRequest, metadata *ClientMetadata) (*dto.ListLotsResponse, error)
	CreateLot(ctx context.Context, req *dto.CreateLotRequest, metadata *ClientMetadata) (*dto.CreateLotResponse, error)
	UpdateLot(ctx context.Context, req *dto.UpdateLotRequest, metadata *ClientMetadata) (*dto.UpdateLotResponse, error)
	DeleteLot(ctx context.Context, req *dto.DeleteLotRequest, metadata *ClientMetadata) (*dto.DeleteLotResponse, error)
}

// PortfolioFlowImpl implements PortfolioFlow
type PortfolioFlowImpl struct {
	lotRepo       repository.PortfolioLotRepository
	priceFlow     PriceFlow
	gate          SubscriptionGate
	cfg           config.PortfolioConfig
	minBuyingDate time.Time
	loc           *time.Location
	clock         utils.Clock
	log           zerolog.Logger
}

// NewPortfolioFlow creates the ledger flow. gate is consulted on create only when the config enforces the cap.
func NewPortfolioFlow(
	lotRepo repository.PortfolioLotRepository,
	priceFlow PriceFlow,
	gate SubscriptionGate,
	cfg config.PortfolioConfig,
	clock utils.Clock,
	log zerolog.Logger,
) PortfolioFlow {
	if clock == nil {
		clock = utils.UTCNow
	}
	minDate, err := utils.ParseDate(cfg.MinBuyingDate)
	if err != nil {
		minDate, _ = utils.ParseDate(utils.DefaultMinBuyingDate)
	}
	return &PortfolioFlowImpl{
		lotRepo:       lotRepo,
		priceFlow:     priceFlow,
		gate:          gate,
		cfg:           cfg,
		minBuyingDate: minDate,
		loc:           utils.LoadLocation(cfg.Timezone),
		clock:         clock,
		log:           log.With().Str("flow", "portfolio").Logger(),
	}
}

func (f *PortfolioFlowImpl) ListLots(ctx context.Context, req *dto.ListLotsRequest, metadata *ClientMetadata) (*dto.ListLotsResponse, error) {
	if req.OwnerID == "" {
		return nil, ErrOwnerRequired
	}

	lots, err := f.lotRepo.ListByOwner(ctx, req.OwnerID)
	if err != nil {
		return nil, NewBusinessError("LIST_LOTS_FAILED", "Failed to list portfolio lots", err)
	}

	// Price unavailability degrades the view, it never fails it
	var snapshot *models.PriceSnapshot
	if f.priceFlow != nil {
		snapshot, err = f.priceFlow.Latest(ctx)
		if err != nil {
			if !IsSnapshotNotFound(err) {
				f.log.Warn().Err(err).Str("owner_id", req.OwnerID).Msg("selling price lookup failed; rendering ledger without price")
			}
			snapshot = nil
		}
	}

	sellingPrice := ""
	if snapshot != nil {
		if _, perr := ParseSellingPrice(snapshot.GoldSellingPrice); perr == nil {
			sellingPrice = snapshot.GoldSellingPrice
		}
	}
	priceKnown := sellingPrice != ""

	sort, err := resolveSortState(req, priceKnown)
	if err != nil {
		return nil, err
	}

	view, err := BuildLedgerView(lots, sort, sellingPrice)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListLotsResponse{
		Message:          "Portfolio retrieved successfully",
		PriceAvailable:   view.PriceKnown(),
		Rows:             make([]dto.LedgerRowDTO, 0, len(view.Rows)),
		Totals:           ToLedgerTotalsDTO(view.Totals),
		MinBuyingDate:    utils.FormatDate(f.minBuyingDate),
		LotLimitEnforced: f.cfg.EnforceSubscriptionCap,
	}
	if view.PriceKnown() {
		resp.SellingPrice = utils.ToPtr(view.SellingPriceText)
		resp.PriceDate = utils.ToPtr(utils.FormatDate(snapshot.PriceDate))
	}
	if view.Sort != nil {
		resp.Sort = &dto.SortStateDTO{Key: string(view.Sort.Key), Direction: string(view.Sort.Direction)}
	}
	for _, row := range view.Rows {
		resp.Rows = append(resp.Rows, ToLedgerRowDTO(row))
	}

	return resp, nil
}

// resolveSortState applies the requested key/direction, then an optional column click
func resolveSortState(req *dto.ListLotsRequest, priceKnown bool) (*SortState, error) {
	state := DefaultSortState(priceKnown)

	if req.SortKey != "" {
		key, err := ParseSortKey(req.SortKey)
		if err != nil {
			return nil, err
		}
		dir := SortAscending
		if priceKnown {
			dir = SortDescending
		}
		if req.Direction != "" {
			if dir, err = ParseSortDirection(req.Direction); err != nil {
				return nil, err
			}
		}
		state = &SortState{Key: key, Direction: dir}
	}

	if req.Toggle != "" {
		key, err := ParseSortKey(req.Toggle)
		if err != nil {
			return nil, err
		}
		var toggled SortState
		if priceKnown {
			toggled = ToggleSortWithPrice(state, key)
		} else {
			toggled = ToggleSortWithoutPrice(state, key)
		}
		state = &toggled
	}

	return state, nil
}

func (f *PortfolioFlowImpl) CreateLot(ctx context.Context, req *dto.CreateLotRequest, metadata *ClientMetadata) (*dto.CreateLotResponse, error) {
	owner := Owner{ID: req.OwnerID, Email: req.OwnerEmail}
	if !owner.Valid() {
		return nil, ErrOwnerRequired
	}

	buyingDate, err := f.validateLot(req.GoldWeight, req.GoldBuyingDate, req.GoldBuyingPrice)
	if err != nil {
		return nil, err
	}

	if f.cfg.EnforceSubscriptionCap && f.gate != nil {
		count, err := f.lotRepo.CountByOwner(ctx, owner.ID)
		if err != nil {
			return nil, NewBusinessError("CREATE_LOT_FAILED", "Failed to count portfolio lots", err)
		}
		if err := f.gate.CheckCanCreate(ctx, owner, count); err != nil {
			return nil, err
		}
	}

	now := f.now()
	lot := &models.PortfolioLot{
		UUID:            uuid.New(),
		OwnerID:         owner.ID,
		GoldWeight:      req.GoldWeight,
		GoldBuyingDate:  buyingDate,
		GoldBuyingPrice: req.GoldBuyingPrice,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := f.lotRepo.Save(ctx, lot); err != nil {
		return nil, NewBusinessError("CREATE_LOT_FAILED", "Failed to create portfolio lot", err)
	}

	f.log.Info().Str("owner_id", owner.ID).Str("lot_id", lot.UUID.String()).Msg("portfolio lot created")

	return &dto.CreateLotResponse{
		Message: "Portfolio lot created successfully",
		Lot:     ToLotDTO(lot),
	}, nil
}

func (f *PortfolioFlowImpl) UpdateLot(ctx context.Context, req *dto.UpdateLotRequest, metadata *ClientMetadata) (*dto.UpdateLotResponse, error) {
	lot, err := f.ownedLot(ctx, req.OwnerID, req.LotID)
	if err != nil {
		return nil, err
	}

	buyingDate, err := f.validateLot(req.GoldWeight, req.GoldBuyingDate, req.GoldBuyingPrice)
	if err != nil {
		return nil, err
	}

	updatedAt := f.now()
	if !updatedAt.After(lot.CreatedAt) {
		updatedAt = lot.CreatedAt.Add(time.Microsecond)
	}

	lot.GoldWeight = req.GoldWeight
	lot.GoldBuyingDate = buyingDate
	lot.GoldBuyingPrice = req.GoldBuyingPrice
	lot.UpdatedAt = updatedAt

	if err := f.lotRepo.Update(ctx, lot); err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return nil, ErrLotNotFound
		}
		return nil, NewBusinessError("UPDATE_LOT_FAILED", "Failed to update portfolio lot", err)
	}

	return &dto.UpdateLotResponse{
		Message: "Portfolio lot updated successfully",
		Lot:     ToLotDTO(lot),
	}, nil
}

func (f *PortfolioFlowImpl) DeleteLot(ctx context.Context, req *dto.DeleteLotRequest, metadata *ClientMetadata) (*dto.DeleteLotResponse, error) {
	lot, err := f.ownedLot(ctx, req.OwnerID, req.LotID)
	if err != nil {
		return nil, err
	}

	if err := f.lotRepo.Delete(ctx, lot.ID); err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return nil, ErrLotNotFound
		}
		return nil, NewBusinessError("DELETE_LOT_FAILED", "Failed to delete portfolio lot", err)
	}

	f.log.Info().Str("owner_id", req.OwnerID).Str("lot_id", req.LotID).Msg("portfolio lot deleted")

	return &dto.DeleteLotResponse{
		Message: "Portfolio lot deleted successfully",
		ID:      lot.UUID.String(),
	}, nil
}

// ownedLot loads a lot by public id. Lots of other owners are reported as not found.
func (f *PortfolioFlowImpl) ownedLot(ctx context.Context, ownerID, lotID string) (*models.PortfolioLot, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	id, err := uuid.Parse(lotID)
	if err != nil {
		return nil, ErrInvalidLotID
	}

	lot, err := f.lotRepo.ByUUID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("LOT_FETCH_FAILED", "Failed to fetch portfolio lot", err)
	}
	if lot == nil || lot.OwnerID != ownerID {
		return nil, ErrLotNotFound
	}
	return lot, nil
}

func (f *PortfolioFlowImpl) validateLot(weight float64, buyingDate string, buyingPrice float64) (time.Time, error) {
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight <= 0 {
		return time.Time{}, ErrInvalidWeight
	}
	if math.IsNaN(buyingPrice) || math.IsInf(buyingPrice, 0) || buyingPrice <= 0 {
		return time.Time{}, ErrInvalidBuyingPrice
	}
	date, err := utils.ParseDate(buyingDate)
	if err != nil {
		return time.Time{}, ErrInvalidBuyingDate
	}
	if date.Before(f.minBuyingDate) {
		return time.Time{}, ErrBuyingDateTooEarly
	}
	if date.After(utils.Today(f.clock, f.loc)) {
		return time.Time{}, ErrBuyingDateInFuture
	}
	return date, nil
}

// now is truncated to the store's timestamp precision
func (f *PortfolioFlowImpl) now() time.Time {
	return f.clock().UTC().Truncate(time.Microsecond)
}
