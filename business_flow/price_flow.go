package businessflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/goldfolio/goldfolio-api/app/dto"
	"github.com/goldfolio/goldfolio-api/config"
	"github.com/goldfolio/goldfolio-api/models"
	"github.com/goldfolio/goldfolio-api/repository"
	"github.com/goldfolio/goldfolio-api/utils"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// PriceFlow is the catalog of daily reference prices
type PriceFlow interface {
	SnapshotFor(ctx context.Context, date time.Time) (*models.PriceSnapshot, error)
	Latest(ctx context.Context) (*models.PriceSnapshot, error)
	Today() time.Time
	GetSnapshot(ctx context.Context, req *dto.GetPriceSnapshotRequest) (*dto.GetPriceSnapshotResponse, error)
	TodayPricing(ctx context.Context) (*dto.TodayPricingResponse, error)
	Invalidate(ctx context.Context, date time.Time)
}

// PriceFlowImpl implements PriceFlow
type PriceFlowImpl struct {
	snapshotRepo repository.PriceSnapshotRepository
	rdb          *redis.Client
	cacheCfg     config.CacheConfig
	clock        utils.Clock
	loc          *time.Location
	log          zerolog.Logger
}

// NewPriceFlow creates a price catalog. rdb may be nil, in which case snapshots are always read from the store.
func NewPriceFlow(
	snapshotRepo repository.PriceSnapshotRepository,
	rdb *redis.Client,
	cacheCfg config.CacheConfig,
	clock utils.Clock,
	loc *time.Location,
	log zerolog.Logger,
) PriceFlow {
	if clock == nil {
		clock = utils.UTCNow
	}
	if loc == nil {
		loc = time.UTC
	}
	return &PriceFlowImpl{
		snapshotRepo: snapshotRepo,
		rdb:          rdb,
		cacheCfg:     cacheCfg,
		clock:        clock,
		loc:          loc,
		log:          log.With().Str("flow", "price").Logger(),
	}
}

// Today is the current calendar date in the catalog's timezone
func (f *PriceFlowImpl) Today() time.Time {
	return utils.Today(f.clock, f.loc)
}

// SnapshotFor returns the authoritative snapshot of the date
func (f *PriceFlowImpl) SnapshotFor(ctx context.Context, date time.Time) (*models.PriceSnapshot, error) {
	date = utils.CalendarDate(date, time.UTC)

	if cached := f.cached(ctx, date); cached != nil {
		return cached, nil
	}

	snapshot, err := f.load(ctx, date)
	if err != nil {
		return nil, NewBusinessError("PRICE_FETCH_FAILED", "Failed to fetch price snapshot", err)
	}
	if snapshot == nil {
		return nil, fmt.Errorf("%w for %s", ErrSnapshotNotFound, utils.FormatDate(date))
	}
	return snapshot, nil
}

// Latest returns today's snapshot. A missing snapshot is reported as ErrSnapshotNotFound.
func (f *PriceFlowImpl) Latest(ctx context.Context) (*models.PriceSnapshot, error) {
	return f.SnapshotFor(ctx, f.Today())
}

func (f *PriceFlowImpl) GetSnapshot(ctx context.Context, req *dto.GetPriceSnapshotRequest) (*dto.GetPriceSnapshotResponse, error) {
	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return nil, ErrInvalidPriceDate
	}

	snapshot, err := f.SnapshotFor(ctx, date)
	if err != nil {
		return nil, err
	}

	return &dto.GetPriceSnapshotResponse{
		Message:  "Price snapshot retrieved successfully",
		Snapshot: ToPriceSnapshotDTO(snapshot),
	}, nil
}

// TodayPricing renders today's denomination table. A missing snapshot yields Available=false, not an error.
func (f *PriceFlowImpl) TodayPricing(ctx context.Context) (*dto.TodayPricingResponse, error) {
	today := f.Today()
	resp := &dto.TodayPricingResponse{
		Message:   "Today's prices are not available yet",
		PriceDate: utils.FormatDate(today),
		Rows:      []dto.TodayPriceRowDTO{},
	}

	snapshot, err := f.SnapshotFor(ctx, today)
	if err != nil {
		if IsSnapshotNotFound(err) {
			return resp, nil
		}
		return nil, err
	}

	resp.Message = "Today's prices retrieved successfully"
	resp.Available = true
	resp.GoldSellingPrice = utils.ToPtr(snapshot.GoldSellingPrice)
	for _, p := range snapshot.GoldBuyingPrice {
		resp.Rows = append(resp.Rows, todayPriceRow(p))
	}
	return resp, nil
}

// todayPriceRow shows the per-gram quote and that quote scaled to the denomination
func todayPriceRow(p models.PricePoint) dto.TodayPriceRowDTO {
	row := dto.TodayPriceRowDTO{
		Gram:               p.Gram,
		BuyingPricePerGram: p.PerGramPrice,
	}
	grams, err := ParseGramLabel(p.Gram)
	if err != nil {
		return row
	}

	perGram := p.UnitPricePerGram
	if quoted, err := ParseAmountPrefix(p.PerGramPrice); err == nil {
		perGram = quoted
		row.BuyingPricePerGram = FormatAmount(quoted.InexactFloat64())
	}
	total := perGram.Mul(grams)
	row.TotalBuyingPrice = FormatAmount(total.InexactFloat64())
	row.TotalBuyingPriceValue = total.Round(0).String()
	return row
}

// Invalidate drops the cached snapshot of the date and bumps its generation,
// so a read that started before the invalidation cannot cache what it loaded.
func (f *PriceFlowImpl) Invalidate(ctx context.Context, date time.Time) {
	if f.rdb == nil {
		return
	}
	date = utils.CalendarDate(date, time.UTC)
	key := f.cacheKey(date)
	_, err := f.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, f.generationKey(date))
		pipe.Expire(ctx, f.generationKey(date), generationTTL)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		f.log.Warn().Err(err).Str("key", key).Msg("failed to invalidate price snapshot cache")
	}
}

// generationTTL outlives any read in flight
const generationTTL = 24 * time.Hour

func (f *PriceFlowImpl) cacheKey(date time.Time) string {
	return f.cacheCfg.RedisPrefix + "price_snapshot:" + utils.FormatDate(date)
}

func (f *PriceFlowImpl) generationKey(date time.Time) string {
	return f.cacheCfg.RedisPrefix + "price_snapshot_gen:" + utils.FormatDate(date)
}

func (f *PriceFlowImpl) cached(ctx context.Context, date time.Time) *models.PriceSnapshot {
	if f.rdb == nil {
		return nil
	}
	key := f.cacheKey(date)
	raw, err := f.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			f.log.Warn().Err(err).Str("key", key).Msg("price snapshot cache read failed")
		}
		return nil
	}
	var snapshot models.PriceSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		f.log.Warn().Err(err).Str("key", key).Msg("discarding malformed cached price snapshot")
		return nil
	}
	return &snapshot
}

// load reads the snapshot from the store and caches it. The date's generation key is
// watched across the read; an Invalidate in between aborts the cache write.
func (f *PriceFlowImpl) load(ctx context.Context, date time.Time) (*models.PriceSnapshot, error) {
	if f.rdb == nil {
		return f.snapshotRepo.LatestByPriceDate(ctx, date)
	}

	var (
		snapshot *models.PriceSnapshot
		loadErr  error
		loaded   bool
	)
	key := f.cacheKey(date)
	err := f.rdb.Watch(ctx, func(tx *redis.Tx) error {
		snapshot, loadErr = f.snapshotRepo.LatestByPriceDate(ctx, date)
		loaded = true
		if loadErr != nil || snapshot == nil {
			return nil
		}
		raw, err := json.Marshal(snapshot)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, f.cacheCfg.DefaultTTL)
			return nil
		})
		return err
	}, f.generationKey(date))

	switch {
	case err == nil:
	case errors.Is(err, redis.TxFailedErr):
		f.log.Debug().Str("key", key).Msg("price snapshot changed while loading, not caching")
	default:
		f.log.Warn().Err(err).Str("key", key).Msg("price snapshot cache write failed")
	}

	if !loaded {
		return f.snapshotRepo.LatestByPriceDate(ctx, date)
	}
	return snapshot, loadErr
}
