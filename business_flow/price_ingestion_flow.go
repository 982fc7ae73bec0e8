package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/goldfolio/goldfolio-api/app/dto"
	"github.com/goldfolio/goldfolio-api/models"
	"github.com/goldfolio/goldfolio-api/repository"
	"github.com/goldfolio/goldfolio-api/utils"
	"github.com/rs/zerolog"
)

// MaxBackfillDays bounds a single backfill request
const MaxBackfillDays = 366

// PriceSource fetches the raw price table published for a date
type PriceSource interface {
	FetchTable(ctx context.Context, date time.Time) ([][]string, error)
	SourceURL(date time.Time) string
}

// IngestionResult describes one processed date
type IngestionResult struct {
	Date         time.Time
	Points       int
	SellingPrice string
	// Inserted is false when the stored snapshot already carried identical prices
	Inserted bool
}

type BackfillFailure struct {
	Date time.Time
	Err  error
}

// BackfillReport collects per-date outcomes of a backfill
type BackfillReport struct {
	Results  []IngestionResult
	Failures []BackfillFailure
	Skipped  []time.Time
}

// PriceIngestionFlow scrapes daily prices into snapshots
type PriceIngestionFlow interface {
	IngestDaily(ctx context.Context, date time.Time) (*IngestionResult, error)
	IngestToday(ctx context.Context) (*IngestionResult, error)
	Backfill(ctx context.Context, from, to time.Time, skipExisting bool) (*BackfillReport, error)
	Ingest(ctx context.Context, req *dto.IngestPricesRequest) (*dto.IngestPricesResponse, error)
	BackfillRange(ctx context.Context, req *dto.BackfillPricesRequest) (*dto.BackfillPricesResponse, error)
}

// PriceIngestionFlowImpl implements PriceIngestionFlow
type PriceIngestionFlowImpl struct {
	source       PriceSource
	snapshotRepo repository.PriceSnapshotRepository
	priceFlow    PriceFlow
	layout       PriceTableLayout
	clock        utils.Clock
	log          zerolog.Logger
}

func NewPriceIngestionFlow(
	source PriceSource,
	snapshotRepo repository.PriceSnapshotRepository,
	priceFlow PriceFlow,
	layout PriceTableLayout,
	clock utils.Clock,
	log zerolog.Logger,
) PriceIngestionFlow {
	if clock == nil {
		clock = utils.UTCNow
	}
	return &PriceIngestionFlowImpl{
		source:       source,
		snapshotRepo: snapshotRepo,
		priceFlow:    priceFlow,
		layout:       layout,
		clock:        clock,
		log:          log.With().Str("flow", "price_ingestion").Logger(),
	}
}

// IngestDaily fetches, parses and stores the prices of one date.
// Re-running for a date whose stored prices are unchanged inserts nothing.
func (f *PriceIngestionFlowImpl) IngestDaily(ctx context.Context, date time.Time) (*IngestionResult, error) {
	date = utils.CalendarDate(date, time.UTC)
	logger := f.log.With().Str("price_date", utils.FormatDate(date)).Logger()

	rows, err := f.source.FetchTable(ctx, date)
	if err != nil {
		logger.Error().Err(err).Msg("price table fetch failed")
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	table, err := ParsePriceTable(rows, f.layout)
	if err != nil {
		logger.Error().Err(err).Int("rows", len(rows)).Msg("price table parse failed")
		return nil, err
	}

	result := &IngestionResult{
		Date:         date,
		Points:       len(table.Points),
		SellingPrice: table.SellingPrice,
	}

	snapshot := &models.PriceSnapshot{
		PriceDate:        date,
		GoldBuyingPrice:  table.Points,
		GoldSellingPrice: table.SellingPrice,
		SourceURL:        f.source.SourceURL(date),
		CreatedAt:        f.clock().UTC().Truncate(time.Microsecond),
	}

	lockPriceIngestion()
	defer unlockPriceIngestion()

	current, err := f.snapshotRepo.LatestByPriceDate(ctx, date)
	if err != nil {
		return nil, NewBusinessError("PRICE_INGEST_FAILED", "Failed to read stored price snapshot", err)
	}
	if current.SameQuote(snapshot) {
		logger.Info().Msg("stored prices unchanged, skipping insert")
		return result, nil
	}

	if err := f.snapshotRepo.Save(ctx, snapshot); err != nil {
		return nil, NewBusinessError("PRICE_INGEST_FAILED", "Failed to store price snapshot", err)
	}
	if f.priceFlow != nil {
		f.priceFlow.Invalidate(ctx, date)
	}

	result.Inserted = true
	logger.Info().
		Int("points", result.Points).
		Str("selling_price", result.SellingPrice).
		Msg("price snapshot stored")
	return result, nil
}

// IngestToday ingests the current calendar date of the price catalog
func (f *PriceIngestionFlowImpl) IngestToday(ctx context.Context) (*IngestionResult, error) {
	return f.IngestDaily(ctx, f.today())
}

// Backfill ingests every date in [from, to]. Failures are collected per date and never stop the run.
// With skipExisting, dates that already have a snapshot are not fetched again.
func (f *PriceIngestionFlowImpl) Backfill(ctx context.Context, from, to time.Time, skipExisting bool) (*BackfillReport, error) {
	from = utils.CalendarDate(from, time.UTC)
	to = utils.CalendarDate(to, time.UTC)
	if from.After(to) {
		return nil, ErrInvalidDateRange
	}
	dates := utils.DatesBetween(from, to)
	if len(dates) > MaxBackfillDays {
		return nil, ErrBackfillRangeTooLarge
	}

	existing := map[string]bool{}
	if skipExisting {
		stored, err := f.snapshotRepo.ListDates(ctx, from, to)
		if err != nil {
			return nil, NewBusinessError("PRICE_BACKFILL_FAILED", "Failed to list stored price dates", err)
		}
		for _, d := range stored {
			existing[utils.FormatDate(d)] = true
		}
	}

	report := &BackfillReport{}
	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if existing[utils.FormatDate(date)] {
			report.Skipped = append(report.Skipped, date)
			continue
		}
		result, err := f.IngestDaily(ctx, date)
		if err != nil {
			report.Failures = append(report.Failures, BackfillFailure{Date: date, Err: err})
			continue
		}
		report.Results = append(report.Results, *result)
	}

	f.log.Info().
		Str("from", utils.FormatDate(from)).
		Str("to", utils.FormatDate(to)).
		Int("ingested", len(report.Results)).
		Int("failed", len(report.Failures)).
		Int("skipped", len(report.Skipped)).
		Msg("price backfill finished")
	return report, nil
}

func (f *PriceIngestionFlowImpl) Ingest(ctx context.Context, req *dto.IngestPricesRequest) (*dto.IngestPricesResponse, error) {
	date := f.today()
	if req.Date != "" {
		parsed, err := utils.ParseDate(req.Date)
		if err != nil {
			return nil, ErrInvalidPriceDate
		}
		date = parsed
	}

	result, err := f.IngestDaily(ctx, date)
	if err != nil {
		return nil, err
	}
	resp := toIngestPricesResponse(*result)
	return &resp, nil
}

func (f *PriceIngestionFlowImpl) BackfillRange(ctx context.Context, req *dto.BackfillPricesRequest) (*dto.BackfillPricesResponse, error) {
	from, err := utils.ParseDate(req.From)
	if err != nil {
		return nil, ErrInvalidPriceDate
	}
	to, err := utils.ParseDate(req.To)
	if err != nil {
		return nil, ErrInvalidPriceDate
	}

	report, err := f.Backfill(ctx, from, to, req.SkipExisting)
	if err != nil && report == nil {
		return nil, err
	}

	resp := &dto.BackfillPricesResponse{
		Message:  "Price backfill completed",
		Ingested: make([]dto.IngestPricesResponse, 0, len(report.Results)),
		Failures: make([]dto.BackfillFailureDTO, 0, len(report.Failures)),
		Skipped:  make([]string, 0, len(report.Skipped)),
	}
	if err != nil {
		resp.Message = "Price backfill interrupted: " + err.Error()
	}
	for _, r := range report.Results {
		resp.Ingested = append(resp.Ingested, toIngestPricesResponse(r))
	}
	for _, d := range report.Skipped {
		resp.Skipped = append(resp.Skipped, utils.FormatDate(d))
	}
	for _, fail := range report.Failures {
		resp.Failures = append(resp.Failures, dto.BackfillFailureDTO{
			PriceDate: utils.FormatDate(fail.Date),
			Error:     fail.Err.Error(),
		})
	}
	return resp, nil
}

func (f *PriceIngestionFlowImpl) today() time.Time {
	if f.priceFlow != nil {
		return f.priceFlow.Today()
	}
	return utils.Today(f.clock, time.UTC)
}

func toIngestPricesResponse(r IngestionResult) dto.IngestPricesResponse {
	msg := "Price snapshot stored"
	if !r.Inserted {
		msg = "Price snapshot unchanged"
	}
	return dto.IngestPricesResponse{
		Message:      msg,
		PriceDate:    utils.FormatDate(r.Date),
		Points:       r.Points,
		SellingPrice: r.SellingPrice,
		Inserted:     r.Inserted,
	}
}
