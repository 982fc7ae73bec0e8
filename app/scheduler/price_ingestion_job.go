package scheduler

import (
	"context"
	"time"

	businessflow "github.com/goldfolio/goldfolio-api/business_flow"
	"github.com/goldfolio/goldfolio-api/utils"
	"github.com/rs/zerolog"
)

// PriceIngestionJob ingests today's reference prices
type PriceIngestionJob struct {
	flow    businessflow.PriceIngestionFlow
	timeout time.Duration
	log     zerolog.Logger
}

func NewPriceIngestionJob(flow businessflow.PriceIngestionFlow, timeout time.Duration, log zerolog.Logger) *PriceIngestionJob {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &PriceIngestionJob{
		flow:    flow,
		timeout: timeout,
		log:     log.With().Str("job", "price_ingestion").Logger(),
	}
}

func (j *PriceIngestionJob) Name() string { return "price_ingestion" }

// Run ingests once. Failures are reported, never retried; the next schedule tick tries again.
func (j *PriceIngestionJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	result, err := j.flow.IngestToday(ctx)
	priceIngestionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		priceIngestionRuns.WithLabelValues(outcomeFailed).Inc()
		return err
	}

	outcome := outcomeUnchanged
	if result.Inserted {
		outcome = outcomeInserted
	}
	priceIngestionRuns.WithLabelValues(outcome).Inc()
	priceIngestionLastSuccess.SetToCurrentTime()

	j.log.Info().
		Str("price_date", utils.FormatDate(result.Date)).
		Str("outcome", outcome).
		Int("points", result.Points).
		Msg("price ingestion finished")
	return nil
}
