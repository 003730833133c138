package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/arniesaha/portfolio-tracker/internal/modules/prices"
)

// PriceRefreshJob keeps the price cache warm for all active holdings
type PriceRefreshJob struct {
	service *prices.Service
	log     zerolog.Logger
}

// NewPriceRefreshJob creates a new price refresh job
func NewPriceRefreshJob(service *prices.Service, log zerolog.Logger) *PriceRefreshJob {
	return &PriceRefreshJob{
		service: service,
		log:     log.With().Str("job", "price_refresh").Logger(),
	}
}

// Name returns the job name
func (j *PriceRefreshJob) Name() string {
	return "price_refresh"
}

// Run refreshes the cached price for every active holding. Per-symbol
// failures are already collected by the service; the job only fails when
// the refresh pass itself cannot run.
func (j *PriceRefreshJob) Run() error {
	result, err := j.service.RefreshAll()
	if err != nil {
		return err
	}

	if result.Failed > 0 {
		j.log.Warn().
			Int("failed", result.Failed).
			Strs("errors", result.Errors).
			Msg("Some price fetches failed")
	}
	return nil
}
