package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/arniesaha/portfolio-tracker/internal/modules/portfolio"
)

// SnapshotJob records the daily portfolio valuation snapshot
type SnapshotJob struct {
	service *portfolio.Service
	log     zerolog.Logger
}

// NewSnapshotJob creates a new snapshot job
func NewSnapshotJob(service *portfolio.Service, log zerolog.Logger) *SnapshotJob {
	return &SnapshotJob{
		service: service,
		log:     log.With().Str("job", "snapshot").Logger(),
	}
}

// Name returns the job name
func (j *SnapshotJob) Name() string {
	return "snapshot"
}

// Run values the portfolio and stores today's snapshot. Re-running on
// the same day replaces the earlier snapshot.
func (j *SnapshotJob) Run() error {
	snapshot, err := j.service.TakeSnapshot()
	if err != nil {
		return err
	}

	j.log.Info().
		Str("date", snapshot.Date).
		Float64("total_value", snapshot.TotalValue).
		Msg("Daily snapshot recorded")
	return nil
}
