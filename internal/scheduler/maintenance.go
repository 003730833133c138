package scheduler

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/arniesaha/portfolio-tracker/internal/database"
	"github.com/arniesaha/portfolio-tracker/internal/modules/portfolio"
	"github.com/arniesaha/portfolio-tracker/internal/modules/prices"
)

// stalePriceAge is how long a cached quote may outlive its holding
// before maintenance removes it
const stalePriceAge = 30 * 24 * time.Hour

// MaintenanceJob performs nightly database upkeep: an integrity check,
// a WAL checkpoint, and pruning of old snapshots and stale quotes
type MaintenanceJob struct {
	db         *database.DB
	snapshots  *portfolio.Repository
	priceCache *prices.Repository
	retainDays int
	log        zerolog.Logger
}

// NewMaintenanceJob creates a new maintenance job
func NewMaintenanceJob(
	db *database.DB,
	snapshots *portfolio.Repository,
	priceCache *prices.Repository,
	retainDays int,
	log zerolog.Logger,
) *MaintenanceJob {
	return &MaintenanceJob{
		db:         db,
		snapshots:  snapshots,
		priceCache: priceCache,
		retainDays: retainDays,
		log:        log.With().Str("job", "maintenance").Logger(),
	}
}

// Name returns the job name
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}

// Run executes the maintenance pass
func (j *MaintenanceJob) Run() error {
	startTime := time.Now()

	if err := j.checkIntegrity(); err != nil {
		return err
	}
	j.checkpointWAL()
	j.pruneSnapshots()
	j.pruneStalePrices()

	j.log.Info().
		Dur("duration", time.Since(startTime)).
		Msg("Maintenance completed")
	return nil
}

// checkIntegrity runs SQLite's PRAGMA integrity_check. Corruption is not
// auto-recoverable, so it fails the job loudly.
func (j *MaintenanceJob) checkIntegrity() error {
	var result string
	if err := j.db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check returned: %s", result)
	}
	return nil
}

// checkpointWAL flushes the write-ahead log back into the main file.
// The pragma returns three columns: busy flag, WAL frame count, frames
// checkpointed.
func (j *MaintenanceJob) checkpointWAL() {
	var busy, logFrames, checkpointed int
	err := j.db.QueryRow("PRAGMA wal_checkpoint(PASSIVE)").Scan(&busy, &logFrames, &checkpointed)
	if err != nil {
		j.log.Warn().Err(err).Msg("Failed to checkpoint WAL")
		return
	}

	if logFrames > 1000 {
		j.log.Warn().
			Int("wal_frames", logFrames).
			Int("checkpointed", checkpointed).
			Msg("WAL file is large")
	}
}

// pruneSnapshots removes snapshots beyond the retention window
func (j *MaintenanceJob) pruneSnapshots() {
	cutoff := time.Now().UTC().AddDate(0, 0, -j.retainDays).Format("2006-01-02")
	if _, err := j.snapshots.DeleteBefore(cutoff); err != nil {
		j.log.Error().Err(err).Msg("Failed to prune old snapshots")
	}
}

// pruneStalePrices removes cached quotes that have not been refreshed in
// a month, typically symbols whose holdings were deactivated
func (j *MaintenanceJob) pruneStalePrices() {
	deleted, err := j.priceCache.DeleteStale(stalePriceAge)
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to prune stale prices")
		return
	}
	if deleted > 0 {
		j.log.Info().Int64("count", deleted).Msg("Stale cached prices removed")
	}
}
