package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/finai/folio/internal/modules/snapshots"
)

// SnapshotJob records a daily portfolio valuation snapshot for every owner.
type SnapshotJob struct {
	service *snapshots.Service
	timeout time.Duration
	log     zerolog.Logger
}

// NewSnapshotJob creates the snapshot job
func NewSnapshotJob(service *snapshots.Service, log zerolog.Logger) *SnapshotJob {
	return &SnapshotJob{
		service: service,
		timeout: 5 * time.Minute,
		log:     log.With().Str("job", "snapshot").Logger(),
	}
}

// Name returns the job name
func (j *SnapshotJob) Name() string {
	return "portfolio_snapshot"
}

// Run snapshots all owners. Per-owner failures are handled inside the
// service; only a store-level failure aborts the run.
func (j *SnapshotJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	return j.service.RecordAll(ctx)
}
