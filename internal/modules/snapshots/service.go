package snapshots

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/finai/folio/internal/modules/holdings"
)

// PortfolioValuer provides the live-priced portfolio total for one owner
type PortfolioValuer interface {
	PortfolioSummary(ctx context.Context, owner string) (holdings.PortfolioSummary, error)
}

// OwnerLister enumerates owners that currently hold investments
type OwnerLister interface {
	ListOwners() ([]string, error)
}

// GrowthPoint is one day of the growth series.
type GrowthPoint struct {
	Day   string  `json:"day"`
	Value float64 `json:"value"`
}

// GrowthSeries is the snapshot history for one owner plus derived stats.
// GrowthPct is total growth from the first to the last snapshot; Volatility
// is the standard deviation of day-over-day returns. Both are zero until
// enough history has accumulated.
type GrowthSeries struct {
	Points     []GrowthPoint `json:"points"`
	GrowthPct  float64       `json:"growthPct"`
	Volatility float64       `json:"volatility"`
}

// Service records portfolio snapshots and serves growth series.
type Service struct {
	repo   *Repository
	valuer PortfolioValuer
	owners OwnerLister
	log    zerolog.Logger
}

// NewService creates a new snapshot service
func NewService(repo *Repository, valuer PortfolioValuer, owners OwnerLister, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		valuer: valuer,
		owners: owners,
		log:    log.With().Str("service", "snapshots").Logger(),
	}
}

// RecordSnapshot stores today's live-priced portfolio total for one owner.
func (s *Service) RecordSnapshot(ctx context.Context, owner string) error {
	summary, err := s.valuer.PortfolioSummary(ctx, owner)
	if err != nil {
		return fmt.Errorf("failed to value portfolio for snapshot: %w", err)
	}

	now := time.Now().UTC()
	snapshot := Snapshot{
		Owner:      owner,
		Day:        now.Format("2006-01-02"),
		TotalValue: summary.TotalValue,
		CreatedAt:  now,
	}
	if err := s.repo.Upsert(snapshot); err != nil {
		return err
	}

	s.log.Debug().
		Str("owner", owner).
		Str("day", snapshot.Day).
		Float64("total_value", snapshot.TotalValue).
		Msg("Snapshot recorded")

	return nil
}

// RecordAll snapshots every owner with holdings. A failure for one owner is
// logged and does not stop the others.
func (s *Service) RecordAll(ctx context.Context) error {
	owners, err := s.owners.ListOwners()
	if err != nil {
		return fmt.Errorf("failed to list owners: %w", err)
	}

	var failures int
	for _, owner := range owners {
		if err := s.RecordSnapshot(ctx, owner); err != nil {
			failures++
			s.log.Error().Err(err).Str("owner", owner).Msg("Failed to record snapshot")
		}
	}

	s.log.Info().
		Int("owners", len(owners)).
		Int("failures", failures).
		Msg("Snapshot run completed")

	return nil
}

// Growth returns the owner's snapshot series with growth and volatility
// stats. No history is a success with an empty series.
func (s *Service) Growth(owner string) (GrowthSeries, error) {
	stored, err := s.repo.FindByOwner(owner)
	if err != nil {
		return GrowthSeries{}, err
	}

	series := GrowthSeries{Points: make([]GrowthPoint, 0, len(stored))}
	values := make([]float64, 0, len(stored))
	for _, snap := range stored {
		series.Points = append(series.Points, GrowthPoint{Day: snap.Day, Value: snap.TotalValue})
		values = append(values, snap.TotalValue)
	}

	if len(values) >= 2 {
		if first := values[0]; first != 0 {
			series.GrowthPct = (values[len(values)-1] - first) / first * 100
		}

		returns := make([]float64, 0, len(values)-1)
		for i := 1; i < len(values); i++ {
			if values[i-1] != 0 {
				returns = append(returns, values[i]/values[i-1]-1)
			}
		}
		if len(returns) >= 2 {
			series.Volatility = stat.StdDev(returns, nil)
		}
	}

	return series, nil
}
