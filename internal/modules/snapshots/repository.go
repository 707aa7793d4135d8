// Package snapshots records daily portfolio valuations and derives the
// growth series the dashboard charts.
package snapshots

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Snapshot is one owner's total portfolio value for one day.
type Snapshot struct {
	Owner      string    `json:"userId"`
	Day        string    `json:"day"` // YYYY-MM-DD
	TotalValue float64   `json:"totalValue"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Repository persists portfolio snapshots.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new snapshot repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "snapshots").Logger(),
	}
}

// Upsert records a snapshot, replacing any earlier value for the same
// owner and day. The job may run more than once per day; the last value wins.
func (r *Repository) Upsert(s Snapshot) error {
	_, err := r.db.Exec(
		`INSERT INTO portfolio_snapshots (owner, day, total_value, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(owner, day) DO UPDATE SET total_value = excluded.total_value, created_at = excluded.created_at`,
		s.Owner, s.Day, s.TotalValue, s.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

// FindByOwner returns the owner's snapshots in day order.
func (r *Repository) FindByOwner(owner string) ([]Snapshot, error) {
	rows, err := r.db.Query(
		`SELECT owner, day, total_value, created_at FROM portfolio_snapshots
		 WHERE owner = ? ORDER BY day`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []Snapshot{}
	for rows.Next() {
		var (
			s         Snapshot
			createdAt int64
		)
		if err := rows.Scan(&s.Owner, &s.Day, &s.TotalValue, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		s.CreatedAt = time.Unix(createdAt, 0).UTC()
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}

	return snapshots, nil
}
