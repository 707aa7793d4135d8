// Package holdings implements the portfolio core: the holding store,
// valuation resolver, aggregation engine and the portfolio service that
// composes them.
package holdings

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/finai/folio/internal/domain"
)

// holdingColumns is the list of columns for the holdings table.
// Used to avoid SELECT * which can break when the schema changes.
const holdingColumns = `id, owner, platform, type, name, ticker, quantity,
amount_invested, current_value, purchase_price, currency, status,
created_at, last_updated`

// Repository handles holding persistence. It is the only writer of holding
// records; valuation and aggregation operate on copies.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new holdings repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "holdings").Logger(),
	}
}

// FindByOwner returns all holdings for an owner, most recently created
// first. An owner with no holdings yields an empty slice, not an error.
func (r *Repository) FindByOwner(owner string) ([]domain.Holding, error) {
	query := "SELECT " + holdingColumns + " FROM holdings WHERE owner = ? ORDER BY created_at DESC, rowid DESC"

	rows, err := r.db.Query(query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings by owner: %w", err)
	}
	defer rows.Close()

	return r.scanHoldings(rows)
}

// FindByOwnerAndPlatform returns the owner's holdings on one platform,
// most recently created first.
func (r *Repository) FindByOwnerAndPlatform(owner, platform string) ([]domain.Holding, error) {
	query := "SELECT " + holdingColumns + " FROM holdings WHERE owner = ? AND platform = ? ORDER BY created_at DESC, rowid DESC"

	rows, err := r.db.Query(query, owner, platform)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings by owner and platform: %w", err)
	}
	defer rows.Close()

	return r.scanHoldings(rows)
}

// Insert persists a new holding. The ID and timestamps are assigned here;
// whatever the caller set on those fields is overwritten.
func (r *Repository) Insert(h domain.Holding) (*domain.Holding, error) {
	now := time.Now().UTC()
	h.ID = uuid.NewString()
	h.CreatedAt = now
	h.LastUpdated = now

	query := `INSERT INTO holdings (` + holdingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query,
		h.ID, h.Owner, h.Platform, string(h.Type), h.Name,
		nullString(h.Ticker), nullFloat(h.Quantity),
		h.AmountInvested, h.CurrentValue, nullFloat(h.PurchasePrice),
		string(h.Currency), string(h.Status),
		h.CreatedAt.Unix(), h.LastUpdated.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert holding: %w", err)
	}

	r.log.Debug().
		Str("id", h.ID).
		Str("owner", h.Owner).
		Str("platform", h.Platform).
		Msg("Holding inserted")

	return &h, nil
}

// UpdateCurrentValue writes a refreshed stored valuation and bumps
// last_updated. Used by the snapshot refresh job, never by query paths.
func (r *Repository) UpdateCurrentValue(id, owner string, currentValue float64) error {
	res, err := r.db.Exec(
		`UPDATE holdings SET current_value = ?, last_updated = ? WHERE id = ? AND owner = ?`,
		currentValue, time.Now().UTC().Unix(), id, owner,
	)
	if err != nil {
		return fmt.Errorf("failed to update holding value: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// DeleteByIDAndOwner removes a holding iff it belongs to the owner and
// returns the deleted record. A wrong id or wrong owner yields
// domain.ErrNotFound and leaves the store untouched.
func (r *Repository) DeleteByIDAndOwner(id, owner string) (*domain.Holding, error) {
	query := "SELECT " + holdingColumns + " FROM holdings WHERE id = ? AND owner = ?"

	rows, err := r.db.Query(query, id, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding for delete: %w", err)
	}

	found, err := r.scanHoldings(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, domain.ErrNotFound
	}

	if _, err := r.db.Exec(`DELETE FROM holdings WHERE id = ? AND owner = ?`, id, owner); err != nil {
		return nil, fmt.Errorf("failed to delete holding: %w", err)
	}

	r.log.Debug().Str("id", id).Str("owner", owner).Msg("Holding deleted")

	return &found[0], nil
}

// ListOwners returns every distinct owner with at least one holding.
// Used by the snapshot job to walk all portfolios.
func (r *Repository) ListOwners() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT owner FROM holdings ORDER BY owner`)
	if err != nil {
		return nil, fmt.Errorf("failed to query owners: %w", err)
	}
	defer rows.Close()

	owners := []string{}
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate owners: %w", err)
	}

	return owners, nil
}

// scanHoldings reads all rows into holdings, preserving row order
func (r *Repository) scanHoldings(rows *sql.Rows) ([]domain.Holding, error) {
	holdings := []domain.Holding{}

	for rows.Next() {
		var (
			h             domain.Holding
			typ           string
			currency      string
			status        string
			ticker        sql.NullString
			quantity      sql.NullFloat64
			purchasePrice sql.NullFloat64
			createdAt     int64
			lastUpdated   int64
		)

		if err := rows.Scan(
			&h.ID, &h.Owner, &h.Platform, &typ, &h.Name,
			&ticker, &quantity, &h.AmountInvested, &h.CurrentValue,
			&purchasePrice, &currency, &status, &createdAt, &lastUpdated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}

		h.Type = domain.AssetType(typ)
		h.Currency = domain.Currency(currency)
		h.Status = domain.HoldingStatus(status)
		if ticker.Valid {
			h.Ticker = &ticker.String
		}
		if quantity.Valid {
			h.Quantity = &quantity.Float64
		}
		if purchasePrice.Valid {
			h.PurchasePrice = &purchasePrice.Float64
		}
		h.CreatedAt = time.Unix(createdAt, 0).UTC()
		h.LastUpdated = time.Unix(lastUpdated, 0).UTC()

		holdings = append(holdings, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holdings: %w", err)
	}

	return holdings, nil
}

func nullString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func nullFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
