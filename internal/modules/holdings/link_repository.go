package holdings

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// PlatformLink records that an owner connected a brokerage account.
type PlatformLink struct {
	Owner     string    `json:"userId"`
	Platform  string    `json:"platform"`
	AccountID string    `json:"accountId"`
	LinkedAt  time.Time `json:"linkedAt"`
}

// LinkRepository persists platform account links.
type LinkRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewLinkRepository creates a new platform link repository
func NewLinkRepository(db *sql.DB, log zerolog.Logger) *LinkRepository {
	return &LinkRepository{
		db:  db,
		log: log.With().Str("repo", "platform_links").Logger(),
	}
}

// Upsert records a link. Re-linking the same (owner, platform, account) is
// idempotent: the original linked_at is kept.
func (r *LinkRepository) Upsert(link PlatformLink) error {
	_, err := r.db.Exec(
		`INSERT INTO platform_links (owner, platform, account_id, linked_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(owner, platform, account_id) DO NOTHING`,
		link.Owner, link.Platform, link.AccountID, link.LinkedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert platform link: %w", err)
	}

	r.log.Info().
		Str("owner", link.Owner).
		Str("platform", link.Platform).
		Str("account_id", link.AccountID).
		Msg("Platform account linked")

	return nil
}

// FindByOwner returns the owner's platform links in link order.
func (r *LinkRepository) FindByOwner(owner string) ([]PlatformLink, error) {
	rows, err := r.db.Query(
		`SELECT owner, platform, account_id, linked_at FROM platform_links
		 WHERE owner = ? ORDER BY linked_at, platform`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query platform links: %w", err)
	}
	defer rows.Close()

	links := []PlatformLink{}
	for rows.Next() {
		var (
			link     PlatformLink
			linkedAt int64
		)
		if err := rows.Scan(&link.Owner, &link.Platform, &link.AccountID, &linkedAt); err != nil {
			return nil, fmt.Errorf("failed to scan platform link: %w", err)
		}
		link.LinkedAt = time.Unix(linkedAt, 0).UTC()
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate platform links: %w", err)
	}

	return links, nil
}
