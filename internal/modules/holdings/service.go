package holdings

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/finai/folio/internal/domain"
)

// RepositoryInterface defines the holding store operations the service needs
type RepositoryInterface interface {
	FindByOwner(owner string) ([]domain.Holding, error)
	FindByOwnerAndPlatform(owner, platform string) ([]domain.Holding, error)
	Insert(h domain.Holding) (*domain.Holding, error)
	DeleteByIDAndOwner(id, owner string) (*domain.Holding, error)
}

// LinkRepositoryInterface defines platform link persistence
type LinkRepositoryInterface interface {
	Upsert(link PlatformLink) error
}

// Service orchestrates the holding store, valuation resolver and aggregation
// engine to answer the portfolio query shapes. Each operation is a stateless
// request-response cycle; nothing is cached across calls.
type Service struct {
	repo     RepositoryInterface
	links    LinkRepositoryInterface
	resolver *Resolver
	log      zerolog.Logger
}

// NewService creates a new portfolio service
func NewService(repo RepositoryInterface, links LinkRepositoryInterface, resolver *Resolver, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		links:    links,
		resolver: resolver,
		log:      log.With().Str("service", "portfolio").Logger(),
	}
}

// AddInvestmentInput carries the caller-supplied fields for a new holding.
// Optional fields are pointers; defaults are applied by AddInvestment.
type AddInvestmentInput struct {
	Platform       string               `json:"platform"`
	Type           domain.AssetType     `json:"type"`
	Name           string               `json:"name"`
	AmountInvested float64              `json:"amountInvested"`
	CurrentValue   *float64             `json:"currentValue,omitempty"`
	Quantity       *float64             `json:"quantity,omitempty"`
	Ticker         *string              `json:"ticker,omitempty"`
	PurchasePrice  *float64             `json:"purchasePrice,omitempty"`
	Currency       domain.Currency      `json:"currency,omitempty"`
	Status         domain.HoldingStatus `json:"status,omitempty"`
}

// ListInvestments returns the owner's holdings, live-priced, most recently
// created first. Quote lookups fan out concurrently and each failure is
// contained by the resolver, so the whole list succeeds even when every
// lookup fails.
func (s *Service) ListInvestments(ctx context.Context, owner string) ([]domain.EnrichedHolding, error) {
	if err := validateOwner(owner); err != nil {
		return nil, err
	}

	stored, err := s.repo.FindByOwner(owner)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holdings: %w", err)
	}

	return s.resolveAll(ctx, stored), nil
}

// AddInvestment validates the input, applies defaults and persists a new
// holding. CurrentValue defaults to AmountInvested, Quantity to 1, Currency
// to INR and Status to Active.
func (s *Service) AddInvestment(owner string, input AddInvestmentInput) (*domain.Holding, error) {
	if err := validateOwner(owner); err != nil {
		return nil, err
	}

	currentValue := input.AmountInvested
	if input.CurrentValue != nil {
		currentValue = *input.CurrentValue
	}

	quantity := input.Quantity
	if quantity == nil {
		one := 1.0
		quantity = &one
	}

	currency := input.Currency
	if currency == "" {
		currency = domain.CurrencyINR
	}

	status := input.Status
	if status == "" {
		status = domain.StatusActive
	}

	holding := domain.Holding{
		Owner:          owner,
		Platform:       input.Platform,
		Type:           input.Type,
		Name:           input.Name,
		Ticker:         input.Ticker,
		Quantity:       quantity,
		AmountInvested: input.AmountInvested,
		CurrentValue:   currentValue,
		PurchasePrice:  input.PurchasePrice,
		Currency:       currency,
		Status:         status,
	}

	holding.Normalize()
	if err := holding.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Insert(holding)
	if err != nil {
		return nil, fmt.Errorf("failed to persist holding: %w", err)
	}

	s.log.Info().
		Str("owner", owner).
		Str("id", created.ID).
		Str("platform", created.Platform).
		Str("type", string(created.Type)).
		Msg("Investment added")

	return created, nil
}

// AggregatedHoldings groups the owner's holdings by platform using stored
// values. No live pricing is performed.
func (s *Service) AggregatedHoldings(owner string) (PlatformAggregate, error) {
	if err := validateOwner(owner); err != nil {
		return nil, err
	}

	stored, err := s.repo.FindByOwner(owner)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holdings: %w", err)
	}

	return AggregateByPlatform(stored), nil
}

// PlatformHoldings returns the owner's holdings on one platform, unaggregated.
func (s *Service) PlatformHoldings(owner, platform string) ([]domain.Holding, error) {
	if err := validateOwner(owner); err != nil {
		return nil, err
	}
	if platform == "" {
		return nil, &domain.ValidationError{Field: "platform", Message: "platform is required"}
	}

	found, err := s.repo.FindByOwnerAndPlatform(owner, platform)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch platform holdings: %w", err)
	}

	return found, nil
}

// RemoveInvestment deletes the holding iff it belongs to the owner and
// returns the removed record. A wrong id or wrong owner surfaces
// domain.ErrNotFound.
func (s *Service) RemoveInvestment(owner, investmentID string) (*domain.Holding, error) {
	if err := validateOwner(owner); err != nil {
		return nil, err
	}
	if investmentID == "" {
		return nil, &domain.ValidationError{Field: "investmentId", Message: "investment id is required"}
	}

	removed, err := s.repo.DeleteByIDAndOwner(investmentID, owner)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("owner", owner).
		Str("id", investmentID).
		Msg("Investment removed")

	return removed, nil
}

// PortfolioSummary returns the live-priced roll-up of the owner's whole
// portfolio: one row per holding plus the rounded total.
func (s *Service) PortfolioSummary(ctx context.Context, owner string) (PortfolioSummary, error) {
	if err := validateOwner(owner); err != nil {
		return PortfolioSummary{}, err
	}

	stored, err := s.repo.FindByOwner(owner)
	if err != nil {
		return PortfolioSummary{}, fmt.Errorf("failed to fetch holdings: %w", err)
	}

	return SummarizePortfolio(s.resolveAll(ctx, stored)), nil
}

// ChartData returns the chart buckets for the owner's holdings, valued at
// stored currentValue (not live-priced).
func (s *Service) ChartData(owner string) (ChartBuckets, error) {
	if err := validateOwner(owner); err != nil {
		return ChartBuckets{}, err
	}

	stored, err := s.repo.FindByOwner(owner)
	if err != nil {
		return ChartBuckets{}, fmt.Errorf("failed to fetch holdings: %w", err)
	}

	return BuildChartBuckets(stored), nil
}

// ConnectAccount records that the owner linked a brokerage account on a
// platform. Linking the same account twice is a no-op.
func (s *Service) ConnectAccount(owner, platform, accountID string) error {
	if err := validateOwner(owner); err != nil {
		return err
	}
	if platform == "" {
		return &domain.ValidationError{Field: "platform", Message: "platform is required"}
	}
	if accountID == "" {
		return &domain.ValidationError{Field: "accountId", Message: "account id is required"}
	}

	link := PlatformLink{
		Owner:     owner,
		Platform:  platform,
		AccountID: accountID,
		LinkedAt:  time.Now().UTC(),
	}
	if err := s.links.Upsert(link); err != nil {
		return fmt.Errorf("failed to link account: %w", err)
	}

	return nil
}

// resolveAll fans the valuation of each holding out to its own goroutine and
// joins before returning: no partial results. Output order matches input
// order. Individual resolutions cannot fail (quote failures are contained in
// the resolver), so the join collects values only.
func (s *Service) resolveAll(ctx context.Context, stored []domain.Holding) []domain.EnrichedHolding {
	enriched := make([]domain.EnrichedHolding, len(stored))

	var wg sync.WaitGroup
	for i, h := range stored {
		wg.Add(1)
		go func(i int, h domain.Holding) {
			defer wg.Done()
			enriched[i] = s.resolver.ResolveLiveValue(ctx, h)
		}(i, h)
	}
	wg.Wait()

	return enriched
}

// validateOwner checks the owner identifier: present and a well-formed UUID.
func validateOwner(owner string) error {
	if owner == "" {
		return &domain.ValidationError{Field: "userId", Message: "missing user id"}
	}
	if _, err := uuid.Parse(owner); err != nil {
		return &domain.ValidationError{Field: "userId", Message: "invalid user id"}
	}
	return nil
}
