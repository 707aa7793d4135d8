// Package domain provides core domain models and types.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Currency represents a currency code carried on a holding.
// No conversion is performed; the tag travels with the value.
type Currency string

const (
	CurrencyINR Currency = "INR"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// AssetType represents the kind of instrument a holding records.
type AssetType string

const (
	AssetTypeStock      AssetType = "Stock"
	AssetTypeMutualFund AssetType = "Mutual Fund"
	AssetTypeETF        AssetType = "ETF"
	AssetTypeBond       AssetType = "Bond"
	AssetTypeOther      AssetType = "Other"
)

// HoldingStatus tracks the lifecycle of a holding.
type HoldingStatus string

const (
	StatusActive  HoldingStatus = "Active"
	StatusSold    HoldingStatus = "Sold"
	StatusPending HoldingStatus = "Pending"
)

// Holding is a single recorded investment position owned by one user.
//
// Ticker, Quantity and PurchasePrice are required for market-traded types
// (Stock, ETF) and absent otherwise, so they are pointers: nil means the
// field was never recorded, which is distinct from a recorded zero.
type Holding struct {
	ID             string        `json:"id"`
	Owner          string        `json:"userId"`
	Platform       string        `json:"platform"`
	Type           AssetType     `json:"type"`
	Name           string        `json:"name"`
	Ticker         *string       `json:"ticker,omitempty"`
	Quantity       *float64      `json:"quantity,omitempty"`
	AmountInvested float64       `json:"amountInvested"`
	CurrentValue   float64       `json:"currentValue"`
	PurchasePrice  *float64      `json:"purchasePrice,omitempty"`
	Currency       Currency      `json:"currency"`
	Status         HoldingStatus `json:"status"`
	CreatedAt      time.Time     `json:"createdAt"`
	LastUpdated    time.Time     `json:"lastUpdated"`
}

// RequiresMarketFields reports whether this asset type must carry
// ticker, quantity and purchase price.
func (t AssetType) RequiresMarketFields() bool {
	return t == AssetTypeStock || t == AssetTypeETF
}

// Valid reports whether the asset type is one of the known variants.
func (t AssetType) Valid() bool {
	switch t {
	case AssetTypeStock, AssetTypeMutualFund, AssetTypeETF, AssetTypeBond, AssetTypeOther:
		return true
	}
	return false
}

// Valid reports whether the currency is a supported code.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyINR, CurrencyUSD, CurrencyEUR:
		return true
	}
	return false
}

// Valid reports whether the status is a known lifecycle state.
func (s HoldingStatus) Valid() bool {
	switch s {
	case StatusActive, StatusSold, StatusPending:
		return true
	}
	return false
}

// Normalize trims free-text fields and uppercases the ticker.
func (h *Holding) Normalize() {
	h.Platform = strings.TrimSpace(h.Platform)
	h.Name = strings.TrimSpace(h.Name)
	if h.Ticker != nil {
		t := strings.ToUpper(strings.TrimSpace(*h.Ticker))
		if t == "" {
			h.Ticker = nil
		} else {
			h.Ticker = &t
		}
	}
}

// Validate checks the per-type field requirements. Each asset type declares
// its own required-field set: market-traded types (Stock, ETF) must carry
// ticker, quantity and purchase price; the rest may omit them.
func (h *Holding) Validate() error {
	if h.Platform == "" {
		return &ValidationError{Field: "platform", Message: "platform is required"}
	}
	if h.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if !h.Type.Valid() {
		return &ValidationError{Field: "type", Message: fmt.Sprintf("unknown asset type %q", h.Type)}
	}
	if h.AmountInvested <= 0 {
		return &ValidationError{Field: "amountInvested", Message: "amount invested must be positive"}
	}
	if h.CurrentValue < 0 {
		return &ValidationError{Field: "currentValue", Message: "current value cannot be negative"}
	}
	if !h.Currency.Valid() {
		return &ValidationError{Field: "currency", Message: fmt.Sprintf("unsupported currency %q", h.Currency)}
	}
	if !h.Status.Valid() {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", h.Status)}
	}

	switch {
	case h.Type.RequiresMarketFields():
		if h.Ticker == nil || *h.Ticker == "" {
			return &ValidationError{Field: "ticker", Message: fmt.Sprintf("ticker is required for %s holdings", h.Type)}
		}
		if h.Quantity == nil {
			return &ValidationError{Field: "quantity", Message: fmt.Sprintf("quantity is required for %s holdings", h.Type)}
		}
		if *h.Quantity < 0 {
			return &ValidationError{Field: "quantity", Message: "quantity cannot be negative"}
		}
		if h.PurchasePrice == nil {
			return &ValidationError{Field: "purchasePrice", Message: fmt.Sprintf("purchase price is required for %s holdings", h.Type)}
		}
		if *h.PurchasePrice < 0 {
			return &ValidationError{Field: "purchasePrice", Message: "purchase price cannot be negative"}
		}
	default:
		if h.Quantity != nil && *h.Quantity < 0 {
			return &ValidationError{Field: "quantity", Message: "quantity cannot be negative"}
		}
		if h.PurchasePrice != nil && *h.PurchasePrice < 0 {
			return &ValidationError{Field: "purchasePrice", Message: "purchase price cannot be negative"}
		}
	}

	return nil
}

// EnrichedHolding is a holding plus its resolved live price. It exists only
// for the duration of one query and is never persisted; CurrentValue on the
// embedded copy is recomputed when live pricing applied.
type EnrichedHolding struct {
	Holding
	LivePrice float64 `json:"livePrice"`
}

// Quote is a best-effort market quote for one ticker. Price is nil when the
// provider returned no usable price for the symbol.
type Quote struct {
	Ticker string   `json:"ticker"`
	Price  *float64 `json:"price,omitempty"`
}
