package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func validStockHolding() Holding {
	return Holding{
		Owner:          "11111111-1111-1111-1111-111111111111",
		Platform:       "Zerodha",
		Type:           AssetTypeStock,
		Name:           "Reliance Industries",
		Ticker:         strPtr("RELIANCE.NS"),
		Quantity:       f64Ptr(10),
		AmountInvested: 5000,
		CurrentValue:   5500,
		PurchasePrice:  f64Ptr(500),
		Currency:       CurrencyINR,
		Status:         StatusActive,
	}
}

func TestHoldingValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Holding)
		wantErr string
	}{
		{
			name:   "valid stock",
			mutate: func(h *Holding) {},
		},
		{
			name: "valid bond without market fields",
			mutate: func(h *Holding) {
				h.Type = AssetTypeBond
				h.Ticker = nil
				h.Quantity = nil
				h.PurchasePrice = nil
			},
		},
		{
			name:    "missing platform",
			mutate:  func(h *Holding) { h.Platform = "" },
			wantErr: "platform",
		},
		{
			name:    "missing name",
			mutate:  func(h *Holding) { h.Name = "" },
			wantErr: "name",
		},
		{
			name:    "unknown type",
			mutate:  func(h *Holding) { h.Type = "Crypto" },
			wantErr: "type",
		},
		{
			name:    "zero amount invested",
			mutate:  func(h *Holding) { h.AmountInvested = 0 },
			wantErr: "amountInvested",
		},
		{
			name:    "negative amount invested",
			mutate:  func(h *Holding) { h.AmountInvested = -10 },
			wantErr: "amountInvested",
		},
		{
			name:    "stock without ticker",
			mutate:  func(h *Holding) { h.Ticker = nil },
			wantErr: "ticker",
		},
		{
			name: "etf without quantity",
			mutate: func(h *Holding) {
				h.Type = AssetTypeETF
				h.Quantity = nil
			},
			wantErr: "quantity",
		},
		{
			name:    "stock without purchase price",
			mutate:  func(h *Holding) { h.PurchasePrice = nil },
			wantErr: "purchasePrice",
		},
		{
			name:    "negative quantity",
			mutate:  func(h *Holding) { h.Quantity = f64Ptr(-1) },
			wantErr: "quantity",
		},
		{
			name:    "unsupported currency",
			mutate:  func(h *Holding) { h.Currency = "GBP" },
			wantErr: "currency",
		},
		{
			name:    "unknown status",
			mutate:  func(h *Holding) { h.Status = "Archived" },
			wantErr: "status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := validStockHolding()
			tt.mutate(&h)

			err := h.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.wantErr, validationErr.Field)
		})
	}
}

func TestHoldingNormalize(t *testing.T) {
	h := validStockHolding()
	h.Platform = "  Zerodha "
	h.Name = " Reliance Industries "
	h.Ticker = strPtr(" reliance.ns ")

	h.Normalize()

	assert.Equal(t, "Zerodha", h.Platform)
	assert.Equal(t, "Reliance Industries", h.Name)
	require.NotNil(t, h.Ticker)
	assert.Equal(t, "RELIANCE.NS", *h.Ticker)
}

func TestHoldingNormalizeBlankTicker(t *testing.T) {
	h := validStockHolding()
	h.Ticker = strPtr("   ")

	h.Normalize()

	assert.Nil(t, h.Ticker)
}

func TestAssetTypeRequiresMarketFields(t *testing.T) {
	assert.True(t, AssetTypeStock.RequiresMarketFields())
	assert.True(t, AssetTypeETF.RequiresMarketFields())
	assert.False(t, AssetTypeMutualFund.RequiresMarketFields())
	assert.False(t, AssetTypeBond.RequiresMarketFields())
	assert.False(t, AssetTypeOther.RequiresMarketFields())
}
