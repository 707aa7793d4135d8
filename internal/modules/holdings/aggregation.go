package holdings

import (
	"fmt"
	"math"
	"strconv"

	"github.com/finai/folio/internal/domain"
)

// PlatformGroup is one platform's slice of a portfolio: the summed stored
// value plus a display line per holding, in store order.
type PlatformGroup struct {
	Total  float64  `json:"total"`
	Assets []string `json:"assets"`
}

// PlatformAggregate maps platform name to its group.
type PlatformAggregate map[string]*PlatformGroup

// SummaryRow is one live-priced row of the portfolio summary. Quantity is
// the recorded number, or the string "N/A" for holdings without one.
type SummaryRow struct {
	Name       string           `json:"name"`
	Platform   string           `json:"platform"`
	Type       domain.AssetType `json:"type"`
	Quantity   interface{}      `json:"quantity"`
	LivePrice  float64          `json:"livePrice"`
	CurrentVal float64          `json:"currentVal"`
}

// PortfolioSummary is the live-priced roll-up of a whole portfolio.
type PortfolioSummary struct {
	TotalValue      float64      `json:"totalValue"`
	DetailedSummary []SummaryRow `json:"detailedSummary"`
}

// AssetPoint is one holding's contribution to the by-asset chart series.
type AssetPoint struct {
	Name     string           `json:"name"`
	Value    float64          `json:"value"`
	Platform string           `json:"platform"`
	Type     domain.AssetType `json:"type"`
}

// ChartBuckets groups stored values along the three chart dimensions.
type ChartBuckets struct {
	ByPlatform map[string]float64 `json:"byPlatform"`
	ByType     map[string]float64 `json:"byType"`
	ByAsset    []AssetPoint       `json:"byAsset"`
}

// currencySymbols maps a currency code to its display symbol.
var currencySymbols = map[domain.Currency]string{
	domain.CurrencyINR: "₹",
	domain.CurrencyUSD: "$",
	domain.CurrencyEUR: "€",
}

// AggregateByPlatform groups holdings by platform, summing stored current
// values and collecting a "name: value" display string per holding. Input
// order is preserved within each group. Empty input yields an empty map.
func AggregateByPlatform(holdings []domain.Holding) PlatformAggregate {
	agg := PlatformAggregate{}

	for _, h := range holdings {
		group, ok := agg[h.Platform]
		if !ok {
			group = &PlatformGroup{Assets: []string{}}
			agg[h.Platform] = group
		}
		group.Total += h.CurrentValue
		group.Assets = append(group.Assets, formatAssetLine(h))
	}

	return agg
}

// SummarizePortfolio rolls up already-enriched holdings into one summary.
// Each row's value is quantity * livePrice when a non-zero quantity was
// recorded, else the stored current value. The total accumulates unrounded
// contributions and is rounded once at the end, as is each row's displayed
// value. Empty input yields {0, []}.
func SummarizePortfolio(holdings []domain.EnrichedHolding) PortfolioSummary {
	summary := PortfolioSummary{DetailedSummary: []SummaryRow{}}

	var total float64
	for _, h := range holdings {
		currentVal := h.CurrentValue
		if h.Quantity != nil && *h.Quantity != 0 {
			currentVal = *h.Quantity * h.LivePrice
		}
		total += currentVal

		var quantity interface{} = "N/A"
		if h.Quantity != nil && *h.Quantity != 0 {
			quantity = *h.Quantity
		}

		summary.DetailedSummary = append(summary.DetailedSummary, SummaryRow{
			Name:       h.Name,
			Platform:   h.Platform,
			Type:       h.Type,
			Quantity:   quantity,
			LivePrice:  h.LivePrice,
			CurrentVal: math.Round(currentVal),
		})
	}

	summary.TotalValue = math.Round(total)
	return summary
}

// BuildChartBuckets accumulates stored current values by platform and type
// and emits one asset point per holding, in store order. This view is not
// live-priced. Empty input yields all-empty buckets.
func BuildChartBuckets(holdings []domain.Holding) ChartBuckets {
	buckets := ChartBuckets{
		ByPlatform: map[string]float64{},
		ByType:     map[string]float64{},
		ByAsset:    []AssetPoint{},
	}

	for _, h := range holdings {
		buckets.ByPlatform[h.Platform] += h.CurrentValue
		buckets.ByType[string(h.Type)] += h.CurrentValue
		buckets.ByAsset = append(buckets.ByAsset, AssetPoint{
			Name:     h.Name,
			Value:    h.CurrentValue,
			Platform: h.Platform,
			Type:     h.Type,
		})
	}

	return buckets
}

// formatAssetLine renders one holding as "name: ₹value" for the platform
// aggregate display list.
func formatAssetLine(h domain.Holding) string {
	symbol, ok := currencySymbols[h.Currency]
	if !ok {
		symbol = string(h.Currency) + " "
	}
	return fmt.Sprintf("%s: %s%s", h.Name, symbol, strconv.FormatFloat(h.CurrentValue, 'f', -1, 64))
}
