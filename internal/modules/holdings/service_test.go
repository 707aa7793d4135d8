package holdings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/finai/folio/internal/domain"
)

const testOwner = "3b44ab48-9c2e-4f0e-90f4-1f2b57a6a1fd"

func setupService(t *testing.T) (*Service, *MockQuoteClient, *Repository) {
	t.Helper()

	db := setupTestDB(t)
	quotes := new(MockQuoteClient)
	repo := NewRepository(db, testLogger())
	links := NewLinkRepository(db, testLogger())
	resolver := NewResolver(quotes, testLogger())

	return NewService(repo, links, resolver, testLogger()), quotes, repo
}

func stockInput() AddInvestmentInput {
	return AddInvestmentInput{
		Platform:       "Zerodha",
		Type:           domain.AssetTypeStock,
		Name:           "XYZ Corp",
		AmountInvested: 500,
		CurrentValue:   f64Ptr(500),
		Quantity:       f64Ptr(10),
		Ticker:         strPtr("xyz"),
		PurchasePrice:  f64Ptr(50),
	}
}

func TestAddInvestmentAppliesDefaults(t *testing.T) {
	svc, _, _ := setupService(t)

	created, err := svc.AddInvestment(testOwner, AddInvestmentInput{
		Platform:       "Groww",
		Type:           domain.AssetTypeMutualFund,
		Name:           "Index Fund",
		AmountInvested: 1000,
	})
	require.NoError(t, err)

	assert.Equal(t, 1000.0, created.CurrentValue)
	require.NotNil(t, created.Quantity)
	assert.Equal(t, 1.0, *created.Quantity)
	assert.Equal(t, domain.CurrencyINR, created.Currency)
	assert.Equal(t, domain.StatusActive, created.Status)
	assert.NotEmpty(t, created.ID)
}

func TestAddInvestmentNormalizesTicker(t *testing.T) {
	svc, _, _ := setupService(t)

	created, err := svc.AddInvestment(testOwner, stockInput())
	require.NoError(t, err)

	require.NotNil(t, created.Ticker)
	assert.Equal(t, "XYZ", *created.Ticker)
}

func TestAddInvestmentValidationNothingPersisted(t *testing.T) {
	svc, _, repo := setupService(t)

	input := stockInput()
	input.AmountInvested = 0

	_, err := svc.AddInvestment(testOwner, input)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amountInvested", verr.Field)

	found, err := repo.FindByOwner(testOwner)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestAddInvestmentStockRequiresTicker(t *testing.T) {
	svc, _, _ := setupService(t)

	input := stockInput()
	input.Ticker = nil

	_, err := svc.AddInvestment(testOwner, input)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "ticker", verr.Field)
}

func TestAddInvestmentInvalidOwner(t *testing.T) {
	svc, _, _ := setupService(t)

	var verr *domain.ValidationError

	_, err := svc.AddInvestment("", stockInput())
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "userId", verr.Field)

	_, err = svc.AddInvestment("not-a-uuid", stockInput())
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "userId", verr.Field)
}

func TestListInvestmentsEnrichesWithLivePrices(t *testing.T) {
	svc, quotes, _ := setupService(t)

	_, err := svc.AddInvestment(testOwner, stockInput())
	require.NoError(t, err)

	quotes.On("GetQuote", mock.Anything, "XYZ").
		Return(&domain.Quote{Ticker: "XYZ", Price: f64Ptr(55)}, nil)

	listed, err := svc.ListInvestments(context.Background(), testOwner)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, 55.0, listed[0].LivePrice)
	assert.Equal(t, 550.0, listed[0].CurrentValue)
}

func TestListInvestmentsEmptyPortfolio(t *testing.T) {
	svc, _, _ := setupService(t)

	listed, err := svc.ListInvestments(context.Background(), testOwner)
	require.NoError(t, err)
	assert.NotNil(t, listed)
	assert.Empty(t, listed)
}

func TestListInvestmentsSurvivesQuoteOutage(t *testing.T) {
	svc, quotes, _ := setupService(t)

	_, err := svc.AddInvestment(testOwner, stockInput())
	require.NoError(t, err)

	quotes.On("GetQuote", mock.Anything, "XYZ").
		Return(nil, errors.New("gateway down"))

	listed, err := svc.ListInvestments(context.Background(), testOwner)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, 50.0, listed[0].LivePrice)
}

func TestAggregatedHoldingsSumsPerPlatform(t *testing.T) {
	svc, _, _ := setupService(t)

	for _, in := range []AddInvestmentInput{
		{Platform: "Zerodha", Type: domain.AssetTypeMutualFund, Name: "Fund A", AmountInvested: 100},
		{Platform: "Zerodha", Type: domain.AssetTypeMutualFund, Name: "Fund B", AmountInvested: 250},
		{Platform: "Groww", Type: domain.AssetTypeMutualFund, Name: "Fund C", AmountInvested: 75},
	} {
		_, err := svc.AddInvestment(testOwner, in)
		require.NoError(t, err)
	}

	agg, err := svc.AggregatedHoldings(testOwner)
	require.NoError(t, err)
	require.Len(t, agg, 2)
	assert.Equal(t, 350.0, agg["Zerodha"].Total)
	assert.Equal(t, 75.0, agg["Groww"].Total)
}

func TestPlatformHoldingsRequiresPlatform(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.PlatformHoldings(testOwner, "")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "platform", verr.Field)
}

func TestRemoveInvestmentCrossOwner(t *testing.T) {
	svc, _, _ := setupService(t)

	created, err := svc.AddInvestment(testOwner, stockInput())
	require.NoError(t, err)

	otherOwner := "9f8e7d6c-5b4a-4f3e-9d2c-1b0a99887766"
	_, err = svc.RemoveInvestment(otherOwner, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	listedAgain, err := svc.PlatformHoldings(testOwner, "Zerodha")
	require.NoError(t, err)
	assert.Len(t, listedAgain, 1)
}

func TestRemoveInvestmentReturnsRecord(t *testing.T) {
	svc, _, _ := setupService(t)

	created, err := svc.AddInvestment(testOwner, stockInput())
	require.NoError(t, err)

	removed, err := svc.RemoveInvestment(testOwner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, removed.ID)
	assert.Equal(t, "XYZ Corp", removed.Name)
}

func TestPortfolioSummaryLivePriced(t *testing.T) {
	svc, quotes, _ := setupService(t)

	_, err := svc.AddInvestment(testOwner, stockInput())
	require.NoError(t, err)
	_, err = svc.AddInvestment(testOwner, AddInvestmentInput{
		Platform:       "Groww",
		Type:           domain.AssetTypeMutualFund,
		Name:           "Index Fund",
		AmountInvested: 1000,
		Quantity:       f64Ptr(0),
	})
	require.NoError(t, err)

	quotes.On("GetQuote", mock.Anything, "XYZ").
		Return(&domain.Quote{Ticker: "XYZ", Price: f64Ptr(55)}, nil)

	summary, err := svc.PortfolioSummary(context.Background(), testOwner)
	require.NoError(t, err)
	require.Len(t, summary.DetailedSummary, 2)
	// 10 * 55 from the stock plus the fund's stored 1000
	assert.Equal(t, 1550.0, summary.TotalValue)
}

func TestChartDataUsesStoredValues(t *testing.T) {
	svc, quotes, _ := setupService(t)

	_, err := svc.AddInvestment(testOwner, stockInput())
	require.NoError(t, err)

	buckets, err := svc.ChartData(testOwner)
	require.NoError(t, err)
	assert.Equal(t, 500.0, buckets.ByPlatform["Zerodha"])
	assert.Equal(t, 500.0, buckets.ByType["Stock"])
	require.Len(t, buckets.ByAsset, 1)
	quotes.AssertNotCalled(t, "GetQuote", mock.Anything, mock.Anything)
}

func TestConnectAccountValidation(t *testing.T) {
	svc, _, _ := setupService(t)

	var verr *domain.ValidationError

	err := svc.ConnectAccount(testOwner, "", "ZD-1")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "platform", verr.Field)

	err = svc.ConnectAccount(testOwner, "Zerodha", "")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "accountId", verr.Field)

	err = svc.ConnectAccount(testOwner, "Zerodha", "ZD-1")
	require.NoError(t, err)
	// linking the same account again is a no-op
	err = svc.ConnectAccount(testOwner, "Zerodha", "ZD-1")
	require.NoError(t, err)
}
