package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "modernc.org/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/finai/folio/internal/domain"
	"github.com/finai/folio/internal/modules/holdings"
)

const testOwner = "3b44ab48-9c2e-4f0e-90f4-1f2b57a6a1fd"

type mockQuoteClient struct {
	mock.Mock
}

func (m *mockQuoteClient) GetQuote(ctx context.Context, ticker string) (*domain.Quote, error) {
	args := m.Called(ctx, ticker)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func setupHandler(t *testing.T) (*Handler, *mockQuoteClient) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE holdings (
			id TEXT PRIMARY KEY,
			owner TEXT NOT NULL,
			platform TEXT NOT NULL,
			type TEXT NOT NULL,
			name TEXT NOT NULL,
			ticker TEXT,
			quantity REAL,
			amount_invested REAL NOT NULL,
			current_value REAL NOT NULL,
			purchase_price REAL,
			currency TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			last_updated INTEGER NOT NULL
		);
		CREATE TABLE platform_links (
			owner TEXT NOT NULL,
			platform TEXT NOT NULL,
			account_id TEXT NOT NULL,
			linked_at INTEGER NOT NULL,
			PRIMARY KEY (owner, platform, account_id)
		);
	`)
	require.NoError(t, err)

	log := zerolog.New(nil).Level(zerolog.Disabled)
	quotes := new(mockQuoteClient)
	repo := holdings.NewRepository(db, log)
	links := holdings.NewLinkRepository(db, log)
	resolver := holdings.NewResolver(quotes, log)
	service := holdings.NewService(repo, links, resolver, log)

	return NewHandler(service, log), quotes
}

func doRequest(t *testing.T, h *Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func stockBody() map[string]interface{} {
	return map[string]interface{}{
		"platform":       "Zerodha",
		"type":           "Stock",
		"name":           "XYZ Corp",
		"amountInvested": 500,
		"quantity":       10,
		"ticker":         "XYZ",
		"purchasePrice":  50,
	}
}

func TestHandleAddInvestmentCreated(t *testing.T) {
	h, _ := setupHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/"+testOwner, stockBody())

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Investment added successfully", resp["message"])

	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["id"])
	assert.Equal(t, "INR", data["currency"])
}

func TestHandleAddInvestmentValidationError(t *testing.T) {
	h, _ := setupHandler(t)

	body := stockBody()
	delete(body, "ticker")
	rec := doRequest(t, h, http.MethodPost, "/"+testOwner, body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp["message"], "ticker")
}

func TestHandleAddInvestmentMalformedBody(t *testing.T) {
	h, _ := setupHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/"+testOwner, bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, "Invalid request body", resp["message"])
}

func TestHandleListInvestmentsInvalidOwner(t *testing.T) {
	h, _ := setupHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, false, resp["success"])
}

func TestHandleListInvestmentsEmptyIsSuccess(t *testing.T) {
	h, _ := setupHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/"+testOwner, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "No investments found for this user", resp["message"])
}

func TestHandleListInvestmentsLivePriced(t *testing.T) {
	h, quotes := setupHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/"+testOwner, stockBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	quotes.On("GetQuote", mock.Anything, "XYZ").
		Return(&domain.Quote{Ticker: "XYZ", Price: f64(55)}, nil)

	rec = doRequest(t, h, http.MethodGet, "/"+testOwner, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeEnvelope(t, rec)
	data, ok := resp["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, data, 1)
	row := data[0].(map[string]interface{})
	assert.Equal(t, 55.0, row["livePrice"])
	assert.Equal(t, 550.0, row["currentValue"])
}

func TestHandleRemoveInvestmentNotFound(t *testing.T) {
	h, _ := setupHandler(t)

	rec := doRequest(t, h, http.MethodDelete,
		fmt.Sprintf("/%s/investments/%s", testOwner, "no-such-id"), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, "Investment not found or not owned by user", resp["message"])
}

func TestHandleRemoveInvestmentOK(t *testing.T) {
	h, _ := setupHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/"+testOwner, stockBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeEnvelope(t, rec)["data"].(map[string]interface{})

	rec = doRequest(t, h, http.MethodDelete,
		fmt.Sprintf("/%s/investments/%s", testOwner, created["id"]), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, "Investment removed successfully", resp["message"])
}

func TestHandlePortfolioSummary(t *testing.T) {
	h, quotes := setupHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/"+testOwner, stockBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	quotes.On("GetQuote", mock.Anything, "XYZ").
		Return(&domain.Quote{Ticker: "XYZ", Price: f64(55)}, nil)

	rec = doRequest(t, h, http.MethodGet, "/"+testOwner+"/summary/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeEnvelope(t, rec)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 550.0, data["totalValue"])
}

func TestHandleConnectAccount(t *testing.T) {
	h, _ := setupHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/"+testOwner+"/connect", map[string]interface{}{
		"platform":  "Zerodha",
		"accountId": "ZD-1001",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, "Zerodha account linked successfully", resp["message"])
}

func TestHandleConnectAccountMissingPlatform(t *testing.T) {
	h, _ := setupHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/"+testOwner+"/connect", map[string]interface{}{
		"accountId": "ZD-1001",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleChartData(t *testing.T) {
	h, _ := setupHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/"+testOwner, stockBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/"+testOwner+"/chart-data", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeEnvelope(t, rec)
	data := resp["data"].(map[string]interface{})
	byPlatform := data["byPlatform"].(map[string]interface{})
	assert.Equal(t, 500.0, byPlatform["Zerodha"])
}

func TestHandleAggregatedHoldings(t *testing.T) {
	h, _ := setupHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/"+testOwner, stockBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/"+testOwner+"/holdings", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeEnvelope(t, rec)
	data := resp["data"].(map[string]interface{})
	zerodha := data["Zerodha"].(map[string]interface{})
	assert.Equal(t, 500.0, zerodha["total"])
}

func f64(v float64) *float64 { return &v }
