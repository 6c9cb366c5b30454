package scanner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TradingApplication/catalyst-trading-system/internal/config"
)

func TestMarketDataClientSnapshotParsesResponseAndSetsServiceKeyHeader(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Service-Key")
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol":"AAPL","price":180.5,"volume":5000000,"relative_volume":2.1,"price_change_pct":3.4}`))
	}))
	defer srv.Close()

	client := NewMarketDataClient(config.ServiceConfig{URL: srv.URL, Timeout: 2 * time.Second, ServiceKey: "core-key"}, zap.NewNop())
	snap, err := client.Snapshot(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.Equal(t, "AAPL", snap.Symbol)
	assert.Equal(t, 180.5, snap.Price)
	assert.Equal(t, "core-key", gotKey)
}

func TestMarketDataClientSnapshotReturnsDependencyDownOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewMarketDataClient(config.ServiceConfig{URL: srv.URL, Timeout: 2 * time.Second}, zap.NewNop())
	_, err := client.Snapshot(context.Background(), "AAPL")

	assert.Error(t, err)
}

func TestMarketDataClientMostActiveReturnsSymbolList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbols":["AAPL","MSFT","TSLA"]}`))
	}))
	defer srv.Close()

	client := NewMarketDataClient(config.ServiceConfig{URL: srv.URL, Timeout: 2 * time.Second}, zap.NewNop())
	symbols, err := client.MostActive(context.Background(), 50)

	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, symbols)
}

func TestMarketDataClientSnapshotBatchOmitsFailedSymbols(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		if symbol == "BADSYM" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol":"` + symbol + `","price":100}`))
	}))
	defer srv.Close()

	client := NewMarketDataClient(config.ServiceConfig{URL: srv.URL, Timeout: 2 * time.Second}, zap.NewNop())
	out := client.SnapshotBatch(context.Background(), []string{"AAPL", "BADSYM"}, 4)

	assert.Len(t, out, 1)
	_, ok := out["AAPL"]
	assert.True(t, ok)
	_, ok = out["BADSYM"]
	assert.False(t, ok)
}
