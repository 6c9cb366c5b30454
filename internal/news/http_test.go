package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TradingApplication/catalyst-trading-system/internal/lexicon"
	"github.com/TradingApplication/catalyst-trading-system/internal/model"
	"github.com/TradingApplication/catalyst-trading-system/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestHandler(t *testing.T) (*Handler, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	c, err := New(testConfig(), lexicon.Default(), mem, nil, zap.NewNop())
	require.NoError(t, err)
	return NewHandler(c, zap.NewNop()), mem
}

func newTestRouter(h *Handler) *gin.Engine {
	r := gin.New()
	h.Register(r)
	return r
}

func TestHandlerHealthReturnsOK(t *testing.T) {
	h, _ := newTestHandler(t)
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandlerSearchNewsFiltersBySymbolAndTier(t *testing.T) {
	h, mem := newTestHandler(t)
	router := newTestRouter(h)

	now := time.Now().UTC()
	sym := "AAPL"
	_, err := mem.UpsertNewsItem(context.Background(), &model.NewsItem{
		Fingerprint: "fp-aapl", PrimarySymbol: &sym, Headline: "x", Source: "reuters",
		SourceTier: 1, PublishedAt: now, CollectedAt: now,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/search_news?symbol=AAPL&min_tier=1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fp-aapl")
}

func TestHandlerUpdateOutcomeRejectsMissingRequiredField(t *testing.T) {
	h, _ := newTestHandler(t)
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/update_outcome", nil)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerTrendingNewsReturnsPersistedClusters(t *testing.T) {
	h, mem := newTestHandler(t)
	router := newTestRouter(h)

	require.NoError(t, mem.InsertNarrativeCluster(context.Background(), model.NarrativeCluster{
		ClusterID: "c1", Symbol: "AAPL", ArticleCount: 4, DistinctSources: 3, DetectedAt: time.Now(),
	}))

	req := httptest.NewRequest(http.MethodGet, "/trending_news", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "c1")
}

func TestHandlerSourceAnalysisReturnsMetricsAndHealth(t *testing.T) {
	h, _ := newTestHandler(t)
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/source_analysis", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "metrics")
	assert.Contains(t, w.Body.String(), "health")
}

func TestParseIntRejectsNonDigitInput(t *testing.T) {
	_, err := parseInt("12a")
	assert.Error(t, err)
}

func TestParseIntParsesValidDigits(t *testing.T) {
	n, err := parseInt("42")
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}
