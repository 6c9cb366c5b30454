package coordinator

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, cluster *fakeCluster) (*gin.Engine, *Coordinator) {
	t.Helper()
	co := newTestCoordinator(t, cluster)
	h := NewHandler(co, zap.NewNop())
	r := gin.New()
	h.Register(r)
	return r, co
}

func TestHandlerHealthReturnsOK(t *testing.T) {
	cluster := &fakeCluster{
		news:      httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
		scanner:   httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
		pattern:   httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
		technical: httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
		trading:   httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
	}
	defer cluster.close()
	router, _ := newTestRouter(t, cluster)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandlerStartCycleRejectsMissingMode(t *testing.T) {
	cluster := &fakeCluster{
		news:      httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
		scanner:   httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
		pattern:   httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
		technical: httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
		trading:   httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
	}
	defer cluster.close()
	router, _ := newTestRouter(t, cluster)

	req := httptest.NewRequest(http.MethodPost, "/start_trading_cycle", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerCancelCycleReturnsNotFoundWhenIdle(t *testing.T) {
	cluster := &fakeCluster{
		news:      httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
		scanner:   httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
		pattern:   httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
		technical: httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
		trading:   httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
	}
	defer cluster.close()
	router, _ := newTestRouter(t, cluster)

	req := httptest.NewRequest(http.MethodPost, "/cancel_cycle", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlerCurrentCycleReturnsNilDataWhenIdle(t *testing.T) {
	cluster := &fakeCluster{
		news:      httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
		scanner:   httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
		pattern:   httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
		technical: httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
		trading:   httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
	}
	defer cluster.close()
	router, _ := newTestRouter(t, cluster)

	req := httptest.NewRequest(http.MethodGet, "/current_cycle", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":null`)
}

func TestHandlerUpdateConfigRejectsMissingValue(t *testing.T) {
	cluster := &fakeCluster{
		news:      httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
		scanner:   httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
		pattern:   httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
		technical: httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
		trading:   httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
	}
	defer cluster.close()
	router, _ := newTestRouter(t, cluster)

	req := httptest.NewRequest(http.MethodPost, "/workflow_config", bytes.NewBufferString(`{"key":"scanner.top_k"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerServiceHealthReturnsOK(t *testing.T) {
	cluster := &fakeCluster{
		news:      httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
		scanner:   httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
		pattern:   httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
		technical: httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
		trading:   httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { jsonOK(t, w, nil) })),
	}
	defer cluster.close()
	router, _ := newTestRouter(t, cluster)

	req := httptest.NewRequest(http.MethodGet, "/service_health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "news")
}
