package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRESTSourceFetchParsesArticlesAndSetsAuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/news", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"articles":[{"symbol":"AAPL","headline":"Apple beats estimates","url":"https://x/1","published_at":"2026-08-03T10:00:00Z","summary":"details"}]}`))
	}))
	defer srv.Close()

	src := NewRESTSource(Config{Name: "reuters", Tier: 1, BaseURL: srv.URL, APIKey: "secret-key"})
	items, err := src.Fetch(context.Background(), time.Now().Add(-time.Hour), 10)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "AAPL", items[0].Symbol)
	assert.Equal(t, "Apple beats estimates", items[0].Headline)
	assert.Equal(t, "reuters", items[0].Source)
	assert.Equal(t, "Bearer secret-key", gotAuth)
}

func TestRESTSourceFetchReturnsErrorOnNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	src := NewRESTSource(Config{Name: "reuters", Tier: 1, BaseURL: srv.URL})
	_, err := src.Fetch(context.Background(), time.Now(), 10)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "reuters")
}

func TestRESTSourceNameTierAndRateSpec(t *testing.T) {
	src := NewRESTSource(Config{Name: "bloomberg", Tier: 2, RequestsPerMinute: 30, Burst: 5})
	assert.Equal(t, "bloomberg", src.Name())
	assert.Equal(t, 2, src.Tier())
	assert.Equal(t, 30, src.RateSpec().RequestsPerMinute)
	assert.Equal(t, 5, src.RateSpec().Burst)
}
