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

const sampleFeed = `<?xml version="1.0"?>
<rss><channel>
<item><title>Old story</title><link>https://x/old</link><description>stale</description><pubDate>Mon, 01 Jan 2024 00:00:00 +0000</pubDate></item>
<item><title>Fresh story</title><link>https://x/fresh</link><description>new</description><pubDate>Mon, 03 Aug 2026 09:00:00 +0000</pubDate></item>
</channel></rss>`

func TestRSSSourceFetchFiltersItemsOlderThanSince(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	src := NewRSSSource(Config{Name: "wire", Tier: 3, BaseURL: srv.URL})
	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	items, err := src.Fetch(context.Background(), since, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Fresh story", items[0].Headline)
}

func TestRSSSourceFetchRespectsLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	src := NewRSSSource(Config{Name: "wire", Tier: 3, BaseURL: srv.URL})
	items, err := src.Fetch(context.Background(), time.Time{}, 1)

	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRSSSourceFetchReturnsErrorOnNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	src := NewRSSSource(Config{Name: "wire", Tier: 3, BaseURL: srv.URL})
	_, err := src.Fetch(context.Background(), time.Time{}, 10)
	assert.Error(t, err)
}
