package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/TradingApplication/catalyst-trading-system/internal/model"
	"github.com/TradingApplication/catalyst-trading-system/internal/ratelimit"
)

// PaginatedSource walks a cursor-paginated search API until the page comes
// back short of a full page or the item cap is reached, grounded on the
// teacher's historical-data client's page-by-page Binance kline fetch loop.
type PaginatedSource struct {
	cfg        Config
	httpClient *http.Client
	pageSize   int
}

func NewPaginatedSource(cfg Config) *PaginatedSource {
	return &PaginatedSource{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		pageSize:   50,
	}
}

func (s *PaginatedSource) Name() string                { return s.cfg.Name }
func (s *PaginatedSource) Tier() int                    { return s.cfg.Tier }
func (s *PaginatedSource) RateSpec() ratelimit.RateSpec { return s.cfg.rateSpec() }

type paginatedPage struct {
	Articles   []restArticle `json:"articles"`
	NextCursor string        `json:"next_cursor"`
}

func (s *PaginatedSource) Fetch(ctx context.Context, since time.Time, limit int) ([]model.RawArticle, error) {
	out := make([]model.RawArticle, 0, limit)
	cursor := ""

	for len(out) < limit {
		params := url.Values{}
		params.Add("since", strconv.FormatInt(since.Unix(), 10))
		params.Add("page_size", strconv.Itoa(s.pageSize))
		if cursor != "" {
			params.Add("cursor", cursor)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"/search?"+params.Encode(), nil)
		if err != nil {
			return out, fmt.Errorf("build request for %s: %w", s.cfg.Name, err)
		}
		if s.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return out, fmt.Errorf("fetch %s page: %w", s.cfg.Name, err)
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return out, fmt.Errorf("%s returned status %d: %s", s.cfg.Name, resp.StatusCode, string(body))
		}

		var page paginatedPage
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if err != nil {
			return out, fmt.Errorf("decode %s page: %w", s.cfg.Name, err)
		}

		for _, a := range page.Articles {
			out = append(out, model.RawArticle{
				Symbol:      a.Symbol,
				Headline:    a.Headline,
				Source:      s.cfg.Name,
				SourceURL:   a.URL,
				PublishedAt: a.PublishedAt,
				Content:     a.Summary,
			})
			if len(out) >= limit {
				return out, nil
			}
		}

		if page.NextCursor == "" || len(page.Articles) < s.pageSize {
			break
		}
		cursor = page.NextCursor
	}
	return out, nil
}
