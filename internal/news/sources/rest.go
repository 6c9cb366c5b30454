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

// RESTSource fetches from a keyed-auth REST-JSON news API, the most common
// shape in the configured sources (spec §4.2).
type RESTSource struct {
	cfg        Config
	httpClient *http.Client
}

func NewRESTSource(cfg Config) *RESTSource {
	return &RESTSource{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *RESTSource) Name() string                      { return s.cfg.Name }
func (s *RESTSource) Tier() int                          { return s.cfg.Tier }
func (s *RESTSource) RateSpec() ratelimit.RateSpec       { return s.cfg.rateSpec() }

type restArticle struct {
	Symbol      string    `json:"symbol"`
	Headline    string    `json:"headline"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	Summary     string    `json:"summary"`
}

type restResponse struct {
	Articles []restArticle `json:"articles"`
}

func (s *RESTSource) Fetch(ctx context.Context, since time.Time, limit int) ([]model.RawArticle, error) {
	reqURL := fmt.Sprintf("%s/news", s.cfg.BaseURL)

	params := url.Values{}
	params.Add("since", strconv.FormatInt(since.Unix(), 10))
	params.Add("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", s.cfg.Name, err)
	}
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.cfg.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s returned status %d: %s", s.cfg.Name, resp.StatusCode, string(body))
	}

	var parsed restResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", s.cfg.Name, err)
	}

	out := make([]model.RawArticle, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		out = append(out, model.RawArticle{
			Symbol:      a.Symbol,
			Headline:    a.Headline,
			Source:      s.cfg.Name,
			SourceURL:   a.URL,
			PublishedAt: a.PublishedAt,
			Content:     a.Summary,
		})
	}
	return out, nil
}
