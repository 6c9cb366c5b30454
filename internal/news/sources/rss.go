package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"github.com/TradingApplication/catalyst-trading-system/internal/model"
	"github.com/TradingApplication/catalyst-trading-system/internal/ratelimit"
)

// RSSSource polls an RSS 2.0 feed. No third-party feed-parsing library
// appears anywhere in the retrieval pack, so this parses the common RSS 2.0
// subset with stdlib encoding/xml rather than reaching for an
// unsubstantiated dependency. Atom documents (root element <feed>) do not
// match rssFeed and fail to decode.
type RSSSource struct {
	cfg        Config
	httpClient *http.Client
}

func NewRSSSource(cfg Config) *RSSSource {
	return &RSSSource{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *RSSSource) Name() string                { return s.cfg.Name }
func (s *RSSSource) Tier() int                    { return s.cfg.Tier }
func (s *RSSSource) RateSpec() ratelimit.RateSpec { return s.cfg.rateSpec() }

type rssFeed struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

func (s *RSSSource) Fetch(ctx context.Context, since time.Time, limit int) ([]model.RawArticle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", s.cfg.Name, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.cfg.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", s.cfg.Name, resp.StatusCode)
	}

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode %s feed: %w", s.cfg.Name, err)
	}

	out := make([]model.RawArticle, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		published, err := time.Parse(time.RFC1123Z, item.PubDate)
		if err != nil {
			published, err = time.Parse(time.RFC1123, item.PubDate)
			if err != nil {
				published = time.Now()
			}
		}
		if published.Before(since) {
			continue
		}
		out = append(out, model.RawArticle{
			Headline:    item.Title,
			Source:      s.cfg.Name,
			SourceURL:   item.Link,
			PublishedAt: published,
			Content:     item.Description,
		})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}
