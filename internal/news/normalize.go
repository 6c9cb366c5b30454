package news

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/TradingApplication/catalyst-trading-system/internal/lexicon"
	"github.com/TradingApplication/catalyst-trading-system/internal/model"
)

// tickerPattern extracts candidate ticker mentions from a headline (spec
// §4.2 step 3). No ticker-extraction library appears in the pack; every
// source adapter in the retrieval set reaches for stdlib regexp for this
// kind of pattern match.
var tickerPattern = regexp.MustCompile(`\$?[A-Z]{1,5}\b`)

// trackingParams are stripped from source URLs before persistence (spec
// §4.2 step 1).
var trackingParams = []string{"utm_source", "utm_medium", "utm_campaign", "utm_content", "utm_term", "ref", "fbclid"}

// normalizer turns a RawArticle into a NewsItem, grounded on
// original_source/news_service_v200.py's per-article normalization
// sequence.
type normalizer struct {
	lex   *lexicon.Lexicon
	clock *sessionClock
}

func newNormalizer(lex *lexicon.Lexicon, clock *sessionClock) *normalizer {
	return &normalizer{lex: lex, clock: clock}
}

func stripTrackingParams(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	for _, p := range trackingParams {
		q.Del(p)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func fingerprint(normalizedHeadline, source string, publishedAt time.Time) string {
	roundedMinute := publishedAt.Truncate(time.Minute).UTC().Format("200601021504")
	h := sha256.New()
	h.Write([]byte(normalizedHeadline))
	h.Write([]byte{0x1f})
	h.Write([]byte(source))
	h.Write([]byte{0x1f})
	h.Write([]byte(roundedMinute))
	return hex.EncodeToString(h.Sum(nil))[:64]
}

func extractTickers(headline string, allow func(string) bool) []string {
	matches := tickerPattern.FindAllString(headline, -1)
	seen := make(map[string]bool)
	var out []string
	for _, m := range matches {
		sym := strings.TrimPrefix(m, "$")
		if len(sym) < 1 || len(sym) > 5 {
			continue
		}
		if !allow(sym) {
			continue
		}
		if seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}

func clusterID(symbol string, at time.Time, categories []model.KeywordCategory) string {
	cats := make([]string, len(categories))
	for i, c := range categories {
		cats[i] = string(c)
	}
	sort.Strings(cats)

	h := sha1.New()
	h.Write([]byte(symbol))
	h.Write([]byte{0x1f})
	h.Write([]byte(at.UTC().Format("2006-01-02")))
	h.Write([]byte{0x1f})
	h.Write([]byte(strings.Join(cats, ",")))
	return hex.EncodeToString(h.Sum(nil))
}

// Normalize runs the full spec §4.2 pipeline over one raw article.
func (n *normalizer) Normalize(raw model.RawArticle, now time.Time) model.NewsItem {
	normalizedHeadline := strings.ToLower(strings.TrimSpace(raw.Headline))
	fp := fingerprint(normalizedHeadline, raw.Source, raw.PublishedAt)

	tickers := extractTickers(raw.Headline, n.lex.KnownSymbol)
	primary := raw.Symbol
	if primary == "" && len(tickers) > 0 {
		primary = tickers[0]
	}
	if primary != "" {
		found := false
		for _, t := range tickers {
			if t == primary {
				found = true
				break
			}
		}
		if !found {
			tickers = append([]string{primary}, tickers...)
		}
	}

	marketState := n.clock.Classify(raw.PublishedAt)
	categories := n.lex.Categorize(raw.Headline)
	tier := n.lex.TierFor(raw.Source)

	ageMinutes := now.Sub(raw.PublishedAt).Minutes()
	isBreaking := tier <= 2 && ageMinutes < 30 && n.lex.IsBreakingHeadline(raw.Headline)

	var narrativeCluster *string
	if primary != "" {
		cid := clusterID(primary, raw.PublishedAt, categories)
		narrativeCluster = &cid
	}

	var primaryPtr *string
	if primary != "" {
		primaryPtr = &primary
	}

	return model.NewsItem{
		Fingerprint:        fp,
		PrimarySymbol:      primaryPtr,
		Headline:           raw.Headline,
		Source:             raw.Source,
		SourceURL:          stripTrackingParams(raw.SourceURL),
		PublishedAt:        raw.PublishedAt,
		CollectedAt:        now,
		ContentSnippet:     truncate(raw.Content, 500),
		Keywords:           categories,
		MentionedTickers:   tickers,
		MarketState:        marketState,
		IsBreakingNews:     isBreaking,
		SourceTier:         tier,
		NarrativeCluster:   narrativeCluster,
		ConfirmationStatus: model.ConfirmationUnconfirmed,
		UpdateCount:        0,
		LastSeen:           now,
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
