// Package lexicon loads the static keyword-category lexicon, source->tier
// default map, and breaking-news pattern used by the normalization pipeline
// (spec §4.2 steps 5-7). These are operator-curated reference data, not
// runtime-tunable config, so they load once at boot from YAML rather than
// living behind the Persistence Port's config keys.
package lexicon

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TradingApplication/catalyst-trading-system/internal/model"
)

// Lexicon holds the compiled reference data.
type Lexicon struct {
	categoryPhrases map[model.KeywordCategory][]string
	sourceTier      map[string]int
	defaultTier     int
	breakingPattern *regexp.Regexp
	symbolAllowList map[string]bool
}

// file is the on-disk YAML shape.
type file struct {
	Categories       map[string][]string `yaml:"categories"`
	SourceTiers      map[string]int      `yaml:"source_tiers"`
	DefaultTier      int                 `yaml:"default_tier"`
	BreakingPattern  string              `yaml:"breaking_pattern"`
	SymbolAllowList  []string            `yaml:"symbol_allow_list"`
}

// Load reads the lexicon YAML file at path.
func Load(path string) (*Lexicon, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon file: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse lexicon file: %w", err)
	}
	return fromFile(f)
}

func fromFile(f file) (*Lexicon, error) {
	if f.DefaultTier == 0 {
		f.DefaultTier = 5
	}
	pattern := f.BreakingPattern
	if pattern == "" {
		pattern = `(?i)\b(breaking|urgent|just in|developing)\b`
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile breaking pattern: %w", err)
	}

	cats := make(map[model.KeywordCategory][]string, len(f.Categories))
	for k, phrases := range f.Categories {
		lowered := make([]string, len(phrases))
		for i, p := range phrases {
			lowered[i] = strings.ToLower(p)
		}
		cats[model.KeywordCategory(k)] = lowered
	}

	tiers := make(map[string]int, len(f.SourceTiers))
	for k, v := range f.SourceTiers {
		tiers[strings.ToLower(k)] = v
	}

	allow := make(map[string]bool, len(f.SymbolAllowList))
	for _, s := range f.SymbolAllowList {
		allow[strings.ToUpper(s)] = true
	}

	return &Lexicon{
		categoryPhrases: cats,
		sourceTier:      tiers,
		defaultTier:     f.DefaultTier,
		breakingPattern: re,
		symbolAllowList: allow,
	}, nil
}

// Default returns the built-in lexicon matching spec §4.2 step 5's category
// list, used when no lexicon file is configured (e.g. in tests).
func Default() *Lexicon {
	l, _ := fromFile(file{
		Categories: map[string][]string{
			"earnings":     {"earnings", "quarterly results", "q1", "q2", "q3", "q4", "eps", "revenue beat", "revenue miss"},
			"fda":          {"fda", "food and drug administration", "clinical trial", "drug approval"},
			"merger":       {"merger", "acquisition", "acquire", "buyout", "takeover"},
			"guidance":     {"guidance", "outlook", "forecast raised", "forecast cut"},
			"lawsuit":      {"lawsuit", "litigation", "sued", "class action"},
			"bankruptcy":   {"bankruptcy", "chapter 11", "insolvency"},
			"insider":      {"insider buying", "insider selling", "form 4"},
			"short":        {"short interest", "short squeeze"},
			"pump":         {"pump", "rally", "surge"},
			"dump":         {"dump", "sell-off", "plunge"},
			"breakthrough": {"breakthrough", "milestone", "patent granted"},
			"concerns":     {"concerns", "investigation", "probe", "recall"},
		},
		SourceTiers: map[string]int{
			"reuters": 1, "bloomberg": 1, "associated press": 1,
			"cnbc": 2, "marketwatch": 2, "wall street journal": 2,
			"seeking alpha": 3, "benzinga": 3,
			"yahoo finance": 4, "investing.com": 4,
		},
		DefaultTier: 5,
	})
	return l
}

// Categorize returns every keyword category whose phrases appear as a
// case-insensitive substring of the headline (spec §4.2 step 5).
func (l *Lexicon) Categorize(headline string) []model.KeywordCategory {
	lowered := strings.ToLower(headline)
	var out []model.KeywordCategory
	for cat, phrases := range l.categoryPhrases {
		for _, phrase := range phrases {
			if strings.Contains(lowered, phrase) {
				out = append(out, cat)
				break
			}
		}
	}
	return out
}

// TierFor resolves a source name to its configured tier, defaulting to 5
// (spec §4.2 step 7).
func (l *Lexicon) TierFor(source string) int {
	if t, ok := l.sourceTier[strings.ToLower(source)]; ok {
		return t
	}
	return l.defaultTier
}

// IsBreakingHeadline reports whether the headline matches the configured
// breaking-news regex.
func (l *Lexicon) IsBreakingHeadline(headline string) bool {
	return l.breakingPattern.MatchString(headline)
}

// KnownSymbol reports whether sym is on the configured exchange allow-list.
// An empty allow-list (no file configured) accepts every well-formed
// candidate, since a missing curated list must not silently drop tickers.
func (l *Lexicon) KnownSymbol(sym string) bool {
	if len(l.symbolAllowList) == 0 {
		return true
	}
	return l.symbolAllowList[strings.ToUpper(sym)]
}
