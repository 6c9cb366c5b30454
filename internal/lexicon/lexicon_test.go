package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TradingApplication/catalyst-trading-system/internal/model"
)

func TestDefaultCategorizesEarningsHeadline(t *testing.T) {
	lex := Default()
	cats := lex.Categorize("Apple reports record Q2 earnings beat")
	assert.Contains(t, cats, model.CategoryEarnings)
}

func TestDefaultCategorizesMultipleMatchingCategories(t *testing.T) {
	lex := Default()
	cats := lex.Categorize("Company announces merger amid insider buying frenzy")
	assert.Contains(t, cats, model.CategoryMerger)
	assert.Contains(t, cats, model.CategoryInsider)
}

func TestDefaultReturnsNoCategoriesForGenericHeadline(t *testing.T) {
	lex := Default()
	cats := lex.Categorize("Stock closes flat in quiet trading session")
	assert.Empty(t, cats)
}

func TestTierForKnownAndUnknownSources(t *testing.T) {
	lex := Default()
	assert.Equal(t, 1, lex.TierFor("Reuters"))
	assert.Equal(t, 2, lex.TierFor("cnbc"))
	assert.Equal(t, 5, lex.TierFor("some-random-blog"))
}

func TestIsBreakingHeadlineMatchesConfiguredKeywords(t *testing.T) {
	lex := Default()
	assert.True(t, lex.IsBreakingHeadline("BREAKING: regulator opens investigation"))
	assert.True(t, lex.IsBreakingHeadline("Developing story: factory fire spreads"))
	assert.False(t, lex.IsBreakingHeadline("Quarterly report released as scheduled"))
}

func TestKnownSymbolAcceptsAnythingWhenAllowListEmpty(t *testing.T) {
	lex := Default()
	assert.True(t, lex.KnownSymbol("ZZZZ"))
}

func TestKnownSymbolRespectsConfiguredAllowList(t *testing.T) {
	lex, err := fromFile(file{
		SymbolAllowList: []string{"aapl", "msft"},
	})
	require.NoError(t, err)

	assert.True(t, lex.KnownSymbol("aapl"))
	assert.True(t, lex.KnownSymbol("MSFT"))
	assert.False(t, lex.KnownSymbol("TSLA"))
}

func TestFromFileAppliesDefaultTierAndBreakingPatternWhenUnset(t *testing.T) {
	lex, err := fromFile(file{})
	require.NoError(t, err)
	assert.Equal(t, 5, lex.TierFor("anything"))
	assert.True(t, lex.IsBreakingHeadline("this just in: plant closure"))
}
