package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRegistryBuildsConfiguredSourceKinds(t *testing.T) {
	reg := NewRegistry([]Config{
		{Name: "reuters", Tier: 1, Kind: "rest"},
		{Name: "feed", Tier: 3, Kind: "rss"},
		{Name: "search", Tier: 2, Kind: "paginated"},
		{Name: "default-kind", Tier: 4, Kind: ""},
	})

	all := reg.All()
	require := assert.New(t)
	require.Len(all, 4)

	_, ok := all[0].(*RESTSource)
	require.True(ok)
	_, ok = all[1].(*RSSSource)
	require.True(ok)
	_, ok = all[2].(*PaginatedSource)
	require.True(ok)
	_, ok = all[3].(*RESTSource)
	require.True(ok, "unknown kind falls back to REST")
}

func TestWithMaxTierFiltersByTier(t *testing.T) {
	reg := NewRegistry([]Config{
		{Name: "tier1", Tier: 1, Kind: "rest"},
		{Name: "tier3", Tier: 3, Kind: "rest"},
		{Name: "tier5", Tier: 5, Kind: "rest"},
	})

	selected := reg.WithMaxTier(3)
	assert.Len(t, selected, 2)
	for _, s := range selected {
		assert.LessOrEqual(t, s.Tier(), 3)
	}
}

func TestWithMaxTierZeroReturnsAllSources(t *testing.T) {
	reg := NewRegistry([]Config{
		{Name: "tier1", Tier: 1, Kind: "rest"},
		{Name: "tier5", Tier: 5, Kind: "rest"},
	})

	assert.Len(t, reg.WithMaxTier(0), 2)
}
