package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAgeHoursComputesElapsedHours(t *testing.T) {
	published := time.Date(2026, 8, 3, 8, 0, 0, 0, time.UTC)
	item := NewsItem{PublishedAt: published}

	assert.InDelta(t, 2.5, item.AgeHours(published.Add(2*time.Hour+30*time.Minute)), 0.001)
}

func TestHasCategoryMatchesOneOfMultipleKeywords(t *testing.T) {
	item := NewsItem{Keywords: []KeywordCategory{CategoryEarnings, CategoryGuidance}}

	assert.True(t, item.HasCategory(CategoryGuidance))
	assert.False(t, item.HasCategory(CategoryMerger))
}

func TestHasCategoryReturnsFalseForEmptyKeywords(t *testing.T) {
	item := NewsItem{}
	assert.False(t, item.HasCategory(CategoryEarnings))
}
