package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedDataReferencesKnownCategories(t *testing.T) {
	t.Parallel()

	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		known[c.Slug] = true
	}

	slugs := make(map[string]bool, len(examples))
	for _, e := range examples {
		assert.False(t, slugs[e.Slug], "duplicate example slug %s", e.Slug)
		slugs[e.Slug] = true

		assert.NotEmpty(t, e.Categories, e.Slug)
		for _, c := range e.Categories {
			assert.True(t, known[c], "%s references unknown category %s", e.Slug, c)
		}
	}
}

func TestExampleSeedModel(t *testing.T) {
	t.Parallel()

	m := examples[0].model()
	assert.Equal(t, "airbnb-email-campaign", m.Slug)
	assert.Contains(t, m.Body, "# Airbnb's Personalized Travel Recommendations")
	assert.Contains(t, m.ImageURL, "6366f1")
	assert.Empty(t, m.AssetKey)
}
