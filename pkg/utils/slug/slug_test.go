package slug_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examplehub_backend/pkg/utils/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "spotify-wrapped-social-campaign", slug.Make("Spotify Wrapped: Social Campaign"))
	assert.Equal(t, "e-commerce", slug.Make("E-Commerce"))
}

func TestUnique(t *testing.T) {
	t.Parallel()

	taken := map[string]bool{"seo": true, "seo-2": true}
	got, err := slug.Unique("SEO", func(c string) (bool, error) { return taken[c], nil })
	require.NoError(t, err)
	assert.Equal(t, "seo-3", got)

	_, err = slug.Unique("!!!", func(string) (bool, error) { return false, nil })
	assert.ErrorIs(t, err, slug.ErrEmpty)

	boom := errors.New("db down")
	_, err = slug.Unique("SaaS", func(string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}
