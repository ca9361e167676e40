package storage_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examplehub_backend/pkg/config"
	"examplehub_backend/pkg/utils/storage"
)

func TestCoverKey(t *testing.T) {
	t.Parallel()

	key := storage.CoverKey("Airbnb Email Campaign!", ".webp")
	assert.True(t, strings.HasPrefix(key, "examples/airbnb-email-campaign/covers/"))
	assert.True(t, strings.HasSuffix(key, ".webp"))
	assert.NotEqual(t, key, storage.CoverKey("Airbnb Email Campaign!", ".webp"))
}

func TestPublicURLRoundTrip(t *testing.T) {
	t.Parallel()

	const cdn = "https://cdn.examplehub.dev"
	key := "examples/slack/covers/a.webp"

	url := storage.PublicURL(cdn, key)
	assert.Equal(t, cdn+"/"+key, url)
	assert.Equal(t, key, storage.ObjectKeyFromURL(cdn, url))
	assert.Equal(t, key, storage.ObjectKeyFromURL(cdn, key))
	assert.Equal(t, "/"+key, storage.PublicURL("", key))
}

func TestNewR2RequiresConfig(t *testing.T) {
	t.Parallel()

	_, err := storage.NewR2(context.Background(), config.StorageConfig{BucketName: "b"})
	assert.ErrorIs(t, err, storage.ErrNotConfigured)
}

func TestPresignDownload(t *testing.T) {
	t.Parallel()

	r2, err := storage.NewR2(context.Background(), config.StorageConfig{
		AccountID:  "acct",
		AccessKey:  "AKIDEXAMPLE",
		SecretKey:  "secret",
		BucketName: "assets",
	})
	require.NoError(t, err)

	url, err := r2.PresignDownload(context.Background(), "assets/notion/kit.zip", 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "https://acct.r2.cloudflarestorage.com/assets/assets/notion/kit.zip")
	assert.Contains(t, url, "X-Amz-Expires=900")
}
