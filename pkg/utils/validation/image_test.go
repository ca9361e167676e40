package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"examplehub_backend/pkg/utils/validation"
)

func TestValidateCoverMeta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		filename    string
		contentType string
		size        int64
		want        error
	}{
		{"png", "cover.PNG", "image/png", 1024, nil},
		{"webp without content type", "cover.webp", "", 1024, nil},
		{"empty", "cover.png", "image/png", 0, validation.ErrFileRequired},
		{"too large", "cover.jpg", "image/jpeg", validation.MaxCoverSize + 1, validation.ErrFileSize},
		{"gif", "cover.gif", "image/gif", 1024, validation.ErrFileType},
		{"mismatched type", "cover.png", "application/pdf", 1024, validation.ErrFileType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateCoverMeta(tt.filename, tt.contentType, tt.size)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.ErrorIs(t, validation.ValidateCover(nil), validation.ErrFileRequired)
}
