package validation

import (
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"
)

var (
	ErrFileSize     = errors.New("file size exceeds limit of 5MB")
	ErrFileType     = errors.New("invalid file type. Allowed types: JPG, PNG, WEBP")
	ErrFileRequired = errors.New("no file provided")
)

const MaxCoverSize = 5 * 1024 * 1024

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ValidateCover checks an uploaded cover image before it is decoded.
func ValidateCover(file *multipart.FileHeader) error {
	if file == nil {
		return ErrFileRequired
	}
	return ValidateCoverMeta(file.Filename, file.Header.Get("Content-Type"), file.Size)
}

// ValidateCoverMeta checks name, declared content type and size. An empty
// content type is accepted; the decoder rejects non-images later.
func ValidateCoverMeta(filename, contentType string, size int64) error {
	if size <= 0 {
		return ErrFileRequired
	}
	if size > MaxCoverSize {
		return ErrFileSize
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(filename))] {
		return ErrFileType
	}
	if contentType != "" && !allowedContentTypes[contentType] {
		return ErrFileType
	}
	return nil
}
