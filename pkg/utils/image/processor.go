package image

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"

	"github.com/chai2010/webp"
)

const (
	ContentTypeWebP = "image/webp"
	coverQuality    = 82
)

// Process decodes a JPEG, PNG or WebP image and re-encodes it as lossy WebP.
func Process(r io.Reader) (*bytes.Buffer, string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("could not decode image: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Lossless: false, Quality: coverQuality}); err != nil {
		return nil, "", fmt.Errorf("could not encode image: %w", err)
	}

	return buf, ContentTypeWebP, nil
}

func ProcessImage(file *multipart.FileHeader) (*bytes.Buffer, string, error) {
	src, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("could not open file: %w", err)
	}
	defer src.Close()

	return Process(src)
}
