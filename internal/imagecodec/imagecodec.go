// Package imagecodec is the boundary between OS-native clipboard pixel
// data and the portable encoding stored in history. Swapping the storage
// format means touching this package only, not ingestion or paste-back.
package imagecodec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	// Clipboard sources are not obliged to hand us PNG
	_ "image/gif"
	_ "image/jpeg"
)

// ErrEmptyImage is returned when there is no pixel data to encode
var ErrEmptyImage = errors.New("empty image data")

// Normalize decodes raw clipboard image bytes and re-encodes them as a
// base64 PNG string. Re-encoding is mandatory: it keeps stored content
// round-trip stable and size-bounded regardless of the source format.
func Normalize(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", ErrEmptyImage
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to decode clipboard image: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode turns a stored image string back into PNG bytes for the OS
// clipboard. An optional data-URI prefix (everything up to the first
// comma) is stripped first.
func Decode(content string) ([]byte, error) {
	if idx := strings.Index(content, ","); idx >= 0 {
		content = content[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 payload: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
