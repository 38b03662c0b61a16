package imagecodec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		img.Set(x, x, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to build test PNG: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizeProducesValidBase64PNG(t *testing.T) {
	encoded, err := Normalize(testPNG(t))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("Normalize output is not valid base64: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(raw)); err != nil {
		t.Fatalf("Normalize output is not a PNG: %v", err)
	}
}

func TestNormalizeAcceptsJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to build test JPEG: %v", err)
	}

	encoded, err := Normalize(buf.Bytes())
	if err != nil {
		t.Fatalf("Normalize of JPEG failed: %v", err)
	}

	raw, _ := base64.StdEncoding.DecodeString(encoded)
	if _, err := png.Decode(bytes.NewReader(raw)); err != nil {
		t.Fatalf("JPEG input was not re-encoded as PNG: %v", err)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	if _, err := Normalize(nil); !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("expected ErrEmptyImage, got %v", err)
	}
}

func TestNormalizeGarbageInput(t *testing.T) {
	if _, err := Normalize([]byte("definitely not pixels")); err == nil {
		t.Fatalf("expected an error for undecodable input")
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	encoded, err := Normalize(testPNG(t))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	raw, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(raw)); err != nil {
		t.Fatalf("Decode output is not a PNG: %v", err)
	}

	// Normalizing the decoded bytes reproduces the stored encoding
	again, err := Normalize(raw)
	if err != nil {
		t.Fatalf("re-Normalize failed: %v", err)
	}
	if again != encoded {
		t.Fatalf("round trip changed the stored encoding")
	}
}

func TestDecodeStripsDataURIPrefix(t *testing.T) {
	encoded, err := Normalize(testPNG(t))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	raw, err := Decode("data:image/png;base64," + encoded)
	if err != nil {
		t.Fatalf("Decode with data-URI prefix failed: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(raw)); err != nil {
		t.Fatalf("Decode output is not a PNG: %v", err)
	}
}

func TestDecodeInvalidBase64(t *testing.T) {
	if _, err := Decode("!!not base64!!"); err == nil {
		t.Fatalf("expected an error for invalid base64")
	}
}

func TestDecodeValidBase64InvalidImage(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("not an image"))
	if _, err := Decode(payload); err == nil {
		t.Fatalf("expected an error for non-image payload")
	}
}
