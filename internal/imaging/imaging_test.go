package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/assettrack/assettrack/internal/apperr"
)

func encodedImage(t *testing.T, format string, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 180, G: 40, B: 40, A: 255})
		}
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	case "png":
		err = png.Encode(&buf, img)
	default:
		t.Fatalf("unknown format %q", format)
	}
	if err != nil {
		t.Fatalf("encode %s: %v", format, err)
	}
	return buf.Bytes()
}

func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestNormalize_PNGBecomesJPEG(t *testing.T) {
	out, err := Normalize(bytes.NewReader(encodedImage(t, "png", 200, 100)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if _, format, err := image.Decode(bytes.NewReader(out)); err != nil || format != "jpeg" {
		t.Errorf("output should decode as jpeg, got format=%q err=%v", format, err)
	}
}

func TestNormalize_DownscalesOversized(t *testing.T) {
	out, err := Normalize(bytes.NewReader(encodedImage(t, "jpeg", 3000, 1500)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	w, h := decodeDims(t, out)
	if w != maxDimension {
		t.Errorf("width: got %d, want %d", w, maxDimension)
	}
	if h != maxDimension/2 {
		t.Errorf("height should preserve 2:1 aspect, got %d", h)
	}
}

func TestNormalize_KeepsSmallImages(t *testing.T) {
	out, err := Normalize(bytes.NewReader(encodedImage(t, "jpeg", 64, 48)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if w, h := decodeDims(t, out); w != 64 || h != 48 {
		t.Errorf("small image resized to %dx%d", w, h)
	}
}

func TestNormalize_RejectsNonImage(t *testing.T) {
	_, err := Normalize(bytes.NewReader([]byte("%PDF-1.7 definitely not a photo")))
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestNormalize_RejectsGIF(t *testing.T) {
	_, err := Normalize(bytes.NewReader([]byte("GIF89a\x01\x00\x01\x00")))
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestStore_Save(t *testing.T) {
	dir := t.TempDir()
	s := &Store{Dir: filepath.Join(dir, "photos")}

	name, err := s.Save(42, []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if name != "item-42.jpg" {
		t.Errorf("name: got %q", name)
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Error("stored bytes differ")
	}
}
