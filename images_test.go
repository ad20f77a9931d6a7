package inkpress

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodeTestPNG(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return &buf
}

func TestProcessImageReencodesAsJPEG(t *testing.T) {
	src := encodeTestPNG(t, 100, 80)

	filename, data, err := processImage(src, "My Cat Photo.png")
	if err != nil {
		t.Fatalf("processImage failed: %v", err)
	}
	if filename != "my-cat-photo.jpg" {
		t.Errorf("filename = %q", filename)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a jpeg: %v", err)
	}
	if cfg.Width != 100 || cfg.Height != 80 {
		t.Errorf("dimensions = %dx%d, want 100x80", cfg.Width, cfg.Height)
	}
}

func TestProcessImageDownscalesWideImages(t *testing.T) {
	src := encodeTestPNG(t, maxImageWidth*2, 600)

	_, data, err := processImage(src, "wide.png")
	if err != nil {
		t.Fatalf("processImage failed: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != maxImageWidth {
		t.Errorf("width = %d, want %d", cfg.Width, maxImageWidth)
	}
	if cfg.Height != 300 {
		t.Errorf("height = %d, want 300", cfg.Height)
	}
}

func TestProcessImageRejectsGarbage(t *testing.T) {
	if _, _, err := processImage(bytes.NewReader([]byte("not an image")), "x.png"); err == nil {
		t.Fatal("expected error for non-image input")
	}
}

func TestSlugifyFilenameFallback(t *testing.T) {
	if got := slugifyFilename("???.png"); got != "image" {
		t.Errorf("slugifyFilename = %q, want image", got)
	}
}
