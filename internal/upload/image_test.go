package upload

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// testPNG encodes a small solid-color PNG in memory.
func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeImage(t *testing.T) {
	t.Run("valid png decodes", func(t *testing.T) {
		img, format, err := DecodeImage(testPNG(t, 10, 10))
		if err != nil {
			t.Fatalf("DecodeImage() error = %v", err)
		}
		if format != "png" {
			t.Errorf("format = %q, want png", format)
		}
		if img.Bounds().Dx() != 10 {
			t.Errorf("width = %d, want 10", img.Bounds().Dx())
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, _, err := DecodeImage([]byte("definitely not an image"))
		if !errors.Is(err, ErrNotAnImage) {
			t.Errorf("error = %v, want ErrNotAnImage", err)
		}
	})

	t.Run("empty payload rejected", func(t *testing.T) {
		_, _, err := DecodeImage(nil)
		if !errors.Is(err, ErrNotAnImage) {
			t.Errorf("error = %v, want ErrNotAnImage", err)
		}
	})
}

func TestComputeBlurHash(t *testing.T) {
	img, _, err := DecodeImage(testPNG(t, 200, 150))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	hash, err := ComputeBlurHash(img)
	if err != nil {
		t.Fatalf("ComputeBlurHash() error = %v", err)
	}
	if hash == "" {
		t.Error("blurhash is empty")
	}
}

func TestResizeForBlurHash(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		wantWidth  int
		wantHeight int
	}{
		{name: "small image untouched", width: 32, height: 32, wantWidth: 32, wantHeight: 32},
		{name: "wide image capped", width: 640, height: 320, wantWidth: 64, wantHeight: 32},
		{name: "tall image capped", width: 320, height: 640, wantWidth: 32, wantHeight: 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewRGBA(image.Rect(0, 0, tt.width, tt.height))
			got := resizeForBlurHash(src)

			if got.Bounds().Dx() != tt.wantWidth || got.Bounds().Dy() != tt.wantHeight {
				t.Errorf("resized to %dx%d, want %dx%d",
					got.Bounds().Dx(), got.Bounds().Dy(), tt.wantWidth, tt.wantHeight)
			}
		})
	}
}
