package inkpress

import (
	"bytes"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestCopyAssetsMissingSourceIsNoop(t *testing.T) {
	dst := t.TempDir()
	if err := CopyAssets(filepath.Join(t.TempDir(), "missing"), dst); err != nil {
		t.Fatalf("missing source should be a no-op, got %v", err)
	}
}

func TestCopyAssetsCopiesBytes(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	if err := os.MkdirAll(filepath.Join(src, "css"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "css", "main.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyAssets(src, dst); err != nil {
		t.Fatalf("CopyAssets failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dst, "css", "main.css"))
	if err != nil || string(data) != "body{}" {
		t.Errorf("copied file = %q, err=%v", data, err)
	}
}

func TestCopyAssetsResizesWideJPEG(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	wide := encodeJPEG(t, 1600, 1000)
	if err := os.WriteFile(filepath.Join(src, "cover.jpg"), wide, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyAssets(src, dst); err != nil {
		t.Fatalf("CopyAssets failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dst, "cover.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode resized image: %v", err)
	}
	if cfg.Width != maxImageWidth {
		t.Errorf("resized width = %d, want %d", cfg.Width, maxImageWidth)
	}
	if cfg.Height != 1000*maxImageWidth/1600 {
		t.Errorf("resized height = %d", cfg.Height)
	}
}

func TestShrinkJPEGNarrowPassthrough(t *testing.T) {
	small := encodeJPEG(t, 400, 300)
	out, err := shrinkJPEG(small)
	if err != nil {
		t.Fatalf("shrinkJPEG failed: %v", err)
	}
	if !bytes.Equal(out, small) {
		t.Error("narrow image should pass through byte-identical")
	}
}

func TestShrinkJPEGInvalidData(t *testing.T) {
	if _, err := shrinkJPEG([]byte("not an image")); err == nil {
		t.Fatal("expected error for undecodable data")
	}
}

func TestIsJPEG(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.jpg", true},
		{"a.JPEG", true},
		{"a.png", false},
		{"a.jpg.txt", false},
	}
	for _, tt := range tests {
		if got := isJPEG(tt.path); got != tt.want {
			t.Errorf("isJPEG(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
