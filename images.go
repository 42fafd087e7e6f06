package inkpress

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
)

// CopyAssets copies the static asset tree from srcDir into dstDir. JPEG
// images wider than maxImageWidth are downscaled and re-encoded; everything
// else is copied byte-for-byte. Filenames never change, so references in
// post bodies stay valid. Files are visited in sorted order so repeated
// builds produce identical trees.
func CopyAssets(srcDir, dstDir string) error {
	if _, err := os.Stat(srcDir); os.IsNotExist(err) {
		return nil
	}
	return copyFS(os.DirFS(srcDir), dstDir)
}

// CopyAssetsFS copies an asset file system (e.g. theme assets) into dstDir.
func CopyAssetsFS(fsys fs.FS, dstDir string) error {
	return copyFS(fsys, dstDir)
}

func copyFS(fsys fs.FS, dstDir string) error {
	var paths []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	sort.Strings(paths)

	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		if isJPEG(path) {
			resized, err := shrinkJPEG(data)
			if err != nil {
				return fmt.Errorf("process image %s: %w", path, err)
			}
			data = resized
		}
		out := filepath.Join(dstDir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func isJPEG(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return true
	}
	return false
}

// shrinkJPEG re-encodes a JPEG wider than maxImageWidth at a smaller size.
// Narrow images pass through untouched so they stay byte-identical.
func shrinkJPEG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxImageWidth {
		return data, nil
	}
	newH := h * maxImageWidth / w
	dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
