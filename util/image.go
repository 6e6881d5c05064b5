package util

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"go.uber.org/zap"

	"github.com/epustaka/epustaka/log"
)

// ImageToWebp converts a cover image to webp next to the original and
// returns the new path, or "" when the conversion fails. Covers are
// always served as webp, the original is kept for the caller to clean up.
func ImageToWebp(srcPath string, quality float32) string {
	src, err := os.Open(srcPath)
	if err != nil {
		log.Warn("Failed to open cover image", zap.String("path", srcPath), zap.Error(err))
		return ""
	}
	defer src.Close()

	img, _, err := image.Decode(src)
	if err != nil {
		log.Warn("Failed to decode cover image", zap.String("path", srcPath), zap.Error(err))
		return ""
	}

	ext := filepath.Ext(srcPath)
	dstPath := strings.TrimSuffix(srcPath, ext) + ".webp"
	dst, err := os.Create(dstPath)
	if err != nil {
		log.Warn("Failed to create webp file", zap.String("path", dstPath), zap.Error(err))
		return ""
	}
	defer dst.Close()

	if err := webp.Encode(dst, img, &webp.Options{Quality: quality}); err != nil {
		log.Warn("Failed to encode webp", zap.String("path", dstPath), zap.Error(err))
		os.Remove(dstPath)
		return ""
	}

	return dstPath
}
