package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Format is an output encoding.
type Format string

// Output formats.
const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	BMP  Format = "bmp"
)

// DefaultJPEGQuality is used when a non-positive quality is requested.
const DefaultJPEGQuality = 85

// ParseFormat maps a format name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "", "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "bmp":
		return BMP, nil
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// MimeType returns the media type of the format.
func (f Format) MimeType() string {
	switch f {
	case JPEG:
		return "image/jpeg"
	case BMP:
		return "image/bmp"
	}
	return "image/png"
}

// Encode writes img to w. quality applies to JPEG only.
func Encode(w io.Writer, img image.Image, format Format, quality int) error {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	var f imaging.Format
	switch format {
	case PNG:
		f = imaging.PNG
	case JPEG:
		f = imaging.JPEG
	case BMP:
		f = imaging.BMP
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
	if err := imaging.Encode(w, img, f, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return nil
}

// EncodeBase64 encodes img and returns the standard base64 text.
func EncodeBase64(img image.Image, format Format, quality int) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format, quality); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Save writes img to path in the given format, creating parent directories.
func Save(path string, img image.Image, format Format, quality int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Encode(f, img, format, quality); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// ExportPath returns the path an interactive export is written to and its
// format. A path without a .png, .jpg or .jpeg extension gets ".png"
// appended.
func ExportPath(path string) (string, Format) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return path, PNG
	case ".jpg", ".jpeg":
		return path, JPEG
	}
	return path + ".png", PNG
}

var supportedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".webp": true,
}

// SupportedExtension reports whether a file name has an input extension the
// batch converter accepts. The check is case-insensitive.
func SupportedExtension(name string) bool {
	return supportedExts[strings.ToLower(filepath.Ext(name))]
}
