// Package capture acquires images for analysis from uploads, files and a
// watched inbox directory.
package capture

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/starford/scanboard/internal/apperr"
	"github.com/starford/scanboard/internal/storage"
)

// MaxImageSize is the largest accepted image in bytes.
const MaxImageSize = 10 << 20

var mimeToExt = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Image is an encoded picture ready for analysis.
type Image struct {
	MIME     string
	Data     []byte
	Checksum string
}

// Ext returns the file extension for the image type, including the dot.
func (img Image) Ext() string { return mimeToExt[img.MIME] }

// DataURI encodes the image as a base64 data URI.
func (img Image) DataURI() string {
	return "data:" + img.MIME + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// Base64 returns the bare base64 payload.
func (img Image) Base64() string {
	return base64.StdEncoding.EncodeToString(img.Data)
}

// FromBytes sniffs the content type of data and builds an Image.
func FromBytes(data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, fmt.Errorf("capture: empty image: %w", apperr.ErrInvalidInput)
	}
	if len(data) > MaxImageSize {
		return Image{}, fmt.Errorf("capture: image too large: %d bytes (max %d): %w", len(data), MaxImageSize, apperr.ErrInvalidInput)
	}
	mime := sniff(data)
	if _, ok := mimeToExt[mime]; !ok {
		return Image{}, fmt.Errorf("capture: unsupported image type %s: %w", mime, apperr.ErrInvalidInput)
	}
	return Image{MIME: mime, Data: data, Checksum: storage.Checksum(data)}, nil
}

// FromDataURI parses a data:<mime>;base64,<payload> URI. The declared type
// must be a supported image type and must match the content.
func FromDataURI(uri string) (Image, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return Image{}, fmt.Errorf("capture: not a data URI: %w", apperr.ErrInvalidInput)
	}
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, fmt.Errorf("capture: invalid data URI: missing comma separator: %w", apperr.ErrInvalidInput)
	}
	if !strings.Contains(meta, ";base64") {
		return Image{}, fmt.Errorf("capture: only base64 data URIs are supported: %w", apperr.ErrInvalidInput)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return Image{}, fmt.Errorf("capture: invalid base64 data: %v: %w", err, apperr.ErrInvalidInput)
		}
	}

	declared := strings.ToLower(strings.Split(strings.TrimSuffix(meta, ";base64"), ";")[0])
	if declared == "image/jpg" {
		declared = "image/jpeg"
	}
	if _, ok := mimeToExt[declared]; !ok {
		return Image{}, fmt.Errorf("capture: unsupported MIME type in data URI: %s: %w", declared, apperr.ErrInvalidInput)
	}

	img, err := FromBytes(data)
	if err != nil {
		return Image{}, err
	}
	if img.MIME != declared {
		return Image{}, fmt.Errorf("capture: content does not match %s (detected: %s): %w", declared, img.MIME, apperr.ErrInvalidInput)
	}
	return img, nil
}

// FromFile reads an image from disk. A missing or unreadable file is a
// device access failure.
func FromFile(path string) (Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Image{}, fmt.Errorf("capture: %s: %v: %w", path, err, apperr.ErrDeviceAccess)
	}
	if info.IsDir() {
		return Image{}, fmt.Errorf("capture: %s is a directory: %w", path, apperr.ErrDeviceAccess)
	}
	if info.Size() > MaxImageSize {
		return Image{}, fmt.Errorf("capture: image too large: %d bytes (max %d): %w", info.Size(), MaxImageSize, apperr.ErrInvalidInput)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
			return Image{}, fmt.Errorf("capture: %s: %v: %w", path, err, apperr.ErrDeviceAccess)
		}
		return Image{}, fmt.Errorf("capture: read %s: %w", path, err)
	}
	return FromBytes(data)
}

func sniff(data []byte) string {
	return strings.Split(http.DetectContentType(data), ";")[0]
}
