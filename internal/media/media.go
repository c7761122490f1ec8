// Package media stores uploaded post images and documents in object storage.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var (
	ErrUnavailable = errors.New("media storage unavailable")
	ErrBadDataURL  = errors.New("malformed data URL")
	ErrTooLarge    = errors.New("upload too large")
)

// MaxUploadBytes bounds a single image or document.
const MaxUploadBytes = 10 << 20

// Object is a stored upload.
type Object struct {
	Key         string
	URL         string
	ContentType string
	Size        int64
}

// Storage puts and removes objects. Keys are generated by the implementation.
type Storage interface {
	Put(ctx context.Context, prefix, filename, contentType string, r io.Reader, size int64) (Object, error)
	Remove(ctx context.Context, key string) error
}

// Disabled is the Storage used when no object store is configured.
type Disabled struct{}

func (Disabled) Put(context.Context, string, string, string, io.Reader, int64) (Object, error) {
	return Object{}, ErrUnavailable
}

func (Disabled) Remove(context.Context, string) error { return ErrUnavailable }

// IsDataURL reports whether v is an inline base64 data URL.
func IsDataURL(v string) bool {
	return strings.HasPrefix(v, "data:")
}

// DecodeDataURL parses data:<type>;base64,<payload>.
func DecodeDataURL(v string) (contentType string, data []byte, err error) {
	if !IsDataURL(v) {
		return "", nil, ErrBadDataURL
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(v, "data:"), ",")
	if !ok {
		return "", nil, ErrBadDataURL
	}
	mediaType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return "", nil, ErrBadDataURL
	}
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxUploadBytes {
		return "", nil, ErrTooLarge
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadDataURL, err)
	}
	return mediaType, data, nil
}

var extensions = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/svg+xml":   ".svg",
	"application/pdf": ".pdf",
	"text/plain":      ".txt",
}

// extensionFor prefers the uploaded filename's extension and falls back to the content type.
func extensionFor(filename, contentType string) string {
	if ext := strings.ToLower(path.Ext(filename)); ext != "" && len(ext) <= 8 {
		return ext
	}
	return extensions[contentType]
}
