// Package storage keeps uploaded product images on local disk or in S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

var ErrForeignURL = errors.New("image url does not belong to this store")

// ImageStore saves uploaded images and hands back the public URL they are served from.
type ImageStore interface {
	Put(ctx context.Context, name, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// ObjectName builds a unique, space-free object name for an uploaded file.
func ObjectName(original string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = strings.ReplaceAll(strings.TrimSpace(base), " ", "_")
	if base == "" || base == "." {
		base = "image"
	}
	return fmt.Sprintf("%d_%s%s", now.UnixNano(), base, ext)
}
