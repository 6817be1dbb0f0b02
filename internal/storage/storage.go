// Package storage persists popup image assets and hands back their public URLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/config"
)

// Supported image content types for popup creatives.
var SupportedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// MaxImageSizeBytes caps uploaded popup creatives.
const MaxImageSizeBytes = 5 << 20

// Storage saves popup image assets.
type Storage interface {
	// SaveImage stores an image and returns its public URL.
	SaveImage(ctx context.Context, contentType string, data io.Reader) (string, error)
}

// New builds the storage backend selected in the config.
func New(ctx context.Context, cfg config.AssetsConfig) (Storage, error) {
	switch cfg.Type {
	case "s3":
		return NewS3Storage(ctx, cfg)
	case "local":
		return NewLocalStorage(cfg)
	default:
		return nil, fmt.Errorf("unknown assets storage type %q", cfg.Type)
	}
}

// objectKey builds a collision-free key for a new upload.
func objectKey(contentType string) (string, error) {
	ext, ok := SupportedImageTypes[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("unsupported image type %q", contentType)
	}
	return "popups/" + uuid.New().String() + ext, nil
}

// LocalStorage writes images to a directory served as static files.
type LocalStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage creates the directory if needed.
func NewLocalStorage(cfg config.AssetsConfig) (*LocalStorage, error) {
	if err := os.MkdirAll(filepath.Join(cfg.LocalPath, "popups"), 0o755); err != nil {
		return nil, fmt.Errorf("creating assets directory: %w", err)
	}
	return &LocalStorage{dir: cfg.LocalPath, baseURL: strings.TrimSuffix(cfg.BaseURL, "/")}, nil
}

func (l *LocalStorage) SaveImage(_ context.Context, contentType string, data io.Reader) (string, error) {
	key, err := objectKey(contentType)
	if err != nil {
		return "", err
	}

	path := filepath.Join(l.dir, filepath.FromSlash(key))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(data, MaxImageSizeBytes)); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing image file: %w", err)
	}
	return l.baseURL + "/" + key, nil
}
