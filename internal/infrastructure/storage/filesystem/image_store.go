package filesystem

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ecomhub/storefront-api/internal/core/domain"
	"github.com/ecomhub/storefront-api/internal/core/ports"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ImageStore writes product images under a single directory with random
// names. The original extension is kept.
type ImageStore struct {
	dir    string
	logger zerolog.Logger
}

var _ ports.ImageStore = (*ImageStore)(nil)

func NewImageStore(dir string, logger zerolog.Logger) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("init image store: %w", err)
	}
	return &ImageStore{dir: dir, logger: logger}, nil
}

// Dir is the directory images are served from.
func (s *ImageStore) Dir() string { return s.dir }

func (s *ImageStore) Save(ctx context.Context, originalName string, content io.Reader) (name string, err error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return "", domain.NewAPIError("Unsupported image type %q", ext)
	}

	id := make([]byte, 16)
	if _, err := rand.Read(id); err != nil {
		return "", fmt.Errorf("image name: %w", err)
	}
	name = hex.EncodeToString(id) + ext
	target := filepath.Join(s.dir, name)

	defer func() {
		if err != nil {
			s.logger.Error().Err(err).Str("file", target).Msg("image store failed")
		} else {
			s.logger.Debug().Str("file", target).Msg("image stored")
		}
	}()

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := io.Copy(tmp, contextReader{ctx: ctx, r: content}); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("rename: %w", err)
	}
	return name, nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
