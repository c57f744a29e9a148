// Package media wraps the file storage backend for image and document
// uploads. The storage path returned with every upload is the asset's
// public id: it is persisted next to the URL and is required to delete
// the asset later.
//
// Replacement flow (cover images, profile media): upload the new asset
// first, persist the new reference, and only then discard the old asset
// best-effort. A crash mid-sequence can leave an orphaned file but never
// a dangling reference.
package media

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dalemusser/folio/internal/app/system/apperr"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Library stores and serves uploaded media.
type Library struct {
	store  storage.Store
	logger *zap.Logger
}

// New creates a media Library backed by the given storage.
func New(store storage.Store, logger *zap.Logger) *Library {
	return &Library{store: store, logger: logger}
}

// Upload stores the asset under the given folder and returns its reference.
// The generated storage path is <folder>/YYYY/MM/<uuid8><ext>.
func (l *Library) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (models.MediaRef, error) {
	now := time.Now().UTC()
	ext := filepath.Ext(filename)
	uniqueName := fmt.Sprintf("%s%s", uuid.New().String()[:8], ext)
	path := fmt.Sprintf("%s/%04d/%02d/%s", folder, now.Year(), int(now.Month()), uniqueName)

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	opts := &storage.PutOptions{
		ContentType: contentType,
	}
	if err := l.store.Put(ctx, path, r, opts); err != nil {
		return models.MediaRef{}, apperr.Wrap(apperr.Unavailable, "failed to store upload", err)
	}

	return models.MediaRef{
		URL:  l.store.URL(path),
		Path: path,
	}, nil
}

// Delete removes an asset from storage.
func (l *Library) Delete(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	if err := l.store.Delete(ctx, path); err != nil {
		return apperr.Wrap(apperr.Unavailable, "failed to delete asset", err)
	}
	return nil
}

// DiscardQuietly removes a superseded asset best-effort. Failures are
// logged and swallowed so the primary operation's result stands.
func (l *Library) DiscardQuietly(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := l.store.Delete(ctx, path); err != nil {
		l.logger.Warn("failed to discard old asset",
			zap.String("path", path),
			zap.Error(err))
	}
}

// URL returns the public URL for a stored asset path.
func (l *Library) URL(path string) string {
	return l.store.URL(path)
}
