// Package objectstore persists uploaded source files in Google Cloud
// Storage and mints signed URLs for collaborators that re-fetch them.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

// Bucket wraps one GCS bucket used for pipeline uploads.
type Bucket struct {
	handle *storage.BucketHandle
	name   string
	prefix string
}

// Config holds object store settings.
type Config struct {
	Bucket       string
	UploadPrefix string
}

// NewBucket creates a Bucket on an existing GCS client.
func NewBucket(client *storage.Client, cfg Config) (*Bucket, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name must be configured")
	}
	prefix := strings.Trim(cfg.UploadPrefix, "/")
	if prefix == "" {
		prefix = "documents"
	}
	return &Bucket{
		handle: client.Bucket(cfg.Bucket),
		name:   cfg.Bucket,
		prefix: prefix,
	}, nil
}

// Upload writes data to a fresh object and returns its path within the
// bucket. The object name embeds a random id so repeated uploads of the
// same filename never collide.
func (b *Bucket) Upload(ctx context.Context, filename string, data []byte, contentType string) (string, error) {
	objectName := b.objectName(filename)

	w := b.handle.Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize object %s: %w", objectName, err)
	}

	return objectName, nil
}

// SignedURL returns a time-limited GET URL for an uploaded object.
func (b *Bucket) SignedURL(_ context.Context, objectPath string, ttl time.Duration) (string, error) {
	url, err := b.handle.SignedURL(objectPath, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(ttl),
		Scheme:  storage.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("sign url for %s: %w", objectPath, err)
	}
	return url, nil
}

// List returns the paths of all uploaded objects under the configured
// prefix. Used by the reconciliation pass to find orphans.
func (b *Bucket) List(ctx context.Context) ([]string, error) {
	var paths []string
	it := b.handle.Objects(ctx, &storage.Query{Prefix: b.prefix + "/"})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list objects in %s: %w", b.name, err)
		}
		paths = append(paths, attrs.Name)
	}
	return paths, nil
}

// Delete removes an object. Missing objects are not an error, so a
// reconciliation pass can be re-run safely.
func (b *Bucket) Delete(ctx context.Context, objectPath string) error {
	err := b.handle.Object(objectPath).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete object %s: %w", objectPath, err)
	}
	return nil
}

func (b *Bucket) objectName(filename string) string {
	return path.Join(b.prefix, uuid.New().String()+"-"+sanitizeFilename(filename))
}

// sanitizeFilename keeps only the base name and replaces characters that
// complicate object keys or signed URLs.
func sanitizeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "upload"
	}
	return base
}
