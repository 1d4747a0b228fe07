package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

// Objects lists and reads objects addressed as gs://bucket/key.
type Objects interface {
	List(ctx context.Context, uri string, suffix string) ([]string, error)
	Read(ctx context.Context, uri string) ([]byte, error)
	Close() error
}

type objectService struct {
	log     *logger.Logger
	storage *storage.Client
}

func NewObjects(ctx context.Context, log *logger.Logger) (Objects, error) {
	st, err := storage.NewClient(ctx, ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	return &objectService{log: log.With("service", "gcp.Objects"), storage: st}, nil
}

func (s *objectService) Close() error {
	if s == nil || s.storage == nil {
		return nil
	}
	return s.storage.Close()
}

// List returns full gs:// URIs under the prefix whose names end in suffix (case-insensitive).
func (s *objectService) List(ctx context.Context, uri string, suffix string) ([]string, error) {
	bucket, prefix, err := ParseGCSURI(uri)
	if err != nil {
		return nil, err
	}
	suffix = strings.ToLower(suffix)
	it := s.storage.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	var out []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list gs://%s/%s: %w", bucket, prefix, err)
		}
		if suffix != "" && !strings.HasSuffix(strings.ToLower(attrs.Name), suffix) {
			continue
		}
		out = append(out, "gs://"+bucket+"/"+attrs.Name)
	}
	s.log.Debug("Listed objects", "bucket", bucket, "prefix", prefix, "count", len(out))
	return out, nil
}

func (s *objectService) Read(ctx context.Context, uri string) ([]byte, error) {
	bucket, key, err := ParseGCSURI(uri)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, fmt.Errorf("gcs uri %q has no object key", uri)
	}
	rc, err := s.storage.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", uri, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func IsGCSURI(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "gs://")
}

func ParseGCSURI(uri string) (bucket, key string, err error) {
	uri = strings.TrimSpace(uri)
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("not a gcs uri: %q", uri)
	}
	rest := strings.TrimPrefix(uri, "gs://")
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("gcs uri %q has no bucket", uri)
	}
	return bucket, key, nil
}
