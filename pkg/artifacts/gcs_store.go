//go:build gcp

package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// GCSStore resolves "{prefix}{id}.wasm" objects from a GCS bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

// GCSStoreConfig configures a GCSStore.
type GCSStoreConfig struct {
	Bucket string
	Prefix string
}

// NewGCSStore creates a GCS-backed artifact store, authenticating via ADC.
func NewGCSStore(ctx context.Context, cfg GCSStoreConfig) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("artifacts: create gcs client: %w", err)
	}
	return &GCSStore{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *GCSStore) objectPath(componentID string) string {
	return s.prefix + componentID + ".wasm"
}

// Fetch implements Store.
func (s *GCSStore) Fetch(ctx context.Context, componentID string) (ResolvedArtifact, error) {
	objectPath := s.objectPath(componentID)
	obj := s.client.Bucket(s.bucket).Object(objectPath)

	attrs, err := obj.Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return ResolvedArtifact{}, fmt.Errorf("%w: %s", ErrNotFound, componentID)
		}
		return ResolvedArtifact{}, fmt.Errorf("artifacts: gcs attrs %s: %w", componentID, err)
	}

	reader, err := obj.NewReader(ctx)
	if err != nil {
		return ResolvedArtifact{}, fmt.Errorf("artifacts: gcs read %s: %w", componentID, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return ResolvedArtifact{}, fmt.Errorf("artifacts: gcs drain %s: %w", componentID, err)
	}

	prov := Provenance{OriginURI: fmt.Sprintf("gs://%s/%s", s.bucket, objectPath)}
	if attrs.Metadata != nil {
		prov.Digest = attrs.Metadata["digest"]
		prov.Signer = attrs.Metadata["signer"]
	}

	return ResolvedArtifact{Bytes: data, Provenance: prov}, nil
}

// Close releases the underlying GCS client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
