package artifacts

import (
	"context"
	"fmt"
	"os"
)

// StoreKind names a supported artifact store backing.
type StoreKind string

const (
	StoreKindDir StoreKind = "dir"
	StoreKindS3  StoreKind = "s3"
	StoreKindGCS StoreKind = "gcs"
)

// NewStoreFromEnv builds a Store from environment variables, mirroring the
// MCP_STORE_* knobs pkg/config.Load reads.
//
// For "dir": MCP_STORE_ROOT (default "./components").
// For "s3": ARTIFACT_S3_BUCKET (required), ARTIFACT_S3_REGION or AWS_REGION,
// ARTIFACT_S3_ENDPOINT (optional), ARTIFACT_S3_PREFIX (optional).
// For "gcs": ARTIFACT_GCS_BUCKET (required), ARTIFACT_GCS_PREFIX (optional).
func NewStoreFromEnv(ctx context.Context) (Store, error) {
	kind := StoreKind(os.Getenv("MCP_STORE_KIND"))
	if kind == "" {
		kind = StoreKindDir
	}

	switch kind {
	case StoreKindDir:
		root := os.Getenv("MCP_STORE_ROOT")
		if root == "" {
			root = "./components"
		}
		return NewFileStore(root)
	case StoreKindS3:
		return newS3StoreFromEnv(ctx)
	case StoreKindGCS:
		return newGCSStoreFromEnv(ctx)
	default:
		return nil, fmt.Errorf("artifacts: unsupported store kind: %s", kind)
	}
}

func newS3StoreFromEnv(ctx context.Context) (Store, error) {
	bucket := os.Getenv("ARTIFACT_S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("artifacts: ARTIFACT_S3_BUCKET is required for s3 storage")
	}

	region := os.Getenv("ARTIFACT_S3_REGION")
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}

	return NewS3Store(ctx, S3StoreConfig{
		Bucket:   bucket,
		Region:   region,
		Endpoint: os.Getenv("ARTIFACT_S3_ENDPOINT"),
		Prefix:   os.Getenv("ARTIFACT_S3_PREFIX"),
	})
}
