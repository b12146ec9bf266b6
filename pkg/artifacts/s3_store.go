package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Store resolves "{prefix}{id}.wasm" objects from an S3-compatible bucket.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// S3StoreConfig configures an S3Store.
type S3StoreConfig struct {
	Bucket   string
	Region   string
	Endpoint string // optional, for MinIO/LocalStack
	Prefix   string
}

// NewS3Store creates an S3-backed artifact store.
func NewS3Store(ctx context.Context, cfg S3StoreConfig) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("artifacts: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *S3Store) key(componentID string) string {
	return s.prefix + componentID + ".wasm"
}

// Fetch implements Store.
func (s *S3Store) Fetch(ctx context.Context, componentID string) (ResolvedArtifact, error) {
	key := s.key(componentID)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NoSuchKey" || apiErr.ErrorCode() == "NotFound") {
			return ResolvedArtifact{}, fmt.Errorf("%w: %s", ErrNotFound, componentID)
		}
		return ResolvedArtifact{}, fmt.Errorf("artifacts: s3 get %s: %w", componentID, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return ResolvedArtifact{}, fmt.Errorf("artifacts: s3 read %s: %w", componentID, err)
	}

	prov := Provenance{OriginURI: fmt.Sprintf("s3://%s/%s", s.bucket, key)}
	if out.Metadata != nil {
		prov.Digest = out.Metadata["digest"]
		prov.Signer = out.Metadata["signer"]
	}

	return ResolvedArtifact{Bytes: data, Provenance: prov}, nil
}
