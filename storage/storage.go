package storage

import (
	"context"
	"fmt"
	"io"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/tonypoem-foundation/site-backend/config"
	"github.com/tonypoem-foundation/site-backend/errs"
)

// ErrBlobNotFound is returned by Delete when nothing is stored at the URL.
var ErrBlobNotFound = errs.ErrBlobNotFound

// BlobStore holds uploaded images. Put returns the public URL stored on the
// record; Delete takes that same URL.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// Open selects the blob store from STORAGE_TYPE ("s3" or "memory").
func Open(ctx context.Context, cfg map[string]string) (BlobStore, error) {
	storageType := config.GetString(cfg, "STORAGE_TYPE", "memory")
	log.Info().Str("storageType", storageType).Msg("Opening blob store")

	switch storageType {
	case "s3":
		bucket := config.GetString(cfg, "S3_BUCKET", "")
		if bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required when STORAGE_TYPE=s3")
		}
		region := config.GetString(cfg, "AWS_REGION", "us-east-1")

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
		if err != nil {
			return nil, fmt.Errorf("error loading AWS config: %w", err)
		}

		endpoint := config.GetString(cfg, "S3_ENDPOINT", "")
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if endpoint != "" {
				o.BaseEndpoint = &endpoint
				o.UsePathStyle = true
			}
		})

		publicURL := config.GetString(cfg, "S3_PUBLIC_URL", fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region))
		return NewS3Store(client, bucket, publicURL), nil
	case "memory":
		return NewMemoryStore(config.GetString(cfg, "BLOB_BASE_URL", "/blobs")), nil
	default:
		return nil, fmt.Errorf("unsupported STORAGE_TYPE %q", storageType)
	}
}
