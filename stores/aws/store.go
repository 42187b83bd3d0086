package aws

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/justArale/recipe-book-server/core"
	"github.com/oklog/ulid/v2"
)

// BlobStore keeps image binaries in an S3 bucket. Keys are
// "<folder>/<ulid>" and are carried inside the returned BlobRef together
// with the public URL; nothing downstream ever rebuilds a key from the
// folder name.
type BlobStore struct {
	s3Client  *s3.Client
	bucket    string
	publicURL string
}

// NewBlobStore creates an S3-backed blob store. publicURL optionally
// overrides the default virtual-hosted bucket URL, for buckets served
// through a CDN.
func NewBlobStore(bucketName, publicURL string) *BlobStore {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucketName, cfg.Region)
	}

	return &BlobStore{
		s3Client:  s3.NewFromConfig(cfg),
		bucket:    bucketName,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

func (s *BlobStore) Upload(ctx context.Context, r io.Reader, folder, contentType string) (core.BlobRef, error) {
	key := path.Join(folder, ulid.Make().String())

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return core.BlobRef{}, fmt.Errorf("failed to upload blob: %v", err)
	}

	return core.BlobRef{
		Key: key,
		URL: s.publicURL + "/" + key,
	}, nil
}

func (s *BlobStore) Delete(ctx context.Context, key string) error {
	// S3 DeleteObject succeeds for keys that do not exist, so delete is
	// already idempotent here.
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete blob %s: %v", key, err)
	}
	return nil
}
