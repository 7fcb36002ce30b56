package manifest

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/litescript/ls-release-tui/internal/config"
)

// S3Source reads a manifest object from S3 compatible storage.
type S3Source struct {
	client *minio.Client
	bucket string
	object string
}

// NewS3Source creates a source from cfg. No request is made until Fetch.
func NewS3Source(cfg config.S3Config) (*S3Source, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" || cfg.Object == "" {
		return nil, fmt.Errorf("manifest: s3 source needs endpoint, bucket and object")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("manifest: init s3 client: %w", err)
	}

	return &S3Source{client: client, bucket: cfg.Bucket, object: cfg.Object}, nil
}

// Name returns the object location.
func (s *S3Source) Name() string {
	return "s3://" + s.bucket + "/" + s.object
}

// ErrObjectNotFound is wrapped when the manifest object does not exist.
var ErrObjectNotFound = errors.New("manifest object not found")

// Fetch downloads and decodes the object.
func (s *S3Source) Fetch(ctx context.Context) (Manifest, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.object, minio.GetObjectOptions{})
	if err != nil {
		return Manifest{}, fetchErr(s.Name(), s.translate(err))
	}
	defer obj.Close()

	// GetObject is lazy; errors such as NoSuchKey surface on read.
	data, err := io.ReadAll(io.LimitReader(obj, maxBody))
	if err != nil {
		return Manifest{}, fetchErr(s.Name(), s.translate(err))
	}

	var contentType string
	if info, err := obj.Stat(); err == nil {
		contentType = info.ContentType
	}

	m, err := Decode(data, DetectFormat(contentType, s.object))
	if err != nil {
		return Manifest{}, fetchErr(s.Name(), err)
	}
	return m, nil
}

func (s *S3Source) translate(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, s.object)
	}
	return err
}
