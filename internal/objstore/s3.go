package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
)

// S3Store serves objects from a single S3 (or S3-compatible) bucket.
type S3Store struct {
	c      *awss3.S3
	bucket string
}

type S3Options struct {
	Bucket string
	// Region is required even for S3-compatible services; any value
	// works for a self-hosted endpoint like Minio.
	Region string
	// Endpoint overrides the AWS endpoint for S3-compatible services.
	Endpoint string
	// ForcePathStyle is needed by most self-hosted services.
	ForcePathStyle bool
}

func NewS3Store(opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("objstore: bucket name is required")
	}

	awsCfg := aws.NewConfig()
	if opts.Region != "" {
		awsCfg = awsCfg.WithRegion(opts.Region)
	}
	if opts.Endpoint != "" {
		awsCfg = awsCfg.WithEndpoint(opts.Endpoint)
	}
	if opts.ForcePathStyle {
		awsCfg = awsCfg.WithS3ForcePathStyle(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("objstore: create aws session: %w", err)
	}

	return &S3Store{c: awss3.New(sess), bucket: opts.Bucket}, nil
}

func (s *S3Store) Get(ctx context.Context, key string, opts *GetOptions) (*Object, error) {
	input := &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if opts != nil {
		if opts.Length > 0 {
			input.Range = aws.String(fmt.Sprintf("bytes=%d-%d", opts.Offset, opts.Offset+opts.Length-1))
		} else if opts.Offset > 0 {
			input.Range = aws.String(fmt.Sprintf("bytes=%d-", opts.Offset))
		}
		if opts.IfMatch != "" {
			input.IfMatch = aws.String(opts.IfMatch)
		}
	}

	out, err := s.c.GetObjectWithContext(ctx, input)
	if err != nil {
		return nil, classify(err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("objstore: read object body: %w", err)
	}

	obj := &Object{Body: body, Size: int64(len(body))}
	if out.ETag != nil {
		obj.ETag = *out.ETag
	}
	if out.ContentType != nil {
		obj.ContentType = *out.ContentType
	}
	if out.CacheControl != nil {
		obj.CacheControl = *out.CacheControl
	}
	if out.Expires != nil {
		if t, perr := http.ParseTime(*out.Expires); perr == nil {
			obj.Expires = t
		}
	}
	return obj, nil
}

// classify maps S3 failures onto the store's error taxonomy. Anything
// without a defined mapping is returned as-is for the caller's generic
// error path.
func classify(err error) error {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.Code() == awss3.ErrCodeNoSuchKey,
			reqErr.StatusCode() == http.StatusNotFound:
			return ErrNotFound
		case reqErr.StatusCode() == http.StatusPreconditionFailed:
			return ErrPreconditionFailed
		}
	}
	return err
}
