package storage

import (
	"context"
	"fmt"
	"io"

	"starboard/internal/observability"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Store writes objects to an S3 bucket. Reads go through a fixed public
// base URL (CloudFront or the bucket website endpoint), never through the API.
type S3Store struct {
	bucket   string
	baseURL  string
	uploader *s3manager.Uploader
	svc      *s3.S3
}

// NewS3Store builds a store for the given bucket and region.
func NewS3Store(bucket, region, baseURL string) (*S3Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Store{
		bucket:   bucket,
		baseURL:  baseURL,
		uploader: s3manager.NewUploader(sess),
		svc:      s3.New(sess),
	}, nil
}

func (s *S3Store) Put(ctx context.Context, path string, body io.Reader, contentType string) error {
	ctx, span := observability.GetTraceLayer().TraceBlobOperation(ctx, "put", s.bucket)
	defer span.End()

	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to upload %s to s3://%s: %w", path, s.bucket, err)
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, path string) error {
	ctx, span := observability.GetTraceLayer().TraceBlobOperation(ctx, "delete", s.bucket)
	defer span.End()

	_, err := s.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil
		}
		span.RecordError(err)
		return fmt.Errorf("failed to delete s3://%s/%s: %w", s.bucket, path, err)
	}
	return nil
}

func (s *S3Store) PublicURL(path string) string {
	return joinURL(s.baseURL, path)
}
