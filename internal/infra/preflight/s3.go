// Where: internal/infra/preflight/s3.go
// What: S3 adapter that checks whether a deployment bucket exists.
// Why: Fail fast before a long package step when the bucket is missing or unreachable.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var errBucketRequired = errors.New("bucket name is required")

// S3API is the subset of the S3 client used for preflight checks.
type S3API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// ClientFactory builds an S3 client for a region.
type ClientFactory func(ctx context.Context, region string) (S3API, error)

// S3BucketChecker reports bucket existence through HeadBucket. Credentials come
// from the default chain (environment, shared profile, SSO, instance role).
type S3BucketChecker struct {
	NewClient ClientFactory
}

func NewS3BucketChecker() S3BucketChecker {
	return S3BucketChecker{NewClient: newAWSClient}
}

func (c S3BucketChecker) BucketExists(ctx context.Context, region, bucket string) (bool, error) {
	if bucket == "" {
		return false, errBucketRequired
	}
	factory := c.NewClient
	if factory == nil {
		factory = newAWSClient
	}
	client, err := factory(ctx, region)
	if err != nil {
		return false, fmt.Errorf("create s3 client: %w", err)
	}
	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("head bucket %s: %w", bucket, err)
}

func newAWSClient(ctx context.Context, region string) (S3API, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg), nil
}

func isNotFound(err error) bool {
	var notFound *s3types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchBucket *s3types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket":
			return true
		}
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return true
	}
	return false
}
