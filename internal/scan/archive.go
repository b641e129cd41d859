package scan

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archive stores scanned images in a bucket.
type S3Archive struct {
	client        putObjectAPI
	bucket        string
	region        string
	publicBaseURL string
	now           func() time.Time
}

// S3Options configures the image archive. Static credentials are used when
// both keys are set, the default AWS credential chain otherwise.
type S3Options struct {
	Bucket          string
	Region          string
	PublicBaseURL   string
	AccessKeyID     string
	SecretAccessKey string
}

func NewS3Archive(ctx context.Context, opts S3Options) (*S3Archive, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newS3Archive(s3.NewFromConfig(cfg), opts), nil
}

func newS3Archive(client putObjectAPI, opts S3Options) *S3Archive {
	return &S3Archive{
		client:        client,
		bucket:        opts.Bucket,
		region:        opts.Region,
		publicBaseURL: strings.TrimRight(opts.PublicBaseURL, "/"),
		now:           time.Now,
	}
}

// Put uploads the image under scans/<date>/<uuid>.<ext> and returns its URL.
func (a *S3Archive) Put(ctx context.Context, img Image) (string, error) {
	key := fmt.Sprintf("scans/%s/%s.%s", a.now().UTC().Format("2006/01/02"), uuid.NewString(), img.Extension())

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Bytes),
		ContentType: aws.String(img.MediaType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	if a.publicBaseURL != "" {
		return a.publicBaseURL + "/" + key, nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", a.bucket, a.region, key), nil
}
