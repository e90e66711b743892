package s3

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mveld/parget/internal/utils"
)

type S3Client struct {
	client *s3.Client
}

func getS3Client() (*S3Client, error) {
	profile := os.Getenv("AWS_PROFILE")
	if profile == "" {
		profile = "default"
	}
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithSharedConfigProfile(profile),
		config.WithRetryMode(aws.RetryModeAdaptive),
	)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %v: %w", err, utils.ErrInvalidConfig)
	}
	return &S3Client{client: s3.NewFromConfig(cfg)}, nil
}

func getS3ObjectInfo(bucket, key string, client *S3Client) (int64, error) {
	headObj, err := client.client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("error accessing s3://%s/%s: %v: %w", bucket, key, err, utils.ErrTransport)
	}
	if headObj.ContentLength == nil {
		return 0, fmt.Errorf("s3://%s/%s has no reported size: %w", bucket, key, utils.ErrUnsupportedSource)
	}
	return *headObj.ContentLength, nil
}
