package s3

import (
	"fmt"
	"strings"

	"github.com/mveld/parget/internal/utils"
)

type S3Downloader struct{}

func (d *S3Downloader) ValidateJob(job *utils.Job) error {
	bucket, key, err := parseS3URL(job.URL)
	if err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("missing object key in %s: %w", job.URL, utils.ErrInvalidConfig)
	}
	job.Metadata["bucket"] = bucket
	job.Metadata["key"] = key
	return nil
}

func (d *S3Downloader) BuildJob(job *utils.Job) error {
	if job.Connections < 1 {
		job.Connections = utils.DefaultConnections
	}
	bucket := job.Metadata["bucket"].(string)
	key := job.Metadata["key"].(string)
	client, err := getS3Client()
	if err != nil {
		return err
	}
	size, err := getS3ObjectInfo(bucket, key, client)
	if err != nil {
		return err
	}
	job.Metadata["size"] = size
	if job.OutputPath == "" {
		parts := strings.Split(key, "/")
		job.OutputPath = parts[len(parts)-1]
	}
	return nil
}

func parseS3URL(url string) (string, string, error) {
	url = strings.TrimPrefix(url, "s3://")
	parts := strings.SplitN(url, "/", 2)
	if len(parts) < 1 || parts[0] == "" {
		return "", "", fmt.Errorf("invalid S3 URL format: %w", utils.ErrInvalidConfig)
	}
	bucket := parts[0]
	key := ""
	if len(parts) > 1 {
		key = parts[1]
	}
	return bucket, key, nil
}
