package s3

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mveld/parget/internal/utils"
)

// s3ProgressWriter forwards byte counts from the transfer manager's
// concurrent part writes onto the progress channel.
type s3ProgressWriter struct {
	writer     io.WriterAt
	progressCh chan<- int64
}

func (pw *s3ProgressWriter) WriteAt(p []byte, off int64) (int, error) {
	n, err := pw.writer.WriteAt(p, off)
	if n > 0 {
		pw.progressCh <- int64(n)
	}
	return n, err
}

// Download fetches one object with the transfer manager, which splits the
// object into ranged part GETs much like the HTTP path does.
func (d *S3Downloader) Download(ctx context.Context, job *utils.Job) (*utils.Result, error) {
	log := utils.GetLogger("s3/download")
	bucket := job.Metadata["bucket"].(string)
	key := job.Metadata["key"].(string)
	size, _ := job.Metadata["size"].(int64)
	client, err := getS3Client()
	if err != nil {
		return nil, err
	}

	progressCh := make(chan int64, 100)
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		var totalDownloaded int64
		for bytes := range progressCh {
			totalDownloaded += bytes
			if job.ProgressFunc != nil {
				job.ProgressFunc(totalDownloaded, size)
			}
		}
	}()

	log.Info().Str("bucket", bucket).Str("key", key).Int64("size", size).Msg("starting object download")
	written, err := performS3ObjectDownload(ctx, bucket, key, job.OutputPath, job.Connections, client, progressCh)
	close(progressCh)
	<-progressDone
	if err != nil {
		return nil, err
	}
	return &utils.Result{Bytes: written, OutputPath: job.OutputPath}, nil
}

func performS3ObjectDownload(ctx context.Context, bucket, key, outputPath string, connections int, client *S3Client, progressCh chan<- int64) (int64, error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("error creating output file: %v: %w", err, utils.ErrIO)
	}
	defer file.Close()

	downloader := manager.NewDownloader(client.client, func(d *manager.Downloader) {
		d.PartSize = 8 * 1024 * 1024
		d.Concurrency = connections
	})
	written, err := downloader.Download(ctx, &s3ProgressWriter{writer: file, progressCh: progressCh}, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("object download cancelled: %w", context.Cause(ctx))
		}
		return 0, fmt.Errorf("error downloading S3 object: %v: %w", err, utils.ErrTransport)
	}
	return written, nil
}
