package pargethttp

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mveld/parget/internal/utils"
)

type HTTPDownloader struct{}

func (d *HTTPDownloader) ValidateJob(job *utils.Job) error {
	parsedURL, err := url.Parse(job.URL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v: %w", err, utils.ErrInvalidConfig)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %s: %w", parsedURL.Scheme, utils.ErrInvalidConfig)
	}

	client := utils.NewPargetHTTPClient(job.HTTPClientConfig)
	req, err := http.NewRequest(http.MethodHead, job.URL, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %v: %w", err, utils.ErrTransport)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error checking URL: %v: %w", err, utils.ErrTransport)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusMovedPermanently || resp.StatusCode == http.StatusFound {
		if location := resp.Header.Get("Location"); location != "" {
			job.URL = location
		}
	} else if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned error %d: %w", resp.StatusCode, utils.ErrTransport)
	}
	return nil
}

func (d *HTTPDownloader) BuildJob(job *utils.Job) error {
	if job.Connections < 1 {
		job.Connections = utils.DefaultConnections
	}
	job.HTTPClientConfig.HighThreadMode = job.Connections > 5
	client := utils.NewPargetHTTPClient(job.HTTPClientConfig)

	fileSize, fileName, err := getFileInfo(job.URL, client)
	if err != nil && !errors.Is(err, utils.ErrRangeRequestsNotSupported) {
		return fmt.Errorf("error getting file info: %w", err)
	}

	if job.OutputPath == "" && fileName != "" {
		job.OutputPath = fileName
	} else if job.OutputPath == "" {
		parsedURL, _ := url.Parse(job.URL)
		pathParts := strings.Split(parsedURL.Path, "/")
		job.OutputPath = pathParts[len(pathParts)-1]
		if job.OutputPath == "" {
			job.OutputPath = "download"
		}
	}

	job.Metadata["fileSize"] = fileSize
	job.Metadata["rangeSupported"] = !errors.Is(err, utils.ErrRangeRequestsNotSupported)
	return nil
}

// Download queries remote metadata during BuildJob, then fans the ranges
// out over separate connections and merges the parts. Per-connection
// progress deltas are funneled through a single channel and folded into
// the job's ProgressFunc by one aggregator goroutine.
func (d *HTTPDownloader) Download(ctx context.Context, job *utils.Job) (*utils.Result, error) {
	client := utils.NewPargetHTTPClient(job.HTTPClientConfig)
	fileSize, _ := job.Metadata["fileSize"].(int64)
	rangeSupported, _ := job.Metadata["rangeSupported"].(bool)

	progressCh := make(chan int64, 100)
	progressDone := make(chan struct{})
	startTime := time.Now()

	go func() {
		defer close(progressDone)
		var totalDownloaded int64
		var lastUpdate time.Time
		var lastBytes int64
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case bytes, ok := <-progressCh:
				if !ok {
					// Final update when channel closes
					if job.ProgressFunc != nil {
						job.ProgressFunc(totalDownloaded, fileSize)
					}
					return
				}
				totalDownloaded += bytes
			case <-ticker.C:
				if totalDownloaded > lastBytes {
					if job.ProgressFunc != nil {
						job.ProgressFunc(totalDownloaded, fileSize)
					}
					elapsed := time.Since(lastUpdate).Seconds()
					if elapsed > 0 {
						job.Metadata["downloadSpeed"] = float64(totalDownloaded-lastBytes) / elapsed
						job.Metadata["elapsedTime"] = time.Since(startTime).Seconds()
					}
					lastUpdate = time.Now()
					lastBytes = totalDownloaded
				}
			}
		}
	}()

	var written int64
	var err error
	if !rangeSupported || job.Connections == 1 || fileSize/int64(job.Connections) < 2*utils.DefaultBufferSize {
		written, err = PerformSimpleDownload(ctx, job.URL, job.OutputPath, client, progressCh)
	} else {
		config := utils.DownloadConfig{
			URL:              job.URL,
			OutputPath:       job.OutputPath,
			Connections:      job.Connections,
			HTTPClientConfig: job.HTTPClientConfig,
		}
		written, err = PerformMultiDownload(ctx, config, client, fileSize, progressCh)
	}

	close(progressCh)
	<-progressDone
	job.Metadata["totalTime"] = time.Since(startTime).Seconds()
	if err != nil {
		return nil, err
	}
	return &utils.Result{Bytes: written, OutputPath: job.OutputPath}, nil
}

var filenameRegex = regexp.MustCompile(`[^a-zA-Z0-9_\-\. ]+`)

func getFileInfo(link string, client utils.HTTPDoer) (int64, string, error) {
	req, err := http.NewRequest(http.MethodHead, link, nil)
	if err != nil {
		return 0, "", fmt.Errorf("error creating HEAD request: %v: %w", err, utils.ErrTransport)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("error executing HEAD request: %v: %w", err, utils.ErrTransport)
	}
	defer resp.Body.Close()

	filename := ""
	if contentDisposition := resp.Header.Get("Content-Disposition"); contentDisposition != "" {
		if _, params, err := mime.ParseMediaType(contentDisposition); err == nil {
			if fn, ok := params["filename"]; ok && fn != "" {
				filename = filenameRegex.ReplaceAllString(fn, "_")
			} else if fn, ok := params["filename*"]; ok && fn != "" {
				if strings.HasPrefix(fn, "UTF-8''") {
					unescaped, _ := url.PathUnescape(strings.TrimPrefix(fn, "UTF-8''"))
					filename = filenameRegex.ReplaceAllString(unescaped, "_")
				}
			}
		}
	}
	contentLength := resp.Header.Get("Content-Length")
	if contentLength == "" {
		return 0, filename, fmt.Errorf("server didn't provide Content-Length: %w", utils.ErrUnsupportedSource)
	}
	size, err := strconv.ParseInt(contentLength, 10, 64)
	if err != nil {
		return 0, filename, fmt.Errorf("bad Content-Length %q: %w", contentLength, utils.ErrUnsupportedSource)
	}
	if size < 0 {
		return 0, filename, fmt.Errorf("invalid file size %d: %w", size, utils.ErrUnsupportedSource)
	}
	if resp.Header.Get("Accept-Ranges") != "bytes" {
		return size, filename, utils.ErrRangeRequestsNotSupported
	}
	return size, filename, nil
}
