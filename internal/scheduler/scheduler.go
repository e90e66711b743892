package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	pargethttp "github.com/mveld/parget/internal/downloaders/http"
	"github.com/mveld/parget/internal/downloaders/s3"
	"github.com/mveld/parget/internal/output"
	"github.com/mveld/parget/internal/utils"
)

// downloaderRegistry maps job types to their downloader implementations
var downloaderRegistry = map[string]utils.Downloader{
	"http": &pargethttp.HTTPDownloader{},
	"s3":   &s3.S3Downloader{},
}

var ErrJobsFailed = errors.New("one or more downloads failed")

// Run drives the given jobs with numWorkers parallel workers. Each job goes
// through validate, build, and download; failures are collected rather than
// aborting the batch. Cancelling ctx stops in-flight downloads
// cooperatively.
func Run(ctx context.Context, jobs []utils.Job, numWorkers int) error {
	log := utils.GetLogger("scheduler")
	outputMgr := output.NewManager()
	outputMgr.StartDisplay()
	defer outputMgr.StopDisplay()

	jobCh := make(chan utils.Job, len(jobs))
	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)

	var failed int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				if err := processJob(ctx, &job, outputMgr); err != nil {
					log.Debug().Str("url", job.URL).Err(err).Msg("job failed")
					mu.Lock()
					failed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	if failed > 0 {
		return fmt.Errorf("%d of %d: %w", failed, len(jobs), ErrJobsFailed)
	}
	return nil
}

func processJob(ctx context.Context, job *utils.Job, outputMgr *output.Manager) error {
	job.ID = uuid.New().String()
	outputMgr.Register(job.ID, job.URL)

	downloader, exists := downloaderRegistry[job.JobType]
	if !exists {
		err := fmt.Errorf("unknown job type %s: %w", job.JobType, utils.ErrInvalidConfig)
		outputMgr.ReportError(job.ID, err)
		return err
	}

	outputMgr.SetStatus(job.ID, "pending")
	outputMgr.SetMessage(job.ID, fmt.Sprintf("Validating %s job", job.JobType))
	if err := downloader.ValidateJob(job); err != nil {
		outputMgr.ReportError(job.ID, fmt.Errorf("validation failed: %w", err))
		return err
	}

	outputMgr.SetMessage(job.ID, fmt.Sprintf("Building %s job", job.JobType))
	if err := downloader.BuildJob(job); err != nil {
		outputMgr.ReportError(job.ID, fmt.Errorf("build failed: %w", err))
		return err
	}

	outputMgr.SetMessage(job.ID, fmt.Sprintf("Downloading %s", job.OutputPath))
	job.ProgressFunc = func(downloaded, total int64) {
		outputMgr.SetProgress(job.ID, downloaded, total)
	}
	result, err := downloader.Download(ctx, job)
	if err != nil {
		outputMgr.ReportError(job.ID, fmt.Errorf("download failed: %w", err))
		return err
	}
	outputMgr.Complete(job.ID, fmt.Sprintf("Completed %s (%s)", result.OutputPath, utils.FormatBytes(uint64(result.Bytes))))
	return nil
}
