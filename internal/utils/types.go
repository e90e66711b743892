package utils

import "context"

type Downloader interface {
	ValidateJob(job *Job) error
	BuildJob(job *Job) error
	Download(ctx context.Context, job *Job) (*Result, error)
}

type Job struct {
	ID               string
	JobType          string
	URL              string
	OutputPath       string
	Connections      int
	ProgressFunc     func(downloaded, total int64)
	Metadata         map[string]any
	HTTPClientConfig HTTPClientConfig
}

// RangeSpec is one contiguous inclusive byte span [Start, End] of the
// remote resource. Specs produced by Plan partition [0, totalSize).
type RangeSpec struct {
	Index int
	Start int64
	End   int64
}

// Size returns the number of bytes the range covers.
func (r RangeSpec) Size() int64 {
	return r.End - r.Start + 1
}

type DownloadConfig struct {
	URL              string
	OutputPath       string
	Connections      int
	HTTPClientConfig HTTPClientConfig
}

// Result is the terminal artifact of a completed download.
type Result struct {
	Bytes      int64
	OutputPath string
}

type BatchEntry struct {
	OutputPath string `yaml:"op"`
	URL        string `yaml:"link"`
	Type       string `yaml:"type"`
}
