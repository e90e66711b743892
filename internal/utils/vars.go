package utils

import "errors"

// DefaultBufferSize is the copy-loop chunk size for streaming response
// bodies to part files. Progress and cancellation are observed once per
// buffer.
const DefaultBufferSize = 4096

// DefaultConnections is the connection count used when a job doesn't set one.
const DefaultConnections = 4

const TempDirName = ".parget-temp"

const ToolUserAgent = "parget"

// Error taxonomy. Failures are wrapped onto one of these sentinels so
// callers can classify with errors.Is regardless of the underlying cause.
var (
	ErrInvalidConfig     = errors.New("invalid download configuration")
	ErrUnsupportedSource = errors.New("source size could not be determined")
	ErrTransport         = errors.New("transport failure")
	ErrIO                = errors.New("local file failure")
	ErrMissingPart       = errors.New("part file missing or incomplete at merge time")
)

var ErrRangeRequestsNotSupported = errors.New("range requests are not supported")

// Local-only User-Agent list for --user-agent randomize
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:135.0) Gecko/20100101 Firefox/135.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:135.0) Gecko/20100101 Firefox/135.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.3 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36 Edg/132.0.0.0",
	"curl/7.88.1",
	"Wget/1.21.4",
}
