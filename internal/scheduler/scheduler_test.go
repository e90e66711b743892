package scheduler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mveld/parget/internal/utils"
)

func newFileServer(data []byte) *httptest.Server {
	modTime := time.Now()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "payload.bin", modTime, bytes.NewReader(data))
	}))
}

func TestRunDownloadsBatch(t *testing.T) {
	data := make([]byte, 150*1024)
	for i := range data {
		data[i] = byte(i % 251)
	}
	ts := newFileServer(data)
	defer ts.Close()

	dir := t.TempDir()
	jobs := []utils.Job{
		{
			JobType:     "http",
			URL:         ts.URL,
			OutputPath:  filepath.Join(dir, "first.bin"),
			Connections: 3,
			Metadata:    make(map[string]any),
		},
		{
			JobType:     "http",
			URL:         ts.URL,
			OutputPath:  filepath.Join(dir, "second.bin"),
			Connections: 1,
			Metadata:    make(map[string]any),
		},
	}

	require.NoError(t, Run(context.Background(), jobs, 2))
	for _, name := range []string{"first.bin", "second.bin"} {
		content, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, data, content)
	}
}

func TestRunReportsFailedJobs(t *testing.T) {
	jobs := []utils.Job{
		{
			JobType:  "gopher",
			URL:      "gopher://example.com/file",
			Metadata: make(map[string]any),
		},
	}
	err := Run(context.Background(), jobs, 1)
	assert.ErrorIs(t, err, ErrJobsFailed)
}
