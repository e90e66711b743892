package pargethttp

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// rangeServer is a test HTTP server with byte-range support and hooks for
// failure injection and mid-transfer stalls.
type rangeServer struct {
	data []byte

	// failRangeStart, when >= 0, answers 500 to any ranged GET whose
	// range starts at that offset.
	failRangeStart int64

	// stallAfter, when > 0, flushes that many bytes of each ranged GET
	// and then blocks until the client goes away.
	stallAfter int

	// noRanges drops the Accept-Ranges header and ignores Range requests.
	noRanges bool

	// noLength omits Content-Length from HEAD responses.
	noLength bool

	mu            sync.Mutex
	rangeRequests []string
}

func newRangeServer(data []byte) *rangeServer {
	return &rangeServer{data: data, failRangeStart: -1}
}

func (s *rangeServer) start() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(s.handle))
}

func (s *rangeServer) recordedRanges() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.rangeRequests...)
}

func (s *rangeServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		if !s.noLength {
			w.Header().Set("Content-Length", strconv.Itoa(len(s.data)))
		}
		if !s.noRanges {
			w.Header().Set("Accept-Ranges", "bytes")
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" || s.noRanges {
		w.Header().Set("Content-Length", strconv.Itoa(len(s.data)))
		w.WriteHeader(http.StatusOK)
		s.writeBody(w, r, s.data)
		return
	}

	s.mu.Lock()
	s.rangeRequests = append(s.rangeRequests, rangeHeader)
	s.mu.Unlock()

	spec := strings.TrimPrefix(rangeHeader, "bytes=")
	parts := strings.SplitN(spec, "-", 2)
	start, _ := strconv.ParseInt(parts[0], 10, 64)
	end := int64(len(s.data)) - 1
	if len(parts) == 2 && parts[1] != "" {
		end, _ = strconv.ParseInt(parts[1], 10, 64)
	}
	if end >= int64(len(s.data)) {
		end = int64(len(s.data)) - 1
	}
	if s.failRangeStart >= 0 && start == s.failRangeStart {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	body := s.data[start : end+1]
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, len(s.data)))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusPartialContent)
	s.writeBody(w, r, body)
}

func (s *rangeServer) writeBody(w http.ResponseWriter, r *http.Request, body []byte) {
	if s.stallAfter <= 0 || s.stallAfter >= len(body) {
		w.Write(body)
		return
	}
	w.Write(body[:s.stallAfter])
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
}

// testData builds deterministic non-repeating content.
func testData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte((i*7 + i/251) % 256)
	}
	return data
}
