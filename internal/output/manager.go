package output

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

type JobOutput struct {
	ID           string
	Name         string
	Status       string
	Message      string
	ProgressLine string
	Complete     bool
	StartTime    time.Time
	LastUpdated  time.Time
	Err          error
	Index        int
}

type Manager struct {
	mutex       sync.RWMutex
	outputs     map[string]*JobOutput
	numLines    int
	errors      []*JobOutput
	doneCh      chan struct{}
	displayTick time.Duration
	displayWg   sync.WaitGroup
	jobCount    int
}

func NewManager() *Manager {
	return &Manager{
		outputs:     make(map[string]*JobOutput),
		doneCh:      make(chan struct{}),
		displayTick: 300 * time.Millisecond,
	}
}

// Register adds a job to the display and returns its handle.
func (m *Manager) Register(id, name string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.jobCount++
	m.outputs[id] = &JobOutput{
		ID:          id,
		Name:        name,
		Status:      "pending",
		StartTime:   time.Now(),
		LastUpdated: time.Now(),
		Index:       m.jobCount,
	}
}

func (m *Manager) SetStatus(id, status string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[id]; exists {
		info.Status = status
		info.LastUpdated = time.Now()
	}
}

func (m *Manager) SetMessage(id, message string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[id]; exists {
		info.Message = message
		info.LastUpdated = time.Now()
	}
}

// SetProgress replaces the job's progress line. Safe to call from the
// download's progress callback.
func (m *Manager) SetProgress(id string, downloaded, total int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[id]; exists {
		elapsed := time.Since(info.StartTime).Seconds()
		info.ProgressLine = ProgressLine(downloaded, total, elapsed)
		info.LastUpdated = time.Now()
	}
}

func (m *Manager) Complete(id, message string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[id]; exists {
		info.Complete = true
		info.Status = "success"
		info.ProgressLine = ""
		info.Message = message
		info.LastUpdated = time.Now()
	}
}

func (m *Manager) ReportError(id string, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[id]; exists {
		info.Complete = true
		info.Status = "error"
		info.ProgressLine = ""
		info.Err = err
		info.LastUpdated = time.Now()
		m.errors = append(m.errors, info)
	}
}

func (m *Manager) statusIndicator(status string) string {
	switch status {
	case "success":
		return successStyle.Render(StyleSymbols["pass"])
	case "error":
		return errorStyle.Render(StyleSymbols["fail"])
	case "warning":
		return warningStyle.Render(StyleSymbols["warning"])
	case "pending":
		return pendingStyle.Render(StyleSymbols["pending"])
	default:
		return infoStyle.Render(StyleSymbols["bullet"])
	}
}

func (m *Manager) sortedOutputs() []*JobOutput {
	all := make([]*JobOutput, 0, len(m.outputs))
	for _, info := range m.outputs {
		all = append(all, info)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Index < all[j].Index
	})
	return all
}

func (m *Manager) updateDisplay() {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	availableLines := getTerminalHeight() - 3
	if m.numLines > 0 {
		fmt.Printf("\033[%dA\033[J", m.numLines)
	}

	lineCount := 0
	for _, info := range m.sortedOutputs() {
		if lineCount >= availableLines {
			break
		}
		elapsed := time.Since(info.StartTime).Round(time.Second)
		if info.Complete {
			elapsed = info.LastUpdated.Sub(info.StartTime).Round(time.Second)
		}
		var styledMessage string
		switch info.Status {
		case "success":
			styledMessage = successStyle.Render(info.Message)
		case "error":
			styledMessage = errorStyle.Render(fmt.Sprintf("Failed %s", info.Name))
		default:
			styledMessage = pendingStyle.Render(info.Message)
		}
		fmt.Printf("  %s %s %s\n", m.statusIndicator(info.Status), debugStyle.Render(elapsed.String()), styledMessage)
		lineCount++
		if info.ProgressLine != "" && lineCount < availableLines {
			fmt.Printf("      %s\n", info.ProgressLine)
			lineCount++
		}
	}
	m.numLines = lineCount
}

func (m *Manager) StartDisplay() {
	m.displayWg.Add(1)
	go func() {
		defer m.displayWg.Done()
		ticker := time.NewTicker(m.displayTick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.updateDisplay()
			case <-m.doneCh:
				m.updateDisplay()
				return
			}
		}
	}()
}

func (m *Manager) StopDisplay() {
	close(m.doneCh)
	m.displayWg.Wait()
	m.ShowSummary()
}

func (m *Manager) ShowSummary() {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	fmt.Println()
	var success, failures int
	for _, info := range m.outputs {
		switch info.Status {
		case "success":
			success++
		case "error":
			failures++
		}
	}
	fmt.Println("  " + successStyle.Render(fmt.Sprintf("Completed %d of %d", success, len(m.outputs))))
	if failures > 0 {
		fmt.Println("  " + errorStyle.Render(fmt.Sprintf("Failed %d of %d", failures, len(m.outputs))))
		fmt.Println()
		fmt.Println("  " + errorStyle.Bold(true).Render("Errors:"))
		for i, info := range m.errors {
			fmt.Printf("    %s %s\n", errorStyle.Render(fmt.Sprintf("%d.", i+1)), errorStyle.Render(info.Name))
			fmt.Printf("      %s\n", errorStyle.Render(fmt.Sprintf("Error: %v", info.Err)))
		}
	}
	fmt.Println()
}
