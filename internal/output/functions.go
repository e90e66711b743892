package output

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/mveld/parget/internal/utils"
)

// ProgressBar renders a fixed-width bar with percentage and speed text.
func ProgressBar(current, total int64, width int) string {
	if width <= 0 {
		width = 30
	}
	if total <= 0 {
		total = 1
	}
	if current < 0 {
		current = 0
	}
	if current > total {
		current = total
	}
	percent := float64(current) / float64(total)
	filled := max(0, min(int(percent*float64(width)), width))
	bar := StyleSymbols["bullet"]
	bar += strings.Repeat(StyleSymbols["hline"], filled)
	if filled < width {
		bar += strings.Repeat(" ", width-filled)
	}
	bar += StyleSymbols["bullet"]
	return debugStyle.Render(fmt.Sprintf("%s %.1f%%", bar, percent*100))
}

// ProgressLine combines a bar with byte counts and speed.
func ProgressLine(current, total int64, elapsed float64) string {
	counts := fmt.Sprintf("%s / %s", utils.FormatBytes(uint64(max(current, 0))), utils.FormatBytes(uint64(max(total, 0))))
	return fmt.Sprintf("%s %s %s %s", ProgressBar(current, total, 30), debugStyle.Render(counts), StyleSymbols["bullet"], debugStyle.Render(utils.FormatSpeed(current, elapsed)))
}

func getTerminalHeight() int {
	_, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || height <= 0 {
		return 24 // Default fallback height
	}
	return height
}
