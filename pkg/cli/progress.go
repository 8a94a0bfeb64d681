package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// PhaseProgress draws a progress bar per retention phase. Its Report method
// matches retention.ProgressFunc.
type PhaseProgress struct {
	mu      sync.Mutex
	writer  io.Writer
	phase   string
	started time.Time
}

// NewPhaseProgress creates a progress display that writes to w.
// If w is nil, it defaults to os.Stderr.
func NewPhaseProgress(w io.Writer) *PhaseProgress {
	if w == nil {
		w = os.Stderr
	}
	return &PhaseProgress{
		writer: w,
	}
}

// Report updates the bar of phase. A new phase ends the previous bar.
func (p *PhaseProgress) Report(phase string, done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if phase != p.phase {
		if p.phase != "" {
			fmt.Fprintln(p.writer)
		}
		p.phase = phase
		p.started = time.Now()
	}
	p.render(done, total)
}

// Finish ends the current bar.
func (p *PhaseProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.phase != "" {
		fmt.Fprintln(p.writer)
		p.phase = ""
	}
}

func (p *PhaseProgress) render(done, total int) {
	if total <= 0 {
		return
	}
	if done > total {
		done = total
	}

	percent := float64(done) / float64(total) * 100
	barWidth := 30
	filled := int(float64(barWidth) * percent / 100)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	fmt.Fprintf(p.writer, "\r%-10s [%s] %5.1f%% (%d/%d folders) %s",
		p.phase, bar, percent, done, total, time.Since(p.started).Round(time.Millisecond))
}
