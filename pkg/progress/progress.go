/*
Package progress draws a single self-refreshing status line on the terminal
while source files are scanned.

	p := progress.New(progress.Config{Style: progress.StyleBar}, log)
	p.Start("Scanning files", func() progress.Status { ... })
	defer p.Stop()
	...
	p.Complete("Scan complete")
*/
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ajdepersio/ConfigUsageReport/pkg/logger"
	"golang.org/x/term"
)

const defaultWidth = 80

type progress struct {
	config Config
	log    logger.Logger
	writer io.Writer

	// State
	status    Status
	source    Source
	message   string
	state     state
	startTime time.Time
	isActive  bool

	// Rendering
	renderer renderer
	width    int

	mu       sync.Mutex
	stopChan chan struct{}
	doneChan chan struct{}
}

// New creates a new progress visualization instance
func New(config Config, log logger.Logger) Progress {
	if config.RefreshRate == 0 {
		config.RefreshRate = 100 * time.Millisecond
	}
	if config.Writer == nil {
		config.Writer = os.Stderr
	}

	p := &progress{
		config: config,
		log:    log.Named("progress"),
		writer: config.Writer,
	}

	if p.config.Width == 0 {
		p.width = p.getTerminalWidth()
	} else {
		p.width = p.config.Width
	}
	p.renderer = p.createRenderer()

	p.log.WithFields(logger.Fields{
		"style":     p.config.Style,
		"width":     p.width,
		"showStats": p.config.ShowStats,
		"noColor":   p.config.NoColor,
		"refresh":   p.config.RefreshRate,
	}).Debug("Created new progress instance")

	return p
}

func (p *progress) Start(message string, source Source) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isActive {
		return
	}

	p.log.WithFields(logger.Fields{
		"message": message,
	}).Debug("Starting progress")

	p.message = message
	p.source = source
	p.state = stateRunning
	p.startTime = time.Now()
	p.isActive = true
	p.stopChan = make(chan struct{})
	p.doneChan = make(chan struct{})

	go p.renderLoop(p.stopChan, p.doneChan)
}

func (p *progress) Complete(message string) {
	p.finish(message, stateDone)
}

func (p *progress) Error(message string) {
	p.finish(message, stateFailed)
}

func (p *progress) Stop() {
	p.halt()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.Debug("Stopping progress")
	p.clearLine()
}

func (p *progress) IsSupportedTerminal() bool {
	if f, ok := p.writer.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

func (p *progress) finish(message string, st state) {
	p.halt()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.WithFields(logger.Fields{
		"message": message,
		"failed":  st == stateFailed,
	}).Debug("Finishing progress")

	p.message = message
	p.state = st
	p.poll()

	if st == stateDone && p.config.HideAfterComplete {
		p.clearLine()
		return
	}
	p.render()
	fmt.Fprintln(p.writer)
}

// halt stops the render loop without holding the lock while it drains
func (p *progress) halt() {
	p.mu.Lock()
	if !p.isActive {
		p.mu.Unlock()
		return
	}
	p.isActive = false
	stop, done := p.stopChan, p.doneChan
	p.mu.Unlock()

	close(stop)
	<-done
}

func (p *progress) renderLoop(stop <-chan struct{}, done chan<- struct{}) {
	ticker := time.NewTicker(p.config.RefreshRate)
	defer ticker.Stop()
	defer close(done)

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.mu.Lock()
			p.poll()
			p.render()
			p.mu.Unlock()
		}
	}
}

func (p *progress) poll() {
	if p.source != nil {
		p.status = p.source()
	}
}

func (p *progress) render() {
	output := p.renderer.render(p.status, p.message, p.state, p.calculateStats())
	p.clearLine()
	fmt.Fprint(p.writer, output)
}

func (p *progress) clearLine() {
	if p.IsSupportedTerminal() {
		fmt.Fprint(p.writer, "\r\033[K")
	} else {
		fmt.Fprint(p.writer, "\r")
	}
}

func (p *progress) getTerminalWidth() int {
	if f, ok := p.writer.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return defaultWidth
}

func (p *progress) calculateStats() Statistics {
	elapsed := time.Since(p.startTime)
	if p.startTime.IsZero() {
		elapsed = 0
	}

	stats := Statistics{
		ElapsedTime:    elapsed,
		BytesProcessed: p.status.BytesRead,
		Matches:        p.status.Matches,
	}

	if p.status.Total > 0 {
		stats.ProgressPercentage = float64(p.status.Scanned) / float64(p.status.Total) * 100
	}

	if elapsed > 0 && p.status.Scanned > 0 {
		stats.ProcessingSpeed = float64(p.status.Scanned) / elapsed.Seconds()
		if remaining := p.status.Total - p.status.Scanned; remaining > 0 {
			stats.RemainingTime = time.Duration(float64(remaining) / stats.ProcessingSpeed * float64(time.Second))
		}
	}

	return stats
}

func (p *progress) createRenderer() renderer {
	switch p.config.Style {
	case StyleBar:
		return &barRenderer{
			width:     p.width,
			noColor:   p.config.NoColor,
			showStats: p.config.ShowStats,
		}
	default:
		return &simpleRenderer{
			noColor:   p.config.NoColor,
			showStats: p.config.ShowStats,
		}
	}
}

type nop struct{}

// NewNop returns a Progress that renders nothing
func NewNop() Progress { return nop{} }

func (nop) Start(string, Source)      {}
func (nop) Complete(string)           {}
func (nop) Error(string)              {}
func (nop) Stop()                     {}
func (nop) IsSupportedTerminal() bool { return false }
