package progress

import (
	"io"
	"time"
)

// Style represents the type of progress visualization
type Style string

const (
	// StyleBar shows a progress bar with percentage
	StyleBar Style = "bar"

	// StyleSimple shows a plain counter line
	StyleSimple Style = "simple"
)

// Config holds the configuration for progress visualization
type Config struct {
	// Style defines how progress should be displayed
	Style Style

	// Width is the line width available to the bar (0 = auto-detect)
	Width int

	// ShowStats appends bytes, matches, speed and ETA to the line
	ShowStats bool

	// NoColor disables colored output
	NoColor bool

	// RefreshRate defines how often the display polls its Source
	RefreshRate time.Duration

	// HideAfterComplete clears the line instead of leaving the final state
	HideAfterComplete bool

	// Writer receives the rendered line. Defaults to os.Stderr
	Writer io.Writer
}

// Status is a snapshot of scan progress
type Status struct {
	Total     int64
	Scanned   int64
	BytesRead int64
	Matches   int64
}

// Source returns the latest status. It is polled on every refresh.
type Source func() Status

// Statistics are derived from a Status and the elapsed time
type Statistics struct {
	ElapsedTime        time.Duration
	RemainingTime      time.Duration
	ProcessingSpeed    float64 // files per second
	ProgressPercentage float64
	BytesProcessed     int64
	Matches            int64
}

// Progress defines the interface for progress visualization
type Progress interface {
	// Start begins rendering. source may be nil when updates are pushed
	Start(message string, source Source)


	// Complete stops rendering and leaves a success line
	Complete(message string)

	// Error stops rendering and leaves a failure line
	Error(message string)

	// Stop stops rendering and clears the line
	Stop()

	// IsSupportedTerminal reports whether the writer is a terminal
	IsSupportedTerminal() bool
}

type state int

const (
	stateRunning state = iota
	stateDone
	stateFailed
)
