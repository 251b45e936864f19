package scanner

import (
	"sync/atomic"
	"time"
)

// Config contains scanner configuration options
type Config struct {
	// Workers is the number of files read and matched concurrently
	Workers int

	// RateLimit caps file reads per second (0 for unlimited)
	RateLimit int

	// BufferSize is the read chunk size in bytes
	BufferSize int

	// StrictEncoding fails the scan on files that are not valid UTF-8
	StrictEncoding bool
}

// Progress is a snapshot of a running scan
type Progress struct {
	TotalFiles   int64
	ScannedFiles int64
	BytesRead    int64
	Matches      int64
	StartTime    time.Time
}

// fileResult is what a single file task hands back to the merge step
type fileResult struct {
	path  string
	codes []string
}

// counters holds the atomic counters behind Progress
type counters struct {
	totalFiles   atomic.Int64
	scannedFiles atomic.Int64
	bytesRead    atomic.Int64
	matches      atomic.Int64
}
