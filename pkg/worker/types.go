package worker

import (
	"context"
	"time"
)

// Task represents a unit of work to be processed by the worker pool
type Task struct {
	// ID identifies the task in errors and logs
	ID int

	// Execute performs the work. It must honour ctx cancellation.
	Execute func(context.Context) (Result, error)
}

// Result represents the output of a processed task
type Result struct {
	// ID matches the task ID that produced this result
	ID int

	// Data holds the task output
	Data interface{}

	// order is the submission sequence number
	order int
}

// Config holds the configuration for the worker pool
type Config struct {
	// Workers is the number of concurrent workers
	Workers int

	// RateLimit is the maximum number of tasks started per second (0 for unlimited)
	RateLimit int

	// FailFast cancels outstanding tasks after the first task error
	FailFast bool
}

// Status represents the current state of the worker pool
type Status string

const (
	// StatusIdle indicates the pool is ready but not processing
	StatusIdle Status = "idle"

	// StatusProcessing indicates the pool is actively processing tasks
	StatusProcessing Status = "processing"

	// StatusFailed indicates a task failed and the pool stopped taking work
	StatusFailed Status = "failed"

	// StatusStopped indicates the pool has been stopped
	StatusStopped Status = "stopped"
)

// Stats provides runtime statistics about the worker pool
type Stats struct {
	ActiveWorkers  int
	QueuedTasks    int
	CompletedTasks int
	FailedTasks    int
	Status         Status
	Uptime         time.Duration
}
