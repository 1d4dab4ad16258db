package wal

import (
	"log/slog"

	"github.com/ssargent/freyjawal/pkg/backend"
)

// DefaultBufferSize is the initial capacity of the staging buffer (64KB).
const DefaultBufferSize = 64 * 1024

// Config holds configuration for a log writer
type Config struct {
	Path       string         // Path to the log file
	BufferSize int            // Initial staging buffer capacity (0 = DefaultBufferSize)
	Backend    backend.Opener // File backend opener (nil = backend.OpenPlatform)
	Logger     *slog.Logger   // nil = slog.Default()
	Metrics    *Metrics       // Optional Prometheus metrics
}

// Stats is a point-in-time view of a writer's counters.
type Stats struct {
	Pending        int    `json:"pending"`
	Capacity       int    `json:"capacity"`
	FramesAppended uint64 `json:"frames_appended"`
	BatchesWritten uint64 `json:"batches_written"`
	BytesWritten   uint64 `json:"bytes_written"`
	Flushes        uint64 `json:"flushes"`
	FailedFlushes  uint64 `json:"failed_flushes"`
}
