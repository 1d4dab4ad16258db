// Package api exposes a log writer over HTTP.
package api

import (
	"github.com/ssargent/freyjawal/pkg/frame"
	"github.com/ssargent/freyjawal/pkg/wal"
)

// LogWriter is the writer the server drives. *wal.LogWriter implements it.
type LogWriter interface {
	Append(f frame.Frame, forceSync bool) error
	AppendBatch(p []byte) (int, error)
	Flush() error
	Sync() error
	Stats() wal.Stats
}

// LSNSource assigns LSNs to frames submitted without one.
// *sequence.Sequencer implements it.
type LSNSource interface {
	Next(log string) (uint64, error)
}
