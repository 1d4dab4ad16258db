package wal

import (
	"io"

	"github.com/cockroachdb/errors"
)

var (
	// ErrInvalidHandle is returned by any operation on a closed writer or an
	// unknown registry handle.
	ErrInvalidHandle = errors.New("wal: invalid or closed handle")
	// ErrOpenFailure marks errors from creating or opening the backing file.
	ErrOpenFailure = errors.New("wal: open failed")
	// ErrFlushFailure marks a short write or failed sync of staged bytes.
	// The staged bytes are kept for a retry.
	ErrFlushFailure = errors.New("wal: flush failed")
	// ErrStageFlushFailure marks a flush that failed before anything new was
	// staged or written. The rejected frame or batch must be resubmitted.
	ErrStageFlushFailure = errors.New("wal: flush before staging failed")
	// ErrSyncFailure marks a forced sync that failed after the frame was staged.
	// The frame stays buffered and is lost if the process exits before a
	// successful Flush.
	ErrSyncFailure = errors.New("wal: forced sync failed")
	// ErrWriteFailure marks a failed or short direct batch write.
	ErrWriteFailure = errors.New("wal: batch write failed")
	// ErrInvalidFrame marks a frame whose table name or payload cannot be
	// length-prefixed.
	ErrInvalidFrame = errors.New("wal: invalid frame")
)

func shortWrite(n, want int) error {
	return errors.Wrapf(io.ErrShortWrite, "wrote %d of %d bytes", n, want)
}
