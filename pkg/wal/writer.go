package wal

import (
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/ssargent/freyjawal/pkg/backend"
	"github.com/ssargent/freyjawal/pkg/frame"
)

// LogWriter stages encoded frames in memory and persists them to an
// append-only file.
//
// A LogWriter does no locking. Callers that share one across goroutines must
// serialize every call.
type LogWriter struct {
	backend backend.FileBackend
	path    string
	logger  *slog.Logger
	metrics *Metrics

	// buf[:len(buf)] holds the staged frames; cap(buf) is the buffer capacity.
	buf []byte
	// written is the prefix of buf the backend has already accepted during a
	// flush that then failed. A retried flush resumes after it.
	written int

	stats  Stats
	closed bool
}

// Open creates or opens the log at path with the default configuration.
func Open(path string) (*LogWriter, error) {
	return New(Config{Path: path})
}

// New opens the log described by config.
func New(config Config) (*LogWriter, error) {
	size := config.BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}
	open := config.Backend
	if open == nil {
		open = backend.OpenPlatform
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	b, err := open(config.Path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "open %s", config.Path), ErrOpenFailure)
	}

	w := &LogWriter{
		backend: b,
		path:    config.Path,
		logger:  logger.With("wal", config.Path),
		metrics: config.Metrics,
		buf:     make([]byte, 0, size),
	}
	w.metrics.addCapacity(size)

	return w, nil
}

// Append encodes f into the staging buffer. If the buffer cannot hold f, the
// staged bytes are flushed first; a frame larger than the whole buffer grows it
// to twice the frame size. With forceSync the buffer is flushed and synced
// before Append returns.
//
// A failed pre-stage flush returns an error matching ErrStageFlushFailure and
// f is not staged. A failed forced sync returns an error matching
// ErrSyncFailure and f stays staged.
func (w *LogWriter) Append(f frame.Frame, forceSync bool) error {
	if w.closed {
		return ErrInvalidHandle
	}
	if err := frame.Validate(f); err != nil {
		return errors.Mark(err, ErrInvalidFrame)
	}

	size := frame.Size(f)
	if len(w.buf)+size > cap(w.buf) {
		if err := w.flush(); err != nil {
			return errors.Mark(err, ErrStageFlushFailure)
		}
		if size > cap(w.buf) {
			w.grow(2 * size)
		}
	}

	w.buf = frame.Append(w.buf, f)
	w.stats.FramesAppended++
	w.metrics.recordAppend()
	w.metrics.addPending(size)

	if forceSync {
		if err := w.flush(); err != nil {
			return errors.Mark(err, ErrSyncFailure)
		}
	}
	return nil
}

// AppendBatch writes p to the file as-is, bypassing the staging buffer. Staged
// frames are flushed first so p never lands ahead of them. The batch is not
// synced; call Flush when it must be durable.
func (w *LogWriter) AppendBatch(p []byte) (int, error) {
	if w.closed {
		return 0, ErrInvalidHandle
	}
	if err := w.flush(); err != nil {
		return 0, errors.Mark(err, ErrStageFlushFailure)
	}
	if len(p) == 0 {
		return 0, nil
	}

	n, err := w.backend.Write(p)
	if n < 0 {
		n = 0
	}
	w.stats.BytesWritten += uint64(n)
	w.metrics.recordBatch(n)

	if err == nil && n < len(p) {
		err = shortWrite(n, len(p))
	}
	if err != nil {
		w.logger.Warn("batch write failed", "bytes", len(p), "written", n, "error", err)
		return n, errors.Mark(errors.Wrapf(err, "write batch of %d bytes", len(p)), ErrWriteFailure)
	}

	w.stats.BatchesWritten++
	return n, nil
}

// Flush writes the staged bytes and syncs the file. It is a no-op when nothing
// is staged. On failure the staged bytes are kept and a later Flush retries
// them without writing any byte twice.
func (w *LogWriter) Flush() error {
	if w.closed {
		return ErrInvalidHandle
	}
	return w.flush()
}

// Sync flushes the staged bytes and syncs the file even when nothing is
// staged, making earlier AppendBatch writes durable.
func (w *LogWriter) Sync() error {
	if w.closed {
		return ErrInvalidHandle
	}
	if len(w.buf) > 0 {
		return w.flush()
	}

	start := time.Now()
	if err := w.backend.Sync(); err != nil {
		return w.flushFailed(start, errors.Wrap(err, "sync"))
	}
	w.stats.Flushes++
	w.metrics.recordFlush(true, time.Since(start))
	return nil
}

func (w *LogWriter) flush() error {
	pending := len(w.buf)
	if pending == 0 {
		return nil
	}

	start := time.Now()
	if w.written < pending {
		want := pending - w.written
		n, err := w.backend.Write(w.buf[w.written:])
		if n > 0 {
			w.written += n
			w.stats.BytesWritten += uint64(n)
			w.metrics.recordWrite(n)
		}
		if err == nil && n < want {
			err = shortWrite(n, want)
		}
		if err != nil {
			return w.flushFailed(start, errors.Wrapf(err, "write %d staged bytes", want))
		}
	}

	if err := w.backend.Sync(); err != nil {
		return w.flushFailed(start, errors.Wrap(err, "sync"))
	}

	w.buf = w.buf[:0]
	w.written = 0
	w.stats.Flushes++
	w.metrics.recordFlush(true, time.Since(start))
	w.metrics.addPending(-pending)
	return nil
}

func (w *LogWriter) flushFailed(start time.Time, err error) error {
	w.stats.FailedFlushes++
	w.metrics.recordFlush(false, time.Since(start))
	w.logger.Warn("flush failed", "pending", len(w.buf), "written", w.written, "error", err)
	return errors.Mark(err, ErrFlushFailure)
}

// grow replaces the empty staging buffer with one of capacity n.
func (w *LogWriter) grow(n int) {
	old := cap(w.buf)
	w.buf = make([]byte, 0, n)
	w.metrics.addCapacity(n - old)
	w.logger.Debug("staging buffer grown", "from", old, "to", n)
}

// Close flushes the staged bytes and releases the file. The file is released
// even when the final flush fails; the error reports what was lost.
func (w *LogWriter) Close() error {
	if w.closed {
		return ErrInvalidHandle
	}
	w.closed = true

	flushErr := w.flush()
	if flushErr != nil {
		w.logger.Error("final flush failed, staged frames dropped", "pending", len(w.buf), "error", flushErr)
	}
	closeErr := w.backend.Close()
	if closeErr != nil {
		closeErr = errors.Wrapf(closeErr, "close %s", w.path)
	}

	w.metrics.addPending(-len(w.buf))
	w.metrics.addCapacity(-cap(w.buf))
	w.buf = nil
	w.written = 0
	w.backend = nil

	return errors.CombineErrors(flushErr, closeErr)
}

// Stats returns the writer's counters.
func (w *LogWriter) Stats() Stats {
	s := w.stats
	s.Pending = len(w.buf)
	s.Capacity = cap(w.buf)
	return s
}

// Path returns the file path
func (w *LogWriter) Path() string {
	return w.path
}
