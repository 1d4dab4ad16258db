package wal

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/freyjawal/pkg/frame"
)

// Status codes returned across the registry boundary.
const (
	StatusOK int32 = 1
	// StatusFlushFailed is Flush's failure code.
	StatusFlushFailed int32 = 0

	StatusInvalidHandle int32 = -1
	// StatusStageFlushFailed: the flush ahead of an append or batch failed and
	// nothing new was staged or written.
	StatusStageFlushFailed int32 = -2
	// StatusSyncFailed: Append's forced sync failed; the frame stays staged.
	StatusSyncFailed int32 = -3
	// StatusWriteFailed: AppendBatch's direct write failed or was short.
	StatusWriteFailed int32 = -3
	// StatusInvalidFrame: the table name or payload was too long to encode.
	StatusInvalidFrame int32 = -4
)

// Handle is an opaque reference to a writer held by a Registry.
type Handle ksuid.KSUID

// NilHandle is returned when Open fails.
var NilHandle = Handle(ksuid.Nil)

// ParseHandle parses the string form of a Handle.
func ParseHandle(s string) (Handle, error) {
	id, err := ksuid.Parse(s)
	if err != nil {
		return NilHandle, errors.Wrap(err, "parse handle")
	}
	return Handle(id), nil
}

func (h Handle) String() string {
	return ksuid.KSUID(h).String()
}

// IsNil reports whether h is NilHandle.
func (h Handle) IsNil() bool {
	return ksuid.KSUID(h).IsNil()
}

// lane serializes calls on one writer.
type lane struct {
	mu     sync.Mutex
	key    string
	writer *LogWriter
}

// Registry owns a set of open writers and exposes them through opaque handles
// and integer status codes. Calls on different handles run concurrently; calls
// on the same handle are serialized. A file has at most one writer: opening a
// path that is already open returns its existing handle.
type Registry struct {
	config Config
	mu     sync.RWMutex
	lanes  map[Handle]*lane
	paths  map[string]Handle
}

// NewRegistry returns a registry whose writers are built from config. The
// Path field of config is ignored.
func NewRegistry(config Config) *Registry {
	return &Registry{
		config: config,
		lanes:  make(map[Handle]*lane),
		paths:  make(map[string]Handle),
	}
}

// Open opens the log at path and returns its handle, or NilHandle on failure.
// Paths are compared after cleaning and making them absolute.
func (r *Registry) Open(path string) Handle {
	config := r.config
	config.Path = path
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	key, err := filepath.Abs(path)
	if err != nil {
		logger.Warn("open failed", "path", path, "error", err)
		return NilHandle
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.paths[key]; ok {
		return h
	}

	w, err := New(config)
	if err != nil {
		logger.Warn("open failed", "path", path, "error", err)
		return NilHandle
	}

	h := Handle(ksuid.New())
	r.lanes[h] = &lane{key: key, writer: w}
	r.paths[key] = h
	return h
}

func (r *Registry) lane(h Handle) *lane {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lanes[h]
}

// Append stages one frame. See LogWriter.Append.
func (r *Registry) Append(h Handle, lsn uint64, txnID int32, opType int32, table string, data []byte, forceSync bool) int32 {
	l := r.lane(h)
	if l == nil {
		return StatusInvalidHandle
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.writer.Append(frame.Frame{
		LSN:   lsn,
		TxnID: txnID,
		Op:    frame.OpType(opType),
		Table: table,
		Data:  data,
	}, forceSync)
	return AppendStatus(err)
}

// AppendBatch writes the first length bytes of data directly to the log and
// returns the number of bytes written or a negative status code.
func (r *Registry) AppendBatch(h Handle, data []byte, length int32) int32 {
	l := r.lane(h)
	if l == nil {
		return StatusInvalidHandle
	}
	if length < 0 || int(length) > len(data) {
		return StatusWriteFailed
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	n, err := l.writer.AppendBatch(data[:length])
	return BatchStatus(n, err)
}

// Flush flushes the staged bytes of h.
func (r *Registry) Flush(h Handle) int32 {
	l := r.lane(h)
	if l == nil {
		return StatusInvalidHandle
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	return FlushStatus(l.writer.Flush())
}

// Close flushes and releases h. Unknown handles are ignored. The path stays
// reserved until the file is closed.
func (r *Registry) Close(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := r.lanes[h]
	if l == nil {
		return
	}
	delete(r.lanes, h)

	l.mu.Lock()
	_ = l.writer.Close()
	l.mu.Unlock()
	delete(r.paths, l.key)
}

// CloseAll closes every open handle.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	handles := make([]Handle, 0, len(r.lanes))
	for h := range r.lanes {
		handles = append(handles, h)
	}
	r.mu.Unlock()

	for _, h := range handles {
		r.Close(h)
	}
}

// Len returns the number of open handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.lanes)
}

// AppendStatus maps an Append error to its status code.
func AppendStatus(err error) int32 {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrInvalidHandle):
		return StatusInvalidHandle
	case errors.Is(err, ErrInvalidFrame):
		return StatusInvalidFrame
	case errors.Is(err, ErrStageFlushFailure):
		return StatusStageFlushFailed
	default:
		return StatusSyncFailed
	}
}

// BatchStatus maps an AppendBatch result to bytes written or a status code.
func BatchStatus(n int, err error) int32 {
	switch {
	case err == nil:
		return int32(n)
	case errors.Is(err, ErrInvalidHandle):
		return StatusInvalidHandle
	case errors.Is(err, ErrStageFlushFailure):
		return StatusStageFlushFailed
	default:
		return StatusWriteFailed
	}
}

// FlushStatus maps a Flush error to its status code.
func FlushStatus(err error) int32 {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrInvalidHandle):
		return StatusInvalidHandle
	default:
		return StatusFlushFailed
	}
}
