// Package wal implements the write path of the freyjawal write-ahead log.
//
// A LogWriter accepts frames, encodes them into an in-memory staging buffer
// and persists them to a single append-only file through a backend.FileBackend.
//
// # Buffering
//
// Frames accumulate in a staging buffer of DefaultBufferSize bytes. When a
// frame does not fit in the space left, the buffer is flushed (one write, then
// one sync) before the frame is staged. A frame larger than the buffer grows
// it to twice the frame size; the buffer never shrinks. Frames are never split
// across flushes.
//
// # Durability
//
// Append with forceSync, Flush and Close make staged bytes durable. AppendBatch
// writes caller-encoded bytes straight to the file after flushing whatever is
// staged, so batches never overtake earlier frames, but it does not sync. Sync
// makes a batch durable.
//
// A failed flush keeps the staged bytes. Bytes the backend already accepted are
// not written again on retry, so a retried Flush neither loses nor duplicates
// data. A failed forced sync leaves the frame staged but not durable: it is
// lost if the process exits before a Flush succeeds.
//
// # Errors
//
// Errors carry the OS cause and match one of ErrInvalidHandle, ErrOpenFailure,
// ErrFlushFailure (refined by ErrStageFlushFailure or ErrSyncFailure),
// ErrWriteFailure or ErrInvalidFrame under errors.Is. Nothing is retried
// internally.
//
// # Handles
//
// Registry hands out opaque Handles and reports results as the integer status
// codes used at process boundaries (1 success, 0 flush failed, -1 invalid
// handle, -2 pre-stage flush failed, -3 forced sync or batch write failed,
// -4 invalid frame).
//
// # Thread Safety
//
// LogWriter is not safe for concurrent use. Registry serializes calls per
// handle.
package wal
