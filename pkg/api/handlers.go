package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/ssargent/freyjawal/pkg/frame"
	"github.com/ssargent/freyjawal/pkg/wal"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stats := s.writer.Stats()
	s.mu.Unlock()

	sendSuccess(w, stats)
}

// handleAppend stages one frame, assigning an LSN when the request has none.
func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	var req AppendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	data, err := payload(req.Data)
	if err != nil {
		sendError(w, "Invalid data: "+err.Error(), http.StatusBadRequest)
		return
	}

	f := frame.Frame{
		LSN:   req.LSN,
		TxnID: req.TxnID,
		Op:    frame.OpType(req.OpType),
		Table: req.Table,
		Data:  data,
	}
	if err := frame.Validate(f); err != nil {
		s.metrics.RecordLogOperation("append", false)
		sendStatusError(w, err.Error(), http.StatusBadRequest, wal.StatusInvalidFrame)
		return
	}
	if f.LSN == 0 && s.lsn == nil {
		sendError(w, "lsn is required", http.StatusBadRequest)
		return
	}

	// LSNs are drawn under the writer lock so they reach the log in order.
	s.mu.Lock()
	if f.LSN == 0 {
		if f.LSN, err = s.lsn.Next(s.config.LogName); err != nil {
			s.mu.Unlock()
			s.logger.Error("assign lsn", "error", err)
			sendError(w, "Failed to assign LSN", http.StatusInternalServerError)
			return
		}
	}
	err = s.writer.Append(f, req.Sync)
	s.mu.Unlock()

	s.metrics.RecordLogOperation("append", err == nil)
	if err != nil {
		code := http.StatusServiceUnavailable
		if errors.Is(err, wal.ErrInvalidFrame) {
			code = http.StatusBadRequest
		}
		sendStatusError(w, err.Error(), code, wal.AppendStatus(err))
		return
	}

	sendSuccess(w, AppendResponse{LSN: f.LSN, Size: frame.Size(f)})
}

// handleBatch writes the request body verbatim. With ?sync=true the log is
// synced afterwards.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	sync := false
	if v := r.URL.Query().Get("sync"); v != "" {
		var err error
		if sync, err = strconv.ParseBool(v); err != nil {
			sendError(w, "Invalid sync parameter", http.StatusBadRequest)
			return
		}
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBatchBytes))
	if err != nil {
		code := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			code = http.StatusRequestEntityTooLarge
		}
		sendError(w, "Failed to read batch: "+err.Error(), code)
		return
	}

	s.mu.Lock()
	n, err := s.writer.AppendBatch(body)
	if err == nil && sync {
		if err = s.writer.Sync(); err != nil {
			s.mu.Unlock()
			s.metrics.RecordLogOperation("batch", false)
			sendStatusError(w, err.Error(), http.StatusServiceUnavailable, wal.FlushStatus(err))
			return
		}
	}
	s.mu.Unlock()

	s.metrics.RecordLogOperation("batch", err == nil)
	if err != nil {
		sendStatusError(w, err.Error(), http.StatusServiceUnavailable, wal.BatchStatus(n, err))
		return
	}

	sendSuccess(w, BatchResponse{BytesWritten: n, Synced: sync})
}

func (s *Server) handleFlush(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.writer.Flush()
	s.mu.Unlock()

	s.metrics.RecordLogOperation("flush", err == nil)
	if err != nil {
		sendStatusError(w, err.Error(), http.StatusServiceUnavailable, wal.FlushStatus(err))
		return
	}
	sendSuccess(w, map[string]string{"status": "flushed"})
}

// payload turns the request data into frame bytes: JSON strings are stored
// unquoted, other values as compact JSON.
func payload(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return []byte(s), nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
