package api

import "encoding/json"

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	// Status is the writer status code of a failed log operation.
	Status *int32 `json:"status,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port    int
	Bind    string
	APIKey  string
	LogName string // Sequencer key used when the server assigns LSNs
	// MaxBatchBytes caps the body of a batch request (0 = DefaultMaxBatchBytes)
	MaxBatchBytes int64
}

// DefaultMaxBatchBytes is the default cap on batch request bodies.
const DefaultMaxBatchBytes = 64 << 20

// AppendRequest is the body of POST /frames.
//
// Data may be any JSON value. A JSON string is stored as its raw text, any
// other value is stored as compact JSON.
type AppendRequest struct {
	LSN    uint64          `json:"lsn,omitempty"`
	TxnID  int32           `json:"txn_id"`
	OpType uint8           `json:"op_type"`
	Table  string          `json:"table"`
	Data   json.RawMessage `json:"data,omitempty"`
	Sync   bool            `json:"sync"`
}

// AppendResponse reports where a frame went
type AppendResponse struct {
	LSN  uint64 `json:"lsn"`
	Size int    `json:"size"`
}

// BatchResponse reports a direct batch write
type BatchResponse struct {
	BytesWritten int  `json:"bytes_written"`
	Synced       bool `json:"synced"`
}
