// Package frame implements the binary record layout of the freyjawal log.
//
// # Frame Format
//
// A log file is a raw concatenation of frames. There is no file header, magic
// number or version marker. Every multi-byte integer is little-endian:
//
//	[LSN(4)][TxnID(4)][Op(1)][TableLen(2)][Table][DataLen(4)][Data][Checksum(4)]
//
// Fields:
//   - LSN: log sequence number, truncated to its low 32 bits
//   - TxnID: signed 32-bit transaction identifier
//   - Op: operation tag (insert, update, delete, checkpoint or caller-defined)
//   - TableLen/Table: table name bytes, at most 65535
//   - DataLen/Data: opaque payload, at most 2^32-1 bytes
//   - Checksum: reserved, always zero
//
// The encoded size of a frame is 19 + len(Table) + len(Data) bytes.
//
// # Checksum
//
// No checksum algorithm is defined for the format yet. The field is written as
// zero and readers must not interpret it.
//
// # Usage
//
//	buf := frame.Append(nil, frame.Frame{LSN: 1, TxnID: 7, Op: frame.OpUpdate, Table: "t", Data: []byte("x")})
//
//	f, n, err := frame.Decode(buf)
//	if err != nil {
//	    return err
//	}
//
// Scanner walks a whole log for inspection. It reports a torn tail as
// ErrTruncated and leaves the file alone.
package frame
