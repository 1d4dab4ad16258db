package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// OpType tags the mutation a frame records. The values below are the ones the
// storage engine emits; any other byte is passed through untouched.
type OpType uint8

const (
	OpInsert     OpType = 1
	OpUpdate     OpType = 2
	OpDelete     OpType = 3
	OpCheckpoint OpType = 99
)

func (o OpType) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	case OpCheckpoint:
		return "checkpoint"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

const (
	// HeaderSize covers LSN(4) + TxnID(4) + Op(1).
	HeaderSize = 9
	// Overhead is the encoded size of a frame with an empty table name and payload.
	Overhead = HeaderSize + 2 + 4 + 4

	MaxTableLen = 1<<16 - 1
	MaxDataLen  = 1<<32 - 1
)

var (
	ErrTableTooLong = errors.New("frame: table name longer than 65535 bytes")
	ErrDataTooLong  = errors.New("frame: payload longer than 4294967295 bytes")
	ErrTruncated    = errors.New("frame: truncated frame")
)

// Frame is one logical log record.
type Frame struct {
	// LSN is only stored in its low 32 bits. Values above math.MaxUint32 wrap
	// on disk; widening the field needs a new format revision.
	LSN   uint64
	TxnID int32
	Op    OpType
	Table string
	Data  []byte
	// Checksum is reserved. Writers always store 0.
	Checksum uint32
}

// Size returns the number of bytes f occupies once encoded.
func Size(f Frame) int {
	return Overhead + len(f.Table) + len(f.Data)
}

// Validate reports whether f's variable-length fields fit their length prefixes.
func Validate(f Frame) error {
	if len(f.Table) > MaxTableLen {
		return ErrTableTooLong
	}
	if uint64(len(f.Data)) > MaxDataLen {
		return ErrDataTooLong
	}
	return nil
}

// Append encodes f onto the end of dst and returns the extended slice.
// Callers that size dst with Size beforehand get no reallocation.
// The checksum field is always written as zero.
func Append(dst []byte, f Frame) []byte {
	var hdr [HeaderSize + 2]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(f.LSN))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(f.TxnID))
	hdr[8] = byte(f.Op)
	binary.LittleEndian.PutUint16(hdr[9:], uint16(len(f.Table)))
	dst = append(dst, hdr[:]...)
	dst = append(dst, f.Table...)

	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(f.Data)))
	dst = append(dst, n[:]...)
	dst = append(dst, f.Data...)

	return append(dst, 0, 0, 0, 0)
}

// Encode returns the encoded form of f in a freshly allocated slice.
// It is meant for building pre-encoded batches.
func Encode(f Frame) ([]byte, error) {
	if err := Validate(f); err != nil {
		return nil, err
	}
	return Append(make([]byte, 0, Size(f)), f), nil
}

// Decode parses the frame at the start of b and returns it along with the
// number of bytes consumed. Table and Data alias b.
func Decode(b []byte) (Frame, int, error) {
	if len(b) < HeaderSize+2 {
		return Frame{}, 0, ErrTruncated
	}

	var f Frame
	f.LSN = uint64(binary.LittleEndian.Uint32(b[0:4]))
	f.TxnID = int32(binary.LittleEndian.Uint32(b[4:8]))
	f.Op = OpType(b[8])
	tableLen := int(binary.LittleEndian.Uint16(b[9:11]))

	off := HeaderSize + 2
	if len(b) < off+tableLen+4 {
		return Frame{}, 0, ErrTruncated
	}
	f.Table = string(b[off : off+tableLen])
	off += tableLen

	dataLen := uint64(binary.LittleEndian.Uint32(b[off : off+4]))
	off += 4
	if uint64(len(b)-off) < dataLen+4 {
		return Frame{}, 0, ErrTruncated
	}
	f.Data = b[off : off+int(dataLen)]
	off += int(dataLen)

	f.Checksum = binary.LittleEndian.Uint32(b[off : off+4])
	off += 4

	return f, off, nil
}
