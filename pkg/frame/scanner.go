package frame

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
)

// Scanner reads consecutive frames from a log stream. It is an inspection
// tool: it stops at the first torn or short frame and never rewrites the log.
type Scanner struct {
	r      *bufio.Reader
	frame  Frame
	offset int64
	err    error
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReader(r)}
}

// Next advances to the next frame. It returns false at end of stream or on error.
func (s *Scanner) Next() bool {
	if s.err != nil {
		return false
	}

	var hdr [HeaderSize + 2]byte
	if _, err := io.ReadFull(s.r, hdr[:]); err != nil {
		if err != io.EOF {
			s.fail(err)
		}
		return false
	}

	tableLen := int(binary.LittleEndian.Uint16(hdr[9:11]))
	table := make([]byte, tableLen+4)
	if _, err := io.ReadFull(s.r, table); err != nil {
		s.fail(err)
		return false
	}
	dataLen := int64(binary.LittleEndian.Uint32(table[tableLen:]))

	// Payload plus trailing checksum. The length comes off disk, so the
	// buffer only grows with bytes actually read.
	var body bytes.Buffer
	if _, err := io.CopyN(&body, s.r, dataLen+4); err != nil {
		s.fail(err)
		return false
	}
	b := body.Bytes()

	s.frame = Frame{
		LSN:      uint64(binary.LittleEndian.Uint32(hdr[0:4])),
		TxnID:    int32(binary.LittleEndian.Uint32(hdr[4:8])),
		Op:       OpType(hdr[8]),
		Table:    string(table[:tableLen]),
		Data:     b[:dataLen:dataLen],
		Checksum: binary.LittleEndian.Uint32(b[dataLen:]),
	}
	s.offset += Overhead + int64(tableLen) + dataLen
	return true
}

func (s *Scanner) fail(err error) {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		s.err = ErrTruncated
		return
	}
	s.err = err
}

// Frame returns the frame read by the last successful call to Next.
func (s *Scanner) Frame() Frame {
	return s.frame
}

// Offset returns the byte offset just past the last frame read.
func (s *Scanner) Offset() int64 {
	return s.offset
}

// Err returns the first error encountered, or nil at a clean end of stream.
func (s *Scanner) Err() error {
	return s.err
}
