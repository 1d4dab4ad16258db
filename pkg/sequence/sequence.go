// Package sequence assigns log sequence numbers that survive restarts.
//
// A Sequencer keeps one counter per log name in a pebble database. Every Next
// call is persisted with pebble.Sync before the LSN is handed out, so an LSN is
// never reused after a crash.
package sequence

import (
	"encoding/binary"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
)

const keyPrefix = "lsn/"

// Sequencer hands out monotonically increasing LSNs per log.
type Sequencer struct {
	db *pebble.DB
	mu sync.Mutex
}

// Open opens or creates the sequence database in dir.
func Open(dir string) (*Sequencer, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open sequence store %s", dir)
	}
	return &Sequencer{db: db}, nil
}

func key(log string) []byte {
	return []byte(keyPrefix + log)
}

// Current returns the last LSN handed out for log, or 0 if none was.
func (s *Sequencer) Current(log string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current(log)
}

func (s *Sequencer) current(log string) (uint64, error) {
	data, closer, err := s.db.Get(key(log))
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "read lsn for %s", log)
	}
	defer closer.Close()

	if len(data) != 8 {
		return 0, errors.Newf("corrupt lsn for %s: %d bytes", log, len(data))
	}
	return binary.LittleEndian.Uint64(data), nil
}

// Next increments and returns the LSN for log. LSNs start at 1.
func (s *Sequencer) Next(log string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lsn, err := s.current(log)
	if err != nil {
		return 0, err
	}
	lsn++

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], lsn)
	if err := s.db.Set(key(log), buf[:], pebble.Sync); err != nil {
		return 0, errors.Wrapf(err, "persist lsn for %s", log)
	}
	return lsn, nil
}

// Reset forgets the counter of log so numbering restarts at 1.
func (s *Sequencer) Reset(log string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Delete(key(log), pebble.Sync)
}

// Close closes the underlying database.
func (s *Sequencer) Close() error {
	return s.db.Close()
}
