// Package backend provides the file primitives the log writer sits on:
// create-or-open for append, raw write, force-durable sync and close.
//
// Two platform variants exist. On unix systems Descriptor drives a raw file
// descriptor, on Windows NativeHandle drives a native file handle. OpenPlatform
// is whichever one the build selected. File is a portable *os.File variant that
// is always available.
package backend

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileBackend is an append-only file owned by a single writer.
type FileBackend interface {
	// Write hands p to the operating system in a single call and returns how
	// many bytes it accepted.
	Write(p []byte) (int, error)
	// Sync blocks until previously written bytes survive a crash.
	Sync() error
	// Close releases the file. The backend is unusable afterwards.
	Close() error
}

// Opener creates or opens the file at path for appending.
type Opener func(path string) (FileBackend, error)

// Kinds accepted by Lookup.
const (
	KindAuto     = "auto"
	KindPlatform = "platform"
	KindOS       = "os"
)

// Lookup maps a configured backend name to its opener. An empty name means auto.
func Lookup(kind string) (Opener, error) {
	switch kind {
	case "", KindAuto, KindPlatform:
		return OpenPlatform, nil
	case KindOS:
		return OpenFile, nil
	default:
		return nil, fmt.Errorf("unknown file backend %q", kind)
	}
}

// ensureDir creates the parent directory of path if it does not exist yet.
func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0750)
}
