//go:build unix

package backend

import (
	"os"

	"golang.org/x/sys/unix"
)

// Descriptor is the POSIX backend. It writes through a raw descriptor opened
// with O_APPEND, so the kernel keeps every write at the end of the file.
type Descriptor struct {
	fd   int
	path string
}

// OpenPlatform opens path as a Descriptor.
func OpenPlatform(path string) (FileBackend, error) {
	b, err := OpenDescriptor(path)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// OpenDescriptor creates or opens path write-only in append mode, mode 0644.
func OpenDescriptor(path string) (*Descriptor, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_CREAT|unix.O_APPEND|unix.O_CLOEXEC, 0644)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return &Descriptor{fd: fd, path: path}, nil
}

func (d *Descriptor) Write(p []byte) (int, error) {
	for {
		n, err := unix.Write(d.fd, p)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return max(n, 0), &os.PathError{Op: "write", Path: d.path, Err: err}
		}
		return n, nil
	}
}

func (d *Descriptor) Sync() error {
	for {
		err := unix.Fsync(d.fd)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return &os.PathError{Op: "fsync", Path: d.path, Err: err}
		}
		return nil
	}
}

func (d *Descriptor) Close() error {
	if err := unix.Close(d.fd); err != nil {
		return &os.PathError{Op: "close", Path: d.path, Err: err}
	}
	d.fd = -1
	return nil
}
