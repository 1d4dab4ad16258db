//go:build windows

package backend

import (
	"io"
	"os"

	"golang.org/x/sys/windows"
)

// NativeHandle is the Windows backend built on CreateFile/WriteFile.
// Other processes may read the file while it is open.
type NativeHandle struct {
	h    windows.Handle
	path string
}

// OpenPlatform opens path as a NativeHandle.
func OpenPlatform(path string) (FileBackend, error) {
	b, err := OpenNativeHandle(path)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// OpenNativeHandle creates or opens path for writing and positions the handle
// at the end of the file.
func OpenNativeHandle(path string) (*NativeHandle, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	name, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}

	h, err := windows.CreateFile(
		name,
		windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ,
		nil,
		windows.OPEN_ALWAYS,
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}

	if _, err := windows.Seek(h, 0, io.SeekEnd); err != nil {
		_ = windows.CloseHandle(h)
		return nil, &os.PathError{Op: "seek", Path: path, Err: err}
	}

	return &NativeHandle{h: h, path: path}, nil
}

func (n *NativeHandle) Write(p []byte) (int, error) {
	var done uint32
	if err := windows.WriteFile(n.h, p, &done, nil); err != nil {
		return int(done), &os.PathError{Op: "write", Path: n.path, Err: err}
	}
	return int(done), nil
}

func (n *NativeHandle) Sync() error {
	if err := windows.FlushFileBuffers(n.h); err != nil {
		return &os.PathError{Op: "flush", Path: n.path, Err: err}
	}
	return nil
}

func (n *NativeHandle) Close() error {
	if err := windows.CloseHandle(n.h); err != nil {
		return &os.PathError{Op: "close", Path: n.path, Err: err}
	}
	n.h = windows.InvalidHandle
	return nil
}
