package backend

import "os"

// File is the portable backend built on *os.File.
type File struct {
	f *os.File
}

// OpenFile opens path with O_APPEND through the os package.
func OpenFile(path string) (FileBackend, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &File{f: f}, nil
}

func (b *File) Write(p []byte) (int, error) {
	return b.f.Write(p)
}

func (b *File) Sync() error {
	return b.f.Sync()
}

func (b *File) Close() error {
	return b.f.Close()
}
