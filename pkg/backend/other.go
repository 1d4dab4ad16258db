//go:build !unix && !windows

package backend

// OpenPlatform falls back to the portable File backend.
func OpenPlatform(path string) (FileBackend, error) {
	return OpenFile(path)
}
