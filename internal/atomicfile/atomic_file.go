// Package atomicfile reads and writes small files so readers never observe a partial write.
package atomicfile

import (
	"os"
	"path/filepath"
	"runtime"
)

// WriteFile writes data to a temp file beside filename and renames it into place.
func WriteFile(filename string, data []byte, perm os.FileMode) (err error) {
	if err = os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if _, err = f.Write(data); err != nil {
		return err
	}
	if runtime.GOOS != "windows" {
		if err = f.Chmod(perm); err != nil {
			return err
		}
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Rename does not replace an existing target on Windows.
	if runtime.GOOS == "windows" {
		_ = os.Remove(filename)
	}
	return os.Rename(f.Name(), filename)
}

// ReadFile returns the file contents. A missing file is reported as os.ErrNotExist.
func ReadFile(filename string) ([]byte, error) {
	return os.ReadFile(filename)
}
