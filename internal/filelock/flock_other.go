//go:build !unix

package filelock

import (
	"errors"
	"io/fs"
	"os"
)

// Without flock the lock is a marker file created exclusively next to the
// lock file. A holder that crashes leaves the marker behind.

func marker(f *os.File) string {
	return f.Name() + ".held"
}

func tryLock(f *os.File) error {
	m, err := os.OpenFile(marker(f), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return ErrLocked
	}
	if err != nil {
		return err
	}
	return m.Close()
}

func unlock(f *os.File) error {
	return os.Remove(marker(f))
}
