//go:build unix

package platform

import (
	"os"
	"path/filepath"
	"strconv"
	"syscall"
)

// lockPath returns the lock file for name in the user cache directory,
// falling back to the temp directory.
func lockPath(name string) string {
	dir, err := os.UserCacheDir()
	if err != nil || os.MkdirAll(dir, 0o755) != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, name+".lock")
}

// AcquireSingleInstance takes an exclusive flock on a per-user lock file. It
// returns a release function and true if no other holder exists.
func AcquireSingleInstance(name string) (release func(), ok bool) {
	path := lockPath(name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, false
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		file.Close()
		return nil, false
	}

	file.Truncate(0)
	file.WriteString(strconv.Itoa(os.Getpid()))

	return func() {
		os.Remove(path)
		syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		file.Close()
	}, true
}

// IsSingleInstanceRunning reports whether the lock file for name is held,
// without taking it.
func IsSingleInstanceRunning(name string) bool {
	file, err := os.Open(lockPath(name))
	if err != nil {
		return false
	}
	defer file.Close()

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_SH|syscall.LOCK_NB); err != nil {
		return true
	}
	syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
	return false
}
