//go:build unix

package store

import (
	"os"
	"syscall"
)

// tryLock makes one non-blocking attempt at the advisory lock via flock,
// returning an error immediately if another process already holds it.
func (l *fileLock) tryLock() error {
	return syscall.Flock(int(l.handle.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
}

// releaseOS drops the flock held on the underlying file descriptor.
func (l *fileLock) releaseOS() {
	if l.handle != nil {
		syscall.Flock(int(l.handle.Fd()), syscall.LOCK_UN)
	}
}

// isProcessAlive reports whether pid still names a running process, probed
// by sending the null signal — delivery fails once the process is gone.
func isProcessAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
