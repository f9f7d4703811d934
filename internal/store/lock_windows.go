//go:build windows

package store

import (
	"golang.org/x/sys/windows"
)

// tryLock makes one non-blocking attempt at the advisory lock via
// LockFileEx on a single byte at offset 0, the range every contender
// locks.
func (l *fileLock) tryLock() error {
	ol := new(windows.Overlapped)
	return windows.LockFileEx(
		windows.Handle(l.handle.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0,
		1,
		0,
		ol,
	)
}

// releaseOS drops the LockFileEx lock held on the underlying handle.
func (l *fileLock) releaseOS() {
	if l.handle != nil {
		ol := new(windows.Overlapped)
		windows.UnlockFileEx(
			windows.Handle(l.handle.Fd()),
			0,
			1,
			0,
			ol,
		)
	}
}

// isProcessAlive reports whether pid still names a running process by
// querying its exit code; a process still running reports the sentinel
// exit code Windows reserves for "hasn't exited yet".
func isProcessAlive(pid int) bool {
	const stillActive = 259

	handle, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer windows.CloseHandle(handle)

	var exitCode uint32
	if err := windows.GetExitCodeProcess(handle, &exitCode); err != nil {
		return false
	}
	return exitCode == stillActive
}
