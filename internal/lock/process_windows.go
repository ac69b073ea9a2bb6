//go:build windows

package lock

import (
	"errors"

	"golang.org/x/sys/windows"
)

// processExists checks if a process with the given PID exists on Windows
func processExists(pid int) bool {
	handle, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		// ERROR_ACCESS_DENIED means the process exists but we lack
		// permission to open it, which still counts as running
		if errors.Is(err, windows.ERROR_ACCESS_DENIED) {
			return true
		}
		// Anything else (e.g. ERROR_INVALID_PARAMETER) means no such process
		return false
	}
	windows.CloseHandle(handle)
	return true
}
