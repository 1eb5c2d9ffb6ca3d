//go:build windows

package platform

import (
	"golang.org/x/sys/windows"
)

// AcquireSingleInstance takes a machine-wide named mutex. It returns a
// release function and true if no other process holds a mutex of that name.
func AcquireSingleInstance(name string) (release func(), ok bool) {
	mutexName, err := windows.UTF16PtrFromString(`Global\` + name)
	if err != nil {
		return nil, false
	}

	handle, err := windows.CreateMutex(nil, false, mutexName)
	if err == windows.ERROR_ALREADY_EXISTS {
		if handle != 0 {
			windows.CloseHandle(handle)
		}
		return nil, false
	}
	if err != nil {
		// Fail open; the engine still serializes installs itself.
		return func() {}, true
	}
	return func() { windows.CloseHandle(handle) }, true
}

// IsSingleInstanceRunning reports whether a mutex of that name exists,
// without taking it.
func IsSingleInstanceRunning(name string) bool {
	mutexName, err := windows.UTF16PtrFromString(`Global\` + name)
	if err != nil {
		return false
	}
	handle, err := windows.OpenMutex(windows.SYNCHRONIZE, false, mutexName)
	if err != nil {
		return false
	}
	windows.CloseHandle(handle)
	return true
}
