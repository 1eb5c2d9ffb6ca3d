//go:build !windows && !unix

package platform

// AcquireSingleInstance always succeeds on platforms without file locks.
func AcquireSingleInstance(name string) (release func(), ok bool) {
	return func() {}, true
}

// IsSingleInstanceRunning always reports false on platforms without file locks.
func IsSingleInstanceRunning(name string) bool {
	return false
}
