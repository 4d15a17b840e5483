//go:build windows

package daemon

// No-op on Windows.
func setUmaskForDaemon() {}
