//go:build !windows

package daemon

import "golang.org/x/sys/unix"

// Make sure that files created by the daemon are only accessible to the
// current user.
func setUmaskForDaemon() { unix.Umask(0077) }
