// Package common holds the small shared plumbing the register's
// background workers use for orderly shutdown.
package common

import "time"

// WaitTimeout blocks until done fires or the timeout lapses, and
// reports true when the timeout went off first, meaning the worker
// never signalled.
func WaitTimeout(done chan struct{}, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return false
	case <-timer.C:
		return true
	}
}
