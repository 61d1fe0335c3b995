package testkit

import (
	"sync"
	"testing"
)

var seamLock sync.Mutex

// Swap replaces a package-level seam for one test and restores the
// previous value on cleanup
func Swap[T any](t *testing.T, seam *T, fake T) {
	t.Helper()
	prev := *seam
	*seam = fake
	t.Cleanup(func() { *seam = prev })
}

// Serial holds a process-wide lock for the duration of the test so
// seam-swapping tests cannot race each other
func Serial(t *testing.T) {
	t.Helper()
	seamLock.Lock()
	t.Cleanup(seamLock.Unlock)
}
