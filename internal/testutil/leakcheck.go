// Package testutil provides shared test helpers for goroutine-leak
// detection across packages that own background goroutines: the dispatch
// bridge's engine goroutine, the engine core's tick loop, and anything
// built on top of them.
package testutil

import (
	"testing"

	"go.uber.org/goleak"
)

// VerifyNoLeaks should be deferred (or registered with t.Cleanup) in
// tests that spawn goroutines. It verifies that no goroutines were
// leaked during the test run.
func VerifyNoLeaks(t *testing.T, opts ...goleak.Option) {
	t.Helper()
	goleak.VerifyNone(t, opts...)
}
