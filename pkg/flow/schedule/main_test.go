package schedule

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain enables goroutine leak detection for all tests in this package.
// This catches any leaked timer goroutines from tick subscriptions.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
