package transport

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies every test in this package leaves behind none of
// conn.go's writer/reader goroutines or cluster.go's watchEvents loop.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
