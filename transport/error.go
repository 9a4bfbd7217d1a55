package transport

import (
	"errors"

	"github.com/scylla-go/cqldriver/frame/response"
)

// isUnprepared reports whether err is the server telling us a prepared
// statement id it doesn't recognize, the one case a session retries
// automatically: it re-PREPAREs the statement once and replays the
// EXECUTE (§7 "Retries", Non-goal: no other automatic retries).
func isUnprepared(err error) (*response.UnpreparedError, bool) {
	var u *response.UnpreparedError
	if errors.As(err, &u) {
		return u, true
	}
	return nil, false
}
