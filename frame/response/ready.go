// Package response parses RESULT, ERROR, and the other server-to-client
// frame bodies (§3, §4.3, §4.6).
package response

import "github.com/scylla-go/cqldriver/frame"

// Ready signals the handshake succeeded with no authentication required
// (§4.7 "Handshake").
type Ready struct{}

func ParseReady(_ *frame.Buffer) *Ready {
	return &Ready{}
}
