package response

import "github.com/scylla-go/cqldriver/frame"

// AuthChallenge asks the client to send another AUTH_RESPONSE
// (multi-round SASL-style exchanges), §4.7.
type AuthChallenge struct {
	Token []byte
}

func ParseAuthChallenge(b *frame.Buffer) *AuthChallenge {
	return &AuthChallenge{Token: b.ReadBytes()}
}
