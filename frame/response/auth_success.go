package response

import "github.com/scylla-go/cqldriver/frame"

// AuthSuccess concludes the AUTHENTICATE/AUTH_RESPONSE exchange; the
// connection is now usable (§4.7).
type AuthSuccess struct {
	Token []byte
}

func ParseAuthSuccess(b *frame.Buffer) *AuthSuccess {
	return &AuthSuccess{Token: b.ReadBytes()}
}
