package request

import "github.com/scylla-go/cqldriver/frame"

var _ frame.Request = (*AuthResponse)(nil)

// AuthResponse carries the opaque token produced by the configured
// Authenticator (§6), sent in reply to AUTHENTICATE or AUTH_CHALLENGE.
type AuthResponse struct {
	Token []byte
}

func (a *AuthResponse) WriteTo(b *frame.Buffer) {
	b.WriteBytes(a.Token)
}

func (*AuthResponse) OpCode() frame.OpCode {
	return frame.OpAuthResponse
}
