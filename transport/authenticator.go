package transport

// Authenticator answers a server AUTHENTICATE challenge during the
// handshake (§4.7). Class is the SASL mechanism's Cassandra class name;
// the handshake fails without calling Token when it differs from the
// class named in the server's AUTHENTICATE body.
type Authenticator interface {
	// Token returns the AUTH_RESPONSE token to send for the current
	// round. challenge is nil for the first round and holds the server's
	// AUTH_CHALLENGE token for subsequent rounds.
	Token(challenge []byte) ([]byte, error)
	Class() string
}

// NoneAuthenticator answers with a token of a single zero byte. Its
// Class is empty, so the handshake rejects any AUTHENTICATE a server
// sends; it only suits servers that need no authentication (e.g.
// AllowAllAuthenticator, which does not send AUTHENTICATE).
type NoneAuthenticator struct{}

func (NoneAuthenticator) Token(_ []byte) ([]byte, error) { return []byte{0}, nil }
func (NoneAuthenticator) Class() string                 { return "" }

// PasswordAuthenticator implements the single-round SASL PLAIN exchange
// expected by org.apache.cassandra.auth.PasswordAuthenticator: a token of
// the form "\x00" + username + "\x00" + password.
type PasswordAuthenticator struct {
	Username string
	Password string
}

func (a PasswordAuthenticator) Token(_ []byte) ([]byte, error) {
	token := make([]byte, 0, len(a.Username)+len(a.Password)+2)
	token = append(token, 0)
	token = append(token, a.Username...)
	token = append(token, 0)
	token = append(token, a.Password...)
	return token, nil
}

func (PasswordAuthenticator) Class() string {
	return "org.apache.cassandra.auth.PasswordAuthenticator"
}
