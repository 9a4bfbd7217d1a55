package transport

import (
	"crypto/tls"
	"net"
)

// StreamConn is the surface a connection needs from its underlying
// transport: TCP and TLS streams both satisfy it unchanged, so the rest
// of the package never distinguishes between them (§1 "Out of scope":
// TLS internals are not implemented here, only this passthrough
// interface, §6).
type StreamConn interface {
	net.Conn
}

// maybeWrapTLS upgrades conn to TLS when cfg is non-nil, performing the
// handshake synchronously so the caller's first read/write already sees
// a ready stream.
func maybeWrapTLS(conn net.Conn, cfg *tls.Config) (StreamConn, error) {
	if cfg == nil {
		return conn, nil
	}
	tlsConn := tls.Client(conn, cfg)
	if err := tlsConn.Handshake(); err != nil {
		return nil, err
	}
	return tlsConn, nil
}
