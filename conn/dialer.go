// Package conn implements the Connection Manager: connect/reuse/close,
// the pipelining decision, and the TLS channel-binding surface NTLM needs.
// The actual socket is obtained through the Dialer interface -- callers may
// supply their own, or use NetDialer, the one concrete implementation this
// package ships.
package conn

import (
	"context"
	"crypto/tls"
	"time"
)

// DialParams is the socket factory contract's input: everything a Dialer
// needs to open (or reuse) one connection.
type DialParams struct {
	PeerHost     string
	PeerHostname string // SNI
	PeerPort     int
	LocalHost    string
	LocalPort    int
	Context      context.Context
	SSL          bool
	SSLVersion   uint16 // crypto/tls.VersionTLS12, etc; 0 = library default
	SSLKeyLogFile string
	Proxies      []string
	Timeout      time.Duration
}

// Stream is the socket factory contract's output: a minimal byte-oriented
// connection abstraction.
type Stream interface {
	Put(b []byte) error
	GetOnce(max int, timeout time.Duration) ([]byte, error)
	Shutdown() error
	Close() error
	Closed() bool
	Peerinfo() (string, int)
	PeerCert() ([]byte, bool) // DER bytes, if TLS is active
}

// Dialer is the out-of-scope socket factory: given DialParams, produce a
// live Stream.
type Dialer interface {
	Dial(p DialParams) (Stream, error)
}

// tlsConnInfo describes a connection that can report its TLS state.
// NetDialer's Stream does not use it: it keeps the *tls.Conn itself to
// answer PeerCert().
type tlsConnInfo interface {
	ConnectionState() tls.ConnectionState
}
