package conn

import (
	"crypto/sha256"
	"time"

	"github.com/rs/zerolog"
)

// Conn owns the single live socket for one gohttp.Client: connect-or-reuse,
// orderly close, peerinfo, and NTLM channel-binding derivation from the TLS
// peer certificate.
type Conn struct {
	dialer Dialer
	stream Stream
	params DialParams

	pipelining bool

	Logger zerolog.Logger
}

// New returns a Conn that will dial through dialer.
func New(dialer Dialer) *Conn {
	return &Conn{dialer: dialer, Logger: zerolog.Nop()}
}

// SetPipelining toggles whether Connect may reuse an existing stream,
// mirroring the caller's "persist" flag for the request.
func (c *Conn) SetPipelining(v bool) { c.pipelining = v }

// Connect returns the existing stream if pipelining is enabled and one is
// open; otherwise it dials a fresh one via the configured Dialer.
// t is passed to the Dialer as DialParams.Timeout (NetDialer uses a 30-second
// dial timeout when t <= 0). The "no timeout" (t < 0) and fire-and-forget
// (t == 0) meanings of t apply to reading the response, not to connecting.
func (c *Conn) Connect(params DialParams, t time.Duration) (Stream, error) {
	if c.pipelining && c.stream != nil && !c.stream.Closed() {
		c.Logger.Debug().Str("host", params.PeerHost).Int("port", params.PeerPort).Msg("reusing connection")
		return c.stream, nil
	}
	params.Timeout = t
	s, err := c.dialer.Dial(params)
	if err != nil {
		c.Logger.Warn().Str("host", params.PeerHost).Int("port", params.PeerPort).Err(err).Msg("connect failed")
		return nil, err
	}
	c.Logger.Debug().Str("host", params.PeerHost).Int("port", params.PeerPort).Msg("connected")
	c.stream = s
	c.params = params
	return s, nil
}

// Close performs an orderly shutdown+close and drops the retained stream.
// Callers are responsible for clearing any auth.Session bound to this
// connection (gohttp.Client does so via Session().Clear()).
func (c *Conn) Close() error {
	if c.stream == nil {
		return nil
	}
	_ = c.stream.Shutdown()
	err := c.stream.Close()
	c.stream = nil
	if err != nil {
		c.Logger.Warn().Err(err).Msg("close failed")
	} else {
		c.Logger.Debug().Msg("closed connection")
	}
	return err
}

// Live reports whether Conn currently holds an open stream.
func (c *Conn) Live() bool {
	return c.stream != nil && !c.stream.Closed()
}

// Peerinfo returns the resolved peer address/port of the live connection,
// or ("", 0, false) if there is none.
func (c *Conn) Peerinfo() (string, int, bool) {
	if c.stream == nil {
		return "", 0, false
	}
	addr, port := c.stream.Peerinfo()
	return addr, port, true
}

// ChannelBinding derives the NTLM channel-binding token from the live
// connection's TLS peer certificate, or returns (nil, false) if TLS isn't
// active.
func (c *Conn) ChannelBinding() ([]byte, bool) {
	if c.stream == nil {
		return nil, false
	}
	cert, ok := c.stream.PeerCert()
	if !ok {
		return nil, false
	}
	sum := sha256.Sum256(cert)
	// RFC 5929 tls-server-end-point binding prefix.
	cb := append([]byte("tls-server-end-point:"), sum[:]...)
	return cb, true
}
