// Package gohttp is the Transport Facade: it wires the Request Builder,
// Connection Manager, Response Parser, and Auth Coordinator behind one
// Client.SendRecv call.
package gohttp

import (
	"github.com/rs/zerolog"

	"github.com/corvid-sec/gohttp/auth"
	"github.com/corvid-sec/gohttp/config"
	"github.com/corvid-sec/gohttp/conn"
	"github.com/corvid-sec/gohttp/request"
	"github.com/corvid-sec/gohttp/response"
)

// Observer is notified around every request/response pair a Client sends.
// OnRequest strictly precedes the corresponding OnResponse. Implementations
// must not mutate either argument.
type Observer interface {
	OnRequest(req *request.Spec)
	OnResponse(res *response.Response)
}

// TransformHooks are the optional per-request hooks an active auth context
// may apply: NTLM/Negotiate signing and sealing, and Kerberos GSS message
// wrapping. Dispatch is keyed on which scheme is active on the connection's
// Session, never on inspecting the request value's shape.
type TransformHooks struct {
	NTLMTransformRequest  func(sess *auth.Session, req *request.Spec) *request.Spec
	NTLMTransformResponse func(sess *auth.Session, res *response.Response)
	KrbTransformRequest   func(sess *auth.Session, req *request.Spec) *request.Spec
	KrbTransformResponse  func(sess *auth.Session, res *response.Response)
}

// Client is the single-threaded, non-reentrant HTTP/1.x client: at most one
// socket, at most one in-flight request. Parallelism is obtained by using
// multiple Client instances, never by sharing one across goroutines.
type Client struct {
	Config *config.Config
	Peer   conn.DialParams
	Creds  auth.Credentials

	Observer Observer
	Hooks    TransformHooks

	Logger zerolog.Logger

	conn    *conn.Conn
	session *auth.Session
}

// New returns a Client targeting peer through dialer. cfg supplies every
// request-builder, parser, and auth knob; a nil cfg gets the library
// defaults.
func New(dialer conn.Dialer, peer conn.DialParams, cfg *config.Config) *Client {
	if cfg == nil {
		cfg = config.New()
	}
	return &Client{
		Config:  cfg,
		Peer:    peer,
		conn:    conn.New(dialer),
		session: &auth.Session{},
		Logger:  zerolog.Nop(),
	}
}

// Session exposes the connection-bound auth state, mainly so transform
// hooks supplied via TransformHooks can read NTLM/Kerberos context.
func (c *Client) Session() *auth.Session { return c.session }

// Close releases the socket and clears the auth session bound to it --
// spec's "shared resources" rule that the socket, the NTLM context, and the
// Kerberos encryptor are owned exclusively by the client instance and all
// released together.
func (c *Client) Close() error {
	c.session.Clear()
	c.conn.SetPipelining(false)
	return c.conn.Close()
}
