package gohttp

import (
	"fmt"
	"time"

	"github.com/corvid-sec/gohttp/auth"
	"github.com/corvid-sec/gohttp/request"
	"github.com/corvid-sec/gohttp/response"
)

// ErrConnectFailed wraps a socket factory failure, surfaced to the caller
// per the error taxonomy.
type ErrConnectFailed struct{ Err error }

func (e *ErrConnectFailed) Error() string { return fmt.Sprintf("gohttp: connect failed: %v", e.Err) }
func (e *ErrConnectFailed) Unwrap() error { return e.Err }

// ErrAuthFailed reports that every auth leg ran but the exchange never
// produced a non-401 response; Response holds the last 401 seen.
type ErrAuthFailed struct {
	Response *response.Response
}

func (e *ErrAuthFailed) Error() string { return "gohttp: auth legs exhausted without success" }

// SendRecv is the client's one entrypoint: it records the persist flag,
// notifies the observer, applies request transform hooks, sends, reads the
// response (applying response transform hooks), attaches request/peerinfo,
// notifies the observer again, and on a 401 delegates to the auth
// coordinator.
func (c *Client) SendRecv(spec *request.Spec, t time.Duration, persist bool) (*response.Response, error) {
	c.conn.SetPipelining(persist)

	resp, err := c.sendRecvOnce(spec, t)
	if err != nil || resp == nil || resp.Code != 401 {
		return resp, err
	}

	coord := auth.NewCoordinator(c.session)
	coord.Logger = c.Logger
	coord.ChannelBinding = c.conn.ChannelBinding
	leg := func(authzHeader string, includeBody bool) (*response.Response, error) {
		legSpec := spec.Clone()
		if authzHeader != "" {
			if legSpec.Headers == nil {
				legSpec.Headers = map[string]string{}
			}
			legSpec.Headers["Authorization"] = authzHeader
		}
		legSpec.SkipAuthBody = !includeBody
		return c.sendRecvOnce(legSpec, t)
	}

	final, closeConn, negErr := coord.Negotiate(c.Config, c.Peer.PeerHost, spec.Method, spec.URI, c.Creds, resp, leg)
	if closeConn {
		_ = c.Close()
	}
	if negErr != nil {
		return nil, negErr
	}
	if final != nil && final.Code == 401 && final != resp {
		return final, &ErrAuthFailed{Response: final}
	}
	return final, nil
}

// sendRecvOnce is "_send_recv": the same pipeline as SendRecv but without
// the final 401 delegation, so auth legs can call it directly without
// recursing back into the coordinator.
func (c *Client) sendRecvOnce(spec *request.Spec, t time.Duration) (*response.Response, error) {
	if c.Observer != nil {
		c.Observer.OnRequest(spec)
	}

	outSpec := spec
	if c.Hooks.NTLMTransformRequest != nil && c.session.HasActiveNTLMOrKerberos() &&
		(c.session.Scheme == auth.SchemeNTLM || c.session.Scheme == auth.SchemeNegotiate) {
		outSpec = c.Hooks.NTLMTransformRequest(c.session, outSpec)
	}
	if c.Hooks.KrbTransformRequest != nil && c.session.Scheme == auth.SchemeKerberos {
		outSpec = c.Hooks.KrbTransformRequest(c.session, outSpec)
	}

	raw, builtSpec, err := request.NewBuilder().Build(c.Config, outSpec)
	if err != nil {
		return nil, err
	}

	c.conn.Logger = c.Logger
	stream, err := c.conn.Connect(c.Peer, t)
	if err != nil {
		return nil, &ErrConnectFailed{Err: err}
	}
	if err := stream.Put(raw); err != nil {
		return nil, err
	}

	resp, err := c.readResponse(stream, t, builtSpec.Method)
	if err != nil {
		return resp, err
	}

	if resp != nil {
		if c.Hooks.NTLMTransformResponse != nil && c.session.HasActiveNTLMOrKerberos() &&
			(c.session.Scheme == auth.SchemeNTLM || c.session.Scheme == auth.SchemeNegotiate) {
			c.Hooks.NTLMTransformResponse(c.session, resp)
		}
		if c.Hooks.KrbTransformResponse != nil && c.session.Scheme == auth.SchemeKerberos {
			c.Hooks.KrbTransformResponse(c.session, resp)
		}
		resp.Request = raw
		if addr, port, ok := c.conn.Peerinfo(); ok {
			resp.Peerinfo = &response.Peerinfo{Addr: addr, Port: port}
		}
	}

	if c.Observer != nil {
		c.Observer.OnResponse(resp)
	}
	return resp, nil
}
