package gohttp

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/corvid-sec/gohttp/config"
	"github.com/corvid-sec/gohttp/conn"
	"github.com/corvid-sec/gohttp/response"
)

const readChunkSize = 64 * 1024

// readResponse drives one complete HTTP/1.x response off stream, honoring
// the envelope timeout t (t < 0 means unbounded), the 100-Continue
// workaround, and the HTML trickle-tolerance loop.
//
// EOF/timeout during the read never surface as a Go error here: a
// disconnect mid-body comes back as a partial Response with
// error=truncated, a disconnect during headers comes back as a nil
// Response, and a timed-out read returns a partial Response only if
// config.partial is set. The connection is closed in every one of those
// cases except the deliberate 100-Continue reuse below.
func (c *Client) readResponse(stream conn.Stream, t time.Duration, origMethod string) (*response.Response, error) {
	deadline := envelopeDeadline(t)

	resp, leftover, err := c.readEnvelope(stream, deadline, origMethod, c.Config.GetBool(config.OptSkip100), nil)
	if err != nil || resp == nil {
		return nil, err
	}

	// A 100 Continue never carries a body of its own (isNoBodyStatus short-
	// circuits it); whatever immediately follows the blank line -- the real
	// response, normally -- comes back as leftover and seeds the next parse.
	for resp.Is100Continue() {
		resp, leftover, err = c.readEnvelope(stream, deadline, origMethod, true, leftover)
		if err != nil || resp == nil {
			return nil, err
		}
	}

	if resp.NeedsHTMLTrickle() {
		c.trickle(stream, resp, deadline)
	}

	return resp, nil
}

// readEnvelope parses exactly one response off stream, seeded with any
// bytes already in hand (leftover from a prior envelope, e.g. a 100
// Continue's trailing real response), reading further chunks until the
// parser completes, errors, or the connection/deadline gives out. It
// returns the parsed response and whatever bytes remain unconsumed past it.
func (c *Client) readEnvelope(stream conn.Stream, deadline time.Time, origMethod string, skip100 bool, seed []byte) (*response.Response, []byte, error) {
	resp := &response.Response{MaxData: c.Config.GetIntDefault(config.OptReadMaxData, 0)}
	resp.SetOrigMethod(origMethod)
	resp.SetSkip100(skip100)
	p := response.NewParser(resp)

	if len(seed) > 0 {
		switch p.Feed(seed) {
		case response.ParseCompleted:
			return resp, p.Pending(), nil
		case response.ParseError:
			return nil, nil, nil
		}
	}

	for {
		timeout, expired := remaining(deadline)
		if expired {
			r, err := c.giveUp(p, true)
			return r, nil, err
		}

		chunk, err := stream.GetOnce(readChunkSize, timeout)
		if err != nil {
			if errors.Is(err, io.EOF) {
				r, gerr := c.giveUp(p, false)
				return r, nil, gerr
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				r, gerr := c.giveUp(p, true)
				return r, nil, gerr
			}
			return nil, nil, err
		}
		if len(chunk) == 0 {
			continue
		}

		switch p.Feed(chunk) {
		case response.ParseCompleted:
			return p.Response(), p.Pending(), nil
		case response.ParseError:
			return nil, nil, nil
		}
	}
}

// giveUp closes out a parse that can't continue: either the envelope
// deadline expired (timeout) or the peer disconnected (eof). It always
// closes the connection (the 100-Continue reuse path never calls giveUp,
// it only calls readEnvelope to completion).
func (c *Client) giveUp(p *response.Parser, timedOut bool) (*response.Response, error) {
	resp := p.Close()
	_ = c.Close()

	if resp == nil {
		c.Logger.Debug().Bool("timeout", timedOut).Msg("response truncated before headers completed")
		return nil, nil // HeaderTruncated: disconnected before headers finished
	}
	if timedOut && !c.Config.GetBool(config.OptPartial) {
		c.Logger.Debug().Msg("response timed out mid-body, discarding partial response")
		return nil, nil
	}
	c.Logger.Debug().Bool("timeout", timedOut).Int("bytes", len(resp.Body)).Msg("response truncated mid-body")
	return resp, nil
}

// envelopeDeadline converts the caller's timeout into an absolute deadline;
// t < 0 means unbounded (zero Time).
func envelopeDeadline(t time.Duration) time.Time {
	if t < 0 {
		return time.Time{}
	}
	return time.Now().Add(t)
}

// remaining reports the duration left until deadline (0 meaning "no
// deadline" when deadline is zero) and whether it has already expired.
func remaining(deadline time.Time) (d time.Duration, expired bool) {
	if deadline.IsZero() {
		return 0, false
	}
	left := time.Until(deadline)
	if left <= 0 {
		return 0, true
	}
	return left, false
}

// trickle implements the HTML trickle-tolerance accommodation: a
// text/html body that completed without an explicit Content-Length and
// doesn't yet contain a closing </html> tag may simply be arriving slowly;
// give it a bounded number of short extra reads before accepting it as-is.
func (c *Client) trickle(stream conn.Stream, resp *response.Response, deadline time.Time) {
	c.Logger.Debug().Msg("html body missing closing tag, starting trickle reads")
	rounds := 0
	for ; rounds < response.HTMLTrickleMaxRounds && resp.NeedsHTMLTrickle(); rounds++ {
		if _, expired := remaining(deadline); expired {
			c.Logger.Debug().Int("rounds", rounds).Msg("trickle read stopped, deadline expired")
			return
		}
		chunk, err := stream.GetOnce(readChunkSize, response.HTMLTrickleInterval*time.Millisecond)
		if err != nil {
			c.Logger.Debug().Int("rounds", rounds).Msg("trickle read stopped, connection error")
			return
		}
		if len(chunk) > 0 {
			resp.AppendTrickle(chunk)
		}
	}
	c.Logger.Debug().Int("rounds", rounds).Msg("trickle read finished")
}
