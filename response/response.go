// Package response implements the incremental HTTP/1.x response parser:
// a state machine that consumes arbitrary-size byte chunks and produces a
// Response, honoring chunked transfer-encoding, the 100-Continue
// workaround, and truncation/trickle tolerance.
package response

import (
	"github.com/corvid-sec/gohttp/header"
)

// State is the parser's current phase for a given Response.
type State int

const (
	AwaitingStatus State = iota
	ProcessingHeader
	ProcessingBody
	Completed
	Error
)

// ErrorKind classifies why a Response ended up in the Error state, or why
// parsing stopped early.
type ErrorKind int

const (
	ErrNone ErrorKind = iota
	ErrTruncated
	ErrParseError
)

// Peerinfo is the resolved remote endpoint a response was read from.
type Peerinfo struct {
	Addr string
	Port int
}

// Response holds protocol version, status, headers, body, and the
// incremental-parse bookkeeping fields (bufq/state/error).
type Response struct {
	Version string
	Code    int
	Reason  string

	Headers header.Header
	Body    []byte

	bufq  []byte
	state State
	Error ErrorKind

	MaxData int

	Request  []byte // the serialized request bytes this is a reply to
	Peerinfo *Peerinfo

	// origMethod records the request method driving HEAD/204/304
	// no-body handling; set by the caller (the transport facade) before
	// Feed is first called.
	origMethod string
	skip100    bool

	bodyMode    bodyMode
	contentLen  int
	bodyRead    int
	chunkState  chunkState
	chunkSize   int
	chunkRemain int
	trailerBuf  []byte
}

type bodyMode int

const (
	bodyNone bodyMode = iota
	bodyChunked
	bodyCounted
	bodyUntilClose
)

type chunkState int

const (
	chunkSizeLine chunkState = iota
	chunkData
	chunkDataCRLF
	chunkTrailer
)

// State returns the parser's current state.
func (r *Response) State() State { return r.state }

// Bufq returns the residual unparsed bytes held during incremental
// parsing. It is always empty in Completed, Error and AwaitingStatus; in
// ProcessingHeader and ProcessingBody it holds whatever bytes are not yet
// consumed, which may be none.
func (r *Response) Bufq() []byte { return r.bufq }

// SetOrigMethod records the method of the request this response answers,
// needed to special-case HEAD (no body regardless of framing headers).
func (r *Response) SetOrigMethod(m string) { r.origMethod = m }

// SetSkip100 prevents the 100-Continue workaround from recursing; used
// internally when re-reading the real response after a 100 Continue.
func (r *Response) SetSkip100(v bool) { r.skip100 = v }
