package response

import (
	"bytes"
	"strings"
)

// Is100Continue reports whether r is an HTTP/1.1 100 Continue response that
// the caller hasn't been told to skip (the 100-Continue workaround's
// trigger condition).
func (r *Response) Is100Continue() bool {
	return r.Version == "1.1" && r.Code == 100 && !r.skip100
}

// BodyLooksLikeResponse reports whether r's accumulated body itself begins
// with a status line, the case where a misbehaving server folds the real
// response into the 100 Continue's body instead of sending it as a
// separate message.
func (r *Response) BodyLooksLikeResponse() bool {
	return bytes.HasPrefix(r.Body, []byte("HTTP/"))
}

// NeedsHTMLTrickle reports whether r, having just completed without an
// explicit Content-Length, looks like a text/html body truncated before
// its closing tag -- the deliberate trickle-tolerance accommodation for
// slow servers that dribble HTML out after the connection would otherwise
// look done.
func (r *Response) NeedsHTMLTrickle() bool {
	if r.bodyMode == bodyCounted {
		return false
	}
	ct, ok := r.Headers.Get("Content-Type")
	if !ok || !strings.HasPrefix(strings.ToLower(ct), "text/html") {
		return false
	}
	return !bytes.Contains(bytes.ToLower(r.Body), []byte("</html>"))
}

// AppendTrickle appends more bytes to an already-Completed response during
// the HTML trickle-tolerance loop.
func (r *Response) AppendTrickle(b []byte) {
	r.Body = append(r.Body, b...)
}

const (
	HTMLTrickleInterval  = 50 // milliseconds per iteration
	HTMLTrickleMaxRounds = 1000
)
