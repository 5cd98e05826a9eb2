package gohttp_test

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gohttp "github.com/corvid-sec/gohttp"
	"github.com/corvid-sec/gohttp/auth"
	"github.com/corvid-sec/gohttp/config"
	"github.com/corvid-sec/gohttp/conn"
	"github.com/corvid-sec/gohttp/request"
	"github.com/corvid-sec/gohttp/response"
)

// scriptedStream replays a fixed queue of byte chunks to GetOnce and
// records everything written via Put, the way a real socket interleaves
// writes from the client with reads of the server's scripted reply.
type scriptedStream struct {
	chunks [][]byte
	sent   [][]byte
	closed bool
}

func (s *scriptedStream) Put(b []byte) error {
	cp := append([]byte(nil), b...)
	s.sent = append(s.sent, cp)
	return nil
}

func (s *scriptedStream) GetOnce(max int, timeout time.Duration) ([]byte, error) {
	if len(s.chunks) == 0 {
		return nil, io.EOF
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

func (s *scriptedStream) Shutdown() error     { return nil }
func (s *scriptedStream) Close() error        { s.closed = true; return nil }
func (s *scriptedStream) Closed() bool        { return s.closed }
func (s *scriptedStream) Peerinfo() (string, int) { return "10.0.0.1", 80 }
func (s *scriptedStream) PeerCert() ([]byte, bool) { return nil, false }

// scriptedDialer serves a queue of streams: each Dial call consumes the
// next one, so a test can assert exactly how many times the client
// actually opened a fresh socket.
type scriptedDialer struct {
	streams   []*scriptedStream
	dialCount int
}

func (d *scriptedDialer) Dial(p conn.DialParams) (conn.Stream, error) {
	s := d.streams[d.dialCount]
	d.dialCount++
	return s, nil
}

func newSpec(method, uri string) *request.Spec {
	return &request.Spec{Method: method, URI: uri, Version: "1.1"}
}

func TestBasicAuthRoundTrip(t *testing.T) {
	unauthorized := []byte("HTTP/1.1 401 Unauthorized\r\nWWW-Authenticate: Basic realm=\"x\"\r\nContent-Length: 0\r\n\r\n")
	ok := []byte("HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nOK")
	stream := &scriptedStream{chunks: [][]byte{unauthorized, ok}}
	dialer := &scriptedDialer{streams: []*scriptedStream{stream}}

	cfg := config.New()
	c := gohttp.New(dialer, conn.DialParams{PeerHost: "x", PeerPort: 80}, cfg)
	c.Creds = auth.Credentials{Username: "u", Password: "p"}

	resp, err := c.SendRecv(newSpec("GET", "/"), time.Second, true)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 200, resp.Code)
	assert.Equal(t, "OK", string(resp.Body))

	require.Len(t, stream.sent, 2)
	assert.Contains(t, string(stream.sent[1]), "Authorization: Basic dTpw")
}

func TestChunkedBody(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n")
	stream := &scriptedStream{chunks: [][]byte{raw}}
	dialer := &scriptedDialer{streams: []*scriptedStream{stream}}

	c := gohttp.New(dialer, conn.DialParams{PeerHost: "x", PeerPort: 80}, config.New())
	resp, err := c.SendRecv(newSpec("GET", "/"), time.Second, true)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "Wikipedia", string(resp.Body))
}

func TestHundredContinueThenRealResponse(t *testing.T) {
	raw := []byte("HTTP/1.1 100 Continue\r\n\r\nHTTP/1.1 200 OK\r\nContent-Length: 3\r\n\r\nfoo")
	stream := &scriptedStream{chunks: [][]byte{raw}}
	dialer := &scriptedDialer{streams: []*scriptedStream{stream}}

	c := gohttp.New(dialer, conn.DialParams{PeerHost: "x", PeerPort: 80}, config.New())
	resp, err := c.SendRecv(newSpec("GET", "/"), time.Second, true)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 200, resp.Code)
	assert.Equal(t, "foo", string(resp.Body))
}

func TestTruncatedBodyMarksError(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\nContent-Length: 100\r\n\r\nshort")
	stream := &scriptedStream{chunks: [][]byte{raw}}
	dialer := &scriptedDialer{streams: []*scriptedStream{stream}}

	c := gohttp.New(dialer, conn.DialParams{PeerHost: "x", PeerPort: 80}, config.New())
	resp, err := c.SendRecv(newSpec("GET", "/"), time.Second, true)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 200, resp.Code)
	assert.Equal(t, "short", string(resp.Body))
	assert.Equal(t, response.ErrTruncated, resp.Error)
}

func TestHeaderTruncatedReturnsNil(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\nConte")
	stream := &scriptedStream{chunks: [][]byte{raw}}
	dialer := &scriptedDialer{streams: []*scriptedStream{stream}}

	c := gohttp.New(dialer, conn.DialParams{PeerHost: "x", PeerPort: 80}, config.New())
	resp, err := c.SendRecv(newSpec("GET", "/"), time.Second, true)
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestPersistReusesSingleDial(t *testing.T) {
	first := []byte("HTTP/1.1 200 OK\r\nContent-Length: 1\r\n\r\na")
	second := []byte("HTTP/1.1 200 OK\r\nContent-Length: 1\r\n\r\nb")
	stream := &scriptedStream{chunks: [][]byte{first, second}}
	dialer := &scriptedDialer{streams: []*scriptedStream{stream}}

	c := gohttp.New(dialer, conn.DialParams{PeerHost: "x", PeerPort: 80}, config.New())
	_, err := c.SendRecv(newSpec("GET", "/1"), time.Second, true)
	require.NoError(t, err)
	_, err = c.SendRecv(newSpec("GET", "/2"), time.Second, true)
	require.NoError(t, err)

	assert.Equal(t, 1, dialer.dialCount)
}
