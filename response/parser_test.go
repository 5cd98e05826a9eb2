package response_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-sec/gohttp/response"
)

func TestChunkedBody(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n"

	r := &response.Response{}
	p := response.NewParser(r)
	code := p.Feed([]byte(raw))

	require.Equal(t, response.ParseCompleted, code)
	assert.Equal(t, "Wikipedia", string(r.Body))
	assert.Equal(t, response.Completed, r.State())
}

func TestIncrementalEquivalence(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n"

	whole := &response.Response{}
	pWhole := response.NewParser(whole)
	pWhole.Feed([]byte(raw))

	chunked := &response.Response{}
	pChunked := response.NewParser(chunked)
	for i := 0; i < len(raw); i++ {
		pChunked.Feed([]byte{raw[i]})
	}

	assert.Equal(t, whole.Body, chunked.Body)
	assert.Equal(t, whole.Code, chunked.Code)
	assert.Equal(t, whole.State(), chunked.State())
}

func TestTruncatedBody(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nContent-Length: 100\r\n\r\nshort"

	r := &response.Response{}
	p := response.NewParser(r)
	code := p.Feed([]byte(raw))
	assert.Equal(t, response.NeedMore, code)

	final := p.Close()
	require.NotNil(t, final)
	assert.Equal(t, "short", string(final.Body))
	assert.Equal(t, response.ErrTruncated, final.Error)
}

func TestHeaderTruncationDiscardsResponse(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nContent-Length: 1"

	r := &response.Response{}
	p := response.NewParser(r)
	code := p.Feed([]byte(raw))
	assert.Equal(t, response.NeedMore, code)

	final := p.Close()
	assert.Nil(t, final)
}

func TestFoldedHeaderContinuation(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nX-Thing: part1\r\n part2\r\nContent-Length: 0\r\n\r\n"

	r := &response.Response{}
	p := response.NewParser(r)
	code := p.Feed([]byte(raw))
	require.Equal(t, response.ParseCompleted, code)

	v, ok := r.Headers.Get("X-Thing")
	require.True(t, ok)
	assert.Equal(t, "part1 part2", v)
}

func TestMalformedStatusLineIsError(t *testing.T) {
	raw := "NOT A STATUS LINE\r\n\r\n"
	r := &response.Response{}
	p := response.NewParser(r)
	code := p.Feed([]byte(raw))
	assert.Equal(t, response.ParseError, code)
	assert.Equal(t, response.Error, r.State())
}

func TestHeadRequestHasNoBody(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\n"
	r := &response.Response{}
	r.SetOrigMethod("HEAD")
	p := response.NewParser(r)
	code := p.Feed([]byte(raw))
	assert.Equal(t, response.ParseCompleted, code)
	assert.Empty(t, r.Body)
}

func TestMaxDataCapsBody(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\n0123456789"
	r := &response.Response{MaxData: 4}
	p := response.NewParser(r)
	code := p.Feed([]byte(raw))
	assert.Equal(t, response.ParseCompleted, code)
	assert.Equal(t, "0123", string(r.Body))
}

func Test100ContinueDetection(t *testing.T) {
	raw := "HTTP/1.1 100 Continue\r\n\r\n"
	r := &response.Response{}
	p := response.NewParser(r)
	code := p.Feed([]byte(raw))
	require.Equal(t, response.ParseCompleted, code)
	assert.True(t, r.Is100Continue())
}
