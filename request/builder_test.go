package request_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-sec/gohttp/config"
	"github.com/corvid-sec/gohttp/request"
)

func TestBuildBasicGet(t *testing.T) {
	cfg := config.New()
	spec := &request.Spec{Method: "GET", URI: "/", Vhost: "example.com"}

	b := request.NewBuilder()
	out, _, err := b.Build(cfg, spec)
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, "GET / HTTP/1.1\r\n"))
	assert.Contains(t, s, "Host: example.com\r\n")
	assert.Contains(t, s, "Content-Length: 0\r\n")
	assert.True(t, strings.HasSuffix(s, "\r\n\r\n"))
}

func TestBuildRequestLinePadding(t *testing.T) {
	cfg := config.New()
	require.NoError(t, cfg.Set(config.OptPadMethodURIType, "tab"))
	require.NoError(t, cfg.Set(config.OptPadMethodURICount, "3"))

	spec := &request.Spec{Method: "GET", URI: "/", Vhost: "x"}
	b := request.NewBuilder()
	out, _, err := b.Build(cfg, spec)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(out), "GET\t\t\t/"))
}

func TestBuildInconsistentCGIWithRawQuery(t *testing.T) {
	cfg := config.New()
	spec := &request.Spec{Method: "GET", URI: "/", CGI: true, Query: "a=1"}
	b := request.NewBuilder()
	_, _, err := b.Build(cfg, spec)
	assert.ErrorIs(t, err, request.ErrInconsistent)
}

func TestBuildChunkedBody(t *testing.T) {
	cfg := config.New()
	require.NoError(t, cfg.Set(config.OptChunkedSize, "4"))

	spec := &request.Spec{Method: "POST", URI: "/", Vhost: "x", Data: []byte("Wikipedia")}
	b := request.NewBuilder()
	out, _, err := b.Build(cfg, spec)
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "Transfer-Encoding: chunked\r\n")
	assert.NotContains(t, s, "Content-Length:")
	assert.Contains(t, s, "4\r\nWiki\r\n")
}

func TestBuildHeaderFolding(t *testing.T) {
	cfg := config.New()
	require.NoError(t, cfg.Set(config.OptHeaderFolding, "true"))

	spec := &request.Spec{
		Method:  "GET",
		URI:     "/",
		Vhost:   "x",
		Headers: map[string]string{"X-Custom": "abcdefgh"},
	}
	b := request.NewBuilder()
	out, _, err := b.Build(cfg, spec)
	require.NoError(t, err)
	assert.Contains(t, string(out), "X-Custom: abcd\r\n efgh\r\n")
}

func TestBuildCGIFormBody(t *testing.T) {
	cfg := config.New()
	spec := &request.Spec{
		Method: "POST",
		URI:    "/submit",
		Vhost:  "x",
		CGI:    true,
		VarsPost: []request.KV{
			{Name: "user", Values: []string{"alice"}},
		},
		EncodeParams: true,
	}
	b := request.NewBuilder()
	out, _, err := b.Build(cfg, spec)
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "Content-Type: application/x-www-form-urlencoded\r\n")
	assert.Contains(t, s, "user=alice")
}

func TestBuildNonASCIIMethodErrors(t *testing.T) {
	cfg := config.New()
	spec := &request.Spec{Method: "GÉT", URI: "/", Vhost: "x"}
	b := request.NewBuilder()
	_, _, err := b.Build(cfg, spec)
	assert.ErrorIs(t, err, request.ErrEncode)
}

func TestBuildSkipAuthBodyOmitsData(t *testing.T) {
	cfg := config.New()
	spec := &request.Spec{Method: "POST", URI: "/", Vhost: "x", Data: []byte("secret"), SkipAuthBody: true}
	b := request.NewBuilder()
	out, _, err := b.Build(cfg, spec)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "secret")
	assert.Contains(t, string(out), "Content-Length: 0\r\n")
}
