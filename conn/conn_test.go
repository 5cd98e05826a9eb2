package conn_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-sec/gohttp/conn"
)

type fakeStream struct {
	closed bool
	addr   string
	port   int
}

func (f *fakeStream) Put(b []byte) error                             { return nil }
func (f *fakeStream) GetOnce(max int, timeout time.Duration) ([]byte, error) { return nil, nil }
func (f *fakeStream) Shutdown() error                                { return nil }
func (f *fakeStream) Close() error                                   { f.closed = true; return nil }
func (f *fakeStream) Closed() bool                                   { return f.closed }
func (f *fakeStream) Peerinfo() (string, int)                        { return f.addr, f.port }
func (f *fakeStream) PeerCert() ([]byte, bool)                       { return nil, false }

type fakeDialer struct {
	dialCount int
	stream    *fakeStream
}

func (d *fakeDialer) Dial(p conn.DialParams) (conn.Stream, error) {
	d.dialCount++
	d.stream = &fakeStream{addr: p.PeerHost, port: p.PeerPort}
	return d.stream, nil
}

func TestConnectReusesWhenPipelining(t *testing.T) {
	fd := &fakeDialer{}
	c := conn.New(fd)
	c.SetPipelining(true)

	_, err := c.Connect(conn.DialParams{PeerHost: "example.com", PeerPort: 80}, time.Second)
	require.NoError(t, err)
	_, err = c.Connect(conn.DialParams{PeerHost: "example.com", PeerPort: 80}, time.Second)
	require.NoError(t, err)

	assert.Equal(t, 1, fd.dialCount, "expected the second Connect to reuse the stream")
}

func TestConnectRedialsWithoutPipelining(t *testing.T) {
	fd := &fakeDialer{}
	c := conn.New(fd)
	c.SetPipelining(false)

	_, err := c.Connect(conn.DialParams{PeerHost: "example.com", PeerPort: 80}, time.Second)
	require.NoError(t, err)
	_, err = c.Connect(conn.DialParams{PeerHost: "example.com", PeerPort: 80}, time.Second)
	require.NoError(t, err)

	assert.Equal(t, 2, fd.dialCount, "non-pipelined Connect must dial fresh every time")
}

func TestCloseClearsPeerinfo(t *testing.T) {
	fd := &fakeDialer{}
	c := conn.New(fd)
	_, err := c.Connect(conn.DialParams{PeerHost: "10.0.0.1", PeerPort: 443}, time.Second)
	require.NoError(t, err)

	_, _, ok := c.Peerinfo()
	require.True(t, ok)

	require.NoError(t, c.Close())
	_, _, ok = c.Peerinfo()
	assert.False(t, ok)
	assert.False(t, c.Live())
}
