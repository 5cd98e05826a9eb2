package conn

import (
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

// NetDialer is the concrete Dialer this package ships: plain TCP, or TCP
// through a SOCKS5 proxy chain (via golang.org/x/net/proxy), optionally
// upgraded to TLS with configurable SNI, certificate validation, and an
// opt-in NSS key-log file for traffic decryption during testing.
type NetDialer struct {
	InsecureSkipVerify bool
}

func (d *NetDialer) Dial(p DialParams) (Stream, error) {
	addr := net.JoinHostPort(p.PeerHost, strconv.Itoa(p.PeerPort))

	var base proxy.Dialer = &net.Dialer{
		Timeout: dialTimeout(p.Timeout),
		LocalAddr: localAddr(p.LocalHost, p.LocalPort),
	}

	for i := len(p.Proxies) - 1; i >= 0; i-- {
		u, err := parseProxyURL(p.Proxies[i])
		if err != nil {
			return nil, fmt.Errorf("gohttp/conn: invalid proxy %q: %w", p.Proxies[i], err)
		}
		next, err := proxy.FromURL(u, base)
		if err != nil {
			return nil, fmt.Errorf("gohttp/conn: proxy %q: %w", p.Proxies[i], err)
		}
		base = next
	}

	nc, err := base.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("gohttp/conn: dial %s: %w", addr, err)
	}

	if !p.SSL {
		return &netStream{conn: nc}, nil
	}

	sni := p.PeerHostname
	if sni == "" {
		sni = p.PeerHost
	}

	tlsCfg := &tls.Config{
		ServerName:         sni,
		InsecureSkipVerify: d.InsecureSkipVerify,
		MinVersion:         p.SSLVersion,
	}
	if p.SSLKeyLogFile != "" {
		f, err := os.OpenFile(p.SSLKeyLogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("gohttp/conn: keylog file: %w", err)
		}
		tlsCfg.KeyLogWriter = f
	}

	tc := tls.Client(nc, tlsCfg)
	if err := tc.HandshakeContext(ctxOrBackground(p.Context)); err != nil {
		tc.Close()
		return nil, fmt.Errorf("gohttp/conn: tls handshake: %w", err)
	}

	return &netStream{conn: tc, tlsConn: tc}, nil
}

func dialTimeout(t time.Duration) time.Duration {
	if t <= 0 {
		return 30 * time.Second
	}
	return t
}

func localAddr(host string, port int) net.Addr {
	if host == "" && port == 0 {
		return nil
	}
	return &net.TCPAddr{IP: net.ParseIP(host), Port: port}
}

type netStream struct {
	conn    net.Conn
	tlsConn *tls.Conn
}

func (s *netStream) Put(b []byte) error {
	_, err := s.conn.Write(b)
	return err
}

func (s *netStream) GetOnce(max int, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		s.conn.SetReadDeadline(time.Now().Add(timeout))
		defer s.conn.SetReadDeadline(time.Time{})
	}
	buf := make([]byte, max)
	n, err := s.conn.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	return nil, err
}

func (s *netStream) Shutdown() error {
	if tc, ok := s.conn.(interface{ CloseWrite() error }); ok {
		return tc.CloseWrite()
	}
	return nil
}

func (s *netStream) Close() error {
	return s.conn.Close()
}

func (s *netStream) Closed() bool {
	return false
}

func (s *netStream) Peerinfo() (string, int) {
	addr, ok := s.conn.RemoteAddr().(*net.TCPAddr)
	if !ok {
		return "", 0
	}
	return addr.IP.String(), addr.Port
}

func (s *netStream) PeerCert() ([]byte, bool) {
	if s.tlsConn == nil {
		return nil, false
	}
	state := s.tlsConn.ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil, false
	}
	return state.PeerCertificates[0].Raw, true
}
