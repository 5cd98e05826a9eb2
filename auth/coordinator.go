package auth

import (
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/golang-auth/go-gssapi/v3"
	"github.com/rs/zerolog"

	"github.com/corvid-sec/gohttp/config"
	"github.com/corvid-sec/gohttp/response"
)

// Leg sends one authentication-leg request over the connection the
// Coordinator is bound to. authorizationHeader is the Authorization header
// value to attach, or "" to send none. includeBody controls whether the
// real request body accompanies this leg (the no_body_for_auth knob defers
// it to a later leg). It returns the parsed response to that leg.
type Leg func(authorizationHeader string, includeBody bool) (*response.Response, error)

// Credentials bundles the identity material a Coordinator may draw on
// across schemes.
type Credentials struct {
	Username string
	Password string
	Domain   string

	// GSSAPIProvider enables the Kerberos leg when non-nil.
	GSSAPIProvider gssapi.Provider
	// Mutual requests mutual authentication on the Kerberos/Negotiate-via-Kerberos leg.
	Mutual bool
}

func (c Credentials) available() bool {
	return c.Username != "" || c.GSSAPIProvider != nil
}

// Coordinator drives the challenge-response exchange on one connection: on
// a 401 it picks a scheme (honoring preferred_auth), retries, and returns
// the final response.
type Coordinator struct {
	Session *Session
	Logger  zerolog.Logger

	// ChannelBinding, when set, returns the RFC 5929 tls-server-end-point
	// hash of the connection's TLS peer certificate (ok=false on a
	// plaintext connection). The NTLM/Negotiate leg passes it through to
	// CompleteNTLM.
	ChannelBinding func() (cb []byte, ok bool)
}

// NewCoordinator returns a Coordinator bound to session with a no-op
// logger; set the Logger field directly to observe leg transitions.
func NewCoordinator(session *Session) *Coordinator {
	return &Coordinator{Session: session, Logger: zerolog.Nop()}
}

// Negotiate inspects first, the response to the initial unauthenticated
// request. If it is a 401 carrying a supported challenge and credentials
// are available, it drives that scheme to completion via send and returns
// the resulting response. If no scheme applies, first is returned
// unchanged. method and uri identify the real request, needed for Digest's
// HA2 computation. host is used to derive the Kerberos/Negotiate SPN.
//
// closeConn reports whether the caller must close the underlying
// connection: a leg failed with EOF/EPIPE/timeout, so per spec the
// Coordinator gives up and hands back the last valid response it held
// (first itself when no leg produced one).
func (c *Coordinator) Negotiate(cfg *config.Config, host, method, uri string, creds Credentials, first *response.Response, send Leg) (resp *response.Response, closeConn bool, err error) {
	if first == nil || first.Code != 401 || !creds.available() {
		return first, false, nil
	}
	challenge, ok := first.Headers.Get("WWW-Authenticate")
	if !ok || challenge == "" {
		return first, false, nil
	}

	scheme := selectScheme(cfg, challenge, creds)
	if scheme == SchemeNone {
		return first, false, nil
	}

	noBody := cfg.GetBool(config.OptNoBodyForAuth)
	last := first

	c.Logger.Debug().Str("scheme", scheme.String()).Str("host", host).Msg("starting auth leg")

	var legErr error
	switch scheme {
	case SchemeBasic:
		last, legErr = c.negotiateBasic(creds, send)
	case SchemeDigest:
		last, legErr = c.negotiateDigest(cfg, challenge, method, uri, creds, send)
	case SchemeNTLM, SchemeNegotiate:
		last, legErr = c.negotiateNTLM(cfg, scheme, challenge, creds, noBody, send)
	case SchemeKerberos:
		last, legErr = c.negotiateKerberos(host, creds, noBody, send)
	}

	if legErr != nil {
		if isRecoverableLegError(legErr) {
			c.Logger.Debug().Str("scheme", scheme.String()).Err(legErr).Msg("auth leg dropped, connection will be closed")
			if last == nil {
				last = first
			}
			return last, true, nil
		}
		c.Logger.Warn().Str("scheme", scheme.String()).Err(legErr).Msg("auth leg failed")
		return nil, false, legErr
	}

	if last != nil {
		c.Logger.Debug().Str("scheme", scheme.String()).Int("code", last.Code).Msg("auth leg completed")
	}
	return last, false, nil
}

// selectScheme picks the first scheme, in Basic -> Digest -> NTLM ->
// Negotiate -> Kerberos order, that the challenge offers and credentials
// support, unless preferred_auth names one explicitly -- and even then,
// only if the challenge actually offers it and the matching credentials are
// present; otherwise it falls back to the same auto-detect order as if
// preferred_auth had never been set.
func selectScheme(cfg *config.Config, challenge string, creds Credentials) Scheme {
	lower := strings.ToLower(challenge)
	provider := cfg.GetString(config.OptProvider)

	if pref := cfg.GetString(config.OptPreferredAuth); pref != "" {
		if s := schemeFromChallengeName(pref); s != SchemeNone && schemeAvailable(s, lower, provider, creds) {
			return s
		}
	}

	switch {
	case strings.Contains(lower, "basic") && creds.Username != "":
		return SchemeBasic
	case strings.Contains(lower, "digest") && creds.Username != "":
		return SchemeDigest
	case strings.Contains(lower, "ntlm") && creds.Username != "":
		if strings.EqualFold(provider, "NTLM") {
			return SchemeNTLM
		}
		return SchemeNegotiate
	case strings.Contains(lower, "negotiate") && creds.GSSAPIProvider != nil:
		return SchemeKerberos
	case strings.Contains(lower, "kerberos") && creds.GSSAPIProvider != nil:
		return SchemeKerberos
	default:
		return SchemeNone
	}
}

// schemeAvailable reports whether scheme is both offered by the
// (already-lowercased) challenge and backed by credentials the Coordinator
// can actually use, the same two conditions the auto-detect switch checks.
func schemeAvailable(scheme Scheme, lowerChallenge, provider string, creds Credentials) bool {
	switch scheme {
	case SchemeBasic:
		return strings.Contains(lowerChallenge, "basic") && creds.Username != ""
	case SchemeDigest:
		return strings.Contains(lowerChallenge, "digest") && creds.Username != ""
	case SchemeNTLM:
		return strings.Contains(lowerChallenge, "ntlm") && creds.Username != "" && strings.EqualFold(provider, "NTLM")
	case SchemeNegotiate:
		return strings.Contains(lowerChallenge, "ntlm") && creds.Username != "" && !strings.EqualFold(provider, "NTLM")
	case SchemeKerberos:
		return (strings.Contains(lowerChallenge, "negotiate") || strings.Contains(lowerChallenge, "kerberos")) && creds.GSSAPIProvider != nil
	default:
		return false
	}
}

func schemeFromChallengeName(name string) Scheme {
	switch strings.ToLower(name) {
	case "basic":
		return SchemeBasic
	case "digest":
		return SchemeDigest
	case "ntlm":
		return SchemeNTLM
	case "negotiate":
		return SchemeNegotiate
	case "kerberos":
		return SchemeKerberos
	default:
		return SchemeNone
	}
}

func (c *Coordinator) negotiateBasic(creds Credentials, send Leg) (*response.Response, error) {
	c.Session.Scheme = SchemeBasic
	return send(BasicAuthorizationHeader(creds.Username, creds.Password), true)
}

func (c *Coordinator) negotiateDigest(cfg *config.Config, challengeHeader, method, uri string, creds Credentials, send Leg) (*response.Response, error) {
	ch, ok := ParseDigestChallenge(challengeHeader)
	if !ok {
		return nil, errors.New("auth: malformed Digest challenge")
	}

	c.Session.Scheme = SchemeDigest
	c.Session.digest = &digestState{
		realm:     ch.Realm,
		nonce:     ch.Nonce,
		qop:       ch.QOP,
		algorithm: ch.Algorithm,
		opaque:    ch.Opaque,
	}

	iis := cfg.GetBool(config.OptDigestAuthIIS)
	header := digestAuthorizationHeader(c.Session.digest, creds.Username, creds.Password, method, uri, iis)
	return send(header, true)
}

func (c *Coordinator) negotiateNTLM(cfg *config.Config, scheme Scheme, challengeHeader string, creds Credentials, noBody bool, send Leg) (*response.Response, error) {
	provider := "Negotiate"
	if scheme == SchemeNTLM {
		provider = "NTLM"
	}

	c.Session.Scheme = scheme
	c.Logger.Debug().Str("provider", provider).Msg("sending ntlm type-1")
	t1 := NewNTLMType1(provider, creds.Domain)
	t1Resp, err := send(t1, !noBody)
	if err != nil {
		return nil, err
	}

	t2Header, ok := t1Resp.Headers.Get("WWW-Authenticate")
	if !ok || t2Header == "" {
		// the server may have accepted the Type-1 leg outright (unusual, but
		// not our problem to second-guess)
		c.Logger.Debug().Msg("ntlm type-1 leg accepted without a challenge")
		return t1Resp, nil
	}

	var cb []byte
	if c.ChannelBinding != nil {
		cb, _ = c.ChannelBinding()
	}
	t3, err := c.Session.CompleteNTLM(provider, t2Header, creds.Username, creds.Password, creds.Domain, cb)
	if err != nil {
		return nil, err
	}

	c.Logger.Debug().Str("provider", provider).Msg("sending ntlm type-3")
	t3Resp, err := send(t3, !noBody)
	if err != nil {
		return t1Resp, err
	}
	if noBody {
		// the connection is now NTLM-authenticated at the socket level; the
		// real request needs no further Authorization header.
		c.Logger.Debug().Msg("ntlm handshake complete, sending deferred body")
		final, err := send("", true)
		if err != nil {
			return t3Resp, err
		}
		return final, nil
	}
	return t3Resp, nil
}

func (c *Coordinator) negotiateKerberos(host string, creds Credentials, noBody bool, send Leg) (*response.Response, error) {
	if creds.GSSAPIProvider == nil {
		return nil, errors.New("auth: no GSSAPI provider configured for Kerberos")
	}

	spn := SpnFor(host)
	header, err := c.Session.InitKerberos(creds.GSSAPIProvider, spn, creds.Mutual)
	if err != nil {
		return nil, err
	}

	resp, err := send(header, !noBody)
	if err != nil {
		return nil, err
	}

	if creds.Mutual && resp.Code != 401 {
		if authz, ok := resp.Headers.Get("WWW-Authenticate"); ok {
			if verr := c.Session.VerifyMutualAuth(authz); verr != nil {
				return nil, verr
			}
		}
	}

	if noBody {
		final, err := send("", true)
		if err != nil {
			return resp, err
		}
		return final, nil
	}
	return resp, nil
}

// isRecoverableLegError reports whether err matches spec's EPIPE/EOF/timeout
// recovery policy: the connection is unusable but the exchange itself isn't
// an error worth surfacing.
func isRecoverableLegError(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
