package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/corvid-sec/gohttp/digest"
)

// ParseDigestChallenge locates a "Digest ..." scheme anywhere in a
// WWW-Authenticate header value. Header folding can place the scheme token
// mid-line, so the match is deliberately not anchored to the start of the
// string.
func ParseDigestChallenge(headerValue string) (digest.Challenge, bool) {
	idx := strings.Index(headerValue, "Digest ")
	if idx < 0 {
		return digest.Challenge{}, false
	}
	rest := headerValue[idx+len("Digest "):]

	params := splitChallengeParams(rest)
	ch := digest.Challenge{}
	for name, value := range params {
		switch strings.ToLower(name) {
		case "realm":
			ch.Realm = value
		case "nonce":
			ch.Nonce = value
		case "qop":
			// servers may offer "auth,auth-int"; prefer "auth"
			opts := strings.Split(value, ",")
			ch.QOP = strings.TrimSpace(opts[0])
			for _, o := range opts {
				if strings.TrimSpace(o) == "auth" {
					ch.QOP = "auth"
					break
				}
			}
		case "algorithm":
			ch.Algorithm = value
		case "opaque":
			ch.Opaque = value
		}
	}
	if ch.Realm == "" && ch.Nonce == "" {
		return digest.Challenge{}, false
	}
	return ch, true
}

// splitChallengeParams splits "name=value, name=\"value\", ..." on ", ",
// stripping surrounding quotes from each value.
func splitChallengeParams(s string) map[string]string {
	out := map[string]string{}
	for _, part := range strings.Split(s, ", ") {
		part = strings.TrimSpace(part)
		eq := strings.IndexByte(part, '=')
		if eq < 0 {
			continue
		}
		name := strings.TrimSpace(part[:eq])
		value := strings.TrimSpace(part[eq+1:])
		value = strings.Trim(value, `"`)
		out[name] = value
	}
	return out
}

// digestAuthorizationHeader builds the Authorization: Digest ... value for
// one request, advancing the session's nonce-count and minting a fresh
// cnonce.
func digestAuthorizationHeader(st *digestState, username, password, method, uri string, iis bool) string {
	st.nc++
	p := digest.Params{
		Challenge: digest.Challenge{
			Realm:     st.realm,
			Nonce:     st.nonce,
			QOP:       st.qop,
			Algorithm: st.algorithm,
			Opaque:    st.opaque,
		},
		Username: username,
		Password: password,
		Method:   method,
		URI:      uri,
		CNonce:   randomCnonce(),
		NC:       fmt.Sprintf("%08x", st.nc),
	}
	return digest.BuildAuthorizationHeader(p, iis)
}

func randomCnonce() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is effectively unrecoverable; fall back to a
		// fixed value rather than panic, since a stale cnonce only costs a
		// round of re-auth, not a security property.
		return "0000000000000000"
	}
	return hex.EncodeToString(b)
}
