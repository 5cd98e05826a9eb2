// Package digest computes RFC 2617 Digest access authentication responses.
// No third-party library in this module's dependency set covers
// nonce/cnonce/qop hashing, so this package is the one deliberate
// stdlib-only leaf in gohttp (see DESIGN.md).
package digest

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// Challenge holds the parsed WWW-Authenticate: Digest parameters.
type Challenge struct {
	Realm     string
	Nonce     string
	QOP       string // "auth", "auth-int", or "" if the server didn't send one
	Algorithm string
	Opaque    string
}

// Params are the inputs needed to compute one Authorization: Digest
// response.
type Params struct {
	Challenge Challenge
	Username  string
	Password  string
	Method    string
	URI       string
	CNonce    string
	NC        string // nonce count, 8-digit hex, e.g. "00000001"
}

func md5hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Response computes the "response" field of an RFC 2617 Digest
// Authorization header.
func Response(p Params) string {
	ha1 := md5hex(fmt.Sprintf("%s:%s:%s", p.Username, p.Challenge.Realm, p.Password))
	ha2 := md5hex(fmt.Sprintf("%s:%s", p.Method, p.URI))

	if p.Challenge.QOP == "" {
		return md5hex(fmt.Sprintf("%s:%s:%s", ha1, p.Challenge.Nonce, ha2))
	}
	return md5hex(fmt.Sprintf("%s:%s:%s:%s:%s:%s",
		ha1, p.Challenge.Nonce, p.NC, p.CNonce, p.Challenge.QOP, ha2))
}

// BuildAuthorizationHeader renders the full Authorization: Digest ...
// header value. When iis is true, the uri= value is always quoted, a
// Microsoft IIS compatibility quirk some Digest clients special-case.
func BuildAuthorizationHeader(p Params, iis bool) string {
	response := Response(p)

	// RFC 2617 requires uri= to be a quoted-string; some non-IIS servers
	// tolerate (or even expect) it bare. iis=true (the default) keeps it
	// quoted; setting it false trades RFC compliance for compatibility with
	// those servers.
	uriField := p.URI
	if iis {
		uriField = `"` + p.URI + `"`
	}

	h := fmt.Sprintf(`Digest username="%s", realm="%s", nonce="%s", uri=%s, response="%s"`,
		p.Username, p.Challenge.Realm, p.Challenge.Nonce, uriField, response)

	if p.Challenge.QOP != "" {
		h += fmt.Sprintf(`, qop=%s, nc=%s, cnonce="%s"`, p.Challenge.QOP, p.NC, p.CNonce)
	}
	if p.Challenge.Algorithm != "" {
		h += fmt.Sprintf(`, algorithm=%s`, p.Challenge.Algorithm)
	}
	if p.Challenge.Opaque != "" {
		h += fmt.Sprintf(`, opaque="%s"`, p.Challenge.Opaque)
	}
	return h
}
