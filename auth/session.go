// Package auth implements the Auth Coordinator: on a 401 it selects a
// challenge scheme (Basic, Digest, NTLM, Negotiate, or Kerberos) and drives
// it to completion. Scheme state lives in a Session bound to one connection
// and cleared on close.
package auth

import (
	"github.com/golang-auth/go-gssapi/v3"
	"github.com/vadimi/go-ntlm/ntlm"
)

// Scheme identifies an authentication mechanism.
type Scheme int

const (
	SchemeNone Scheme = iota
	SchemeBasic
	SchemeDigest
	SchemeNTLM
	SchemeNegotiate
	SchemeKerberos
)

func (s Scheme) String() string {
	switch s {
	case SchemeBasic:
		return "Basic"
	case SchemeDigest:
		return "Digest"
	case SchemeNTLM:
		return "NTLM"
	case SchemeNegotiate:
		return "Negotiate"
	case SchemeKerberos:
		return "Kerberos"
	default:
		return "None"
	}
}

// digestState holds the Digest parameters of the most recent challenge on
// this connection. Each new Digest challenge replaces it, resetting the
// nonce count.
type digestState struct {
	realm     string
	nonce     string
	qop       string
	algorithm string
	opaque    string
	nc        int
}

// ntlmState holds the client-side NTLM/Negotiate exchange in progress on
// this connection.
type ntlmState struct {
	session  ntlm.ClientSession
	provider string // "NTLM" or "Negotiate", the Authorization scheme token used on the wire
}

// kerberosState holds the GSSAPI security context for this connection and
// whether mutual authentication completed on it. No message encryptor,
// sequence numbers or subkey are derived or kept here.
type kerberosState struct {
	secCtx      gssapi.SecContext
	provider    gssapi.Provider
	established bool
}

// Session is bound to one connection, carrying at most one active
// scheme-specific context, cleared atomically on close.
type Session struct {
	Scheme Scheme

	digest   *digestState
	ntlm     *ntlmState
	kerberos *kerberosState
}

// Clear discards all scheme state; called on connection close.
func (s *Session) Clear() {
	s.Scheme = SchemeNone
	s.digest = nil
	s.ntlm = nil
	s.kerberos = nil
}

// HasActiveNTLMOrKerberos reports whether this session already carries an
// NTLM/Negotiate or Kerberos context -- at most one may be active per
// connection at a time.
func (s *Session) HasActiveNTLMOrKerberos() bool {
	return s.ntlm != nil || s.kerberos != nil
}
