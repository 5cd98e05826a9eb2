package auth

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/golang-auth/go-gssapi/v3"
)

// SpnFor derives the Service Principal Name a Kerberos/Negotiate leg targets
// for a request to host, following the conventional "HTTP@host" form.
func SpnFor(host string) string {
	return "HTTP@" + host
}

// InitKerberos begins a GSSAPI context against spn using provider, returning
// the Authorization header value "Negotiate base64(token)". The wire scheme
// token is always "Negotiate"; a "Kerberos ..." header is never produced. mutual
// requests mutual authentication, so the server's reply token can be
// verified once the response arrives.
func (s *Session) InitKerberos(provider gssapi.Provider, spn string, mutual bool) (authorizationHeader string, err error) {
	spnName, err := provider.ImportName(spn, gssapi.GSS_NT_HOSTBASED_SERVICE)
	if err != nil {
		return "", fmt.Errorf("kerberos: importing service name %q: %w", spn, err)
	}
	defer spnName.Release()

	flags := gssapi.ContextFlagInteg
	if mutual {
		flags |= gssapi.ContextFlagMutual
	}

	secCtx, err := provider.InitSecContext(spnName, gssapi.WithInitiatorFlags(flags))
	if err != nil {
		return "", fmt.Errorf("kerberos: initializing security context: %w", err)
	}

	token, _, err := secCtx.Continue(nil)
	if err != nil {
		secCtx.Delete() //nolint:errcheck
		return "", fmt.Errorf("kerberos: generating initial token: %w", err)
	}

	s.Scheme = SchemeKerberos
	s.kerberos = &kerberosState{secCtx: secCtx, provider: provider}

	wireScheme := "Negotiate"
	return wireScheme + " " + base64.StdEncoding.EncodeToString(token), nil
}

// VerifyMutualAuth validates the server's reply token against the context
// established by InitKerberos, when mutual authentication was requested.
// It must be called once the non-401 response carrying the server's
// Authorization/WWW-Authenticate token has arrived.
func (s *Session) VerifyMutualAuth(responseAuthzHeader string) error {
	if s.kerberos == nil || s.kerberos.secCtx == nil {
		return fmt.Errorf("kerberos: no context established for this session")
	}

	scheme, token := splitAuthzToken(responseAuthzHeader)
	if !strings.EqualFold(scheme, "Negotiate") || token == "" {
		return fmt.Errorf("kerberos: no response token present, required for mutual authentication")
	}

	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return fmt.Errorf("kerberos: decoding response token: %w", err)
	}

	_, info, err := s.kerberos.secCtx.Continue(raw)
	if err != nil {
		return fmt.Errorf("kerberos: completing context: %w", err)
	}
	if info.Flags&gssapi.ContextFlagMutual == 0 {
		return fmt.Errorf("kerberos: mutual authentication requested but not granted")
	}

	s.kerberos.established = true
	return nil
}

// CloseKerberos releases the underlying security context. Callers must
// invoke this when the connection carrying the session closes.
func (s *Session) CloseKerberos() {
	if s.kerberos != nil && s.kerberos.secCtx != nil {
		_ = s.kerberos.secCtx.Delete()
	}
}

func splitAuthzToken(header string) (scheme, token string) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], parts[1]
}
