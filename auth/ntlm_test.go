package auth

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomWorkstationLength(t *testing.T) {
	for i := 0; i < 50; i++ {
		ws := randomWorkstation()
		assert.GreaterOrEqual(t, len(ws), 6)
		assert.LessOrEqual(t, len(ws), 13)
		for _, r := range ws {
			assert.Contains(t, workstationAlphabet, string(r))
		}
	}
}

func TestNTLMType1MessageStructure(t *testing.T) {
	msg := ntlmType1Message("DOMAIN", "WORKSTN")
	require.True(t, len(msg) >= 40)
	assert.Equal(t, "NTLMSSP\x00", string(msg[:8]))
	assert.Equal(t, byte(1), msg[8]) // message type 1

	domainLen := int(msg[16]) | int(msg[17])<<8
	assert.Equal(t, len("DOMAIN"), domainLen)

	wsLen := int(msg[24]) | int(msg[25])<<8
	assert.Equal(t, len("WORKSTN"), wsLen)

	domainOffset := int(msg[20])
	assert.Equal(t, "DOMAIN", string(msg[domainOffset:domainOffset+domainLen]))
}

func TestNewNTLMType1Header(t *testing.T) {
	h := NewNTLMType1("NTLM", "CORP")
	assert.True(t, strings.HasPrefix(h, "NTLM "))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(h, "NTLM "))
	require.NoError(t, err)
	assert.Equal(t, "NTLMSSP\x00", string(raw[:8]))
}

func TestNewNTLMType1HeaderUsesNegotiateProvider(t *testing.T) {
	h := NewNTLMType1("Negotiate", "CORP")
	assert.True(t, strings.HasPrefix(h, "Negotiate "))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(h, "Negotiate "))
	require.NoError(t, err)
	assert.Equal(t, "NTLMSSP\x00", string(raw[:8]))
}

func TestSchemeForProvider(t *testing.T) {
	assert.Equal(t, SchemeNegotiate, schemeFor("Negotiate"))
	assert.Equal(t, SchemeNTLM, schemeFor("NTLM"))
	assert.Equal(t, SchemeNTLM, schemeFor("ntlm"))
}
