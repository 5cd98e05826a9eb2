package auth

import "encoding/base64"

// BasicAuthorizationHeader renders "Basic base64(user:pass)".
func BasicAuthorizationHeader(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}
