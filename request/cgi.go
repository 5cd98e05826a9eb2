package request

import (
	"fmt"
	"net/url"
	"strings"
)

// fakeParam backs pad_get_params_count / pad_post_params_count:
// random-looking filler pairs injected alongside the real CGI parameters.
func fakeParam() KV {
	return KV{Name: "x" + randomToken(4), Values: []string{randomToken(6)}}
}

func shuffleKVs(vars []KV) []KV {
	out := append([]KV(nil), vars...)
	for i := len(out) - 1; i > 0; i-- {
		j := randN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// encodeParamString builds a name=value&name=value... query/body string
// from ordered KV pairs, optionally percent-encoding each value.
func encodeParamString(vars []KV, encode bool) string {
	var parts []string
	for _, kv := range vars {
		values := kv.Values
		if len(values) == 0 {
			values = []string{""}
		}
		for _, v := range values {
			name, val := kv.Name, v
			if encode {
				name = url.QueryEscape(name)
				val = url.QueryEscape(val)
			}
			parts = append(parts, name+"="+val)
		}
	}
	return strings.Join(parts, "&")
}

// assembleParams applies shuffle then padding-count fake pairs, then
// renders the final wire string, using the same param ordering for GET
// query strings and POST bodies.
func assembleParams(vars []KV, shuffle bool, padCount int, encode bool) string {
	work := vars
	if shuffle {
		work = shuffleKVs(work)
	}
	for i := 0; i < padCount; i++ {
		work = append(work, fakeParam())
	}
	return encodeParamString(work, encode)
}

// buildMultipart renders a multipart/form-data body from parts using a
// random boundary, returning the body and the boundary token for the
// Content-Type header.
func buildMultipart(parts []FormPart) ([]byte, string) {
	boundary := "----gohttp" + strings.ReplaceAll(newUUID(), "-", "")
	var b strings.Builder
	for _, p := range parts {
		b.WriteString("--")
		b.WriteString(boundary)
		b.WriteString("\r\n")
		disposition := fmt.Sprintf(`form-data; name="%s"`, p.Name)
		if p.Filename != "" {
			disposition += fmt.Sprintf(`; filename="%s"`, p.Filename)
		}
		b.WriteString("Content-Disposition: " + disposition + "\r\n")
		if p.ContentType != "" {
			b.WriteString("Content-Type: " + p.ContentType + "\r\n")
		}
		b.WriteString("\r\n")
		b.Write(p.Bytes)
		b.WriteString("\r\n")
	}
	b.WriteString("--" + boundary + "--\r\n")
	return []byte(b.String()), boundary
}
