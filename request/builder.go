package request

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/corvid-sec/gohttp/config"
)

// Builder serializes a Spec into wire bytes under a given Config.
type Builder struct{}

// NewBuilder returns a ready-to-use Builder. Builder carries no state of
// its own; every call is independent.
func NewBuilder() *Builder { return &Builder{} }

// Build renders spec under cfg into a wire-format request, applying every
// evasion transform the config enables. It returns the serialized bytes
// and the (possibly normalized) Spec so the auth coordinator can re-run
// the same logical request on subsequent legs.
func (b *Builder) Build(cfg *config.Config, spec *Spec) ([]byte, *Spec, error) {
	if spec.CGI && spec.Query != "" {
		return nil, nil, ErrInconsistent
	}
	if !isASCII(spec.Method) || !isASCII(spec.URI) {
		return nil, nil, ErrEncode
	}

	var out strings.Builder

	method := mangleMethod(cfg, spec.Method)
	uri, body, extraHeaders := b.buildURIAndBody(cfg, spec)
	version := mangleVersion(cfg, spec.version())

	// 1+3: method + request-line padding + URI
	methodURIPad := padChars(cfg.GetString(config.OptPadMethodURIType), cfg.GetInt(config.OptPadMethodURICount))
	uriVersionPad := padChars(cfg.GetString(config.OptPadURIVersionType), cfg.GetInt(config.OptPadURIVersionCount))

	out.WriteString(method)
	if methodURIPad == "" {
		out.WriteByte(' ')
	} else {
		out.WriteString(methodURIPad)
	}
	out.WriteString(uri)
	if uriVersionPad == "" {
		out.WriteByte(' ')
	} else {
		out.WriteString(uriVersionPad)
	}

	// 4: version
	out.WriteString(spec.proto())
	out.WriteByte('/')
	out.WriteString(version)
	out.WriteString("\r\n")

	// 5: headers
	b.writeHeaders(&out, cfg, spec, extraHeaders, len(body))

	out.WriteString("\r\n")

	serialized := []byte(out.String())

	// 6: body (already chunk-framed by buildURIAndBody before the headers
	// were written, so the Transfer-Encoding header above and the framing
	// below agree)
	serialized = append(serialized, body...)

	return serialized, spec, nil
}

// buildURIAndBody resolves the URI string (full-url prefixing, directory
// tricks, percent-encoding, CGI query) and the body bytes (CGI form or
// multipart, optionally chunk-framed), returning any headers the body
// construction implies (Content-Type for CGI, Transfer-Encoding).
func (b *Builder) buildURIAndBody(cfg *config.Config, spec *Spec) (uri string, body []byte, extraHeaders []headerPair) {
	uri = spec.URI

	query := spec.Query
	if spec.CGI {
		padCount := 0
		if cfg.GetBool(config.OptPadGetParams) {
			padCount = cfg.GetInt(config.OptPadGetParamsCount)
		}
		query = assembleParams(spec.VarsGet, cfg.GetBool(config.OptShuffleGetParams), padCount, spec.EncodeParams || spec.Ctype == "")
	}

	uri = applyDirTricks(cfg, uri)
	uri = applyURIEncoding(uri, cfg.GetString(config.OptURIEncodeMode), cfg.GetInt(config.OptURIEncodeCount))

	if query != "" {
		uri += "?" + query
	}

	if cfg.GetBool(config.OptURIFullURL) {
		scheme := spec.Scheme
		if scheme == "" {
			scheme = "http"
		}
		uri = scheme + "://" + spec.Vhost + uri
	}

	if spec.SkipAuthBody {
		return uri, nil, nil
	}

	if spec.CGI {
		switch {
		case len(spec.VarsFormData) > 0:
			mpBody, boundary := buildMultipart(spec.VarsFormData)
			extraHeaders = append(extraHeaders, headerPair{"Content-Type", "multipart/form-data; boundary=" + boundary})
			body = mpBody
		case len(spec.VarsPost) > 0:
			padCount := 0
			if cfg.GetBool(config.OptPadPostParams) {
				padCount = cfg.GetInt(config.OptPadPostParamsCount)
			}
			formBody := assembleParams(spec.VarsPost, cfg.GetBool(config.OptShufflePostParams), padCount, spec.EncodeParams || spec.Ctype == "")
			extraHeaders = append(extraHeaders, headerPair{"Content-Type", spec.ctype()})
			body = []byte(formBody)
		default:
			extraHeaders = append(extraHeaders, headerPair{"Content-Type", spec.ctype()})
		}
	} else {
		body = spec.Data
	}

	if chunkSize := cfg.GetInt(config.OptChunkedSize); chunkSize > 0 && len(body) > 0 {
		body = chunkEncode(body, chunkSize)
		extraHeaders = append(extraHeaders, headerPair{"Transfer-Encoding", "chunked"})
	}

	return uri, body, extraHeaders
}

type headerPair struct {
	Name  string
	Value string
}

// writeHeaders emits, in order: Host, User-Agent, Connection, Cookie,
// Content-Type/Content-Length (as implied by the body stage), caller
// headers, pad_fake_headers_count random headers, then raw_headers
// verbatim. header_folding splits each value across a CRLF+SP
// continuation.
func (b *Builder) writeHeaders(out *strings.Builder, cfg *config.Config, spec *Spec, extraHeaders []headerPair, bodyLen int) {
	folding := cfg.GetBool(config.OptHeaderFolding)
	write := func(name, value string) {
		if folding {
			value = foldValue(value)
		}
		out.WriteString(name)
		out.WriteString(": ")
		out.WriteString(value)
		out.WriteString("\r\n")
	}

	host := spec.Vhost
	if host == "" {
		if v, ok := spec.headerValue("Host"); ok {
			host = v
		}
	}
	if host != "" {
		write("Host", host)
	}

	agent := spec.Agent
	if agent == "" {
		agent = cfg.GetString(config.OptAgent)
	}
	if agent != "" {
		write("User-Agent", agent)
	}

	if spec.Connection != "" {
		write("Connection", spec.Connection)
	}
	if spec.Cookie != "" {
		write("Cookie", spec.Cookie)
	}

	hasTransferEncoding := false
	for _, h := range extraHeaders {
		if strings.EqualFold(h.Name, "Transfer-Encoding") {
			hasTransferEncoding = true
		}
		write(h.Name, h.Value)
	}
	if !hasTransferEncoding {
		write("Content-Length", strconv.Itoa(bodyLen))
	}

	for k, v := range spec.Headers {
		if equalFold(k, "Host") || equalFold(k, "User-Agent") || equalFold(k, "Connection") || equalFold(k, "Cookie") {
			continue
		}
		write(k, v)
	}

	if cfg.GetBool(config.OptPadFakeHeaders) {
		n := cfg.GetInt(config.OptPadFakeHeadersCount)
		for i := 0; i < n; i++ {
			write(fmt.Sprintf("X-%s", randomToken(8)), randomToken(12))
		}
	}

	if spec.RawHeaders != "" {
		out.WriteString(spec.RawHeaders)
	}
}

// foldValue splits value into RFC 2616 header-folding continuation lines:
// CRLF followed by a single space before the remainder. Used purely as an
// evasion transform here (most intermediaries differ on whether they honor
// folding), not as a rendering of genuinely multi-line values.
func foldValue(value string) string {
	if len(value) < 2 {
		return value
	}
	mid := len(value) / 2
	return value[:mid] + "\r\n " + value[mid:]
}

// chunkEncode transfer-encodes body into <hex-size>CRLF<data>CRLF frames of
// at most size bytes each, terminated by a zero-size chunk.
func chunkEncode(body []byte, size int) []byte {
	var out strings.Builder
	for len(body) > 0 {
		n := size
		if n > len(body) {
			n = len(body)
		}
		chunk := body[:n]
		body = body[n:]
		out.WriteString(strconv.FormatInt(int64(len(chunk)), 16))
		out.WriteString("\r\n")
		out.Write(chunk)
		out.WriteString("\r\n")
	}
	out.WriteString("0\r\n\r\n")
	return []byte(out.String())
}
