// Package request builds a serialized HTTP/1.x request byte-string from a
// RequestSpec and a config.Config, applying whichever evasion transforms
// the config enables.
package request

// KV is one CGI form field. Values holds more than one entry when the
// field is a repeated parameter (e.g. "a=1&a=2").
type KV struct {
	Name   string
	Values []string
}

// FormPart is one part of a multipart/form-data body.
type FormPart struct {
	Name        string
	Filename    string
	ContentType string
	Bytes       []byte
}

// Spec is the builder's input: everything needed to serialize one request.
type Spec struct {
	Method     string
	URI        string
	Query      string
	Version    string // default "1.1"
	Proto      string // default "HTTP"
	Vhost      string
	Scheme     string // used only when uri_full_url is set; default "http"
	Agent      string
	Connection string
	Cookie     string
	Headers    map[string]string // case-insensitive on read
	RawHeaders string            // appended verbatim
	Data       []byte

	CGI          bool
	VarsGet      []KV
	VarsPost     []KV
	VarsFormData []FormPart
	Ctype        string // default "application/x-www-form-urlencoded"
	EncodeParams bool   // when false, params are still encoded if Ctype is empty

	// SkipAuthBody, when true, instructs the builder to omit Data/CGI body
	// entirely for this serialization (the auth coordinator's
	// no_body_for_auth deferral legs).
	SkipAuthBody bool
}

// Clone returns a deep-enough copy of s suitable for the auth coordinator
// to re-serialize across legs (headers map and byte slices are copied so
// per-leg mutation, e.g. adding an Authorization header, never leaks back).
func (s *Spec) Clone() *Spec {
	out := *s
	if s.Headers != nil {
		out.Headers = make(map[string]string, len(s.Headers))
		for k, v := range s.Headers {
			out.Headers[k] = v
		}
	}
	if s.Data != nil {
		out.Data = append([]byte(nil), s.Data...)
	}
	out.VarsGet = append([]KV(nil), s.VarsGet...)
	out.VarsPost = append([]KV(nil), s.VarsPost...)
	out.VarsFormData = append([]FormPart(nil), s.VarsFormData...)
	return &out
}

func (s *Spec) version() string {
	if s.Version == "" {
		return "1.1"
	}
	return s.Version
}

func (s *Spec) proto() string {
	if s.Proto == "" {
		return "HTTP"
	}
	return s.Proto
}

func (s *Spec) ctype() string {
	if s.Ctype == "" {
		return "application/x-www-form-urlencoded"
	}
	return s.Ctype
}

// headerValue looks up a spec header case-insensitively.
func (s *Spec) headerValue(name string) (string, bool) {
	for k, v := range s.Headers {
		if equalFold(k, name) {
			return v, true
		}
	}
	return "", false
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
