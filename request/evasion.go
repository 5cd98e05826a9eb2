package request

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/corvid-sec/gohttp/config"
)

var validMethods = []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS", "PATCH", "TRACE", "CONNECT"}

// randN returns a cryptographically random integer in [0, n).
func randN(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// randomToken returns a short random alphanumeric string of length n,
// sourced from a UUID (the pack's idiomatic random-token generator) rather
// than reimplementing a CSPRNG-backed string generator from scratch.
func randomToken(n int) string {
	raw := strings.ReplaceAll(newUUID(), "-", "")
	for len(raw) < n {
		raw += strings.ReplaceAll(newUUID(), "-", "")
	}
	return raw[:n]
}

func mangleMethod(cfg *config.Config, method string) string {
	switch {
	case cfg.GetBool(config.OptMethodRandomInvalid):
		return strings.ToUpper(randomToken(6 + randN(4)))
	case cfg.GetBool(config.OptMethodRandomValid):
		return validMethods[randN(len(validMethods))]
	case cfg.GetBool(config.OptMethodRandomCase):
		return randomizeCase(method)
	default:
		return method
	}
}

func randomizeCase(s string) string {
	b := []byte(s)
	for i, c := range b {
		if randN(2) == 0 {
			if c >= 'a' && c <= 'z' {
				b[i] = c - 32
			} else if c >= 'A' && c <= 'Z' {
				b[i] = c + 32
			}
		}
	}
	return string(b)
}

func mangleVersion(cfg *config.Config, version string) string {
	switch {
	case cfg.GetBool(config.OptVersionRandomInvalid):
		return fmt.Sprintf("%d.%d", 2+randN(7), randN(9))
	case cfg.GetBool(config.OptVersionRandomValid):
		if randN(2) == 0 {
			return "1.0"
		}
		return "1.1"
	default:
		return version
	}
}

// padChars renders count characters of the requested padding style.
// "apache" mimics the historical Apache whitespace-tolerance trick: a
// random mix of spaces and tabs rather than a single repeated rune.
func padChars(padType string, count int) string {
	if count <= 0 {
		return ""
	}
	switch padType {
	case "tab":
		return strings.Repeat("\t", count)
	case "apache":
		var b strings.Builder
		for i := 0; i < count; i++ {
			if randN(2) == 0 {
				b.WriteByte(' ')
			} else {
				b.WriteByte('\t')
			}
		}
		return b.String()
	case "space", "":
		return strings.Repeat(" ", count)
	default:
		return strings.Repeat(" ", count)
	}
}

const hexDigits = "0123456789ABCDEF"

func percentEncodeByte(b byte) string {
	return "%" + string(hexDigits[b>>4]) + string(hexDigits[b&0x0f])
}

// uEncodeByte renders IIS-style %u-encoding for a single byte, widened to
// a 16-bit code unit.
func uEncodeByte(b byte) string {
	return fmt.Sprintf("%%u%04X", b)
}

// applyURIEncoding implements the uri_encode_mode/uri_encode_count family of
// evasion transforms. mode selects the character class and token shape; count
// caps how many eligible characters get transformed (0 or unset = all
// eligible characters in normal modes, a random subset for the *-random
// modes).
func applyURIEncoding(uri, mode string, count int) string {
	if mode == "" {
		return uri
	}
	encodeTok := percentEncodeByte
	all := false
	random := false
	noSlashes := false

	switch mode {
	case "hex-normal":
	case "hex-all":
		all = true
	case "hex-random":
		random = true
	case "hex-noslashes":
		noSlashes = true
	case "u-normal":
		encodeTok = uEncodeByte
	case "u-all":
		encodeTok = uEncodeByte
		all = true
	case "u-random":
		encodeTok = uEncodeByte
		random = true
	default:
		return uri
	}

	eligible := func(i int) bool {
		c := uri[i]
		if noSlashes && c == '/' {
			return false
		}
		if all {
			return true
		}
		// "normal" eligible set: letters/digits stay put, everything else
		// (incl. '/') is fair game for normal-mode encoding.
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			return false
		}
		return true
	}

	var positions []int
	for i := 0; i < len(uri); i++ {
		if eligible(i) {
			positions = append(positions, i)
		}
	}

	encodeSet := map[int]bool{}
	if random {
		n := count
		if n > len(positions) {
			n = len(positions)
		}
		if n <= 0 {
			n = randN(len(positions) + 1)
		}
		perm := append([]int(nil), positions...)
		for i := len(perm) - 1; i > 0; i-- {
			j := randN(i + 1)
			perm[i], perm[j] = perm[j], perm[i]
		}
		for _, p := range perm[:n] {
			encodeSet[p] = true
		}
	} else {
		n := count
		if n <= 0 || n > len(positions) {
			n = len(positions)
		}
		for _, p := range positions[:n] {
			encodeSet[p] = true
		}
	}

	var b strings.Builder
	for i := 0; i < len(uri); i++ {
		if encodeSet[i] {
			b.WriteString(encodeTok(uri[i]))
		} else {
			b.WriteByte(uri[i])
		}
	}
	return b.String()
}

// applyDirTricks injects "/./" and "/real/../" style segments per
// uri_dir_self_reference / uri_dir_fake_relative, and replaces every '/'
// with '\' when uri_use_backslashes is set.
func applyDirTricks(cfg *config.Config, uri string) string {
	if cfg.GetBool(config.OptURIDirSelfReference) {
		uri = "/." + uri
	}
	if cfg.GetBool(config.OptURIDirFakeRelative) {
		uri = "/real/.." + uri
	}
	if cfg.GetBool(config.OptURIUseBackslashes) {
		uri = strings.ReplaceAll(uri, "/", "\\")
	}
	if cfg.GetBool(config.OptURIFakeEnd) {
		uri += "%00"
	}
	if cfg.GetBool(config.OptURIFakeParamsStart) {
		uri += "?foo=bar&"
	}
	return uri
}
