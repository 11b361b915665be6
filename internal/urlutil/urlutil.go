package urlutil

import (
	"errors"
	"net"
	"net/url"
	"path"
	"strings"
)

// ErrInvalidURL is returned when a URL is not an absolute http(s) URL.
var ErrInvalidURL = errors.New("invalid url")

// EnsureScheme prefixes https:// when raw carries no scheme.
func EnsureScheme(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	if strings.Contains(trimmed, "://") {
		return trimmed
	}

	return "https://" + strings.TrimPrefix(trimmed, "//")
}

// ParseAbsolute parses raw and requires an http(s) scheme and a host.
// The result is normalized.
func ParseAbsolute(raw string) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}

	if !isHTTPScheme(strings.ToLower(parsed.Scheme)) || parsed.Hostname() == "" {
		return nil, errors.Join(ErrInvalidURL, errors.New("missing http(s) scheme or host"))
	}

	normalize(parsed)

	return parsed, nil
}

// Resolve resolves href against base and returns a normalized absolute HTTP(S) URL.
func Resolve(base *url.URL, href string) (string, bool) {
	trimmed := strings.TrimSpace(href)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", false
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", false
	}

	if !isSupportedScheme(strings.ToLower(parsed.Scheme)) {
		return "", false
	}

	resolved := resolveReference(base, parsed)
	if !isHTTPScheme(strings.ToLower(resolved.Scheme)) || resolved.Host == "" {
		return "", false
	}

	normalize(resolved)

	return resolved.String(), true
}

// Normalize returns the canonical string form used for deduplication:
// lowercase scheme and host, default port dropped, fragment stripped, root path empty.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	normalize(parsed)

	return parsed.String()
}

func normalize(u *url.URL) {
	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)

	host := strings.ToLower(u.Hostname())
	port := u.Port()

	switch {
	case u.Scheme == "http" && port == "80":
		port = ""
	case u.Scheme == "https" && port == "443":
		port = ""
	}

	if port == "" {
		u.Host = host
	} else {
		u.Host = net.JoinHostPort(host, port)
	}

	if u.Path == "/" {
		u.Path = ""
		u.RawPath = ""
	}

	if u.RawQuery == "" {
		u.ForceQuery = false
	}
}

func isSupportedScheme(scheme string) bool {
	return scheme == "" || isHTTPScheme(scheme)
}

func isHTTPScheme(scheme string) bool {
	return scheme == "http" || scheme == "https"
}

func resolveReference(base *url.URL, parsed *url.URL) *url.URL {
	if parsed.Scheme == "" {
		return base.ResolveReference(parsed)
	}

	return parsed
}

// SameHost reports whether raw points at the same hostname as base.
// Scheme and port are not compared.
func SameHost(base *url.URL, raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}

	if parsed.Hostname() == "" {
		return false
	}

	return strings.EqualFold(parsed.Hostname(), base.Hostname())
}

// Origin returns scheme://host of u with no path.
func Origin(u *url.URL) string {
	return (&url.URL{Scheme: u.Scheme, Host: u.Host}).String()
}

// MatchAny reports whether the path of raw matches any of the glob patterns.
func MatchAny(patterns []string, raw string) bool {
	if len(patterns) == 0 {
		return false
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}

	p := parsed.Path
	if p == "" {
		p = "/"
	}

	for _, pattern := range patterns {
		if matchPattern(pattern, p) {
			return true
		}
	}

	return false
}

// matchPattern supports "/dir/*" prefixes, "*.ext" suffixes and path.Match globs.
func matchPattern(pattern, p string) bool {
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(p, prefix+"/") || p == prefix {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") {
		return strings.HasSuffix(strings.ToLower(p), strings.ToLower(strings.TrimPrefix(pattern, "*")))
	}

	matched, err := path.Match(pattern, p)

	return err == nil && matched
}
