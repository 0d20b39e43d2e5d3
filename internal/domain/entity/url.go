package entity

import (
	"net/url"
	"strings"
)

// AbsoluteURL reports whether raw is a well-formed http(s) URL with a host
// and returns it trimmed.
func AbsoluteURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, " \t\n") {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Host == "" {
		return "", false
	}
	return raw, true
}

// SiteURL accepts completion output like "example.com" or "<https://example.com>."
// and returns an absolute URL, or false for "none" and anything unusable.
func SiteURL(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "<>\"'`")
	s = strings.TrimRight(s, ".")
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return "", false
	}
	if !strings.Contains(s, "://") {
		if !strings.Contains(s, ".") {
			return "", false
		}
		s = "https://" + s
	}
	return AbsoluteURL(s)
}
