// Package pathkey canonicalizes paths and URLs into the comparison keys
// shared by endpoint and call-site extraction.
package pathkey

import (
	"regexp"
	"strings"
)

var (
	schemeHostRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://[^/]*`)
	interpRe     = regexp.MustCompile(`\$\{[^}]*\}`)
	slashRunRe   = regexp.MustCompile(`/{2,}`)
	paramRe      = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)
	numericRe    = regexp.MustCompile(`^\d+$`)
	uuidRe       = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// Normalize maps a raw path or URL to its canonical comparison key: scheme
// and host stripped, query dropped, and every parameter-like segment
// (${...} interpolations, :name placeholders, numeric and UUID literals)
// folded to the token :param. It is total and idempotent:
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	path := schemeHostRe.ReplaceAllString(raw, "")
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}
	path = interpRe.ReplaceAllString(path, ":param")
	path = slashRunRe.ReplaceAllString(path, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		if strings.HasPrefix(segment, ":") || numericRe.MatchString(segment) || uuidRe.MatchString(segment) {
			segments[i] = ":param"
		}
	}
	return strings.Join(segments, "/")
}

// PathParams returns the named :param tokens of a path, in order.
func PathParams(path string) []string {
	matches := paramRe.FindAllStringSubmatch(path, -1)
	if len(matches) == 0 {
		return nil
	}
	params := make([]string, 0, len(matches))
	for _, match := range matches {
		params = append(params, match[1])
	}
	return params
}

// QueryParams returns the query parameter names of a raw URL, in order.
func QueryParams(raw string) []string {
	idx := strings.IndexByte(raw, '?')
	if idx < 0 || idx == len(raw)-1 {
		return nil
	}
	query := raw[idx+1:]
	if hash := strings.IndexByte(query, '#'); hash >= 0 {
		query = query[:hash]
	}
	var params []string
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		name := pair
		if eq := strings.IndexByte(pair, '='); eq >= 0 {
			name = pair[:eq]
		}
		if name = strings.TrimSpace(name); name != "" {
			params = append(params, name)
		}
	}
	return params
}

// InterpolationParams returns a pseudo-name per ${...} interpolation in a raw
// URL, using the innermost identifier when one is present.
func InterpolationParams(raw string) []string {
	matches := interpRe.FindAllString(raw, -1)
	if len(matches) == 0 {
		return nil
	}
	identRe := regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
	params := make([]string, 0, len(matches))
	for _, match := range matches {
		inner := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		idents := identRe.FindAllString(inner, -1)
		if len(idents) > 0 {
			params = append(params, idents[len(idents)-1])
		} else {
			params = append(params, "param")
		}
	}
	return params
}
