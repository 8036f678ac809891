package wonderfloyd

import (
	"net/url"
	"path"
	"strings"
	"time"
)

// Slugify converts a title to a URL-safe slug: lowercase, every run of
// non-alphanumeric characters collapsed to a single hyphen, no leading or
// trailing hyphens. Deterministic and idempotent on its own output.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// DisplayDate formats a creation time the way post pages show it,
// e.g. "August 28, 2026". Posts store this string, not the timestamp.
func DisplayDate(t time.Time) string {
	return t.Format("January 02, 2006")
}
