package utils

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Slugify converts a title into a URL/directory-safe slug: lowercased,
// runs of non-alphanumerics collapsed to single hyphens.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// RandomSlugSuffix returns a short random suffix used to disambiguate
// colliding photo slugs.
func RandomSlugSuffix() string {
	id := uuid.NewString()
	return id[:5]
}
