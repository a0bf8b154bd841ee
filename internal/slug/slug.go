// Package slug derives and validates URL slugs for fixture records.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	maxSlugLen  = 191
)

// foldAccents decomposes text and drops combining marks, so "Café" becomes
// "Cafe". Chains are stateful, so each call builds its own.
func foldAccents() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Normalize derives a slug from a display name
// Rules:
// - Accents are folded and everything is lower-cased
// - Spaces, underscores and dots become hyphens
// - Anything outside [a-z0-9-] is dropped
// - Runs of hyphens collapse, leading/trailing hyphens are trimmed
// - Max length: 191 bytes (the indexed column width)
func Normalize(s string) (string, error) {
	folded, _, err := transform.String(foldAccents(), s)
	if err != nil {
		return "", fmt.Errorf("failed to fold %q: %w", s, err)
	}
	s = strings.ToLower(strings.TrimSpace(folded))

	var b strings.Builder
	lastHyphen := true
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '_' || r == '.' || r == '-':
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	s = strings.TrimRight(b.String(), "-")

	if s == "" {
		return "", fmt.Errorf("slug cannot be empty")
	}
	if len(s) > maxSlugLen {
		s = strings.TrimRight(s[:maxSlugLen], "-")
	}
	return s, nil
}

// Validate checks that s is already a canonical slug
func Validate(s string) error {
	if s == "" {
		return fmt.Errorf("slug cannot be empty")
	}
	if len(s) > maxSlugLen {
		return fmt.Errorf("slug exceeds maximum length of %d bytes", maxSlugLen)
	}
	if !slugPattern.MatchString(s) {
		return fmt.Errorf("invalid slug %q: must be lowercase [a-z0-9] words joined by single hyphens", s)
	}
	return nil
}
