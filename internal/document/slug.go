package document

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug reports whether s is a canonical identity: lowercase letters,
// digits, and single interior hyphens.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// marksRemover strips combining marks after NFKD decomposition, so accented
// characters reduce to their ASCII base where one exists.
var marksRemover = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// DeriveSlug derives a canonical identity from a source file name. The
// extension is dropped, accents are folded away, and any run of characters
// outside [a-z0-9] collapses to a single hyphen. Returns "" when nothing
// usable remains.
func DeriveSlug(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	if folded, _, err := transform.String(marksRemover, base); err == nil {
		base = folded
	}
	base = strings.ToLower(base)

	var b strings.Builder
	b.Grow(len(base))
	pendingHyphen := false
	for _, r := range base {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
