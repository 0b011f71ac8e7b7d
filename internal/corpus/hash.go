package corpus

import (
	"sort"
	"strings"

	"github.com/inful/mdfp"
)

// ContentHash reduces per-document fingerprints, keyed by source path, to a
// single fingerprint for the whole content set. Every parsed source
// contributes, including documents that later fail validation or stay out of
// the corpus: any edit anywhere must register as a content change.
func ContentHash(fingerprints map[string]string) string {
	if len(fingerprints) == 0 {
		return mdfp.CalculateFingerprintFromParts("", "")
	}

	paths := make([]string, 0, len(fingerprints))
	for path := range fingerprints {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	lines := make([]string, 0, len(paths))
	for _, path := range paths {
		lines = append(lines, path+" "+fingerprints[path])
	}
	return mdfp.CalculateFingerprintFromParts("", strings.Join(lines, "\n"))
}
