package document

import (
	"errors"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/pagepress/internal/frontmatter"
)

// ComputeFingerprint computes the canonical content fingerprint for a source
// document from its parsed frontmatter fields and raw body.
//
// Canonicalization rules:
//   - frontmatter serialized with sorted keys and LF newlines
//   - a single trailing newline trimmed from the serialized YAML
//
// The fingerprint is computed before schema validation so that invalid
// documents still contribute to change detection: fixing a rejected document
// must register as a content change.
func ComputeFingerprint(fields map[string]any, body []byte) (string, error) {
	if fields == nil {
		return "", errors.New("fields map is nil")
	}

	frontmatterForHash := ""
	if len(fields) > 0 {
		serialized, err := frontmatter.SerializeYAML(fields, frontmatter.Style{Newline: "\n"})
		if err != nil {
			return "", err
		}
		frontmatterForHash = trimSingleTrailingNewline(string(serialized))
	}

	return mdfp.CalculateFingerprintFromParts(frontmatterForHash, string(body)), nil
}

func trimSingleTrailingNewline(s string) string {
	return strings.TrimSuffix(s, "\n")
}
