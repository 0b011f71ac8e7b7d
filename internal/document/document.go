// Package document defines the typed document model and the metadata schema
// validation that turns parsed frontmatter into it.
package document

import (
	"time"
)

// Metadata is the validated, typed form of a document's frontmatter.
type Metadata struct {
	Title       string
	Slug        string    // corpus-wide identity
	PublishedAt time.Time // zero means unset
	Draft       bool
	Description string
	Tags        []string
	Flags       FeatureFlags
}

// HasPublishedAt reports whether the document carries a publication timestamp.
func (m Metadata) HasPublishedAt() bool {
	return !m.PublishedAt.IsZero()
}

// Document is one fully processed source document: validated metadata, raw
// body, canonical fingerprint, and the metrics derived from the body.
type Document struct {
	Source      string // path relative to the content root
	Meta        Metadata
	Body        string
	Fingerprint string

	WordCount   int
	ReadingTime int // minutes
}

// Identity returns the document's corpus-wide identity.
func (d *Document) Identity() string {
	return d.Meta.Slug
}

// Clone returns a deep copy. Downstream consumers receive copies so the
// processed document can never be mutated after the pipeline barrier.
func (d *Document) Clone() *Document {
	clone := *d
	if len(d.Meta.Tags) > 0 {
		clone.Meta.Tags = make([]string, len(d.Meta.Tags))
		copy(clone.Meta.Tags, d.Meta.Tags)
	}
	return &clone
}
