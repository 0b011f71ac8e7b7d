// Package corpus builds the ordered, cross-linked view over processed
// documents: the publishable index, prev/next navigation, and the search
// index derived from it.
package corpus

import (
	"errors"
	"fmt"
	"sort"

	"git.home.luguber.info/inful/pagepress/internal/document"
)

// ErrDuplicateIdentity reports two surviving documents sharing an identity.
// This is always fatal: silently dropping either document would make page
// links ambiguous.
var ErrDuplicateIdentity = errors.New("duplicate identity")

// BuildOptions tune corpus membership.
type BuildOptions struct {
	// IncludeDrafts admits draft documents into the corpus (and therefore
	// into navigation). Search visibility is unaffected: drafts never
	// surface in the search index.
	IncludeDrafts bool
}

// Corpus is an immutable ordered snapshot of the publishable documents,
// newest first. It is rebuilt from scratch every run; incremental mutation
// is deliberately not offered.
type Corpus struct {
	docs       []*document.Document
	byIdentity map[string]int
}

// Build filters, deduplicates, and orders processed documents.
//
// Membership: documents marked draft (unless opts.IncludeDrafts) and
// documents without a publication timestamp stay out; they remain renderable
// standalone but take no part in ordering, navigation, or search.
//
// Ordering: publication timestamp descending; ties broken by identity
// ascending, so the order is total and rebuilds are idempotent.
func Build(docs []*document.Document, opts BuildOptions) (*Corpus, error) {
	survivors := make([]*document.Document, 0, len(docs))
	for _, doc := range docs {
		if doc.Meta.Draft && !opts.IncludeDrafts {
			continue
		}
		if !doc.Meta.HasPublishedAt() {
			continue
		}
		survivors = append(survivors, doc)
	}

	// Scan for identity collisions in source order so the error is stable.
	sort.Slice(survivors, func(i, j int) bool {
		return survivors[i].Source < survivors[j].Source
	})
	seen := make(map[string]*document.Document, len(survivors))
	for _, doc := range survivors {
		id := doc.Identity()
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w %q: %s and %s", ErrDuplicateIdentity, id, prev.Source, doc.Source)
		}
		seen[id] = doc
	}

	sort.Slice(survivors, func(i, j int) bool {
		ti, tj := survivors[i].Meta.PublishedAt, survivors[j].Meta.PublishedAt
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return survivors[i].Identity() < survivors[j].Identity()
	})

	byIdentity := make(map[string]int, len(survivors))
	for i, doc := range survivors {
		byIdentity[doc.Identity()] = i
	}

	return &Corpus{docs: survivors, byIdentity: byIdentity}, nil
}

// Len returns the number of corpus documents.
func (c *Corpus) Len() int {
	return len(c.docs)
}

// Documents returns the corpus documents, newest first. The returned slice is
// a copy; the snapshot itself cannot be reordered by callers.
func (c *Corpus) Documents() []*document.Document {
	out := make([]*document.Document, len(c.docs))
	copy(out, c.docs)
	return out
}

// Contains reports whether an identity is part of the corpus.
func (c *Corpus) Contains(identity string) bool {
	_, ok := c.byIdentity[identity]
	return ok
}

// ByIdentity returns the corpus document with the given identity.
func (c *Corpus) ByIdentity(identity string) (*document.Document, bool) {
	i, ok := c.byIdentity[identity]
	if !ok {
		return nil, false
	}
	return c.docs[i], true
}
