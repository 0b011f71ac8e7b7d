package corpus

import (
	"git.home.luguber.info/inful/pagepress/internal/document"
)

// SearchEntry is one search index record.
type SearchEntry struct {
	Identity string `json:"identity"`
	Title    string `json:"title"`
	Summary  string `json:"summary,omitempty"`
}

// SearchIndex builds the search entries: every corpus document that is not a
// draft and not flagged search-hidden, in corpus order. The summarize
// callback supplies a summary for documents without an explicit description,
// typically an excerpt of the rendered body; it may be nil.
func (c *Corpus) SearchIndex(summarize func(*document.Document) string) []SearchEntry {
	entries := make([]SearchEntry, 0, len(c.docs))
	for _, doc := range c.docs {
		if doc.Meta.Draft || doc.Meta.Flags.SearchHidden {
			continue
		}

		summary := doc.Meta.Description
		if summary == "" && summarize != nil {
			summary = summarize(doc)
		}

		entries = append(entries, SearchEntry{
			Identity: doc.Identity(),
			Title:    doc.Meta.Title,
			Summary:  summary,
		})
	}
	return entries
}
