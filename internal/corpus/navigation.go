package corpus

// NavRef is a weak reference to a neighboring page: identity and display
// title only, never a pointer into the document graph.
type NavRef struct {
	Identity string `json:"identity"`
	Title    string `json:"title"`
}

// Navigation carries the chronological neighbors of one corpus document.
// Previous points toward older content, Next toward newer.
type Navigation struct {
	Previous *NavRef `json:"previous,omitempty"`
	Next     *NavRef `json:"next,omitempty"`
}

// NavigationFor returns the prev/next references for an identity. With the
// corpus ordered newest first, position i+1 holds the older neighbor and
// position i-1 the newer one. The newest document has no next link and the
// oldest no previous link; documents outside the corpus get neither.
func (c *Corpus) NavigationFor(identity string) Navigation {
	i, ok := c.byIdentity[identity]
	if !ok {
		return Navigation{}
	}

	var nav Navigation
	if i+1 < len(c.docs) {
		older := c.docs[i+1]
		nav.Previous = &NavRef{Identity: older.Identity(), Title: older.Meta.Title}
	}
	if i > 0 {
		newer := c.docs[i-1]
		nav.Next = &NavRef{Identity: newer.Identity(), Title: newer.Meta.Title}
	}
	return nav
}
