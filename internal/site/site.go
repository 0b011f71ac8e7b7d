// Package site writes the assembled build output to disk. All writes go
// through a sibling staging directory that is atomically promoted, so a
// failed or interrupted build never leaves a half-written output tree behind.
package site

import (
	"time"

	"git.home.luguber.info/inful/pagepress/internal/corpus"
	"git.home.luguber.info/inful/pagepress/internal/page"
)

// Meta is the site-level metadata published at the output root as site.json.
type Meta struct {
	Title       string    `json:"title,omitempty"`
	BaseURL     string    `json:"baseUrl,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
	BuildID     string    `json:"buildId"`
}

// Site is the complete output of one build.
type Site struct {
	Meta     Meta
	Pages    []page.Context
	Excluded []page.ExcludedContext
	Search   []corpus.SearchEntry
}
