package document

// FeatureFlags is the closed set of per-document display and behavior toggles.
// Unknown flag keys are rejected during validation rather than carried along.
type FeatureFlags struct {
	Meta          bool `json:"meta"`
	Comments      bool `json:"comments"`
	CodeHighlight bool `json:"codeHighlight"`
	ShareButtons  bool `json:"shareButtons"`
	Summary       bool `json:"summary"`
	SearchHidden  bool `json:"searchHidden"`
	ReadingTime   bool `json:"readingTime"`
	Breadcrumbs   bool `json:"breadcrumbs"`
	PostNavLinks  bool `json:"postNavLinks"`
	WordCount     bool `json:"wordCount"`
	RSSButton     bool `json:"rssButton"`
}

// DefaultFlags returns the flag defaults: every display toggle on, search
// exclusion off.
func DefaultFlags() FeatureFlags {
	return FeatureFlags{
		Meta:          true,
		Comments:      true,
		CodeHighlight: true,
		ShareButtons:  true,
		Summary:       true,
		SearchHidden:  false,
		ReadingTime:   true,
		Breadcrumbs:   true,
		PostNavLinks:  true,
		WordCount:     true,
		RSSButton:     true,
	}
}

// flagFields maps frontmatter keys to their FeatureFlags destinations. This is
// the single source of truth for which flag keys exist.
var flagFields = map[string]func(*FeatureFlags) *bool{
	"meta":          func(f *FeatureFlags) *bool { return &f.Meta },
	"comments":      func(f *FeatureFlags) *bool { return &f.Comments },
	"codeHighlight": func(f *FeatureFlags) *bool { return &f.CodeHighlight },
	"shareButtons":  func(f *FeatureFlags) *bool { return &f.ShareButtons },
	"summary":       func(f *FeatureFlags) *bool { return &f.Summary },
	"searchHidden":  func(f *FeatureFlags) *bool { return &f.SearchHidden },
	"readingTime":   func(f *FeatureFlags) *bool { return &f.ReadingTime },
	"breadcrumbs":   func(f *FeatureFlags) *bool { return &f.Breadcrumbs },
	"postNavLinks":  func(f *FeatureFlags) *bool { return &f.PostNavLinks },
	"wordCount":     func(f *FeatureFlags) *bool { return &f.WordCount },
	"rssButton":     func(f *FeatureFlags) *bool { return &f.RSSButton },
}
