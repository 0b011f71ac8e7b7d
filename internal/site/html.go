package site

import (
	"bytes"
	"html/template"

	"git.home.luguber.info/inful/pagepress/internal/page"
)

// The HTML shells are deliberately minimal. The contract surface for theming
// is context.json next to each page; index.html exists so the output tree is
// browsable without any downstream templating.
var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
{{- if .Summary}}
<meta name="description" content="{{.Summary}}">
{{- end}}
</head>
<body>
<article data-identity="{{.Identity}}">
<header>
<h1>{{.Title}}</h1>
{{- if .PublishedAt}}
<time datetime="{{.PublishedAt}}">{{.PublishedAt}}</time>
{{- end}}
{{- if .Tags}}
<ul class="tags">
{{- range .Tags}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- end}}
{{- if .ReadingTime}}
<span class="reading-time">{{.ReadingTime}} min read</span>
{{- end}}
</header>
{{.BodyHTML}}
</article>
{{- with .Navigation}}
<nav class="post-nav">
{{- with .Previous}}
<a rel="prev" href="../{{.Identity}}/">{{.Title}}</a>
{{- end}}
{{- with .Next}}
<a rel="next" href="../{{.Identity}}/">{{.Title}}</a>
{{- end}}
</nav>
{{- end}}
</body>
</html>
`))

var excludedTemplate = template.Must(template.New("excluded").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="robots" content="noindex">
<title>{{if .Title}}{{.Title}}{{else}}{{.Source}}{{end}}</title>
</head>
<body>
<article data-identity="{{.Identity}}" data-excluded="true">
<header>
<h1>{{if .Title}}{{.Title}}{{else}}{{.Source}}{{end}}</h1>
<p class="build-error">{{.Error.Category}}: {{.Error.Message}}</p>
</header>
{{.BodyHTML}}
</article>
</body>
</html>
`))

type pageView struct {
	*page.Context
	BodyHTML template.HTML
}

type excludedView struct {
	*page.ExcludedContext
	BodyHTML template.HTML
}

func renderPageHTML(p *page.Context) ([]byte, error) {
	var buf bytes.Buffer
	// The body is renderer output, not user-controlled raw HTML.
	if err := pageTemplate.Execute(&buf, pageView{Context: p, BodyHTML: template.HTML(p.Body)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderExcludedHTML(p *page.ExcludedContext) ([]byte, error) {
	var buf bytes.Buffer
	if err := excludedTemplate.Execute(&buf, excludedView{ExcludedContext: p, BodyHTML: template.HTML(p.Body)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
