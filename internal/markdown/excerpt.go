package markdown

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Excerpt reduces rendered HTML to a plain-text summary of at most maxWords
// whitespace-separated words. Script and style subtrees are skipped. When the
// text is truncated, a single ellipsis is appended.
func Excerpt(rendered []byte, maxWords int) string {
	if maxWords <= 0 || len(rendered) == 0 {
		return ""
	}

	doc, err := html.Parse(bytes.NewReader(rendered))
	if err != nil {
		return ""
	}

	var words []string
	truncated := false

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if truncated {
			return
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			for _, word := range strings.Fields(n.Data) {
				if len(words) >= maxWords {
					truncated = true
					return
				}
				words = append(words, word)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	out := strings.Join(words, " ")
	if truncated && out != "" {
		out += "…"
	}
	return out
}
