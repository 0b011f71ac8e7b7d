package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Errors returned for documents that cannot be split into metadata and body.
// All of them unwrap to ErrMalformedDocument so callers can treat the family
// uniformly with errors.Is.
var (
	ErrMalformedDocument       = errors.New("malformed document")
	ErrMissingOpeningDelimiter = fmt.Errorf("%w: document does not start with a frontmatter delimiter", ErrMalformedDocument)
	ErrMissingClosingDelimiter = fmt.Errorf("%w: frontmatter opened but closing delimiter is missing", ErrMalformedDocument)
	ErrNotFlatMapping          = fmt.Errorf("%w: frontmatter is not a flat key/value mapping", ErrMalformedDocument)
)

// Style captures formatting details needed for stable canonicalization.
//
// It intentionally focuses on newline/trailing newline shape and does not
// attempt to preserve original YAML formatting.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// Every document is required to open with a frontmatter block: a missing
// opening delimiter is an error, not a frontmatter-less document. The closing
// delimiter may sit at end of input without a trailing newline.
func Split(content []byte) (frontmatter []byte, body []byte, style Style, err error) {
	style = detectStyle(content)

	nl := style.Newline
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, nil, style, ErrMissingOpeningDelimiter
	}

	frontmatterStart := len(open)
	closeLine := []byte("---" + nl)
	if bytes.HasPrefix(content[frontmatterStart:], closeLine) {
		bodyStart := frontmatterStart + len(closeLine)
		return []byte{}, content[bodyStart:], style, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[frontmatterStart:], closeSeq)
	if idx >= 0 {
		frontmatterEnd := frontmatterStart + idx + len(nl)
		bodyStart := frontmatterStart + idx + len(closeSeq)
		return content[frontmatterStart:frontmatterEnd], content[bodyStart:], style, nil
	}

	// Closing delimiter at end of input, no trailing newline.
	closeEOF := []byte(nl + "---")
	if bytes.HasSuffix(content, closeEOF) {
		frontmatterEnd := len(content) - len(closeEOF) + len(nl)
		return content[frontmatterStart:frontmatterEnd], []byte{}, style, nil
	}

	return nil, nil, style, ErrMissingClosingDelimiter
}

// Parse splits a document and decodes its frontmatter into a flat field map.
//
// The top level of the frontmatter must be a mapping; nested mappings are
// rejected. Scalar values and lists of scalars are allowed.
func Parse(content []byte) (fields map[string]any, body []byte, style Style, err error) {
	raw, body, style, err := Split(content)
	if err != nil {
		return nil, nil, style, err
	}

	fields, err = ParseYAML(raw)
	if err != nil {
		return nil, nil, style, fmt.Errorf("%w: invalid yaml: %w", ErrMalformedDocument, err)
	}

	if err := ensureFlat(fields); err != nil {
		return nil, nil, style, err
	}

	return fields, body, style, nil
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(frontmatter) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func ensureFlat(fields map[string]any) error {
	for key, value := range fields {
		switch v := value.(type) {
		case map[string]any, map[any]any:
			return fmt.Errorf("%w: key %q holds a nested mapping", ErrNotFlatMapping, key)
		case []any:
			for _, item := range v {
				switch item.(type) {
				case map[string]any, map[any]any, []any:
					return fmt.Errorf("%w: key %q holds a nested collection", ErrNotFlatMapping, key)
				}
			}
		}
	}
	return nil
}

func detectStyle(content []byte) Style {
	newline := "\n"
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			newline = "\r\n"
			break
		}
		if content[i] == '\n' {
			newline = "\n"
			break
		}
	}

	hasTrailingNewline := len(content) > 0 && (content[len(content)-1] == '\n')

	return Style{
		Newline:            newline,
		HasTrailingNewline: hasTrailingNewline,
	}
}
