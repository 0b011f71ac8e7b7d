package document

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Schema violation sentinels. FieldError values unwrap to one of these so
// callers can classify with errors.Is.
var (
	ErrUnknownField         = errors.New("unknown field")
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrMissingRequiredField = errors.New("missing required field")
)

// FieldError describes a single schema violation in a metadata block.
type FieldError struct {
	Field    string
	Kind     error
	Expected string
	Actual   string
}

func (e *FieldError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrUnknownField):
		return fmt.Sprintf("unknown field %q", e.Field)
	case errors.Is(e.Kind, ErrMissingRequiredField):
		return fmt.Sprintf("missing required field %q", e.Field)
	case e.Expected != "" && e.Actual != "":
		return fmt.Sprintf("field %q: expected %s, got %s", e.Field, e.Expected, e.Actual)
	default:
		return fmt.Sprintf("field %q: %v", e.Field, e.Kind)
	}
}

func (e *FieldError) Unwrap() error { return e.Kind }

// Accepted layouts for string-typed date values. Unquoted YAML timestamps
// arrive as time.Time already.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-07:00",
	"2006-01-02",
}

// FromFields validates a parsed frontmatter map against the document schema
// and returns the typed metadata.
//
// Validation is all-or-nothing: any unknown key, mistyped value, or missing
// required field rejects the whole record. All violations are collected and
// joined, in deterministic field order, so one pass reports everything.
// fallbackSlug supplies the identity when no explicit slug is present,
// typically derived from the source file name.
func FromFields(fields map[string]any, fallbackSlug string) (Metadata, error) {
	meta := Metadata{
		Slug:  fallbackSlug,
		Flags: DefaultFlags(),
	}

	var violations []error
	fail := func(e *FieldError) { violations = append(violations, e) }

	if raw, ok := fields["title"]; ok {
		switch v := raw.(type) {
		case string:
			meta.Title = v
			if strings.TrimSpace(v) == "" {
				fail(&FieldError{Field: "title", Kind: ErrMissingRequiredField})
			}
		case nil:
			fail(&FieldError{Field: "title", Kind: ErrMissingRequiredField})
		default:
			fail(&FieldError{Field: "title", Kind: ErrTypeMismatch, Expected: "string", Actual: yamlTypeName(raw)})
		}
	} else {
		fail(&FieldError{Field: "title", Kind: ErrMissingRequiredField})
	}

	if raw, ok := fields["slug"]; ok {
		if s, ok := raw.(string); ok {
			if ValidSlug(s) {
				meta.Slug = s
			} else {
				fail(&FieldError{Field: "slug", Kind: ErrTypeMismatch, Expected: "url-safe slug (lowercase letters, digits, hyphens)", Actual: fmt.Sprintf("%q", s)})
			}
		} else {
			fail(&FieldError{Field: "slug", Kind: ErrTypeMismatch, Expected: "string", Actual: yamlTypeName(raw)})
		}
	}
	if meta.Slug == "" {
		fail(&FieldError{Field: "slug", Kind: ErrMissingRequiredField})
	}

	if raw, ok := fields["date"]; ok {
		switch v := raw.(type) {
		case time.Time:
			meta.PublishedAt = v
		case string:
			parsed, err := parseDate(v)
			if err != nil {
				fail(&FieldError{Field: "date", Kind: ErrTypeMismatch, Expected: "timestamp", Actual: fmt.Sprintf("%q", v)})
			} else {
				meta.PublishedAt = parsed
			}
		default:
			fail(&FieldError{Field: "date", Kind: ErrTypeMismatch, Expected: "timestamp", Actual: yamlTypeName(raw)})
		}
	}

	if raw, ok := fields["draft"]; ok {
		if b, ok := raw.(bool); ok {
			meta.Draft = b
		} else {
			fail(&FieldError{Field: "draft", Kind: ErrTypeMismatch, Expected: "bool", Actual: yamlTypeName(raw)})
		}
	}

	if raw, ok := fields["description"]; ok {
		if s, ok := raw.(string); ok {
			meta.Description = s
		} else {
			fail(&FieldError{Field: "description", Kind: ErrTypeMismatch, Expected: "string", Actual: yamlTypeName(raw)})
		}
	}

	if raw, ok := fields["tags"]; ok {
		tags, err := stringList(raw)
		if err != nil {
			fail(&FieldError{Field: "tags", Kind: ErrTypeMismatch, Expected: "list of strings", Actual: yamlTypeName(raw)})
		} else {
			meta.Tags = tags
		}
	}

	// Flag keys, in sorted order for deterministic reporting.
	flagKeys := make([]string, 0, len(flagFields))
	for key := range flagFields {
		flagKeys = append(flagKeys, key)
	}
	sort.Strings(flagKeys)
	for _, key := range flagKeys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if b, ok := raw.(bool); ok {
			*flagFields[key](&meta.Flags) = b
		} else {
			fail(&FieldError{Field: key, Kind: ErrTypeMismatch, Expected: "bool", Actual: yamlTypeName(raw)})
		}
	}

	// Anything outside the schema fails closed.
	var unknown []string
	for key := range fields {
		if !isKnownField(key) {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		fail(&FieldError{Field: key, Kind: ErrUnknownField})
	}

	if len(violations) > 0 {
		return Metadata{}, errors.Join(violations...)
	}
	return meta, nil
}

// coreFields are the non-flag schema keys.
var coreFields = map[string]struct{}{
	"title":       {},
	"slug":        {},
	"date":        {},
	"draft":       {},
	"description": {},
	"tags":        {},
}

func isKnownField(key string) bool {
	if _, ok := coreFields[key]; ok {
		return true
	}
	_, ok := flagFields[key]
	return ok
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func stringList(raw any) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element is %s", yamlTypeName(item))
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("value is %s", yamlTypeName(raw))
	}
}

// yamlTypeName renders a decoded YAML value's type the way users think of it.
func yamlTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64:
		return "int"
	case float64:
		return "float"
	case time.Time:
		return "timestamp"
	case []any, []string:
		return "list"
	case map[string]any:
		return "mapping"
	default:
		return fmt.Sprintf("%T", v)
	}
}
