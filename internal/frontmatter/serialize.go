package frontmatter

import (
	"bytes"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// SerializeYAML renders a field map as YAML without delimiters, in canonical
// form: keys sorted, two-space indent, timestamps re-anchored to UTC. Equal
// maps always serialize to equal bytes, which is what lets the output feed
// content fingerprinting. Newlines follow style; an empty map yields no
// output.
func SerializeYAML(fields map[string]any, style Style) ([]byte, error) {
	if len(fields) == 0 {
		return []byte{}, nil
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, key := range keys {
		entry, err := encodeEntry(key, canonicalValue(fields[key]))
		if err != nil {
			return nil, err
		}
		buf.Write(entry)
	}

	out := buf.Bytes()
	if nl := style.Newline; nl != "" && nl != "\n" {
		out = bytes.ReplaceAll(out, []byte("\n"), []byte(nl))
	}
	return out, nil
}

// encodeEntry emits one "key: value" line, or a block for list values.
// Encoding entries one at a time sidesteps map iteration order entirely; the
// encoder takes care of quoting keys and scalars that would otherwise
// resolve to another type.
func encodeEntry(key string, value any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any{key: value}); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// canonicalValue rewrites values whose natural encoding is unstable.
// yaml.v3 resolves unquoted timestamps into time.Time carrying the source
// offset; re-anchoring to UTC keeps one instant at one spelling.
func canonicalValue(v any) any {
	switch vv := v.(type) {
	case time.Time:
		return vv.UTC()
	case []any:
		out := make([]any, len(vv))
		for i, item := range vv {
			out[i] = canonicalValue(item)
		}
		return out
	default:
		return v
	}
}
