// Package textstats derives prose metrics from document bodies: fenced code
// extraction, word counts, and estimated reading time.
package textstats

import (
	"strings"
)

// DefaultWordsPerMinute is the reading speed used when no override is configured.
const DefaultWordsPerMinute = 200

// CodeSpan is one fenced code block found in a body.
type CodeSpan struct {
	Fence      string // opening fence marker, e.g. "```" or "~~~~"
	Info       string // info string after the fence, usually a language name
	Content    string
	Terminated bool
}

// Options tune the analysis.
type Options struct {
	WordsPerMinute int
	CountCodeWords bool // when set, fenced code content counts toward the word count
}

// Stats holds the derived metrics for one body.
type Stats struct {
	WordCount   int
	ReadingTime int // minutes, always >= 1
	CodeSpans   []CodeSpan
}

// Analyze computes word count and reading time for a body. Fenced code is
// extracted first and excluded from the count unless opts.CountCodeWords is
// set. The function is pure: equal input and options yield equal output.
func Analyze(body string, opts Options) Stats {
	prose, spans := ExtractCodeSpans(body)

	words := CountWords(prose)
	if opts.CountCodeWords {
		for _, span := range spans {
			words += CountWords(span.Content)
		}
	}

	return Stats{
		WordCount:   words,
		ReadingTime: ReadingTime(words, opts.WordsPerMinute),
		CodeSpans:   spans,
	}
}

// ReadingTime estimates reading minutes for a word count, rounding up and
// never reporting less than one minute.
func ReadingTime(words, wordsPerMinute int) int {
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// CountWords counts whitespace-separated tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// ExtractCodeSpans splits a body into prose and its fenced code spans.
//
// Fences open on a line starting (after at most three spaces of indentation)
// with a run of at least three backticks or tildes, and close on a line
// carrying a run of the same character at least as long, with nothing else on
// it. An unterminated fence extends to the end of the body; the span is
// returned with Terminated false so callers can surface it.
func ExtractCodeSpans(body string) (prose string, spans []CodeSpan) {
	var proseLines []string
	var codeLines []string
	var open *CodeSpan

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSuffix(line, "\r")

		if open == nil {
			if marker, info, ok := openingFence(trimmed); ok {
				span := CodeSpan{Fence: marker, Info: info}
				open = &span
				codeLines = codeLines[:0]
				continue
			}
			proseLines = append(proseLines, line)
			continue
		}

		if closesFence(trimmed, open.Fence) {
			open.Content = strings.Join(codeLines, "\n")
			open.Terminated = true
			spans = append(spans, *open)
			open = nil
			continue
		}

		codeLines = append(codeLines, line)
	}

	// Unterminated fence swallows the rest of the body.
	if open != nil {
		open.Content = strings.Join(codeLines, "\n")
		spans = append(spans, *open)
	}

	return strings.Join(proseLines, "\n"), spans
}

func openingFence(line string) (marker, info string, ok bool) {
	rest := line
	for indent := 0; indent < 3 && strings.HasPrefix(rest, " "); indent++ {
		rest = rest[1:]
	}
	if rest == "" {
		return "", "", false
	}

	fenceChar := rest[0]
	if fenceChar != '`' && fenceChar != '~' {
		return "", "", false
	}

	run := 0
	for run < len(rest) && rest[run] == fenceChar {
		run++
	}
	if run < 3 {
		return "", "", false
	}

	return rest[:run], strings.TrimSpace(rest[run:]), true
}

func closesFence(line, openMarker string) bool {
	rest := strings.TrimLeft(line, " ")
	if rest == "" {
		return false
	}

	fenceChar := openMarker[0]
	run := 0
	for run < len(rest) && rest[run] == fenceChar {
		run++
	}
	if run < len(openMarker) {
		return false
	}

	return strings.TrimSpace(rest[run:]) == ""
}
