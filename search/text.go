package search

import (
	"strings"
	"unicode/utf8"
)

// Stop words to filter out when checking for verbatim matches
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// normalizeWord lowercases and trims surrounding punctuation.
func normalizeWord(word string) string {
	return strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := normalizeWord(word)
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// containsAllQueryWords checks if all query words (after filtering) appear in the document
func containsAllQueryWords(document, query string) bool {
	queryWords := tokenizeAndFilter(query)
	if len(queryWords) == 0 {
		return false
	}

	docWordSet := make(map[string]bool)
	for _, word := range tokenizeAndFilter(document) {
		docWordSet[word] = true
	}

	for _, qWord := range queryWords {
		if !docWordSet[qWord] {
			return false
		}
	}

	return true
}

// Snippet returns about width runes of text on one line, centred on the
// first significant query word it contains. Without a match the snippet
// starts at the beginning. Elided ends are marked with "...".
func Snippet(text, query string, width int) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || width <= 0 {
		return ""
	}

	wanted := make(map[string]bool)
	for _, w := range tokenizeAndFilter(query) {
		wanted[w] = true
	}
	anchor := 0
	for i, f := range fields {
		if wanted[normalizeWord(f)] {
			anchor = i
			break
		}
	}

	// Grow a window of words around the anchor until it reaches width.
	start, end := anchor, anchor+1
	length := utf8.RuneCountInString(fields[anchor])
	for length < width && (start > 0 || end < len(fields)) {
		if start > 0 {
			start--
			length += utf8.RuneCountInString(fields[start]) + 1
		}
		if length < width && end < len(fields) {
			length += utf8.RuneCountInString(fields[end]) + 1
			end++
		}
	}

	snippet := strings.Join(fields[start:end], " ")
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(fields) {
		snippet += "..."
	}
	return snippet
}
