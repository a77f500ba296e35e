package nlp

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const minKeywordLength = 4

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true, "not": true,
	"you": true, "all": true, "can": true, "had": true, "her": true, "was": true,
	"one": true, "our": true, "out": true, "day": true, "get": true, "has": true,
	"him": true, "his": true, "how": true, "man": true, "new": true, "now": true,
	"old": true, "see": true, "two": true, "way": true, "who": true, "its": true,
	"did": true, "yes": true, "may": true, "say": true, "she": true, "use": true,
	"each": true, "which": true, "their": true, "time": true, "will": true,
	"about": true, "after": true, "could": true, "first": true, "have": true,
	"other": true, "many": true, "some": true, "very": true, "what": true,
	"with": true, "would": true, "should": true, "there": true, "this": true,
	"that": true, "from": true, "your": true, "been": true, "were": true,
	"them": true, "then": true, "than": true, "into": true, "just": true,
	"also": true, "when": true, "where": true, "does": true,
}

// ExtractKeywords lower-cases text, splits it on whitespace and keeps tokens
// longer than three runes that are not stop-words. Order follows the input and
// duplicates are kept.
func ExtractKeywords(text string) []string {
	keywords := []string{}
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.TrimFunc(word, isEdgeRune)
		if utf8.RuneCountInString(word) < minKeywordLength {
			continue
		}
		if stopWords[word] {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

func IsStopWord(word string) bool {
	return stopWords[strings.ToLower(word)]
}

func isEdgeRune(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
