package index

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// wordRegex matches alphanumeric runs; everything else is a separator.
var wordRegex = regexp.MustCompile(`[a-zA-Z0-9]+`)

// stopWords are excluded from the posting lists. The list is fixed so
// keyword extraction stays stable across releases; changing it requires a
// full index rebuild.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "her": {}, "was": {}, "one": {},
	"our": {}, "out": {}, "has": {}, "have": {}, "this": {}, "that": {},
	"with": {}, "from": {}, "they": {}, "will": {}, "would": {},
	"there": {}, "their": {}, "what": {}, "which": {}, "when": {},
	"where": {}, "who": {}, "how": {}, "than": {}, "then": {},
	"them": {}, "these": {}, "those": {}, "its": {}, "into": {},
	"been": {}, "were": {}, "also": {}, "more": {}, "some": {},
	"such": {}, "only": {}, "other": {}, "about": {}, "each": {},
	"between": {}, "both": {}, "does": {}, "doing": {}, "should": {},
	"could": {}, "over": {}, "under": {}, "very": {}, "just": {},
}

// ExtractKeywords tokenizes text for the keyword posting lists: lowercase,
// split on non-alphanumeric runs, drop tokens shorter than three runes and
// stopwords. Deterministic and order-preserving; duplicates are removed.
func ExtractKeywords(text string) []string {
	words := wordRegex.FindAllString(text, -1)

	seen := make(map[string]struct{}, len(words))
	keywords := make([]string, 0, len(words))
	for _, w := range words {
		kw := strings.ToLower(w)
		if utf8.RuneCountInString(kw) < 3 {
			continue
		}
		if _, stop := stopWords[kw]; stop {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		keywords = append(keywords, kw)
	}
	return keywords
}
