// Package search matches free-text queries against job text fields and
// scores the matches.
package search

import (
	"strings"
	"unicode"
)

// minPrefixLen is the shortest term that also matches longer tokens by prefix
const minPrefixLen = 3

// Terms splits a free-text query into lower-cased, de-duplicated terms.
// An empty or whitespace-only query yields no terms.
func Terms(q string) []string {
	tokens := tokenize(q)
	if len(tokens) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tokens))
	terms := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}
	return terms
}

// TSQuery renders terms as an OR-of-terms Postgres tsquery, e.g. "python:* | go".
// Terms come from Terms and contain only letters and digits, so the result
// carries no tsquery operators besides the ones added here.
func TSQuery(terms []string) string {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		if !isWord(t) {
			continue
		}
		if len([]rune(t)) >= minPrefixLen {
			t += ":*"
		}
		parts = append(parts, t)
	}
	return strings.Join(parts, " | ")
}

// TermQueries renders each term as its own tsquery, skipping terms TSQuery
// would drop. The result lines up with the scoring of TermScorer.
func TermQueries(terms []string) []string {
	queries := make([]string, 0, len(terms))
	for _, t := range terms {
		if tsq := TSQuery([]string{t}); tsq != "" {
			queries = append(queries, tsq)
		}
	}
	return queries
}

// tokenize lower-cases text and splits it on anything that is not a letter or digit
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// termMatches reports whether a document token satisfies a query term
func termMatches(token, term string) bool {
	if token == term {
		return true
	}
	return len([]rune(term)) >= minPrefixLen && strings.HasPrefix(token, term)
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
