package search

import (
	"math"
	"strconv"
	"strings"
)

// Field identifies a searchable text field of a job
type Field string

const (
	FieldTitle       Field = "title"
	FieldCompany     Field = "company"
	FieldSkills      Field = "skills"
	FieldDescription Field = "description"
)

// Weights maps each searchable field to its contribution per matched term.
type Weights map[Field]float64

// DefaultWeights ranks title and company matches above skills, and skills
// above description.
var DefaultWeights = Weights{
	FieldTitle:       1.0,
	FieldCompany:     1.0,
	FieldSkills:      0.5,
	FieldDescription: 0.2,
}

// Document is the searchable text of one job
type Document struct {
	Title       string
	Company     string
	Skills      []string
	Description string
}

// Scorer assigns a relevance score to a document.
//
// Implementations must return 0 for documents that match no term, must never
// lower a score when one more query term matches, must weigh a title or
// company match at least as heavily as a skills or description match of the
// same term, and must not score a rarer term below a more common one.
type Scorer interface {
	Score(doc Document) float64
}

// TermScorer is a Scorer computed in process: per query term it sums the
// weights of the fields the term occurs in, scaled by the term's inverse
// document frequency within the candidate corpus. A field counts once per
// term however often the term repeats in it, so a title or company hit
// (1.0) always outweighs skills plus description (0.7).
type TermScorer struct {
	terms   []string
	weights Weights
	idf     map[string]float64
}

// NewTermScorer builds a scorer for terms over the given corpus. The corpus
// is only used for document frequencies.
func NewTermScorer(terms []string, corpus []Document, weights Weights) *TermScorer {
	if weights == nil {
		weights = DefaultWeights
	}

	df := make(map[string]int, len(terms))
	for _, doc := range corpus {
		tokens := doc.tokens()
		for _, term := range terms {
			if tokens.contains(term) {
				df[term]++
			}
		}
	}

	n := float64(len(corpus))
	idf := make(map[string]float64, len(terms))
	for _, term := range terms {
		if df[term] == 0 {
			idf[term] = 1
			continue
		}
		idf[term] = 1 + math.Log(n/float64(df[term]))
	}

	return &TermScorer{terms: terms, weights: weights, idf: idf}
}

// Score implements Scorer
func (s *TermScorer) Score(doc Document) float64 {
	if len(s.terms) == 0 {
		return 0
	}

	tokens := doc.tokens()
	var score float64
	for _, term := range s.terms {
		var termScore float64
		for field, fieldTokens := range tokens {
			if countMatches(fieldTokens, term) > 0 {
				termScore += s.weights[field]
			}
		}
		score += termScore * s.idf[term]
	}
	return score
}

// Label is a Postgres tsvector weight label
type Label string

// The search_vector column labels title and company A, skills B and
// description C.
const (
	LabelA Label = "a"
	LabelB Label = "b"
	LabelC Label = "c"
)

// LabelWeight pairs a tsvector label with the weight of its fields
type LabelWeight struct {
	Label  Label
	Weight float64
}

// LabelWeights projects field weights onto the tsvector labels, A first
func LabelWeights(w Weights) []LabelWeight {
	if w == nil {
		w = DefaultWeights
	}
	return []LabelWeight{
		{Label: LabelA, Weight: math.Max(w[FieldTitle], w[FieldCompany])},
		{Label: LabelB, Weight: w[FieldSkills]},
		{Label: LabelC, Weight: w[FieldDescription]},
	}
}

// FormatWeight renders a weight as a SQL numeric literal
func FormatWeight(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type fieldTokens map[Field][]string

func (d Document) tokens() fieldTokens {
	return fieldTokens{
		FieldTitle:       tokenize(d.Title),
		FieldCompany:     tokenize(d.Company),
		FieldSkills:      tokenize(strings.Join(d.Skills, " ")),
		FieldDescription: tokenize(d.Description),
	}
}

func (ft fieldTokens) contains(term string) bool {
	for _, tokens := range ft {
		if countMatches(tokens, term) > 0 {
			return true
		}
	}
	return false
}

func countMatches(tokens []string, term string) int {
	n := 0
	for _, t := range tokens {
		if termMatches(t, term) {
			n++
		}
	}
	return n
}
