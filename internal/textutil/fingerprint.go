package textutil

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"unicode"
)

type term struct {
	token  string
	weight float64
}

// Fingerprint is a weighted bag of tokens kept sorted by token, so two
// fingerprints can be compared with a single merge pass.
type Fingerprint struct {
	terms []term
	norm  float64
}

// NewFingerprint counts the tokens of text. It returns nil when text has no
// letters or digits.
func NewFingerprint(text string) *Fingerprint {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	slices.Sort(tokens)
	terms := make([]term, 0, len(tokens))
	for _, tok := range tokens {
		if n := len(terms); n > 0 && terms[n-1].token == tok {
			terms[n-1].weight++
			continue
		}
		terms = append(terms, term{token: tok, weight: 1})
	}
	return build(terms)
}

func build(terms []term) *Fingerprint {
	var sum float64
	for _, t := range terms {
		sum += t.weight * t.weight
	}
	return &Fingerprint{terms: terms, norm: math.Sqrt(sum)}
}

// Tokenize splits text into lowercase runs of letters and digits.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// WithIDF scales each term by its IDF weight. Terms missing from idf keep
// their count. An empty idf returns f unchanged.
func (f *Fingerprint) WithIDF(idf map[string]float64) *Fingerprint {
	if f == nil || len(idf) == 0 {
		return f
	}
	terms := make([]term, 0, len(f.terms))
	for _, t := range f.terms {
		if w, ok := idf[t.token]; ok {
			t.weight *= w
		}
		if t.weight != 0 {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return nil
	}
	return build(terms)
}

// Corpus counts in how many fingerprints each token appears.
type Corpus struct {
	docs int
	df   map[string]int
}

func NewCorpus() *Corpus {
	return &Corpus{df: make(map[string]int)}
}

// Add records one document.
func (c *Corpus) Add(fp *Fingerprint) {
	if c == nil || fp == nil {
		return
	}
	c.docs++
	for _, t := range fp.terms {
		c.df[t.token]++
	}
}

func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return c.docs
}

// IDF returns 1 + ln((N+1)/(1+df)) per token. A token found in every
// document still weighs about 1, never 0.
func (c *Corpus) IDF() map[string]float64 {
	if c.Len() == 0 {
		return nil
	}
	n := float64(c.docs)
	idf := make(map[string]float64, len(c.df))
	for tok, df := range c.df {
		idf[tok] = 1 + math.Log((n+1)/(1+float64(df)))
	}
	return idf
}

func compareTerms(a, b term) int { return cmp.Compare(a.token, b.token) }
