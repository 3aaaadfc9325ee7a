package recognition

import (
	"github.com/xrash/smetrics"

	"animewatch/internal/textutil"
)

// Points awarded by each measure. A query scored against itself earns the
// full total whenever it has at least one token.
const (
	jaroWinklerPoints = 70.0
	tokenPoints       = 30.0

	jaroWinklerBoost  = 0.7
	jaroWinklerPrefix = 4
)

type candidate struct {
	animeID int64
	keys    []string
	prints  []*textutil.Fingerprint
}

// scorer ranks catalog titles by similarity to a normalized query. The
// token weights come from the catalog itself so filler words shared by many
// titles ("no", "to") count for less than distinctive ones.
type scorer struct {
	candidates []candidate
	corpus     *textutil.Corpus
	idf        map[string]float64
}

func newScorer(capacity int) *scorer {
	return &scorer{
		candidates: make([]candidate, 0, capacity),
		corpus:     textutil.NewCorpus(),
	}
}

func (s *scorer) add(animeID int64, keys []string) {
	c := candidate{animeID: animeID, keys: keys, prints: make([]*textutil.Fingerprint, len(keys))}
	for i, key := range keys {
		fp := textutil.NewFingerprint(key)
		s.corpus.Add(fp)
		c.prints[i] = fp
	}
	s.candidates = append(s.candidates, c)
}

func (s *scorer) finish() {
	s.idf = s.corpus.IDF()
	for _, c := range s.candidates {
		for i, fp := range c.prints {
			c.prints[i] = fp.WithIDF(s.idf)
		}
	}
}

// best returns the highest-scoring anime and its confidence: the raw score
// divided by the score of the query against itself, floored at 1.
func (s *scorer) best(query string) (int64, float64) {
	if s == nil || len(s.candidates) == 0 {
		return 0, 0
	}
	qp := textutil.NewFingerprint(query).WithIDF(s.idf)
	baseline := score(query, qp, query, qp)
	if baseline < 1 {
		baseline = 1
	}

	var (
		bestID    int64
		bestScore = -1.0
	)
	for _, c := range s.candidates {
		perAnime := 0.0
		for i, key := range c.keys {
			if pts := score(query, qp, key, c.prints[i]); pts > perAnime {
				perAnime = pts
			}
		}
		if perAnime > bestScore {
			bestID, bestScore = c.animeID, perAnime
		}
	}
	confidence := bestScore / baseline
	switch {
	case confidence < 0:
		confidence = 0
	case confidence > 1:
		confidence = 1
	}
	return bestID, confidence
}

func score(a string, ap *textutil.Fingerprint, b string, bp *textutil.Fingerprint) float64 {
	jw := smetrics.JaroWinkler(a, b, jaroWinklerBoost, jaroWinklerPrefix)
	return jaroWinklerPoints*jw + tokenPoints*textutil.CosineSimilarity(ap, bp)
}
