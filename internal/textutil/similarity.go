package textutil

// CosineSimilarity returns the cosine of the angle between a and b, in [0,1].
// Nil or empty fingerprints score 0.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	i, j := 0, 0
	for i < len(a.terms) && j < len(b.terms) {
		switch c := compareTerms(a.terms[i], b.terms[j]); {
		case c < 0:
			i++
		case c > 0:
			j++
		default:
			dot += a.terms[i].weight * b.terms[j].weight
			i++
			j++
		}
	}
	if dot == 0 {
		return 0
	}
	sim := dot / (a.norm * b.norm)
	if sim > 1 {
		sim = 1
	}
	return sim
}
