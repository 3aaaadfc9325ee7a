package recognition

import "animewatch/internal/catalog"

// Kind discriminates MatchResult variants.
type Kind int

const (
	// NoMatch means no catalog entry was accepted.
	NoMatch Kind = iota
	// Matched is an exact or normalized index hit.
	Matched
	// Fuzzy is a similarity hit at or above FuzzyThreshold.
	Fuzzy
)

func (k Kind) String() string {
	switch k {
	case Matched:
		return "matched"
	case Fuzzy:
		return "fuzzy"
	default:
		return "no_match"
	}
}

// Tier names the lookup stage that produced a result.
type Tier int

const (
	// TierNone is reported when no lookup stage ran.
	TierNone Tier = iota
	// TierQueryCache is a repeat of a previously answered query.
	TierQueryCache
	// TierExact is a verbatim title or synonym hit.
	TierExact
	// TierNormalized is a hit on the normalized title key.
	TierNormalized
	// TierFuzzy is the similarity scan over all entries.
	TierFuzzy
)

func (t Tier) String() string {
	switch t {
	case TierQueryCache:
		return "query_cache"
	case TierExact:
		return "exact"
	case TierNormalized:
		return "normalized"
	case TierFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// MatchResult is the outcome of a recognition. Anime is only meaningful when
// Kind is Matched or Fuzzy. Confidence is 1 for Matched, in [0.6, 1] for
// Fuzzy and 0 for NoMatch.
type MatchResult struct {
	Kind       Kind
	Anime      catalog.Anime
	Confidence float64
	// Tier is the stage that answered this call; a repeated query reports
	// TierQueryCache while Kind mirrors the original outcome.
	Tier Tier
}

// Found reports whether the result references an anime.
func (r MatchResult) Found() bool {
	return r.Kind == Matched || r.Kind == Fuzzy
}

func noMatch(tier Tier) MatchResult {
	return MatchResult{Kind: NoMatch, Tier: tier}
}

// cachedOutcome mirrors MatchResult but stores only the anime identifier.
type cachedOutcome struct {
	kind       Kind
	animeID    int64
	confidence float64
}

func outcomeOf(r MatchResult) cachedOutcome {
	if !r.Found() {
		return cachedOutcome{kind: NoMatch}
	}
	return cachedOutcome{kind: r.Kind, animeID: r.Anime.ID, confidence: r.Confidence}
}

// Stats is a snapshot of the engine counters.
type Stats struct {
	EntriesIndexed int    `json:"entries_indexed"`
	HitsQueryCache uint64 `json:"hits_query_cache"`
	HitsExact      uint64 `json:"hits_exact"`
	HitsNormalized uint64 `json:"hits_normalized"`
	HitsFuzzy      uint64 `json:"hits_fuzzy"`
	Misses         uint64 `json:"misses"`
	QueryCacheSize int    `json:"query_cache_size"`
}

// Lookups returns the total number of recognitions counted in s.
func (s Stats) Lookups() uint64 {
	return s.HitsQueryCache + s.HitsExact + s.HitsNormalized + s.HitsFuzzy + s.Misses
}
