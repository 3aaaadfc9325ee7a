package recognition

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"animewatch/internal/catalog"
	"animewatch/internal/logging"
	"animewatch/internal/normalize"
)

const (
	// QueryCacheCapacity bounds the recent-query cache.
	QueryCacheCapacity = 64
	// FuzzyThreshold is the lowest confidence reported as a Fuzzy match.
	FuzzyThreshold = 0.6
)

// Source supplies the full, ordered catalog snapshot.
type Source interface {
	AllAnime(ctx context.Context) ([]catalog.Anime, error)
}

// Engine answers which catalogued anime a raw title refers to.
type Engine struct {
	source Source
	logger *slog.Logger

	entries    []catalog.Anime
	byID       map[int64]int
	exact      map[string]int64
	normalized map[string]int64
	scorer     *scorer
	// cache is read with Peek only, so insertion order is never disturbed
	// and eviction is strictly oldest first.
	cache     *simplelru.LRU[string, cachedOutcome]
	populated bool
	stats     Stats
}

// NewEngine returns an unpopulated engine reading from source.
func NewEngine(source Source, logger *slog.Logger) *Engine {
	cache, err := simplelru.NewLRU[string, cachedOutcome](QueryCacheCapacity, nil)
	if err != nil {
		panic(fmt.Sprintf("recognition: query cache: %v", err))
	}
	return &Engine{
		source: source,
		logger: logging.NewComponentLogger(logger, "recognition"),
		cache:  cache,
	}
}

// Populated reports whether the indices reflect a loaded snapshot.
func (e *Engine) Populated() bool {
	return e.populated
}

// Populate loads the catalog and rebuilds both indices. On failure the
// engine is left unpopulated and the error is returned.
func (e *Engine) Populate(ctx context.Context) error {
	e.clear()
	if e.source == nil {
		return fmt.Errorf("populate: no catalog source")
	}
	snapshot, err := e.source.AllAnime(ctx)
	if err != nil {
		return fmt.Errorf("populate: %w", err)
	}

	e.entries = snapshot
	e.byID = make(map[int64]int, len(snapshot))
	e.exact = make(map[string]int64, len(snapshot)*3)
	e.normalized = make(map[string]int64, len(snapshot)*3)
	e.scorer = newScorer(len(snapshot))

	for i, anime := range snapshot {
		if _, dup := e.byID[anime.ID]; !dup {
			e.byID[anime.ID] = i
		}
		var keys []string
		for _, title := range anime.Titles() {
			if _, taken := e.exact[title]; !taken {
				e.exact[title] = anime.ID
			}
			key := normalize.Normalize(title)
			if key == "" {
				continue
			}
			keys = append(keys, key)
			if _, taken := e.normalized[key]; !taken {
				e.normalized[key] = anime.ID
			}
		}
		e.scorer.add(anime.ID, keys)
	}
	e.scorer.finish()

	e.populated = true
	e.stats.EntriesIndexed = len(snapshot)
	e.stats.QueryCacheSize = 0
	e.logger.Debug("catalog indexed",
		logging.Int("entries", len(snapshot)),
		logging.Int("exact_keys", len(e.exact)),
		logging.Int("normalized_keys", len(e.normalized)),
	)
	return nil
}

// Invalidate discards the snapshot, indices, cache and statistics.
func (e *Engine) Invalidate() {
	e.clear()
	e.stats = Stats{}
}

func (e *Engine) clear() {
	e.entries = nil
	e.byID = nil
	e.exact = nil
	e.normalized = nil
	e.scorer = nil
	e.cache.Purge()
	e.populated = false
	e.stats.EntriesIndexed = 0
	e.stats.QueryCacheSize = 0
}

// Stats returns a copy of the running counters.
func (e *Engine) Stats() Stats {
	s := e.stats
	s.QueryCacheSize = e.cache.Len()
	return s
}

// Recognize resolves query against the catalog. It never returns an error:
// catalog read failures are logged and reported as NoMatch for this call.
func (e *Engine) Recognize(ctx context.Context, query string) MatchResult {
	if query == "" {
		return noMatch(TierNone)
	}
	if !e.populated {
		if err := e.Populate(ctx); err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, e.logger), "catalog populate failed", "catalog_populate_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the catalog database is readable"),
				logging.String(logging.FieldImpact, "title reported as no match; next recognition retries"),
			)
			return noMatch(TierNone)
		}
	}

	if outcome, ok := e.cache.Peek(query); ok {
		e.stats.HitsQueryCache++
		return e.resolve(outcome, TierQueryCache)
	}

	if id, ok := e.exact[query]; ok {
		if anime, ok := e.lookup(id); ok {
			e.stats.HitsExact++
			return e.remember(query, MatchResult{Kind: Matched, Anime: anime, Confidence: 1, Tier: TierExact})
		}
	}

	key := normalize.Normalize(query)
	if id, ok := e.normalized[key]; ok && key != "" {
		if anime, ok := e.lookup(id); ok {
			e.stats.HitsNormalized++
			return e.remember(query, MatchResult{Kind: Matched, Anime: anime, Confidence: 1, Tier: TierNormalized})
		}
	}

	// A miss is attributed to the fuzzy tier only when the scan actually ran.
	missTier := TierNone
	if len(e.entries) > 0 && key != "" {
		missTier = TierFuzzy
		if id, confidence := e.scorer.best(key); confidence >= FuzzyThreshold {
			if anime, ok := e.lookup(id); ok {
				e.stats.HitsFuzzy++
				return e.remember(query, MatchResult{Kind: Fuzzy, Anime: anime, Confidence: confidence, Tier: TierFuzzy})
			}
		}
	}

	e.stats.Misses++
	return e.remember(query, noMatch(missTier))
}

func (e *Engine) remember(query string, result MatchResult) MatchResult {
	e.cache.Add(query, outcomeOf(result))
	return result
}

func (e *Engine) resolve(outcome cachedOutcome, tier Tier) MatchResult {
	if outcome.kind == NoMatch {
		return noMatch(tier)
	}
	anime, ok := e.lookup(outcome.animeID)
	if !ok {
		return noMatch(tier)
	}
	return MatchResult{Kind: outcome.kind, Anime: anime, Confidence: outcome.confidence, Tier: tier}
}

func (e *Engine) lookup(id int64) (catalog.Anime, bool) {
	i, ok := e.byID[id]
	if !ok || i >= len(e.entries) {
		return catalog.Anime{}, false
	}
	return e.entries[i], true
}
