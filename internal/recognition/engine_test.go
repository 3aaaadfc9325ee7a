package recognition

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"animewatch/internal/catalog"
	"animewatch/internal/logging"
)

type stubSource struct {
	anime []catalog.Anime
	err   error
	calls int
}

func (s *stubSource) AllAnime(context.Context) ([]catalog.Anime, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]catalog.Anime, len(s.anime))
	copy(out, s.anime)
	return out, nil
}

func frierenCatalog() *stubSource {
	return &stubSource{anime: []catalog.Anime{
		{ID: 1, Title: "Sousou no Frieren", Synonyms: []string{"Frieren"}},
	}}
}

func newTestEngine(src Source) *Engine {
	return NewEngine(src, logging.NewNop())
}

func TestRecognizeExactThenQueryCache(t *testing.T) {
	engine := newTestEngine(frierenCatalog())
	ctx := context.Background()

	first := engine.Recognize(ctx, "Sousou no Frieren")
	if first.Kind != Matched || first.Anime.ID != 1 || first.Tier != TierExact {
		t.Fatalf("unexpected first result: %+v", first)
	}
	second := engine.Recognize(ctx, "Sousou no Frieren")
	if second.Kind != Matched || second.Anime.ID != 1 {
		t.Fatalf("unexpected second result: %+v", second)
	}
	if second.Tier != TierQueryCache {
		t.Fatalf("expected query cache tier, got %s", second.Tier)
	}

	stats := engine.Stats()
	if stats.HitsExact != 1 || stats.HitsQueryCache != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.EntriesIndexed != 1 || stats.QueryCacheSize != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRecognizeNormalizedTier(t *testing.T) {
	engine := newTestEngine(frierenCatalog())
	result := engine.Recognize(context.Background(), "sousou no frieren")
	if result.Kind != Matched || result.Anime.ID != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Tier != TierNormalized {
		t.Fatalf("expected normalized tier, got %s", result.Tier)
	}
	stats := engine.Stats()
	if stats.HitsExact != 0 || stats.HitsNormalized != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRecognizeSynonymExact(t *testing.T) {
	engine := newTestEngine(frierenCatalog())
	result := engine.Recognize(context.Background(), "Frieren")
	if result.Kind != Matched || result.Tier != TierExact {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestRecognizeUnknownTitleMisses(t *testing.T) {
	engine := newTestEngine(frierenCatalog())
	result := engine.Recognize(context.Background(), "Totally Unknown Anime Title")
	if result.Kind != NoMatch || result.Found() {
		t.Fatalf("expected no match, got %+v", result)
	}
	if stats := engine.Stats(); stats.Misses != 1 {
		t.Fatalf("expected one miss, got %+v", stats)
	}

	again := engine.Recognize(context.Background(), "Totally Unknown Anime Title")
	if again.Kind != NoMatch || again.Tier != TierQueryCache {
		t.Fatalf("expected cached no match, got %+v", again)
	}
	if stats := engine.Stats(); stats.Misses != 1 || stats.HitsQueryCache != 1 {
		t.Fatalf("cached miss should count as a cache hit, got %+v", stats)
	}
}

func TestRecognizeNearMissIsFuzzy(t *testing.T) {
	tests := []string{
		"Sousou no Frieran",
		"Sosou no Frieren",
		"Sousou no Frieren Beyond",
	}
	for _, query := range tests {
		t.Run(query, func(t *testing.T) {
			engine := newTestEngine(frierenCatalog())
			result := engine.Recognize(context.Background(), query)
			switch result.Kind {
			case Matched:
			case Fuzzy:
				if result.Confidence < FuzzyThreshold || result.Confidence > 1 {
					t.Fatalf("confidence %v out of range", result.Confidence)
				}
			default:
				t.Fatalf("expected a match for %q, got %+v", query, result)
			}
			if result.Anime.ID != 1 {
				t.Fatalf("matched wrong anime: %+v", result.Anime)
			}
		})
	}
}

func TestFuzzyPicksClosestCandidate(t *testing.T) {
	src := &stubSource{anime: []catalog.Anime{
		{ID: 1, Title: "Sousou no Frieren"},
		{ID: 2, Title: "Shingeki no Kyojin"},
		{ID: 3, Title: "Boku no Hero Academia"},
	}}
	engine := newTestEngine(src)
	result := engine.Recognize(context.Background(), "Shingeki no Kyojn")
	if result.Kind != Fuzzy || result.Anime.ID != 2 {
		t.Fatalf("expected fuzzy match on id 2, got %+v", result)
	}
	if engine.Stats().HitsFuzzy != 1 {
		t.Fatalf("expected fuzzy hit counted, got %+v", engine.Stats())
	}
}

func TestEmptyQueryTouchesNothing(t *testing.T) {
	src := frierenCatalog()
	engine := newTestEngine(src)
	result := engine.Recognize(context.Background(), "")
	if result.Kind != NoMatch {
		t.Fatalf("expected no match, got %+v", result)
	}
	if src.calls != 0 || engine.Populated() {
		t.Fatal("empty query must not populate the engine")
	}
	if engine.Stats() != (Stats{}) {
		t.Fatalf("expected zero stats, got %+v", engine.Stats())
	}
}

func TestQueryCacheIsBoundedFIFO(t *testing.T) {
	engine := newTestEngine(frierenCatalog())
	ctx := context.Background()

	engine.Recognize(ctx, "Sousou no Frieren")
	for i := 0; i < QueryCacheCapacity-1; i++ {
		engine.Recognize(ctx, fmt.Sprintf("novel query %d", i))
	}
	// A hit must not move the oldest entry to the back.
	if r := engine.Recognize(ctx, "Sousou no Frieren"); r.Tier != TierQueryCache {
		t.Fatalf("expected cache hit, got %s", r.Tier)
	}
	for i := 0; i < 10; i++ {
		engine.Recognize(ctx, fmt.Sprintf("overflow query %d", i))
	}

	if size := engine.Stats().QueryCacheSize; size != QueryCacheCapacity {
		t.Fatalf("expected cache size %d, got %d", QueryCacheCapacity, size)
	}
	if r := engine.Recognize(ctx, "Sousou no Frieren"); r.Tier != TierExact {
		t.Fatalf("oldest entry should have been evicted, got tier %s", r.Tier)
	}
	if _, ok := engine.cache.Peek("novel query 0"); ok {
		t.Fatal("expected early entry to be evicted")
	}
	if _, ok := engine.cache.Peek("overflow query 9"); !ok {
		t.Fatal("expected newest entry to be cached")
	}
}

func TestInvalidateResetsAndRepopulates(t *testing.T) {
	src := frierenCatalog()
	engine := newTestEngine(src)
	ctx := context.Background()

	if r := engine.Recognize(ctx, "Sousou no Frieren"); r.Kind != Matched {
		t.Fatalf("unexpected result: %+v", r)
	}
	if r := engine.Recognize(ctx, "Mushishi"); r.Found() {
		t.Fatalf("Mushishi should not be known yet: %+v", r)
	}

	src.anime = append(src.anime, catalog.Anime{ID: 2, Title: "Mushishi"})
	engine.Invalidate()

	stats := engine.Stats()
	if stats.EntriesIndexed != 0 || stats.HitsExact != 0 || stats.Misses != 0 || stats.QueryCacheSize != 0 {
		t.Fatalf("expected zeroed stats, got %+v", stats)
	}
	if engine.Populated() {
		t.Fatal("expected engine to be unpopulated")
	}

	r := engine.Recognize(ctx, "Mushishi")
	if r.Kind != Matched || r.Anime.ID != 2 {
		t.Fatalf("expected new entry to match after invalidate, got %+v", r)
	}
	if src.calls != 2 {
		t.Fatalf("expected a fresh populate, got %d calls", src.calls)
	}
	if engine.Stats().EntriesIndexed != 2 {
		t.Fatalf("unexpected entries indexed: %+v", engine.Stats())
	}
}

func TestPopulateFailureDegradesAndRetries(t *testing.T) {
	src := frierenCatalog()
	src.err = errors.New("database is locked")
	engine := newTestEngine(src)
	ctx := context.Background()

	if r := engine.Recognize(ctx, "Sousou no Frieren"); r.Kind != NoMatch {
		t.Fatalf("expected no match on populate failure, got %+v", r)
	}
	if engine.Populated() || engine.Stats().QueryCacheSize != 0 {
		t.Fatal("failed populate must leave the engine empty")
	}

	src.err = nil
	if r := engine.Recognize(ctx, "Sousou no Frieren"); r.Kind != Matched {
		t.Fatalf("expected retry to succeed, got %+v", r)
	}
	if src.calls != 2 {
		t.Fatalf("expected two populate attempts, got %d", src.calls)
	}
}

func TestExplicitPopulateError(t *testing.T) {
	engine := newTestEngine(&stubSource{err: errors.New("boom")})
	if err := engine.Populate(context.Background()); err == nil {
		t.Fatal("expected populate error")
	}
	if err := NewEngine(nil, nil).Populate(context.Background()); err == nil {
		t.Fatal("expected error without a source")
	}
}

func TestStaleCachedIDDemotesToNoMatch(t *testing.T) {
	engine := newTestEngine(frierenCatalog())
	ctx := context.Background()
	if r := engine.Recognize(ctx, "Frieren"); r.Kind != Matched {
		t.Fatalf("unexpected result: %+v", r)
	}

	// Simulate the snapshot losing the entry without an invalidate.
	delete(engine.byID, 1)

	r := engine.Recognize(ctx, "Frieren")
	if r.Kind != NoMatch || r.Tier != TierQueryCache {
		t.Fatalf("expected demoted no match, got %+v", r)
	}
}

func TestCollisionFirstWriterWins(t *testing.T) {
	src := &stubSource{anime: []catalog.Anime{
		{ID: 10, Title: "Hunter x Hunter", Format: "TV", SeasonYear: 1999},
		{ID: 11, Title: "Hunter x Hunter", Format: "TV", SeasonYear: 2011, Synonyms: []string{"HxH 2011"}},
	}}
	engine := newTestEngine(src)
	ctx := context.Background()

	if r := engine.Recognize(ctx, "Hunter x Hunter"); r.Anime.ID != 10 {
		t.Fatalf("exact collision should resolve to first entry, got %d", r.Anime.ID)
	}
	if r := engine.Recognize(ctx, "HUNTER X HUNTER"); r.Anime.ID != 10 {
		t.Fatalf("normalized collision should resolve to first entry, got %d", r.Anime.ID)
	}
	if r := engine.Recognize(ctx, "HxH 2011"); r.Anime.ID != 11 {
		t.Fatalf("unique synonym should reach the second entry, got %d", r.Anime.ID)
	}
}

func TestEmptyCatalogMisses(t *testing.T) {
	engine := newTestEngine(&stubSource{})
	r := engine.Recognize(context.Background(), "Anything")
	if r.Kind != NoMatch {
		t.Fatalf("expected no match, got %+v", r)
	}
	if !engine.Populated() || engine.Stats().Misses != 1 {
		t.Fatalf("unexpected engine state: populated=%v stats=%+v", engine.Populated(), engine.Stats())
	}
}

func TestMissTierReflectsStagesRun(t *testing.T) {
	tests := []struct {
		name  string
		src   *stubSource
		query string
		want  Tier
	}{
		{"punctuation only", frierenCatalog(), "---", TierNone},
		{"empty catalog", &stubSource{}, "Anything", TierNone},
		{"fuzzy scan ran", frierenCatalog(), "Totally Unknown Anime Title", TierFuzzy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(tt.src)
			r := engine.Recognize(context.Background(), tt.query)
			if r.Kind != NoMatch || r.Tier != tt.want {
				t.Fatalf("Recognize(%q) = %+v, want no match at tier %s", tt.query, r, tt.want)
			}
		})
	}
}
