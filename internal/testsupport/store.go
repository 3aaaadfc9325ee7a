package testsupport

import (
	"context"
	"testing"

	"animewatch/internal/catalog"
	"animewatch/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// InsertAnime stores a single anime and fails the test on error.
func InsertAnime(t testing.TB, store *catalog.Store, anime catalog.Anime) *catalog.Anime {
	t.Helper()

	stored, err := store.Insert(context.Background(), anime)
	if err != nil {
		t.Fatalf("store.Insert(%q): %v", anime.Title, err)
	}
	return stored
}

// SampleCatalog returns a small catalog used across recognition tests.
func SampleCatalog() []catalog.Anime {
	return []catalog.Anime{
		{
			Title:        "Sousou no Frieren",
			TitleEnglish: "Frieren: Beyond Journey's End",
			TitleNative:  "葬送のフリーレン",
			Synonyms:     []string{"Frieren"},
			AniListID:    154587,
			Format:       "TV",
			Episodes:     28,
			SeasonYear:   2023,
		},
		{
			Title:        "Shingeki no Kyojin Season 2",
			TitleEnglish: "Attack on Titan Season 2",
			Synonyms:     []string{"AoT S2"},
			AniListID:    20958,
			Format:       "TV",
			Episodes:     12,
			SeasonYear:   2017,
		},
		{
			Title:        "Boku no Hero Academia 3",
			TitleEnglish: "My Hero Academia Season 3",
			AniListID:    100166,
			Format:       "TV",
			Episodes:     25,
			SeasonYear:   2018,
		},
	}
}

// SeedCatalog imports SampleCatalog into store and returns the stored records.
func SeedCatalog(t testing.TB, store *catalog.Store) []catalog.Anime {
	t.Helper()

	ctx := context.Background()
	if _, err := store.ImportBatch(ctx, SampleCatalog()); err != nil {
		t.Fatalf("store.ImportBatch: %v", err)
	}
	all, err := store.AllAnime(ctx)
	if err != nil {
		t.Fatalf("store.AllAnime: %v", err)
	}
	return all
}
