package catalog_test

import (
	"path/filepath"
	"testing"

	"animewatch/internal/catalog"
	"animewatch/internal/testsupport"
)

func TestParseImportFileFormats(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "catalog.toml",
			content: `
[[anime]]
title = "Sousou no Frieren"
synonyms = ["Frieren"]
anilist_id = 154587

[[anime]]
title = "Mushishi"
`,
		},
		{
			name: "yaml",
			file: "catalog.yaml",
			content: `
anime:
  - title: Sousou no Frieren
    synonyms: [Frieren]
    anilist_id: 154587
  - title: Mushishi
`,
		},
		{
			name:    "json object",
			file:    "catalog.json",
			content: `{"anime":[{"title":"Sousou no Frieren","synonyms":["Frieren"],"anilist_id":154587},{"title":"Mushishi"}]}`,
		},
		{
			name:    "json array",
			file:    "array.json",
			content: `[{"title":"Sousou no Frieren","synonyms":["Frieren"],"anilist_id":154587},{"title":"Mushishi"}]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testsupport.WriteFile(t, filepath.Join(dir, tt.file), tt.content)
			entries, err := catalog.ParseImportFile(path)
			if err != nil {
				t.Fatalf("ParseImportFile: %v", err)
			}
			if len(entries) != 2 {
				t.Fatalf("expected 2 entries, got %d", len(entries))
			}
			if entries[0].Title != "Sousou no Frieren" || entries[0].AniListID != 154587 {
				t.Fatalf("unexpected first entry: %+v", entries[0])
			}
			if len(entries[0].Synonyms) != 1 || entries[0].Synonyms[0] != "Frieren" {
				t.Fatalf("unexpected synonyms: %v", entries[0].Synonyms)
			}
		})
	}
}

func TestParseImportRejects(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data string
	}{
		{"unknown toml key", ".toml", "[[anime]]\ntitle = \"x\"\nrating = 9\n"},
		{"missing title", ".yaml", "anime:\n  - synonyms: [x]\n"},
		{"unsupported extension", ".csv", "title\nx\n"},
		{"broken json", ".json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := catalog.ParseImport(tt.ext, []byte(tt.data)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestImportFileIntoStore(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	path := testsupport.WriteFile(t, filepath.Join(t.TempDir(), "c.yml"), "anime:\n  - title: Cowboy Bebop\n    mal_id: 1\n")
	entries, err := catalog.ParseImportFile(path)
	if err != nil {
		t.Fatalf("ParseImportFile: %v", err)
	}
	n, err := store.ImportBatch(t.Context(), entries)
	if err != nil || n != 1 {
		t.Fatalf("ImportBatch = %d, %v", n, err)
	}
	found, err := store.FindByExternalID(t.Context(), catalog.ProviderMAL, 1)
	if err != nil || found == nil || found.Title != "Cowboy Bebop" {
		t.Fatalf("FindByExternalID = %#v, %v", found, err)
	}
}
