package normalize_test

import (
	"sync"
	"testing"

	"animewatch/internal/normalize"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only punctuation", "---", ""},
		{"hawaii keeps its ii", "Hawaii", "hawaii"},
		{"roman part number", "Jojo Part III", "jojo 3"},
		{"season keyword", "Attack on Titan Season 2", "attack on titan 2"},
		{"short season marker", "My Hero Academia S3", "my hero academia 3"},
		{"ordinal season with tag", "The Title: 2nd Season (TV)", "title 2"},
		{"ampersand", "Romeo & Juliet", "romeo and juliet"},
		{"full width glyphs", "ＦＵＬＬ　ＭＥＴＡＬ", "full metal"},
		{"zero between letters", "Danganr0npa", "danganronpa"},
		{"zero in number kept", "Season 10", "10"},
		{"at sign", "Id@ls", "idals"},
		{"curly apostrophe", "Director’s Cut", "directors cut"},
		{"descriptive parens kept", "Movie (Director's Cut)", "movie directors cut"},
		{"year tag", "Dune (2024)", "dune"},
		{"ova tag", "Hellsing (OVA)", "hellsing"},
		{"oad remapped", "Title OAD", "title ova"},
		{"glued season", "Overlord season4", "overlord 4"},
		{"cour number", "Title cour 2", "title 2"},
		{"series number", "Title Series 3", "title 3"},
		{"dangling keyword dropped", "Second Season", "second"},
		{"roman with trailing punctuation", "Rocky IV:", "rocky 4"},
		{"ordinal the is a stop word", "The 3rd Movie", "3 movie"},
		{"ordinal needs digits", "North Earth", "north earth"},
		{"ligatures", "Encyclopædia Straße", "encyclopaedia strasse"},
		{"em dash", "A—B", "ab"},
		{"episode marker", "Frieren Episode 12", "frieren 12"},
		{"whitespace collapse", "  Sousou   no\tFrieren  ", "sousou no frieren"},
		{"non latin letters preserved", "葬送のフリーレン", "葬送のフリーレン"},
		{"multiplication sign", "Hunter × Hunter", "hunter 10 hunter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalize.Normalize(tt.in); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIsIdempotentOnCanonicalForms(t *testing.T) {
	for _, in := range []string{"sousou no frieren", "attack on titan 2", "jojo 3", "romeo and juliet"} {
		if got := normalize.Normalize(in); got != in {
			t.Fatalf("Normalize(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestNormalizeConcurrentCallers(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := normalize.Normalize("Ｓｏｕｓｏｕ no Frieren Season II"); got != "sousou no frieren 2" {
					t.Errorf("unexpected result %q", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}
