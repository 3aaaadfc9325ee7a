package tracker

import "testing"

func TestParseEpisode(t *testing.T) {
	tests := []struct {
		title string
		want  int
	}{
		{"Sousou no Frieren - 05", 5},
		{"[SubsPlease] Sousou no Frieren - 12 (1080p)", 12},
		{"Frieren E07", 7},
		{"Frieren Ep. 3", 3},
		{"Frieren Episode 28", 28},
		{"Frieren #4", 4},
		{"Frieren - 05v2", 5},
		{"Frieren S01E05", 5},
		{"Frieren S2E05 [1080p]", 5},
		{"Title - 2024", 0},
		{"Frieren (2023) - 1080p", 0},
		{"Attack on Titan Season 2", 0},
		{"Sousou no Frieren", 0},
		{"Mob Psycho 100", 0},
	}
	for _, tt := range tests {
		if got := ParseEpisode(tt.title); got != tt.want {
			t.Errorf("ParseEpisode(%q) = %d, want %d", tt.title, got, tt.want)
		}
	}
}
