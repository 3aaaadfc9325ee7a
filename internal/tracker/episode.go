package tracker

import (
	"regexp"
	"strconv"
)

// Player titles usually end in "- 05", "E05", "S01E05", "Ep. 5" or
// "Episode 5". The dash form is capped at three digits so a trailing year
// is not read as an episode.
var episodePattern = regexp.MustCompile(`(?i)(?:\bepisode\s*|\bep\.?\s*|\bs\d{1,2}e|\be|#)(\d{1,4})(?:v\d)?\b|\s-\s*(\d{1,3})(?:v\d)?\b`)

// ParseEpisode extracts the last episode number from a raw playback title.
// It returns 0 when no episode marker is present.
func ParseEpisode(title string) int {
	matches := episodePattern.FindAllStringSubmatch(title, -1)
	if len(matches) == 0 {
		return 0
	}
	last := matches[len(matches)-1]
	digits := last[1]
	if digits == "" {
		digits = last[2]
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}
