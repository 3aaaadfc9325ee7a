package api

import (
	"time"

	"animewatch/internal/catalog"
	"animewatch/internal/recognition"
	"animewatch/internal/tracker"
)

// FromAnime converts a catalog entry to its API form.
func FromAnime(a catalog.Anime) Anime {
	return Anime{
		ID:           a.ID,
		Title:        a.Title,
		TitleEnglish: a.TitleEnglish,
		TitleNative:  a.TitleNative,
		Synonyms:     append([]string(nil), a.Synonyms...),
		Format:       a.Format,
		Episodes:     a.Episodes,
		SeasonYear:   a.SeasonYear,
		Status:       a.Status,
		AniListID:    a.AniListID,
		KitsuID:      a.KitsuID,
		MALID:        a.MALID,
		CreatedAt:    FormatTime(a.CreatedAt),
	}
}

// FromAnimeList converts a catalog snapshot.
func FromAnimeList(items []catalog.Anime) []Anime {
	out := make([]Anime, 0, len(items))
	for _, item := range items {
		out = append(out, FromAnime(item))
	}
	return out
}

// FromMatch converts a recognition result. Anime is omitted for misses.
func FromMatch(result recognition.MatchResult) Match {
	match := Match{
		Kind:       result.Kind.String(),
		Tier:       result.Tier.String(),
		Confidence: result.Confidence,
	}
	if result.Found() {
		anime := FromAnime(result.Anime)
		match.Anime = &anime
	}
	return match
}

// FromObservation converts a tracker observation.
func FromObservation(obs tracker.Observation) Observation {
	return Observation{
		ID:         obs.ID,
		Query:      obs.Query,
		Episode:    obs.Episode,
		ObservedAt: FormatTime(obs.ObservedAt),
		Recorded:   obs.Recorded,
		Match:      FromMatch(obs.Result),
	}
}

// FromStats converts engine counters.
func FromStats(stats recognition.Stats) Stats {
	return Stats{
		EntriesIndexed: stats.EntriesIndexed,
		HitsQueryCache: stats.HitsQueryCache,
		HitsExact:      stats.HitsExact,
		HitsNormalized: stats.HitsNormalized,
		HitsFuzzy:      stats.HitsFuzzy,
		Misses:         stats.Misses,
		QueryCacheSize: stats.QueryCacheSize,
	}
}

// FromWatchEvents converts watch history rows.
func FromWatchEvents(events []catalog.WatchEvent) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(events))
	for _, event := range events {
		out = append(out, HistoryEntry{
			ID:         event.ID,
			AnimeID:    event.AnimeID,
			AnimeTitle: event.AnimeTitle,
			Query:      event.Query,
			MatchKind:  event.MatchKind,
			Confidence: event.Confidence,
			Episode:    event.Episode,
			ObservedAt: FormatTime(event.ObservedAt),
		})
	}
	return out
}

// ExternalIDs converts the request into catalog identifiers.
func (r ExternalIDsRequest) ExternalIDs() catalog.ExternalIDs {
	return catalog.ExternalIDs{AniList: r.AniList, Kitsu: r.Kitsu, MAL: r.MAL}
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
