package api

import "animewatch/internal/catalog"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// RecognizeRequest asks the daemon to recognize a playback title.
type RecognizeRequest struct {
	Title string `json:"title"`
}

// Match describes a recognition result in a transport-friendly format.
type Match struct {
	Kind       string  `json:"kind"`
	Tier       string  `json:"tier"`
	Confidence float64 `json:"confidence"`
	Anime      *Anime  `json:"anime,omitempty"`
}

// Observation is a recognized (or unrecognized) playback title.
type Observation struct {
	ID         string `json:"id"`
	Query      string `json:"query"`
	Episode    int    `json:"episode,omitempty"`
	ObservedAt string `json:"observedAt"`
	Recorded   bool   `json:"recorded"`
	Match      Match  `json:"match"`
}

// Anime mirrors a catalog entry.
type Anime struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	TitleEnglish string   `json:"titleEnglish,omitempty"`
	TitleNative  string   `json:"titleNative,omitempty"`
	Synonyms     []string `json:"synonyms,omitempty"`
	Format       string   `json:"format,omitempty"`
	Episodes     int      `json:"episodes,omitempty"`
	SeasonYear   int      `json:"seasonYear,omitempty"`
	Status       string   `json:"status,omitempty"`
	AniListID    int64    `json:"anilistId,omitempty"`
	KitsuID      int64    `json:"kitsuId,omitempty"`
	MALID        int64    `json:"malId,omitempty"`
	CreatedAt    string   `json:"createdAt,omitempty"`
}

// AnimeListResponse wraps the catalog listing.
type AnimeListResponse struct {
	Items []Anime `json:"items"`
}

// ImportRequest carries a batch of catalog entries.
type ImportRequest struct {
	Items []catalog.Anime `json:"items"`
}

// ImportResponse reports how many entries were inserted.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// ExternalIDsRequest links remote service identifiers to an anime.
type ExternalIDsRequest struct {
	AniList int64 `json:"anilistId,omitempty"`
	Kitsu   int64 `json:"kitsuId,omitempty"`
	MAL     int64 `json:"malId,omitempty"`
}

// Stats mirrors the engine counters.
type Stats struct {
	EntriesIndexed int    `json:"entriesIndexed"`
	HitsQueryCache uint64 `json:"hitsQueryCache"`
	HitsExact      uint64 `json:"hitsExact"`
	HitsNormalized uint64 `json:"hitsNormalized"`
	HitsFuzzy      uint64 `json:"hitsFuzzy"`
	Misses         uint64 `json:"misses"`
	QueryCacheSize int    `json:"queryCacheSize"`
}

// DaemonStatus reports daemon runtime information alongside engine stats.
type DaemonStatus struct {
	Running      bool   `json:"running"`
	PID          int    `json:"pid"`
	DatabasePath string `json:"databasePath"`
	LockFilePath string `json:"lockFilePath"`
	StartedAt    string `json:"startedAt,omitempty"`
	Stats        Stats  `json:"stats"`
}

// HistoryEntry is a persisted watch observation.
type HistoryEntry struct {
	ID         string  `json:"id"`
	AnimeID    int64   `json:"animeId"`
	AnimeTitle string  `json:"animeTitle,omitempty"`
	Query      string  `json:"query"`
	MatchKind  string  `json:"matchKind"`
	Confidence float64 `json:"confidence"`
	Episode    int     `json:"episode,omitempty"`
	ObservedAt string  `json:"observedAt"`
}

// HistoryResponse wraps watch history, newest first.
type HistoryResponse struct {
	Items []HistoryEntry `json:"items"`
}

// ErrorResponse is the body returned for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
