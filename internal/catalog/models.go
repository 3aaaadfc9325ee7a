package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Anime is a catalogued series or film.
type Anime struct {
	ID           int64     `json:"id" toml:"-" yaml:"-"`
	AniListID    int64     `json:"anilist_id,omitempty" toml:"anilist_id" yaml:"anilist_id"`
	KitsuID      int64     `json:"kitsu_id,omitempty" toml:"kitsu_id" yaml:"kitsu_id"`
	MALID        int64     `json:"mal_id,omitempty" toml:"mal_id" yaml:"mal_id"`
	Title        string    `json:"title" toml:"title" yaml:"title"`
	TitleEnglish string    `json:"title_english,omitempty" toml:"title_english" yaml:"title_english"`
	TitleNative  string    `json:"title_native,omitempty" toml:"title_native" yaml:"title_native"`
	Synonyms     []string  `json:"synonyms,omitempty" toml:"synonyms" yaml:"synonyms"`
	Format       string    `json:"format,omitempty" toml:"format" yaml:"format"`
	Episodes     int       `json:"episodes,omitempty" toml:"episodes" yaml:"episodes"`
	SeasonYear   int       `json:"season_year,omitempty" toml:"season_year" yaml:"season_year"`
	Status       string    `json:"status,omitempty" toml:"status" yaml:"status"`
	Description  string    `json:"description,omitempty" toml:"description" yaml:"description"`
	CreatedAt    time.Time `json:"created_at" toml:"-" yaml:"-"`
	UpdatedAt    time.Time `json:"updated_at" toml:"-" yaml:"-"`
}

// Titles returns every non-empty title field followed by the synonyms, in
// catalog order. Recognition indexes and fuzzy scans both use this set.
func (a Anime) Titles() []string {
	titles := make([]string, 0, 3+len(a.Synonyms))
	for _, title := range []string{a.Title, a.TitleEnglish, a.TitleNative} {
		if strings.TrimSpace(title) != "" {
			titles = append(titles, title)
		}
	}
	for _, synonym := range a.Synonyms {
		if strings.TrimSpace(synonym) != "" {
			titles = append(titles, synonym)
		}
	}
	return titles
}

// DisplayTitle prefers the English title when present.
func (a Anime) DisplayTitle() string {
	if strings.TrimSpace(a.TitleEnglish) != "" {
		return a.TitleEnglish
	}
	return a.Title
}

// ExternalIDs returns the cross-service identifiers carried by the record.
func (a Anime) ExternalIDs() ExternalIDs {
	return ExternalIDs{AniList: a.AniListID, Kitsu: a.KitsuID, MAL: a.MALID}
}

// Validate checks the fields the store requires.
func (a Anime) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if a.Episodes < 0 {
		return &ValidationError{Field: "episodes", Reason: "must be >= 0"}
	}
	if a.AniListID < 0 || a.KitsuID < 0 || a.MALID < 0 {
		return &ValidationError{Field: "external ids", Reason: "must be positive"}
	}
	return nil
}

// ExternalIDs groups the identifiers used by remote tracking services.
// Zero means unset.
type ExternalIDs struct {
	AniList int64 `json:"anilist_id,omitempty"`
	Kitsu   int64 `json:"kitsu_id,omitempty"`
	MAL     int64 `json:"mal_id,omitempty"`
}

// IsZero reports whether no identifier is set.
func (e ExternalIDs) IsZero() bool {
	return e.AniList == 0 && e.Kitsu == 0 && e.MAL == 0
}

// Provider names a remote tracking service.
type Provider string

const (
	ProviderAniList Provider = "anilist"
	ProviderKitsu   Provider = "kitsu"
	ProviderMAL     Provider = "mal"
)

// ParseProvider converts user input into a Provider.
func ParseProvider(value string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(value))) {
	case ProviderAniList:
		return ProviderAniList, nil
	case ProviderKitsu:
		return ProviderKitsu, nil
	case ProviderMAL, "myanimelist":
		return ProviderMAL, nil
	default:
		return "", &ValidationError{Field: "provider", Reason: fmt.Sprintf("unknown provider %q", value)}
	}
}

func (p Provider) column() string {
	switch p {
	case ProviderAniList:
		return "anilist_id"
	case ProviderKitsu:
		return "kitsu_id"
	case ProviderMAL:
		return "mal_id"
	default:
		return ""
	}
}

// WatchEvent is a recognized playback observation persisted to history.
type WatchEvent struct {
	ID         string    `json:"id"`
	AnimeID    int64     `json:"anime_id"`
	AnimeTitle string    `json:"anime_title,omitempty"`
	Query      string    `json:"query"`
	MatchKind  string    `json:"match_kind"`
	Confidence float64   `json:"confidence"`
	Episode    int       `json:"episode,omitempty"`
	ObservedAt time.Time `json:"observed_at"`
}
