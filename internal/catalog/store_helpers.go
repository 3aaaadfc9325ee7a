package catalog

import (
	"database/sql"
	"errors"
	"time"
)

// Fixed width so lexical order in SQLite matches chronological order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

const animeColumns = "id, anilist_id, kitsu_id, mal_id, title, title_english, title_native, format, episodes, season_year, status, description, created_at, updated_at"

func scanAnime(scanner interface{ Scan(dest ...any) error }) (*Anime, error) {
	var (
		id           int64
		anilistID    sql.NullInt64
		kitsuID      sql.NullInt64
		malID        sql.NullInt64
		title        string
		titleEnglish sql.NullString
		titleNative  sql.NullString
		format       sql.NullString
		episodes     int
		seasonYear   int
		status       sql.NullString
		description  sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&anilistID,
		&kitsuID,
		&malID,
		&title,
		&titleEnglish,
		&titleNative,
		&format,
		&episodes,
		&seasonYear,
		&status,
		&description,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	anime := &Anime{
		ID:           id,
		AniListID:    anilistID.Int64,
		KitsuID:      kitsuID.Int64,
		MALID:        malID.Int64,
		Title:        title,
		TitleEnglish: titleEnglish.String,
		TitleNative:  titleNative.String,
		Format:       format.String,
		Episodes:     episodes,
		SeasonYear:   seasonYear,
		Status:       status.String,
		Description:  description.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		anime.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		anime.UpdatedAt = updated
	}
	return anime, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableID(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
