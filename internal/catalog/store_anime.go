package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// AllAnime returns the full catalog ordered by ID with synonyms attached.
func (s *Store) AllAnime(ctx context.Context) ([]Anime, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT `+animeColumns+` FROM anime ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query anime: %w", err)
	}
	var (
		list  []Anime
		index = make(map[int64]int)
	)
	for rows.Next() {
		anime, err := scanAnime(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan anime: %w", err)
		}
		index[anime.ID] = len(list)
		list = append(list, *anime)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate anime: %w", err)
	}
	rows.Close()

	synRows, err := s.db.QueryContext(ctx, `SELECT anime_id, synonym FROM anime_synonyms ORDER BY anime_id, position`)
	if err != nil {
		return nil, fmt.Errorf("query synonyms: %w", err)
	}
	defer synRows.Close()
	for synRows.Next() {
		var (
			animeID int64
			synonym string
		)
		if err := synRows.Scan(&animeID, &synonym); err != nil {
			return nil, fmt.Errorf("scan synonym: %w", err)
		}
		if i, ok := index[animeID]; ok {
			list[i].Synonyms = append(list[i].Synonyms, synonym)
		}
	}
	if err := synRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate synonyms: %w", err)
	}
	return list, nil
}

// GetByID fetches an anime by identifier. It returns nil when absent.
func (s *Store) GetByID(ctx context.Context, id int64) (*Anime, error) {
	return s.getOne(ensureContext(ctx), s.db, `SELECT `+animeColumns+` FROM anime WHERE id = ?`, id)
}

// FindByExternalID returns the anime linked to the provider identifier, or nil.
func (s *Store) FindByExternalID(ctx context.Context, provider Provider, value int64) (*Anime, error) {
	column := provider.column()
	if column == "" {
		return nil, &ValidationError{Field: "provider", Reason: fmt.Sprintf("unknown provider %q", provider)}
	}
	if value <= 0 {
		return nil, &ValidationError{Field: column, Reason: "must be positive"}
	}
	return s.getOne(ensureContext(ctx), s.db, `SELECT `+animeColumns+` FROM anime WHERE `+column+` = ?`, value)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) getOne(ctx context.Context, q queryer, query string, args ...any) (*Anime, error) {
	anime, err := scanAnime(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get anime: %w", err)
	}
	synonyms, err := loadSynonyms(ctx, q, anime.ID)
	if err != nil {
		return nil, err
	}
	anime.Synonyms = synonyms
	return anime, nil
}

func loadSynonyms(ctx context.Context, q queryer, animeID int64) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT synonym FROM anime_synonyms WHERE anime_id = ? ORDER BY position`, animeID)
	if err != nil {
		return nil, fmt.Errorf("query synonyms: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var synonym string
		if err := rows.Scan(&synonym); err != nil {
			return nil, fmt.Errorf("scan synonym: %w", err)
		}
		out = append(out, synonym)
	}
	return out, rows.Err()
}

// Insert adds a single anime and returns the stored record.
func (s *Store) Insert(ctx context.Context, anime Anime) (*Anime, error) {
	var id int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = insertAnime(ctx, tx, anime, time.Now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// ImportBatch inserts every record in a single transaction. Either all rows
// land or none do.
func (s *Store) ImportBatch(ctx context.Context, batch []Anime) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for i, anime := range batch {
			if _, err := insertAnime(ctx, tx, anime, now); err != nil {
				return fmt.Errorf("import entry %d (%q): %w", i+1, anime.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(batch), nil
}

func insertAnime(ctx context.Context, tx *sql.Tx, anime Anime, now time.Time) (int64, error) {
	anime = sanitize(anime)
	if err := anime.Validate(); err != nil {
		return 0, err
	}
	if err := checkExternalIDsFree(ctx, tx, 0, anime.ExternalIDs()); err != nil {
		return 0, err
	}
	timestamp := formatTime(now)
	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO anime (
            anilist_id, kitsu_id, mal_id, title, title_english, title_native,
            format, episodes, season_year, status, description, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableID(anime.AniListID),
		nullableID(anime.KitsuID),
		nullableID(anime.MALID),
		anime.Title,
		nullableString(anime.TitleEnglish),
		nullableString(anime.TitleNative),
		nullableString(anime.Format),
		anime.Episodes,
		anime.SeasonYear,
		nullableString(anime.Status),
		nullableString(anime.Description),
		timestamp,
		timestamp,
	)
	if err != nil {
		return 0, fmt.Errorf("insert anime: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	for position, synonym := range anime.Synonyms {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO anime_synonyms (anime_id, position, synonym) VALUES (?, ?, ?)`,
			id, position, synonym,
		); err != nil {
			return 0, fmt.Errorf("insert synonym: %w", err)
		}
	}
	return id, nil
}

// UpsertExternalIDs sets the non-zero identifiers in ids on the anime.
// Zero fields leave the stored value untouched.
func (s *Store) UpsertExternalIDs(ctx context.Context, id int64, ids ExternalIDs) error {
	if ids.IsZero() {
		return &ValidationError{Field: "external ids", Reason: "at least one identifier is required"}
	}
	if ids.AniList < 0 || ids.Kitsu < 0 || ids.MAL < 0 {
		return &ValidationError{Field: "external ids", Reason: "must be positive"}
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM anime WHERE id = ?`, id).Scan(&exists); err != nil {
			return fmt.Errorf("check anime: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("anime %d: %w", id, ErrNotFound)
		}
		if err := checkExternalIDsFree(ctx, tx, id, ids); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE anime
             SET anilist_id = COALESCE(?, anilist_id),
                 kitsu_id = COALESCE(?, kitsu_id),
                 mal_id = COALESCE(?, mal_id),
                 updated_at = ?
             WHERE id = ?`,
			nullableID(ids.AniList),
			nullableID(ids.Kitsu),
			nullableID(ids.MAL),
			formatTime(time.Now()),
			id,
		)
		if err != nil {
			return fmt.Errorf("update external ids: %w", err)
		}
		return nil
	})
}

func checkExternalIDsFree(ctx context.Context, tx *sql.Tx, owner int64, ids ExternalIDs) error {
	checks := []struct {
		provider Provider
		value    int64
	}{
		{ProviderAniList, ids.AniList},
		{ProviderKitsu, ids.Kitsu},
		{ProviderMAL, ids.MAL},
	}
	for _, check := range checks {
		if check.value == 0 {
			continue
		}
		var other int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM anime WHERE `+check.provider.column()+` = ? AND id != ?`,
			check.value, owner,
		).Scan(&other)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return fmt.Errorf("check %s id: %w", check.provider, err)
		}
		return fmt.Errorf("%s id %d held by anime %d: %w", check.provider, check.value, other, ErrDuplicateExternalID)
	}
	return nil
}

// Count returns the number of catalogued anime.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ensureContext(ctx), `SELECT COUNT(1) FROM anime`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count anime: %w", err)
	}
	return count, nil
}

func sanitize(anime Anime) Anime {
	anime.Title = strings.TrimSpace(anime.Title)
	anime.TitleEnglish = strings.TrimSpace(anime.TitleEnglish)
	anime.TitleNative = strings.TrimSpace(anime.TitleNative)
	anime.Format = strings.TrimSpace(anime.Format)
	anime.Status = strings.TrimSpace(anime.Status)
	synonyms := make([]string, 0, len(anime.Synonyms))
	for _, synonym := range anime.Synonyms {
		if trimmed := strings.TrimSpace(synonym); trimmed != "" {
			synonyms = append(synonyms, trimmed)
		}
	}
	anime.Synonyms = synonyms
	return anime
}
