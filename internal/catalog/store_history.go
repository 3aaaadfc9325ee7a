package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// RecordWatch appends a watch event.
func (s *Store) RecordWatch(ctx context.Context, event WatchEvent) error {
	if strings.TrimSpace(event.ID) == "" {
		return errors.New("watch event id is required")
	}
	if event.AnimeID <= 0 {
		return &ValidationError{Field: "anime_id", Reason: "must be positive"}
	}
	if event.ObservedAt.IsZero() {
		event.ObservedAt = time.Now()
	}
	ctx = ensureContext(ctx)
	err := retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO watch_history (id, anime_id, query, match_kind, confidence, episode, observed_at)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			event.ID,
			event.AnimeID,
			event.Query,
			event.MatchKind,
			event.Confidence,
			event.Episode,
			formatTime(event.ObservedAt),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("record watch: %w", err)
	}
	return nil
}

// History returns the most recent watch events, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]WatchEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT h.id, h.anime_id, a.title, h.query, h.match_kind, h.confidence, h.episode, h.observed_at
         FROM watch_history h JOIN anime a ON a.id = h.anime_id
         ORDER BY h.observed_at DESC, h.rowid DESC
         LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var events []WatchEvent
	for rows.Next() {
		var (
			event       WatchEvent
			observedRaw string
		)
		if err := rows.Scan(
			&event.ID,
			&event.AnimeID,
			&event.AnimeTitle,
			&event.Query,
			&event.MatchKind,
			&event.Confidence,
			&event.Episode,
			&observedRaw,
		); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if observed, err := parseTimeString(observedRaw); err == nil {
			event.ObservedAt = observed
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return events, nil
}
