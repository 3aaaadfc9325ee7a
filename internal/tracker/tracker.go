package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"animewatch/internal/catalog"
	"animewatch/internal/config"
	"animewatch/internal/logging"
	"animewatch/internal/recognition"
)

// ErrStopped is returned for requests submitted after Stop or before Start.
var ErrStopped = errors.New("tracker stopped")

// Catalog is the storage surface the tracker writes through.
type Catalog interface {
	recognition.Source
	Insert(ctx context.Context, anime catalog.Anime) (*catalog.Anime, error)
	ImportBatch(ctx context.Context, batch []catalog.Anime) (int, error)
	UpsertExternalIDs(ctx context.Context, id int64, ids catalog.ExternalIDs) error
	RecordWatch(ctx context.Context, event catalog.WatchEvent) error
}

// Observer receives every completed recognition.
type Observer interface {
	ObserveRecognition(result recognition.MatchResult, elapsed time.Duration)
}

// Observation is a single recognized playback title.
type Observation struct {
	ID         string
	Query      string
	Episode    int
	ObservedAt time.Time
	Result     recognition.MatchResult
	// Recorded is true when the observation was written to watch history.
	Recorded bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithObserver registers an observer notified after each recognition.
func WithObserver(o Observer) Option {
	return func(t *Tracker) {
		if o != nil {
			t.observers = append(t.observers, o)
		}
	}
}

// WithClock overrides the time source used for observations.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// Tracker serializes engine access through a single goroutine.
type Tracker struct {
	store     Catalog
	engine    *recognition.Engine
	settings  config.Recognition
	logger    *slog.Logger
	observers []Observer
	now       func() time.Time

	requests chan func()
	quit     chan struct{}
	done     chan struct{}

	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
}

// New constructs a tracker over store. Call Start before submitting requests.
func New(store Catalog, cfg *config.Config, logger *slog.Logger, opts ...Option) *Tracker {
	settings := config.Default().Recognition
	if cfg != nil {
		settings = cfg.Recognition
	}
	logger = logging.NewComponentLogger(logger, "tracker")
	t := &Tracker{
		store:    store,
		engine:   recognition.NewEngine(store, logger),
		settings: settings,
		logger:   logger,
		now:      time.Now,
		requests: make(chan func()),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start launches the worker goroutine. It stops when ctx is cancelled or Stop is called.
func (t *Tracker) Start(ctx context.Context) {
	t.startOnce.Do(func() {
		t.started.Store(true)
		go t.run(ctx)
	})
}

// Stop terminates the worker and waits for the in-flight request to finish.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() { close(t.quit) })
	if t.started.Load() {
		<-t.done
	}
}

func (t *Tracker) run(ctx context.Context) {
	defer close(t.done)
	for {
		select {
		case <-ctx.Done():
			t.stopOnce.Do(func() { close(t.quit) })
			return
		case <-t.quit:
			return
		case fn := <-t.requests:
			fn()
		}
	}
}

// do runs fn on the worker goroutine and waits for it to finish.
func (t *Tracker) do(ctx context.Context, fn func()) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !t.started.Load() {
		return ErrStopped
	}
	finished := make(chan struct{})
	job := func() {
		defer close(finished)
		fn()
	}
	select {
	case <-t.quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	case t.requests <- job:
	}
	<-finished
	return nil
}

// Recognize resolves a raw playback title and records it in watch history
// when the match is confident enough.
func (t *Tracker) Recognize(ctx context.Context, title string) (Observation, error) {
	obs := Observation{
		ID:      uuid.NewString(),
		Query:   title,
		Episode: ParseEpisode(title),
	}
	var elapsed time.Duration
	err := t.do(ctx, func() {
		obs.ObservedAt = t.now()
		start := time.Now()
		obs.Result = t.engine.Recognize(ctx, title)
		elapsed = time.Since(start)
		obs.Recorded = t.record(ctx, obs)
	})
	if err != nil {
		return Observation{}, err
	}

	for _, o := range t.observers {
		o.ObserveRecognition(obs.Result, elapsed)
	}
	t.logOutcome(ctx, obs)
	return obs, nil
}

func (t *Tracker) record(ctx context.Context, obs Observation) bool {
	if !t.settings.RecordHistory || !obs.Result.Found() {
		return false
	}
	if obs.Result.Confidence < t.settings.MinHistoryConfidence {
		return false
	}
	err := t.store.RecordWatch(ctx, catalog.WatchEvent{
		ID:         obs.ID,
		AnimeID:    obs.Result.Anime.ID,
		Query:      obs.Query,
		MatchKind:  obs.Result.Kind.String(),
		Confidence: obs.Result.Confidence,
		Episode:    obs.Episode,
		ObservedAt: obs.ObservedAt,
	})
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, t.logger), "watch history write failed", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "observation not recorded"),
		)
		return false
	}
	return true
}

func (t *Tracker) logOutcome(ctx context.Context, obs Observation) {
	logger := logging.WithContext(ctx, t.logger)
	if !obs.Result.Found() {
		if t.settings.LogMisses && strings.TrimSpace(obs.Query) != "" {
			logger.Info("title not recognized",
				logging.String(logging.FieldQuery, obs.Query),
				logging.String(logging.FieldMatchKind, obs.Result.Tier.String()),
			)
		}
		return
	}
	logger.Debug("title recognized",
		logging.String(logging.FieldQuery, obs.Query),
		logging.Int64(logging.FieldAnimeID, obs.Result.Anime.ID),
		logging.String(logging.FieldMatchKind, obs.Result.Tier.String()),
		logging.Float64("confidence", obs.Result.Confidence),
	)
}

// AddAnime inserts a single anime and invalidates the engine.
func (t *Tracker) AddAnime(ctx context.Context, anime catalog.Anime) (*catalog.Anime, error) {
	var (
		stored *catalog.Anime
		err    error
	)
	if doErr := t.do(ctx, func() {
		stored, err = t.store.Insert(ctx, anime)
		if err == nil {
			t.engine.Invalidate()
		}
	}); doErr != nil {
		return nil, doErr
	}
	return stored, err
}

// Import inserts a batch atomically and invalidates the engine.
func (t *Tracker) Import(ctx context.Context, batch []catalog.Anime) (int, error) {
	var (
		count int
		err   error
	)
	if doErr := t.do(ctx, func() {
		count, err = t.store.ImportBatch(ctx, batch)
		if err == nil && count > 0 {
			t.engine.Invalidate()
		}
	}); doErr != nil {
		return 0, doErr
	}
	if err == nil {
		t.logger.Info("catalog import complete", logging.Int("imported", count))
	}
	return count, err
}

// LinkExternalIDs upserts cross-service identifiers and invalidates the engine.
func (t *Tracker) LinkExternalIDs(ctx context.Context, id int64, ids catalog.ExternalIDs) error {
	var err error
	if doErr := t.do(ctx, func() {
		err = t.store.UpsertExternalIDs(ctx, id, ids)
		if err == nil {
			t.engine.Invalidate()
		}
	}); doErr != nil {
		return doErr
	}
	return err
}

// Stats returns the engine counters.
func (t *Tracker) Stats(ctx context.Context) (recognition.Stats, error) {
	var stats recognition.Stats
	err := t.do(ctx, func() {
		stats = t.engine.Stats()
	})
	return stats, err
}

// Invalidate resets the engine without touching the catalog.
func (t *Tracker) Invalidate(ctx context.Context) error {
	return t.do(ctx, t.engine.Invalidate)
}

// Repopulate invalidates the engine and loads the catalog immediately.
func (t *Tracker) Repopulate(ctx context.Context) error {
	var err error
	if doErr := t.do(ctx, func() {
		t.engine.Invalidate()
		err = t.engine.Populate(ctx)
	}); doErr != nil {
		return doErr
	}
	if err != nil {
		return fmt.Errorf("repopulate: %w", err)
	}
	return nil
}
