package daemon_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"animewatch/internal/api"
	"animewatch/internal/catalog"
	"animewatch/internal/daemon"
	"animewatch/internal/logging"
	"animewatch/internal/testsupport"
)

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedCatalog(t, store)

	d, err := daemon.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(d.Stop)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status(ctx)
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.Stats.EntriesIndexed != 3 {
		t.Fatalf("expected warmed engine with 3 entries, got %d", status.Stats.EntriesIndexed)
	}

	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	if d.Status(ctx).Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDaemonRejectsSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	first, err := daemon.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(first.Stop)
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}

	second, err := daemon.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	err = second.Start(context.Background())
	if err == nil {
		second.Stop()
		t.Fatal("expected lock contention error")
	}
	if !strings.Contains(err.Error(), "already running") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDaemonServesAPI(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAPIToken("s3cret"))
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedCatalog(t, store)

	d, err := daemon.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(d.Stop)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	resp, err := http.Get("http://" + d.APIAddr() + "/api/stats")
	if err != nil {
		t.Fatalf("GET /api/stats: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	client := api.NewClient(d.APIAddr(), "s3cret")
	obs, err := client.Recognize(context.Background(), "Frieren")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if obs.Match.Kind != "matched" || obs.Match.Anime == nil || obs.Match.Anime.Title != "Sousou no Frieren" {
		payload, _ := json.Marshal(obs)
		t.Fatalf("unexpected observation: %s", payload)
	}

	status, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Running || status.Stats.HitsExact != 1 {
		t.Fatalf("unexpected status: %+v", status)
	}

	history, err := client.History(context.Background(), 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].Query != "Frieren" {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestDaemonCatalogWritesThroughClient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedCatalog(t, store)

	d, err := daemon.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(d.Stop)
	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	client := api.NewClient(d.APIAddr(), "")

	items, err := client.ListAnime(ctx)
	if err != nil {
		t.Fatalf("ListAnime: %v", err)
	}
	if len(items) != len(testsupport.SampleCatalog()) {
		t.Fatalf("expected seeded catalog, got %d entries", len(items))
	}

	// Prime the engine so the add below has to invalidate it.
	if obs, err := client.Recognize(ctx, "Cowboy Bebop"); err != nil || obs.Match.Kind != "no_match" {
		t.Fatalf("Recognize before add = %+v, %v", obs, err)
	}

	added, err := client.AddAnime(ctx, catalog.Anime{Title: "Cowboy Bebop", Episodes: 26})
	if err != nil {
		t.Fatalf("AddAnime: %v", err)
	}
	if added.ID == 0 || added.Title != "Cowboy Bebop" || added.Episodes != 26 {
		t.Fatalf("unexpected added anime: %+v", added)
	}
	obs, err := client.Recognize(ctx, "Cowboy Bebop")
	if err != nil {
		t.Fatalf("Recognize after add: %v", err)
	}
	if obs.Match.Kind != "matched" || obs.Match.Anime == nil || obs.Match.Anime.ID != added.ID {
		payload, _ := json.Marshal(obs)
		t.Fatalf("added anime not recognized: %s", payload)
	}

	count, err := client.Import(ctx, []catalog.Anime{
		{Title: "Mob Psycho 100", Episodes: 12},
		{Title: "Mob Psycho 100 II", Episodes: 13},
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 imported, got %d", count)
	}

	linked, err := client.LinkExternalIDs(ctx, added.ID, api.ExternalIDsRequest{MAL: 1})
	if err != nil {
		t.Fatalf("LinkExternalIDs: %v", err)
	}
	if linked.ID != added.ID || linked.MALID != 1 {
		t.Fatalf("unexpected linked anime: %+v", linked)
	}

	tests := []struct {
		name       string
		call       func() error
		wantStatus int
		wantKind   string
	}{
		{
			name: "external id taken",
			call: func() error {
				_, err := client.LinkExternalIDs(ctx, added.ID, api.ExternalIDsRequest{AniList: 154587})
				return err
			},
			wantStatus: http.StatusConflict,
			wantKind:   "conflict",
		},
		{
			name: "unknown anime",
			call: func() error {
				_, err := client.LinkExternalIDs(ctx, 4242, api.ExternalIDsRequest{Kitsu: 9})
				return err
			},
			wantStatus: http.StatusNotFound,
			wantKind:   "not_found",
		},
		{
			name: "missing title",
			call: func() error {
				_, err := client.AddAnime(ctx, catalog.Anime{Episodes: 3})
				return err
			},
			wantStatus: http.StatusBadRequest,
			wantKind:   "validation",
		},
		{
			name: "import rolls back",
			call: func() error {
				_, err := client.Import(ctx, []catalog.Anime{{Title: "Haikyuu!!"}, {Title: ""}})
				return err
			},
			wantStatus: http.StatusBadRequest,
			wantKind:   "validation",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var apiErr *api.Error
			if err := tt.call(); !errors.As(err, &apiErr) {
				t.Fatalf("expected *api.Error, got %v", err)
			}
			if apiErr.Status != tt.wantStatus || apiErr.Kind != tt.wantKind {
				t.Fatalf("got %d/%q, want %d/%q", apiErr.Status, apiErr.Kind, tt.wantStatus, tt.wantKind)
			}
		})
	}

	items, err = client.ListAnime(ctx)
	if err != nil {
		t.Fatalf("ListAnime: %v", err)
	}
	if want := len(testsupport.SampleCatalog()) + 3; len(items) != want {
		t.Fatalf("expected %d entries after writes, got %d", want, len(items))
	}
}
