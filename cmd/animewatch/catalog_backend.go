package main

import (
	"context"

	"github.com/spf13/cobra"

	"animewatch/internal/api"
	"animewatch/internal/catalog"
)

// catalogBackend is where anime subcommands read and write: the local
// SQLite catalog, or the running daemon's API with --via-daemon.
type catalogBackend interface {
	List(ctx context.Context) ([]api.Anime, error)
	Add(ctx context.Context, anime catalog.Anime) (*api.Anime, error)
	Import(ctx context.Context, batch []catalog.Anime) (int, error)
	Link(ctx context.Context, id int64, ids catalog.ExternalIDs) (*api.Anime, error)
}

// withCatalog runs fn against the backend selected by viaDaemon.
func (c *commandContext) withCatalog(cmd *cobra.Command, viaDaemon bool, fn func(catalogBackend) error) error {
	if !viaDaemon {
		return c.withStore(func(store *catalog.Store) error {
			return fn(&storeBackend{store: store, notify: func() { c.notifyDaemon(cmd) }})
		})
	}
	client, err := c.apiClient()
	if err != nil {
		return err
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	return fn(&daemonBackend{client: client, bind: cfg.Paths.APIBind})
}

// storeBackend writes SQLite directly and then asks a running daemon to
// rebuild its indices.
type storeBackend struct {
	store  *catalog.Store
	notify func()
}

func (b *storeBackend) List(ctx context.Context) ([]api.Anime, error) {
	items, err := b.store.AllAnime(ctx)
	if err != nil {
		return nil, err
	}
	return api.FromAnimeList(items), nil
}

func (b *storeBackend) Add(ctx context.Context, anime catalog.Anime) (*api.Anime, error) {
	stored, err := b.store.Insert(ctx, anime)
	if err != nil {
		return nil, err
	}
	b.notify()
	out := api.FromAnime(*stored)
	return &out, nil
}

func (b *storeBackend) Import(ctx context.Context, batch []catalog.Anime) (int, error) {
	count, err := b.store.ImportBatch(ctx, batch)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		b.notify()
	}
	return count, nil
}

func (b *storeBackend) Link(ctx context.Context, id int64, ids catalog.ExternalIDs) (*api.Anime, error) {
	if err := b.store.UpsertExternalIDs(ctx, id, ids); err != nil {
		return nil, err
	}
	b.notify()
	anime, err := b.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if anime == nil {
		return nil, catalog.ErrNotFound
	}
	out := api.FromAnime(*anime)
	return &out, nil
}

// daemonBackend routes through the daemon, whose tracker invalidates the
// engine itself after each write.
type daemonBackend struct {
	client *api.Client
	bind   string
}

func (b *daemonBackend) List(ctx context.Context) ([]api.Anime, error) {
	items, err := b.client.ListAnime(ctx)
	if err != nil {
		return nil, wrapAPIError(err, b.bind)
	}
	return items, nil
}

func (b *daemonBackend) Add(ctx context.Context, anime catalog.Anime) (*api.Anime, error) {
	stored, err := b.client.AddAnime(ctx, anime)
	if err != nil {
		return nil, wrapAPIError(err, b.bind)
	}
	return stored, nil
}

func (b *daemonBackend) Import(ctx context.Context, batch []catalog.Anime) (int, error) {
	count, err := b.client.Import(ctx, batch)
	if err != nil {
		return 0, wrapAPIError(err, b.bind)
	}
	return count, nil
}

func (b *daemonBackend) Link(ctx context.Context, id int64, ids catalog.ExternalIDs) (*api.Anime, error) {
	anime, err := b.client.LinkExternalIDs(ctx, id, api.ExternalIDsRequest{AniList: ids.AniList, Kitsu: ids.Kitsu, MAL: ids.MAL})
	if err != nil {
		return nil, wrapAPIError(err, b.bind)
	}
	return anime, nil
}
