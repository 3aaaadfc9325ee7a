// Package catalog persists the anime catalog and watch history in SQLite.
//
// The Store owns the database connection, applies embedded migrations on open,
// and exposes the operations the recognition tracker needs: a full ordered
// snapshot for index construction, single and batch inserts, external-ID
// upserts for AniList, Kitsu and MyAnimeList, and watch history recording.
//
// Catalog order is ascending by ID. The recognition engine resolves title
// collisions in favour of whichever entry this snapshot returns first, so
// AllAnime must keep that ordering stable.
//
// Import files (TOML, YAML or JSON) are parsed by ParseImportFile into the
// same Anime records the store accepts.
package catalog
