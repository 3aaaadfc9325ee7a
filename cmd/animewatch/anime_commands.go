package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"animewatch/internal/api"
	"animewatch/internal/catalog"
)

func newAnimeCommand(ctx *commandContext) *cobra.Command {
	animeCmd := &cobra.Command{
		Use:   "anime",
		Short: "Manage the anime catalog",
	}

	var viaDaemon bool
	animeCmd.PersistentFlags().BoolVar(&viaDaemon, "via-daemon", false, "Route through the running daemon's API instead of opening the catalog")

	animeCmd.AddCommand(newAnimeAddCommand(ctx, &viaDaemon))
	animeCmd.AddCommand(newAnimeImportCommand(ctx, &viaDaemon))
	animeCmd.AddCommand(newAnimeListCommand(ctx, &viaDaemon))
	animeCmd.AddCommand(newAnimeLinkCommand(ctx, &viaDaemon))

	return animeCmd
}

func newAnimeAddCommand(ctx *commandContext, viaDaemon *bool) *cobra.Command {
	var anime catalog.Anime

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a single anime to the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			anime.Title = strings.Join(args, " ")
			return ctx.withCatalog(cmd, *viaDaemon, func(backend catalogBackend) error {
				stored, err := backend.Add(cmd.Context(), anime)
				if err != nil {
					return err
				}
				if ctx.wantJSON() {
					return writeJSON(cmd, stored)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added anime %d: %s\n", stored.ID, stored.Title)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&anime.TitleEnglish, "english", "", "English title")
	cmd.Flags().StringVar(&anime.TitleNative, "native", "", "Native title")
	cmd.Flags().StringArrayVar(&anime.Synonyms, "synonym", nil, "Alternative title (repeatable)")
	cmd.Flags().StringVar(&anime.Format, "format", "", "Format such as TV, MOVIE or OVA")
	cmd.Flags().IntVar(&anime.Episodes, "episodes", 0, "Episode count")
	cmd.Flags().IntVar(&anime.SeasonYear, "year", 0, "Season year")
	cmd.Flags().Int64Var(&anime.AniListID, "anilist", 0, "AniList id")
	cmd.Flags().Int64Var(&anime.KitsuID, "kitsu", 0, "Kitsu id")
	cmd.Flags().Int64Var(&anime.MALID, "mal", 0, "MyAnimeList id")
	return cmd
}

func newAnimeImportCommand(ctx *commandContext, viaDaemon *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a TOML, YAML or JSON catalog file in one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := catalog.ParseImportFile(args[0])
			if err != nil {
				return err
			}
			return ctx.withCatalog(cmd, *viaDaemon, func(backend catalogBackend) error {
				count, err := backend.Import(cmd.Context(), batch)
				if err != nil {
					return err
				}
				if ctx.wantJSON() {
					return writeJSON(cmd, api.ImportResponse{Imported: count})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d anime from %s\n", count, args[0])
				return nil
			})
		},
	}
}

func newAnimeListCommand(ctx *commandContext, viaDaemon *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(cmd, *viaDaemon, func(backend catalogBackend) error {
				items, err := backend.List(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.wantJSON() {
					return writeJSON(cmd, api.AnimeListResponse{Items: items})
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Catalog is empty")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						item.Title,
						item.TitleEnglish,
						item.Format,
						formatOptionalInt(int64(item.Episodes)),
						formatExternalIDs(externalIDsOf(item)),
					})
				}
				printTable(cmd.OutOrStdout(), cols("#ID", "Title", "English", "Format", "#Episodes", "External IDs"), rows)
				return nil
			})
		},
	}
}

func newAnimeLinkCommand(ctx *commandContext, viaDaemon *bool) *cobra.Command {
	var ids catalog.ExternalIDs

	cmd := &cobra.Command{
		Use:   "link <id>",
		Short: "Link AniList, Kitsu or MyAnimeList ids to a catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid anime id %q", args[0])
			}
			if ids.IsZero() {
				return errors.New("at least one of --anilist, --kitsu or --mal is required")
			}
			return ctx.withCatalog(cmd, *viaDaemon, func(backend catalogBackend) error {
				anime, err := backend.Link(cmd.Context(), id, ids)
				if err != nil {
					return err
				}
				if ctx.wantJSON() {
					return writeJSON(cmd, anime)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Linked %s: %s\n", anime.Title, formatExternalIDs(externalIDsOf(*anime)))
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&ids.AniList, "anilist", 0, "AniList id")
	cmd.Flags().Int64Var(&ids.Kitsu, "kitsu", 0, "Kitsu id")
	cmd.Flags().Int64Var(&ids.MAL, "mal", 0, "MyAnimeList id")
	return cmd
}

func formatExternalIDs(ids catalog.ExternalIDs) string {
	var parts []string
	if ids.AniList > 0 {
		parts = append(parts, "anilist:"+strconv.FormatInt(ids.AniList, 10))
	}
	if ids.Kitsu > 0 {
		parts = append(parts, "kitsu:"+strconv.FormatInt(ids.Kitsu, 10))
	}
	if ids.MAL > 0 {
		parts = append(parts, "mal:"+strconv.FormatInt(ids.MAL, 10))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func externalIDsOf(a api.Anime) catalog.ExternalIDs {
	return catalog.ExternalIDs{AniList: a.AniListID, Kitsu: a.KitsuID, MAL: a.MALID}
}

func formatOptionalInt(v int64) string {
	if v <= 0 {
		return "-"
	}
	return strconv.FormatInt(v, 10)
}
