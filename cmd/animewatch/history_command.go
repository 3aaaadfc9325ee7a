package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"animewatch/internal/api"
	"animewatch/internal/catalog"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent watch history, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = cfg.Recognition.HistoryLimit
			}
			return ctx.withStore(func(store *catalog.Store) error {
				events, err := store.History(cmd.Context(), limit)
				if err != nil {
					return err
				}
				entries := api.FromWatchEvents(events)
				if ctx.wantJSON() {
					return writeJSON(cmd, api.HistoryResponse{Items: entries})
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No watch history recorded")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{
						e.ObservedAt,
						e.AnimeTitle,
						formatOptionalInt(int64(e.Episode)),
						e.MatchKind,
						strconv.FormatFloat(e.Confidence, 'f', 2, 64),
						e.Query,
					})
				}
				printTable(cmd.OutOrStdout(), cols("Observed", "Anime", "#Episode", "Match", "#Confidence", "Query"), rows)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum entries to show (default from config)")
	return cmd
}
