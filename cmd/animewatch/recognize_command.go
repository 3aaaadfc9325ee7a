package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"animewatch/internal/api"
	"animewatch/internal/catalog"
	"animewatch/internal/recognition"
	"animewatch/internal/tracker"
)

type recognizeOutput struct {
	Query   string    `json:"query"`
	Episode int       `json:"episode,omitempty"`
	Match   api.Match `json:"match"`
}

type recognizeReport struct {
	Results []recognizeOutput `json:"results"`
	Stats   *api.Stats        `json:"stats,omitempty"`
}

func newRecognizeCommand(ctx *commandContext) *cobra.Command {
	var showStats bool

	cmd := &cobra.Command{
		Use:   "recognize [title...]",
		Short: "Recognize titles against the local catalog (reads stdin lines when no title is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			titles, err := titleArgs(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *catalog.Store) error {
				engine := recognition.NewEngine(store, ctx.cliLogger(cmd))
				report := recognizeReport{Results: make([]recognizeOutput, 0, len(titles))}
				for _, title := range titles {
					result := engine.Recognize(cmd.Context(), title)
					report.Results = append(report.Results, recognizeOutput{
						Query:   title,
						Episode: tracker.ParseEpisode(title),
						Match:   api.FromMatch(result),
					})
				}
				if showStats {
					stats := api.FromStats(engine.Stats())
					report.Stats = &stats
				}
				if ctx.wantJSON() {
					return writeJSON(cmd, report)
				}
				renderRecognizeReport(cmd, report)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&showStats, "stats", false, "Print engine counters after recognition")
	return cmd
}

func renderRecognizeReport(cmd *cobra.Command, report recognizeReport) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		title, id := "-", "-"
		if r.Match.Anime != nil {
			title = r.Match.Anime.Title
			id = strconv.FormatInt(r.Match.Anime.ID, 10)
		}
		episode := "-"
		if r.Episode > 0 {
			episode = strconv.Itoa(r.Episode)
		}
		rows = append(rows, []string{
			r.Query,
			r.Match.Kind,
			r.Match.Tier,
			fmt.Sprintf("%.2f", r.Match.Confidence),
			id,
			title,
			episode,
		})
	}
	printTable(out, cols("Query", "Result", "Tier", "#Confidence", "#ID", "Anime", "#Episode"), rows)
	if report.Stats != nil {
		fmt.Fprintln(out)
		renderStats(cmd, *report.Stats)
	}
}

func renderStats(cmd *cobra.Command, stats api.Stats) {
	rows := [][]string{
		{"Entries indexed", strconv.Itoa(stats.EntriesIndexed)},
		{"Query cache hits", strconv.FormatUint(stats.HitsQueryCache, 10)},
		{"Exact hits", strconv.FormatUint(stats.HitsExact, 10)},
		{"Normalized hits", strconv.FormatUint(stats.HitsNormalized, 10)},
		{"Fuzzy hits", strconv.FormatUint(stats.HitsFuzzy, 10)},
		{"Misses", strconv.FormatUint(stats.Misses, 10)},
		{"Query cache size", strconv.Itoa(stats.QueryCacheSize)},
	}
	printTable(cmd.OutOrStdout(), cols("Counter", "#Value"), rows)
}
