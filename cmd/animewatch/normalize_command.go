package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"animewatch/internal/normalize"
)

type normalizedTitle struct {
	Input      string `json:"input"`
	Normalized string `json:"normalized"`
}

func newNormalizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "normalize [title...]",
		Short:       "Print the canonical form of a title (reads stdin lines when no title is given)",
		Annotations: skipConfigLoad,
		RunE: func(cmd *cobra.Command, args []string) error {
			titles, err := titleArgs(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			results := make([]normalizedTitle, 0, len(titles))
			for _, title := range titles {
				results = append(results, normalizedTitle{Input: title, Normalized: normalize.Normalize(title)})
			}
			if ctx.wantJSON() {
				return writeJSON(cmd, results)
			}
			out := cmd.OutOrStdout()
			for _, r := range results {
				fmt.Fprintln(out, r.Normalized)
			}
			return nil
		},
	}
}
