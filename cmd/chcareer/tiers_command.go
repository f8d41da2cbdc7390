package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chcareer/internal/tiering"
)

func newTiersCommand(ctx *commandContext) *cobra.Command {
	var (
		tierCount    int
		songsPerTier int
		theme        string
	)

	cmd := &cobra.Command{
		Use:   "tiers",
		Short: "Build and display the career tier ladder",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			result, err := ctx.scanLibrary(cmd.Context(), out)
			if err != nil {
				return err
			}

			opts := tiering.OptionsFromConfig(cfg)
			if tierCount > 0 {
				opts.TierCount = tierCount
			}
			if songsPerTier > 0 {
				opts.SongsPerTier = songsPerTier
			}
			if theme != "" {
				opts.Theme = theme
			}

			setlist, err := tiering.Build(result.Songs, opts)
			if err != nil {
				return err
			}

			for _, tier := range setlist.Tiers {
				fmt.Fprintf(out, "\n%s\n", tier.Name)
				rows := make([][]string, 0, len(tier.Songs))
				for i := range tier.Songs {
					song := &tier.Songs[i]
					rows = append(rows, []string{
						song.Title,
						song.Artist,
						song.Genre,
						formatLength(song.LengthSeconds),
						fmt.Sprintf("%.1f", song.Score),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Title", "Artist", "Genre", "Length", "Score"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
				))
			}

			if len(setlist.Excluded) > 0 {
				fmt.Fprintf(out, "\n%d songs excluded from the ladder\n", len(setlist.Excluded))
			}
			for _, v := range setlist.Violations {
				fmt.Fprintf(out, "warning: tier %d violates %s rule: %s\n", v.TierIndex+1, v.Rule, v.Detail)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&tierCount, "tiers", 0, "Override the configured tier count")
	cmd.Flags().IntVar(&songsPerTier, "songs-per-tier", 0, "Override the configured songs per tier")
	cmd.Flags().StringVar(&theme, "theme", "", "Tier naming theme (plain or guitar-hero)")
	return cmd
}
