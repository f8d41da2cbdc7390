package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var showSkipped bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the song library and refresh the cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			result, err := ctx.scanLibrary(cmd.Context(), out)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(result.Songs))
			for i := range result.Songs {
				song := &result.Songs[i]
				rows = append(rows, []string{
					song.Title,
					song.Artist,
					fmt.Sprintf("%d", song.DiffGuitar),
					formatLength(song.LengthSeconds),
					formatNPS(song.NPS.Avg, song.NPS.Peak, song.NPS.Available),
					fmt.Sprintf("%.1f", song.Score),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Title", "Artist", "Diff", "Length", "NPS avg/peak", "Score"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))

			fmt.Fprintf(out, "Scan %s: %d songs, %d skipped, %d cache hits, %d rescanned in %s\n",
				result.State, len(result.Songs), len(result.Skipped),
				result.CacheHits, result.CacheMisses, result.Duration.Round(time.Millisecond))

			if showSkipped && len(result.Skipped) > 0 {
				skippedRows := make([][]string, 0, len(result.Skipped))
				for _, skip := range result.Skipped {
					skippedRows = append(skippedRows, []string{skip.Path, skip.Reason})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Folder", "Reason"},
					skippedRows,
					[]columnAlignment{alignLeft, alignLeft},
				))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showSkipped, "skipped", false, "List folders the scan could not process")
	return cmd
}
