package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chcareer/internal/setlist"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Read setlist files and show their tiers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			store, warn := ctx.openStore()
			if warn != "" {
				fmt.Fprintln(out, warn)
			}
			defer store.Close()

			for _, path := range args {
				doc, err := setlist.ImportFile(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s:\n", path)
				for _, tier := range doc.Tiers {
					fmt.Fprintf(out, "\n%s (%d songs)\n", tier.Name, len(tier.Fingerprints))
					rows := make([][]string, 0, len(tier.Fingerprints))
					for _, fp := range tier.Fingerprints {
						title, artist := "(not in library)", ""
						if entry, err := store.Get(cmd.Context(), fp); err == nil && entry != nil {
							title, artist = entry.Song.Title, entry.Song.Artist
						}
						rows = append(rows, []string{fp, title, artist})
					}
					fmt.Fprintln(out, renderTable(
						[]string{"Fingerprint", "Title", "Artist"},
						rows,
						[]columnAlignment{alignLeft, alignLeft, alignLeft},
					))
				}
			}
			return nil
		},
	}
	return cmd
}
