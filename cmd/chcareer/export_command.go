package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chcareer/internal/config"
	"chcareer/internal/setlist"
	"chcareer/internal/tiering"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		outDir string
		name   string
		mode   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Build the career ladder and write setlist files",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if mode == "" {
				mode = cfg.Export.Mode
			}
			if outDir == "" {
				outDir, err = os.Getwd()
				if err != nil {
					return fmt.Errorf("resolve working directory: %w", err)
				}
			} else if outDir, err = config.ExpandPath(outDir); err != nil {
				return fmt.Errorf("resolve output directory: %w", err)
			}

			result, err := ctx.scanLibrary(cmd.Context(), out)
			if err != nil {
				return err
			}

			built, err := tiering.Build(result.Songs, tiering.OptionsFromConfig(cfg))
			if err != nil {
				return err
			}
			for _, v := range built.Violations {
				fmt.Fprintf(out, "warning: tier %d violates %s rule: %s\n", v.TierIndex+1, v.Rule, v.Detail)
			}

			paths, err := setlist.Export(outDir, name, setlist.FromSetlist(built), mode)
			if err != nil {
				return err
			}
			for _, path := range paths {
				fmt.Fprintf(out, "Wrote %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (defaults to the working directory)")
	cmd.Flags().StringVar(&name, "name", "career", "Filename stem for the exported setlist")
	cmd.Flags().StringVar(&mode, "mode", "", "Export mode: combined or per-tier (defaults to the configured mode)")
	return cmd
}
