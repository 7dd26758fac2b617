package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidscribe/internal/transcript"
)

func newSummaryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "summary [root]",
		Short: "Concatenate the transcripts under a folder into summary.txt",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			root, err := resolveRoot(cfg, args)
			if err != nil {
				return err
			}
			result, err := transcript.WriteSummary(root, cfg.Batch.Extensions)
			if err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Summary written to %s (%d transcripts)\n", result.Path, result.Transcripts)
			return nil
		},
	}
}
