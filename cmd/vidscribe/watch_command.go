package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"vidscribe/internal/batch"
	"vidscribe/internal/logging"
	"vidscribe/internal/preflight"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var flags jobFlags
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch [root]",
		Short: "Transcribe a folder and keep transcribing new videos as they appear",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}
			// Reruns must not redo finished videos.
			cfg.Batch.SkipExisting = true
			if cmd.Flags().Changed("debounce") {
				cfg.Batch.WatchDebounce = int(debounce.Seconds())
			}
			root, err := resolveRoot(cfg, args)
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			watchCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			job, err := newJob(ctx, cfg, root)
			if err != nil {
				return err
			}
			if check := preflight.CheckBackend(watchCtx, job.recognizer); !check.Passed {
				return fmt.Errorf("%s: %s", check.Name, check.Detail)
			}

			out := cmd.OutOrStdout()
			err = batch.Watch(watchCtx, root, batch.WatchOptions{
				Extensions: cfg.Batch.Extensions,
				Debounce:   time.Duration(cfg.Batch.WatchDebounce) * time.Second,
			}, func(runCtx context.Context) {
				if _, err := job.run(runCtx, out); err != nil {
					logging.WarnWithContext(logger, "watch batch did not run", "watch_batch_skipped",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "another vidscribe job may hold the lock"),
					)
				}
			}, logger)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "Watch stopped.")
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", 5*time.Second, "Quiet period after new files before a rerun")
	return cmd
}
