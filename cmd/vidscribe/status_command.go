package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vidscribe/internal/config"
	"vidscribe/internal/deps"
	"vidscribe/internal/language"
	"vidscribe/internal/logging"
	"vidscribe/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configuration, external tools and backend availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			checkCtx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			lines := renderSectionHeader("Configuration", colorize)
			lines = append(lines, renderConfigOverview(ctx, cfg))
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			lines = append(lines, renderDependencies(checkCtx, cfg, colorize))
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Recognition backends", colorize)...)
			lines = append(lines, renderBackends(checkCtx, cfg, colorize))
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "Timeout for backend checks")
	return cmd
}

func renderConfigOverview(ctx *commandContext, cfg *config.Config) string {
	path := ctx.configPath
	if !ctx.configExists {
		path += " (not found, using defaults)"
	}
	rows := [][]string{
		{"Config file", path},
		{"Root folder", valueOrDash(cfg.Paths.RootDir)},
		{"Backend", cfg.Recognition.Backend},
		{"Language", language.DisplayName(cfg.Recognition.Language)},
		{"Skip existing", yesNo(cfg.Batch.SkipExisting)},
		{"Keep audio", yesNo(cfg.Batch.KeepAudio)},
		{"Pause threshold", fmt.Sprintf("%.2f s", cfg.Batch.PauseThreshold)},
		{"Log file", valueOrDash(cfg.LogPath())},
	}
	return renderTable([]string{"Setting", "Value"}, rows, nil)
}

func renderDependencies(ctx context.Context, cfg *config.Config, colorize bool) string {
	statuses := preflight.CheckSystemDeps(cfg)
	rows := make([][]string, 0, len(statuses))
	for _, status := range statuses {
		kind := statusOK
		detail := deps.ProbeVersion(ctx, status.Command)
		switch {
		case !status.Available && status.Optional:
			kind = statusWarn
			detail = status.Detail
		case !status.Available:
			kind = statusError
			detail = status.Detail
		case detail == "":
			detail = status.Description
		}
		rows = append(rows, []string{status.Name, status.Command, renderStatusCell(kind, colorize), detail})
	}
	return renderTable([]string{"Tool", "Command", "Status", "Detail"}, rows, nil)
}

func renderBackends(ctx context.Context, cfg *config.Config, colorize bool) string {
	registry := newRegistry(cfg, logging.NewNop())
	statuses := registry.Health(ctx)
	rows := make([][]string, 0, len(statuses))
	for _, status := range statuses {
		kind := statusOK
		if !status.OK {
			kind = statusError
			if status.Backend != cfg.Recognition.Backend {
				kind = statusWarn
			}
		}
		active := ""
		if status.Backend == cfg.Recognition.Backend {
			active = "*"
		}
		rows = append(rows, []string{
			status.Backend,
			active,
			renderStatusCell(kind, colorize),
			status.Latency.Round(time.Millisecond).String(),
			status.Message,
		})
	}
	return renderTable([]string{"Backend", "Active", "Status", "Latency", "Detail"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft})
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
