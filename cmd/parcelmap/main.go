package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"parcelmap/internal/config"
	"parcelmap/internal/geom"
	"parcelmap/internal/logging"
	"parcelmap/internal/mapview"
	"parcelmap/internal/source"
	"parcelmap/internal/tui"
)

type options struct {
	configPath string
	logLevel   string
	logFile    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "parcelmap [files...]",
		Short:        "Interactive parcel map for the terminal and HTTP",
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE:         func(cmd *cobra.Command, args []string) error { return runView(cmd.Context(), opts, args) },
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file (default: built-in Kakamega map)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error, disabled")
	root.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "write TUI logs to this file")

	root.AddCommand(
		&cobra.Command{
			Use:   "view [files...]",
			Short: "Open the map in the terminal",
			RunE:  func(cmd *cobra.Command, args []string) error { return runView(cmd.Context(), opts, args) },
		},
		newServeCmd(opts),
		newLayersCmd(opts),
		newConfigCmd(opts),
		newOpenAPICmd(opts),
	)
	return root
}

func (o *options) config() (config.Config, error) {
	if o.configPath == "" {
		return config.Default(), nil
	}
	return config.Load(o.configPath)
}

// controller loads the config and every layer source. A source that fails
// leaves its layer empty.
func (o *options) controller(ctx context.Context, log zerolog.Logger) (*mapview.Controller, map[string][]geom.Feature, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, nil, err
	}
	features, err := source.LoadAll(ctx, cfg, log)
	if err != nil {
		log.Warn().Err(err).Msg("some layer sources failed to load")
	}
	return cfg.Build(features), features, nil
}

// runView runs the terminal map. Logs go to --log-file only, since the
// screen belongs to the program.
func runView(ctx context.Context, o *options, files []string) error {
	log, closer, err := logging.Open(o.logLevel, o.logFile)
	if err != nil {
		return err
	}
	defer closer.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	ctl, _, err := o.controller(ctx, log)
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("open %s: %w", f, err)
		}
	}

	m := tui.New(ctl, log, files...)
	log.Info().Int("files", len(files)).Msg("starting map")
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
		log.Error().Err(err).Msg("tui exited")
		return err
	}
	return nil
}
