package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Fepozopo/rasterkit/pkg/cli"
	"github.com/Fepozopo/rasterkit/pkg/stdimg"
)

type options struct {
	debug   bool
	workers int
	remote  string
	envFile string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	root := &cobra.Command{
		Use:     "rasterkit [image...]",
		Short:   "Terminal raster image editor with edit history",
		Version: cli.Version,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, cfg, logger, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			repl := cli.NewREPL(ws, cmd.InOrStdin(), cmd.OutOrStdout())
			repl.Updater = cli.NewUpdater(cmd.OutOrStdout(), repl.Confirm, logger)
			repl.Preview = cli.NewPreviewer(cmd.OutOrStdout(), cfg, logger)
			if len(args) > 0 {
				if _, err := repl.Exec(cmd.Context(), "open "+strings.Join(args, " ")); err != nil {
					return err
				}
			}
			return repl.Run(cmd.Context())
		},
	}
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug mode with verbose logging")
	root.PersistentFlags().IntVar(&opts.workers, "workers", 0, "Tile workers for convolution (default from RASTERKIT_WORKERS or CPU count)")
	root.PersistentFlags().StringVar(&opts.remote, "remote", "", "Processing server base URL")
	root.PersistentFlags().StringVar(&opts.envFile, "env", ".env", "Optional dotenv file")

	root.AddCommand(newApplyCmd(&opts), newOpsCmd(), newPresetsCmd(&opts), newUpdateCmd(&opts))
	return root
}

func loadConfig(opts options) (cli.Config, error) {
	cfg, err := cli.LoadConfig(opts.envFile)
	if err != nil {
		return cfg, err
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	if opts.remote != "" {
		cfg.RemoteURL = opts.remote
	}
	cfg.Debug = cfg.Debug || opts.debug
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg cli.Config) *logrus.Logger {
	logger := cli.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.Debug)
	logger.WithFields(logrus.Fields{
		"version": cli.Version,
		"workers": cfg.Workers,
		"remote":  cfg.RemoteURL,
	}).Debug("Starting rasterkit")
	return logger
}

func setup(cmd *cobra.Command, opts options) (*cli.Workspace, cli.Config, *logrus.Logger, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, cfg, nil, err
	}
	logger := newLogger(cmd, cfg)
	ws, err := cli.NewWorkspace(cfg, logger)
	if err != nil {
		return nil, cfg, nil, err
	}
	return ws, cfg, logger, nil
}

func newApplyCmd(opts *options) *cobra.Command {
	var (
		preset  string
		sets    []string
		ops     []string
		roi     []int
		out     string
		commits bool
	)
	cmd := &cobra.Command{
		Use:   "apply <image>",
		Short: "Render an image with a preset, parameters and operations, then save it as PNG",
		Example: `  rasterkit apply in.jpg --preset edge_detection -o edges.png
  rasterkit apply in.png --set grayscale=true --set threshold=100 --op "rotate 90"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, _, _, err := setup(cmd, *opts)
			if err != nil {
				return err
			}
			repl := cli.NewREPL(ws, strings.NewReader(""), cmd.OutOrStdout())
			lines := []string{"open " + args[0]}
			if preset != "" {
				lines = append(lines, "preset "+preset)
			}
			for _, s := range sets {
				k, v, ok := strings.Cut(s, "=")
				if !ok {
					return fmt.Errorf("--set expects name=value, got %q", s)
				}
				lines = append(lines, "set "+k+" "+v)
			}
			if len(roi) > 0 {
				if len(roi) != 4 {
					return fmt.Errorf("--roi expects x0,y0,x1,y1")
				}
				lines = append(lines, fmt.Sprintf("roi %d %d %d %d", roi[0], roi[1], roi[2], roi[3]))
			}
			if commits {
				lines = append(lines, "commit")
			}
			for _, op := range ops {
				lines = append(lines, "apply "+op)
			}
			lines = append(lines, "save "+out)
			for _, l := range lines {
				if _, err := repl.Exec(cmd.Context(), l); err != nil {
					return fmt.Errorf("%s: %w", l, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&preset, "preset", "", "Preset id to start from")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Parameter override name=value (repeatable)")
	cmd.Flags().StringArrayVar(&ops, "op", nil, "Operation with arguments, applied after rendering (repeatable)")
	cmd.Flags().IntSliceVar(&roi, "roi", nil, "Region of interest corners x0,y0,x1,y1")
	cmd.Flags().StringVarP(&out, "output", "o", cli.DefaultDownloadName, "Output PNG path")
	cmd.Flags().BoolVar(&commits, "commit", false, "Commit the rendered parameters before saving")
	return cmd
}

func newOpsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ops [operation]",
		Short: "List engine operations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				op, ok := stdimg.LookupOperation(args[0])
				if !ok {
					return fmt.Errorf("unknown operation: %s", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.Tooltip(op))
				return nil
			}
			for _, op := range stdimg.Operations {
				fmt.Fprintf(cmd.OutOrStdout(), "%-26s %s\n", op.Usage, op.Description)
			}
			return nil
		},
	}
}

func newPresetsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List built-in and configured presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*opts)
			if err != nil {
				return err
			}
			presets, err := stdimg.LoadPresets(cfg.PresetsFile)
			if err != nil {
				return err
			}
			for _, id := range stdimg.PresetIDs(presets) {
				p := presets[id]
				fmt.Fprintf(cmd.OutOrStdout(), "%-18s %s: %s\n", id, p.Name, p.Params.Label())
			}
			return nil
		},
	}
}

func newUpdateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Check GitHub for a newer release and install it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*opts)
			if err != nil {
				return err
			}
			repl := cli.NewREPL(nil, cmd.InOrStdin(), cmd.OutOrStdout())
			return cli.NewUpdater(cmd.OutOrStdout(), repl.Confirm, newLogger(cmd, cfg)).Run(cmd.Context())
		},
	}
}
