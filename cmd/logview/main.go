// Command logview runs the production log transformations from the command
// line and serves the web tool.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"logview/internal/config"
	"logview/internal/crossfile"
	apierrors "logview/internal/errors"
	"logview/internal/infrastructure"
	"logview/internal/operations"
	"logview/internal/tabular"
	"logview/internal/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	_ = infrastructure.CloseLogFile()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// cli is the state shared by every subcommand once the root pre-run has
// loaded the configuration.
type cli struct {
	configFile string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "logview",
		Short: "Cycle-time and UPH reports from production logs",
		Long: `logview turns machine event logs into per-file cycle-time workbooks,
compares them across files and joins the result to the package reference.
It also cleans machine UPH exports and serves all of this as a web tool.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(infrastructure.EnsureTraceID(ctx))
			return c.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "YAML config file (default: "+config.EnvConfigFile+" or ./logview.yaml)")

	root.AddCommand(
		newProcessCmd(c),
		newSummarizeCmd(c),
		newUPHCmd(c),
		newServeCmd(c),
	)
	return root
}

// setup loads the configuration and builds a logger writing to stderr, so
// stdout only carries the produced file list.
func (c *cli) setup(stderr io.Writer) error {
	var (
		cfg *config.Config
		err error
	)
	if c.configFile != "" {
		cfg, err = config.LoadFile(c.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return apierrors.NewConfigError("failed to load configuration", err)
	}

	logger, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	slog.SetDefault(logger)

	c.cfg = cfg
	c.logger = logger
	return nil
}

// paths resolves the configured directories, with reference overriding the
// package reference file when set.
func (c *cli) paths(reference string) (*config.Paths, error) {
	pc := c.cfg.Paths
	if reference != "" {
		abs, err := filepath.Abs(reference)
		if err != nil {
			return nil, err
		}
		pc.ReferenceFile = abs
	}
	return config.NewPaths(pc)
}

func (c *cli) validator() *validation.FileValidator {
	return validation.NewFileValidator(c.cfg.Upload, c.logger)
}

// defaults assembles the transformation dependencies. The returned stop
// flushes telemetry.
func (c *cli) defaults(paths *config.Paths) (operations.Defaults, func(), error) {
	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(c.cfg.Telemetry), c.logger)
	if err != nil {
		return operations.Defaults{}, nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := infrastructure.NewPipelineMetrics(providers.Meter)
	if err != nil {
		return operations.Defaults{}, nil, err
	}
	stop := func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			c.logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}

	reader := tabular.NewReader(c.logger)
	return operations.Defaults{
		Pipeline:  c.cfg.Pipeline,
		Reference: crossfile.NewReferenceStore(paths.ReferenceFile, reader, c.logger),
		Tracer:    operations.NewTracer(providers.Tracer, metrics),
		Logger:    c.logger,
	}, stop, nil
}

// report prints the produced files to out and the skipped inputs to errOut.
func report(out, errOut io.Writer, res *operations.Result) {
	if res == nil {
		return
	}
	for _, s := range res.Skipped {
		fmt.Fprintf(errOut, "skipped %s: %s\n", s.Path, s.Reason)
	}
	for _, p := range res.Outputs {
		fmt.Fprintln(out, p)
	}
	if res.Message != "" {
		fmt.Fprintln(errOut, res.Message)
	}
}
