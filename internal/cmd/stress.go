package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/Iron-Ham/conclist/internal/config"
	"github.com/Iron-Ham/conclist/internal/errors"
	"github.com/Iron-Ham/conclist/internal/stress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Run concurrent writers and readers against a list",
	Long: `Run concurrent writers and cursor readers against a fresh list and verify
the outcome.

Each writer appends tagged items ("w<writer>_<n>"). Each reader repeatedly
traverses the list with a cursor until the writers finish, checking that no
traversal repeats an element or shrinks. At the end every tag must be present
exactly once. With --observable the run uses the observable list and also
checks that one add event was published per item.

The command exits with a non-zero status when any round fails.

Examples:
  conclist stress
  conclist stress --writers 200 --readers 100 --items 50 --rounds 5
  conclist stress --observable --format json`,
	RunE: runStress,
}

var stressWatchConfig bool

func init() {
	flags := stressCmd.Flags()
	flags.Int("writers", 100, "number of writer goroutines")
	flags.Int("readers", 50, "number of reader goroutines")
	flags.Int("items", 5, "items appended by each writer")
	flags.Bool("observable", false, "use the observable list and count its events")
	flags.Int("rounds", 1, "number of rounds, each on a fresh list")
	flags.Int("timeout", 0, "abort the run after this many seconds (0 = no limit)")
	flags.String("format", "text", "report format: text, json, yaml")
	flags.BoolVar(&stressWatchConfig, "watch-config", false, "apply config file changes to the following rounds")

	_ = viper.BindPFlag("stress.writers", flags.Lookup("writers"))
	_ = viper.BindPFlag("stress.readers", flags.Lookup("readers"))
	_ = viper.BindPFlag("stress.items_per_writer", flags.Lookup("items"))
	_ = viper.BindPFlag("stress.observable", flags.Lookup("observable"))
	_ = viper.BindPFlag("stress.rounds", flags.Lookup("rounds"))
	_ = viper.BindPFlag("stress.timeout_seconds", flags.Lookup("timeout"))
	_ = viper.BindPFlag("output.format", flags.Lookup("format"))

	rootCmd.AddCommand(stressCmd)
}

func runStress(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if errors.Is(err, errors.ErrInvalidInput) {
		return fmt.Errorf("%w (check the file shown by 'conclist config path')", err)
	}
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	runner := stress.NewRunner(cfg.Stress, logger)
	if stressWatchConfig {
		config.Watch(func(updated *config.Config) {
			runner.SetConfig(updated.Stress)
			logger.Info("configuration reloaded",
				"writers", updated.Stress.Writers,
				"readers", updated.Stress.Readers,
			)
		}, func(err error) {
			if errors.GetSeverity(err) >= errors.SeverityError {
				logger.Error("failed to reload configuration", "error", err)
				return
			}
			logger.Warn("ignoring invalid configuration change", "error", err)
		})
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	color := colorEnabled(cfg.Output.Color, out)

	var report *stress.Report
	var runErr error
	if showProgress(cfg.Output.Format, color, out) {
		report, runErr = runWithProgress(ctx, runner, out)
		if report == nil && runErr != nil {
			return runErr
		}
	} else {
		report, runErr = runner.Run(ctx)
	}

	p := newPalette(out, color)
	if err := writeReport(out, report, cfg.Output.Format, p); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if runErr != nil {
		return fmt.Errorf("stress run aborted: %w", runErr)
	}
	if !report.OK() {
		return fmt.Errorf("stress run failed: %d of %d rounds failed", len(report.Failed()), len(report.Rounds))
	}
	return nil
}

// showProgress reports whether the live progress view is drawn: only for
// the text report, on a terminal, with color allowed.
func showProgress(format string, color bool, out io.Writer) bool {
	return format == "text" && color && terminalWidth(out) > 0
}
