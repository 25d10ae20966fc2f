package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() (cmd *cobra.Command) {
	envs := errors.Must(parseEnvironment())

	var (
		logFormat   string
		verbose     bool
		dumpMetrics bool
	)

	cmd = &cobra.Command{
		Use:   "scenepool [scenario.yaml]",
		Short: "Run pool and singleton scenarios against an in-memory scene",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			path := envs.Scenario
			if len(args) == 1 {
				path = args[0]
			}

			if path == "" {
				return errors.Error("no scenario given")
			}

			format, err := slogutil.NewFormat(logFormat)
			if err != nil {
				return fmt.Errorf("log format: %w", err)
			}

			lvl := slog.LevelInfo
			if verbose {
				lvl = slog.LevelDebug
			}

			logger := slogutil.New(&slogutil.Config{
				Output: cmd.ErrOrStderr(),
				Format: format,
				Level:  lvl,
			})

			sc, err := loadScenario(path)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			err = newRunner(logger, reg, cmd.OutOrStdout()).run(sc)
			if err != nil {
				return err
			}

			if dumpMetrics {
				return writeMetrics(cmd.OutOrStdout(), reg)
			}

			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&logFormat, "log-format", envs.LogFormat, "log format: text, json, default or adguard_legacy")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", envs.Verbose, "log slot and pool changes")
	cmd.Flags().BoolVar(&dumpMetrics, "metrics", false, "print pool metrics after the run")

	return cmd
}

// writeMetrics writes everything gathered from g in the text exposition
// format.
func writeMetrics(w io.Writer, g prometheus.Gatherer) (err error) {
	mfs, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		err = enc.Encode(mf)
		if err != nil {
			return fmt.Errorf("encoding metrics: %w", err)
		}
	}

	return nil
}
