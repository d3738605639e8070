package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runSources []string
	runOutDir  string
	runDryRun  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch every source once and write the fused GeoJSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := selectSources(cfg, runSources); err != nil {
			return err
		}
		if runOutDir != "" {
			cfg.Output.Dir = runOutDir
		}
		if err := cfg.Validate("run"); err != nil {
			return err
		}

		engine, err := newEngine(cfg, nil)
		if err != nil {
			return err
		}

		res, err := engine.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "run")
		}

		for _, s := range res.Stats {
			if s.FetchErr != nil {
				zap.L().Warn("source unavailable", zap.String("source", s.Key), zap.Error(s.FetchErr))
			}
		}

		if !runDryRun {
			if err := newWriter(afero.NewOsFs(), cfg).Write(res.Collection); err != nil {
				return err
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Collection.Metadata.Summary())
	},
}

func init() {
	runCmd.Flags().StringSliceVar(&runSources, "sources", nil, "sources to fuse, e.g. cd35,cd44 (default: enabled in config)")
	runCmd.Flags().StringVar(&runOutDir, "out", "", "output directory (default from config)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "print the summary without writing artifacts")
	rootCmd.AddCommand(runCmd)
}
