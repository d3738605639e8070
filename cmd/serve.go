package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/inforoute-cli/internal/fusion"
	"github.com/sells-group/inforoute-cli/internal/metrics"
	"github.com/sells-group/inforoute-cli/internal/output"
	"github.com/sells-group/inforoute-cli/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Rebuild the fused GeoJSON on a schedule and serve it over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Serve.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		rec := metrics.NewRecorder(metrics.WithRegistry(reg))
		engine, err := newEngine(cfg, rec)
		if err != nil {
			return err
		}
		writer := newWriter(afero.NewOsFs(), cfg)

		job := newScheduledRun(ctx, engine, writer, rec)
		c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(zap.NewStdLog(zap.L())))))
		if _, err := c.AddFunc(cfg.Serve.Schedule, job.Run); err != nil {
			return eris.Wrapf(err, "schedule %q", cfg.Serve.Schedule)
		}
		c.Start()
		go job.Run()

		srv := &http.Server{
			Addr: fmt.Sprintf(":%d", cfg.Serve.Port),
			Handler: server.NewRouter(writer, server.Options{
				CORSOrigins: cfg.Serve.CORSOrigins,
				Metrics:     rec.Handler(),
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			<-c.Stop().Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", cfg.Serve.Port),
			zap.String("schedule", cfg.Serve.Schedule),
			zap.Strings("sources", cfg.EnabledSources()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// writeObserver is told whether a run's artifacts were persisted.
type writeObserver interface {
	ObserveWrite(err error)
}

// scheduledRun executes one fusion run and writes its artifacts. Runs never
// overlap; each one is independent of the previous.
type scheduledRun struct {
	ctx      context.Context
	engine   *fusion.Engine
	writer   *output.Writer
	observer writeObserver
	mu       sync.Mutex
}

func newScheduledRun(ctx context.Context, e *fusion.Engine, w *output.Writer, obs writeObserver) *scheduledRun {
	return &scheduledRun{ctx: ctx, engine: e, writer: w, observer: obs}
}

func (s *scheduledRun) Run() {
	if !s.mu.TryLock() {
		zap.L().Warn("previous run still in progress, skipping")
		return
	}
	defer s.mu.Unlock()

	res, err := s.engine.Run(s.ctx)
	if err != nil {
		zap.L().Error("scheduled run failed", zap.Error(err))
		return
	}
	err = s.writer.Write(res.Collection)
	if err != nil {
		zap.L().Error("write artifacts failed", zap.Error(err))
	}
	if s.observer != nil {
		s.observer.ObserveWrite(err)
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
