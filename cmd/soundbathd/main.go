// Command soundbathd serves the sound engine over HTTP.
//
// Configuration comes from SOUNDBATH_* environment variables; see
// internal/config. Prometheus metrics are served at /metrics.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	soundbath "github.com/tphakala/go-sound-bath"
	"github.com/tphakala/go-sound-bath/internal/config"
	"github.com/tphakala/go-sound-bath/internal/handler"
)

func main() {
	cfg := config.Load()

	logger, _ := zap.NewProduction()
	if cfg.Development {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ecfg, err := engineConfig(cfg, logger, reg)
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	engine, err := soundbath.New(ecfg)
	if err != nil {
		logger.Fatal("failed to create sound engine", zap.Error(err))
	}

	h := handler.NewHandlers(engine, logger)
	srv := &http.Server{
		Addr: cfg.ListenAddr,
		Handler: handler.NewRouter(h, handler.RouterOptions{
			AllowedOrigins: cfg.AllowedOrigins,
			Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
			Logger:         logger,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	go func() {
		logger.Info("control API listening",
			zap.String("addr", cfg.ListenAddr),
			zap.Stringer("backend", engine.Backend()),
			zap.Bool("degraded", engine.Degraded()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("control API failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := engine.Close(); err != nil {
		logger.Warn("engine close", zap.Error(err))
	}
	logger.Info("stopped")
}

// engineConfig maps the daemon configuration onto the engine's.
func engineConfig(cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (soundbath.Config, error) {
	backend, err := soundbath.ParseBackend(cfg.Backend)
	if err != nil {
		return soundbath.Config{}, err
	}

	ec := soundbath.DefaultConfig()
	ec.SampleRate = cfg.SampleRate
	ec.Backend = backend
	ec.MinFade = cfg.MinFade
	ec.Release = cfg.Release
	ec.MaxRenderDuration = cfg.MaxRender
	ec.Thresholds = soundbath.Thresholds{
		MinAudibleHz:   cfg.MinAudibleHz,
		SpeakerMinHz:   cfg.SpeakerMinHz,
		MaxPracticalHz: cfg.MaxPracticalHz,
		CarrierHz:      cfg.CarrierHz,
	}
	ec.Logger = logger
	ec.Registerer = reg
	if cfg.Headless {
		ec.OpenOutput = func(int) (soundbath.Output, error) { return nil, soundbath.ErrUnavailable }
	}
	return ec, ec.Validate()
}
