package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"badmincal/internal/catalog"
	"badmincal/internal/config"
	"badmincal/internal/i18n"
	"badmincal/internal/logger"
	"badmincal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// CLI --listen overrides the config file listen address.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	logr, err := logger.New(conf.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	logr.Info("badmincal starting",
		zap.String("listen", conf.Listen),
		zap.String("data_dir", conf.DataDir),
		zap.Int("calendar_output_year", conf.CalendarOutputYear),
		zap.Strings("locales", conf.Locales),
		zap.Strings("featured_sessions", conf.FeaturedSessions),
	)

	store := catalog.NewStore(conf.DataDir, logr)
	if _, err := store.Year(conf.CalendarOutputYear); err != nil {
		logr.Fatal("failed to load race catalog", zap.Int("year", conf.CalendarOutputYear), zap.Error(err))
	}

	kindFallbacks := make(map[string]string, len(conf.SessionTypes))
	for kind, st := range conf.SessionTypes {
		kindFallbacks[kind] = st.Name
	}
	resolver, err := i18n.NewResolver(conf.LocalesDir, conf.Locales, conf.DefaultLocale(), kindFallbacks)
	if err != nil {
		logr.Fatal("failed to load locale tables", zap.Error(err))
	}

	// Periodic reload picks up edits to the data files without a restart.
	var scheduler *cron.Cron
	if conf.RefreshCron != "" {
		scheduler = cron.New()
		if _, err := scheduler.AddFunc(conf.RefreshCron, func() {
			if err := store.Reload(); err != nil {
				logr.Error("scheduled catalog reload failed", zap.Error(err))
			}
		}); err != nil {
			logr.Fatal("invalid refresh schedule", zap.String("refresh", conf.RefreshCron), zap.Error(err))
		}
		scheduler.Start()
	}

	server := web.NewServer(conf, store, resolver, logr)
	httpServer := &http.Server{
		Addr:              conf.Listen,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logr.Info("signal received, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	go func() {
		logr.Info("starting HTTP server", zap.String("listen", "http://"+conf.Listen))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("http server failed", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()

	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logr.Error("http server shutdown failed", zap.Error(err))
	}

	logr.Info("badmincal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")

	flag.Parse()

	return cfg
}
