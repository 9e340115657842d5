package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quicknotes/internal/config"
	"quicknotes/internal/constants"
	"quicknotes/internal/events"
	"quicknotes/internal/logging"
	tracing "quicknotes/internal/monitoring/tracing"
	"quicknotes/internal/ratelimit"
	srv "quicknotes/internal/server"
	"quicknotes/internal/upstream/notion"

	log "github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug mode")
	flag.Parse()

	store, err := config.NewStore(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	defer store.Close()

	cfg := store.Snapshot()
	if *debug {
		cfg.Debug = true
	}

	if err := logging.Setup(&cfg); err != nil {
		log.WithError(err).Fatal("failed to configure logging")
	}

	traceShutdown, err := tracing.Init(context.Background())
	if err != nil {
		log.WithError(err).Warn("failed to initialize tracing")
	}
	if traceShutdown != nil {
		defer func() {
			if err := traceShutdown(context.Background()); err != nil {
				log.WithError(err).Warn("failed to shutdown tracing")
			}
		}()
	}

	log.Infof("Starting quicknotes %s", constants.GetFullVersion())

	hub := events.NewHub()
	store.SetEventPublisher(hub)

	limits := ratelimit.NewManager()
	client := notion.NewClient(notion.Options{
		BaseURL: cfg.NotionBaseURL,
		Timeout: constants.NotionRequestTimeout,
		Limits:  limits,
	})

	service := srv.NewService(store, client, hub)

	broadcaster := srv.NewBroadcaster(hub)
	broadcaster.Start()
	defer broadcaster.Stop()

	if cfg.Debug {
		hub.Subscribe(events.TopicConfigUpdated, func(_ context.Context, evt events.Event) {
			log.WithField("topic", evt.Topic).Debugf("config event: %v", evt.Payload)
		})
	}

	engine := srv.BuildEngine(&cfg, service, broadcaster)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	httpSrv := &http.Server{Addr: addr, Handler: engine}

	go func() {
		log.Infof("API listening on %s", addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("http server: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("Shutdown signal received")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), constants.ServerShutdownTimeout)
	defer cancelShutdown()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("graceful shutdown interrupted")
	}
	// Give in-flight websocket writes a moment to drain.
	time.Sleep(100 * time.Millisecond)
	log.Info("Server stopped")
}
