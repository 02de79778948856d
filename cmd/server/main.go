package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/awantura/internal/archive"
	"github.com/mcdev12/awantura/internal/config"
	"github.com/mcdev12/awantura/internal/eventbus"
	"github.com/mcdev12/awantura/internal/gateway"
	"github.com/mcdev12/awantura/internal/questions"
	"github.com/mcdev12/awantura/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Event sinks: structured log always, NATS and the websocket feed when
	// configured.
	sinks := []eventbus.Publisher{eventbus.NewLogPublisher(log.Logger)}
	feed := gateway.NewFeed(gateway.DefaultFeedConfig(), log.Logger)
	sinks = append(sinks, feed)
	if cfg.NATS.Enabled {
		jsCfg := eventbus.DefaultJetStreamConfig()
		jsCfg.URL = cfg.NATS.URL
		nats, err := eventbus.NewJetStreamPublisher(jsCfg, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect NATS publisher")
		}
		sinks = append(sinks, nats)
	}
	bus := eventbus.NewMulti(sinks...)
	defer bus.Close()

	var recorder server.RoundRecorder
	if cfg.Postgres.Enabled {
		arch, err := archive.New(ctx, cfg.Postgres.DSN, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open round archive")
		}
		defer arch.Close()
		recorder = arch
	}

	sess := server.NewSession(server.Config{
		Rules:     cfg.Rules(),
		Timers:    cfg.GameTimers(),
		MaxSets:   cfg.Questions.MaxSets,
		Source:    questions.NewLoader(cfg.Questions.BaseURL, log.Logger),
		Publisher: bus,
		Recorder:  recorder,
		Logger:    log.Logger,
	})

	go func() {
		if err := sess.RunScheduler(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("scheduler stopped")
		}
	}()

	gw := gateway.New(sess, feed, log.Logger)
	srv := gateway.NewHTTPServer(cfg.ListenAddr, gw)

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Str("session_id", sess.ID()).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
}
