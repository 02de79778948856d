package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/awantura/internal/agent"
	"github.com/mcdev12/awantura/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	name := flag.String("name", "", "player name to register as")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if *name == "" {
		log.Fatal().Msg("a player name is required (-name)")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	opts := agent.DefaultOptions()
	opts.PollInterval = cfg.PollInterval()
	opts.HeartbeatInterval = time.Duration(cfg.Agent.HeartbeatSeconds) * time.Second
	opts.AdvanceGrace = time.Duration(cfg.Agent.AdvanceGraceSecs * float64(time.Second))
	opts.Rules = cfg.Rules()
	opts.Logger = log.Logger

	a := agent.New(agent.NewClient(cfg.Agent.ServerURL), opts)
	if err := a.Join(*name); err != nil {
		log.Fatal().Err(err).Str("server", cfg.Agent.ServerURL).Msg("failed to join game")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Render loop: 10Hz predicted countdown plus the mirrored state line.
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		var lastLine string
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m := a.Mirror()
				line := fmt.Sprintf("[%s] runda %d | pula %d zł | czas %4.1fs",
					m.Phase, m.RoundID, m.Pot, a.Countdown().Seconds())
				if line != lastLine {
					fmt.Fprintf(os.Stdout, "\r%-80s", line)
					lastLine = line
				}
			}
		}
	}()

	go func() {
		<-ctx.Done()
		a.Leave()
	}()

	log.Info().Str("player", *name).Str("server", cfg.Agent.ServerURL).Msg("agent running")
	if err := a.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("agent stopped")
	}
	fmt.Fprintln(os.Stdout)
}
