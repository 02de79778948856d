// Package config loads the server and agent settings: defaults, then an
// optional YAML file, then environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mcdev12/awantura/internal/game"
)

// Config is the full runtime configuration.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`

	Questions struct {
		BaseURL string `yaml:"base_url"`
		MaxSets int    `yaml:"max_sets"`
	} `yaml:"questions"`

	Game struct {
		StartMoney       int  `yaml:"start_money"`
		BaseStake        int  `yaml:"base_stake"`
		BidStep          int  `yaml:"bid_step"`
		MaxBid           int  `yaml:"max_bid"`
		RequireABCDFirst bool `yaml:"require_abcd_first"`
	} `yaml:"game"`

	Timers struct {
		CountdownSeconds     int `yaml:"countdown_seconds"`
		BiddingSeconds       int `yaml:"bidding_seconds"` // 0 waits for the admin
		AnsweringSeconds     int `yaml:"answering_seconds"`
		DiscussionSeconds    int `yaml:"discussion_seconds"`
		HintExtensionSeconds int `yaml:"hint_extension_seconds"`
	} `yaml:"timers"`

	Agent struct {
		ServerURL          string  `yaml:"server_url"`
		PollIntervalMillis int     `yaml:"poll_interval_ms"`
		HeartbeatSeconds   int     `yaml:"heartbeat_seconds"`
		AdvanceGraceSecs   float64 `yaml:"advance_grace_seconds"`
	} `yaml:"agent"`

	NATS struct {
		Enabled bool   `yaml:"enabled"`
		URL     string `yaml:"url"`
	} `yaml:"nats"`

	Postgres struct {
		Enabled bool   `yaml:"enabled"`
		DSN     string `yaml:"dsn"`
	} `yaml:"postgres"`
}

// Default returns the classic game constants.
func Default() Config {
	var c Config
	c.ListenAddr = ":8080"
	c.Questions.BaseURL = "https://raw.githubusercontent.com/mechagdynia2-ai/game/main/assets/"
	c.Questions.MaxSets = 20
	c.Game.StartMoney = 10000
	c.Game.BaseStake = 500
	c.Game.BidStep = 100
	c.Game.MaxBid = 5000
	c.Game.RequireABCDFirst = true
	c.Timers.CountdownSeconds = 20
	c.Timers.BiddingSeconds = 20
	c.Timers.AnsweringSeconds = 60
	c.Timers.DiscussionSeconds = 20
	c.Timers.HintExtensionSeconds = 30
	c.Agent.ServerURL = "http://localhost:8080"
	c.Agent.PollIntervalMillis = 1250
	c.Agent.HeartbeatSeconds = 5
	c.Agent.AdvanceGraceSecs = 2
	c.NATS.URL = "nats://localhost:4222"
	return c
}

// Load builds the configuration from defaults, the YAML file at path (if
// any) and environment overrides.
func Load(path string) (Config, error) {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	c.ListenAddr = getEnv("LISTEN_ADDR", c.ListenAddr)
	c.Questions.BaseURL = getEnv("QUESTIONS_BASE_URL", c.Questions.BaseURL)
	c.Questions.MaxSets = getEnvAsInt("QUESTIONS_MAX_SETS", c.Questions.MaxSets)
	c.Agent.ServerURL = getEnv("SERVER_URL", c.Agent.ServerURL)
	if v := os.Getenv("NATS_URL"); v != "" {
		c.NATS.Enabled = true
		c.NATS.URL = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.Enabled = true
		c.Postgres.DSN = v
	}
	return c, nil
}

// Rules converts the economy section into engine rules.
func (c Config) Rules() game.Rules {
	r := game.DefaultRules()
	r.StartMoney = c.Game.StartMoney
	r.BaseStake = c.Game.BaseStake
	r.BidStep = c.Game.BidStep
	r.MaxBid = c.Game.MaxBid
	r.RequireABCDFirst = c.Game.RequireABCDFirst
	return r
}

// GameTimers converts the timer section into engine durations.
func (c Config) GameTimers() game.Timers {
	return game.Timers{
		Countdown:      time.Duration(c.Timers.CountdownSeconds) * time.Second,
		BiddingTimeout: time.Duration(c.Timers.BiddingSeconds) * time.Second,
		Answering:      time.Duration(c.Timers.AnsweringSeconds) * time.Second,
		Discussion:     time.Duration(c.Timers.DiscussionSeconds) * time.Second,
		HintExtension:  time.Duration(c.Timers.HintExtensionSeconds) * time.Second,
	}
}

// PollInterval returns the agent poll cadence.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Agent.PollIntervalMillis) * time.Millisecond
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
