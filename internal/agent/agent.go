package agent

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/mcdev12/awantura/internal/game"
	"github.com/mcdev12/awantura/internal/server"
)

// Options tune the sync loops.
type Options struct {
	PollInterval      time.Duration
	HeartbeatInterval time.Duration
	// AdvanceGrace is how long past the locally predicted deadline an
	// admin agent waits before nudging the server. The server advances
	// on its own; the nudge only covers clock skew and is idempotent.
	AdvanceGrace time.Duration
	// Rules mirrors the server's economy constants; affordances are
	// derived from it, so it must match the server configuration.
	Rules  game.Rules
	Clock  clockwork.Clock
	Logger zerolog.Logger
}

func DefaultOptions() Options {
	return Options{
		PollInterval:      1250 * time.Millisecond,
		HeartbeatInterval: 5 * time.Second,
		AdvanceGrace:      2 * time.Second,
		Rules:             game.DefaultRules(),
	}
}

// Agent mirrors the server state for one player identity. The mirror is
// replaced wholesale on every poll; local predictions (the 10Hz countdown,
// assumed post-bid balances) are derived, never merged back.
type Agent struct {
	client  *Client
	opts    Options
	clock   clockwork.Clock
	logger  zerolog.Logger
	isAdmin bool

	mu            sync.Mutex
	playerID      string
	mirror        server.Snapshot
	localDeadline time.Time
	lastPollErr   error
}

func New(client *Client, opts Options) *Agent {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Agent{
		client: client,
		opts:   opts,
		clock:  opts.Clock,
		logger: opts.Logger.With().Str("component", "sync_agent").Logger(),
	}
}

// Join registers the player and starts mirroring under that identity.
func (a *Agent) Join(name string) error {
	res, err := a.client.Register(name)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.playerID = res.ID
	a.isAdmin = res.IsAdmin
	a.mu.Unlock()
	a.logger.Info().Str("player_id", res.ID).Bool("admin", res.IsAdmin).Msg("joined game")
	return nil
}

// Leave clears the identity, which stops the loops at their next tick.
func (a *Agent) Leave() {
	a.mu.Lock()
	a.playerID = ""
	a.mu.Unlock()
}

// PlayerID returns the current identity, empty after Leave.
func (a *Agent) PlayerID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.playerID
}

// Run drives the poll and heartbeat loops until the context is cancelled
// or the identity is cleared.
func (a *Agent) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.pollLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		a.heartbeatLoop(ctx)
	}()
	wg.Wait()
	return ctx.Err()
}

func (a *Agent) pollLoop(ctx context.Context) {
	ticker := a.clock.NewTicker(a.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if a.PlayerID() == "" {
				return
			}
			a.PollOnce()
		}
	}
}

func (a *Agent) heartbeatLoop(ctx context.Context) {
	ticker := a.clock.NewTicker(a.opts.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			id := a.PlayerID()
			if id == "" {
				return
			}
			if err := a.client.Heartbeat(id); err != nil {
				a.logger.Warn().Err(err).Msg("heartbeat failed")
			}
		}
	}
}

// PollOnce fetches a snapshot and replaces the mirror. A network error
// degrades to a no-op tick: the stale mirror stays and the next poll
// retries.
func (a *Agent) PollOnce() {
	snap, err := a.client.State()

	a.mu.Lock()
	if err != nil {
		a.lastPollErr = err
		a.mu.Unlock()
		a.logger.Warn().Err(err).Msg("poll failed, keeping stale mirror")
		return
	}
	a.lastPollErr = nil
	a.mirror = snap
	// Deadlines are re-derived from time_left on every poll so local
	// clock drift never accumulates.
	if snap.TimeLeft > 0 {
		a.localDeadline = a.clock.Now().Add(time.Duration(snap.TimeLeft * float64(time.Second)))
	} else {
		a.localDeadline = time.Time{}
	}
	isAdmin, playerID := a.isAdmin, a.playerID
	a.mu.Unlock()

	if isAdmin && playerID != "" {
		a.maybeAdvance(snap, playerID)
	}
}

// maybeAdvance issues the admin early-advance once the predicted deadline
// has passed by the grace period. The server may have advanced already;
// an out-of-phase rejection is expected and ignored.
func (a *Agent) maybeAdvance(snap server.Snapshot, playerID string) {
	a.mu.Lock()
	deadline := a.localDeadline
	a.mu.Unlock()
	if deadline.IsZero() || a.clock.Now().Before(deadline.Add(a.opts.AdvanceGrace)) {
		return
	}

	var err error
	switch snap.Phase {
	case string(game.PhaseCountdown):
		err = a.client.NextRound(playerID)
	case string(game.PhaseBidding):
		err = a.client.FinishBidding(playerID)
	default:
		return
	}
	if err != nil {
		a.logger.Debug().Err(err).Str("phase", snap.Phase).Msg("early advance rejected")
	}
}

// Mirror returns the last good snapshot.
func (a *Agent) Mirror() server.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mirror
}

// Countdown predicts the remaining time from the locally derived deadline.
// Rendered at 10Hz between polls; the next snapshot overrides it.
func (a *Agent) Countdown() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.localDeadline.IsZero() {
		return 0
	}
	left := a.localDeadline.Sub(a.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}

// Healthy reports whether the last poll succeeded.
func (a *Agent) Healthy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastPollErr == nil
}
