package server

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// RunScheduler drives the session's timed transitions. It sleeps until the
// earliest armed deadline, fires the expiry, then re-arms; every dispatch
// nudges the wake channel so a new deadline replaces a stale timer
// immediately. Returns when the context is cancelled.
func (s *Session) RunScheduler(ctx context.Context) error {
	for {
		deadline, armed := s.NextDeadline()
		if !armed {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.wake:
				continue
			}
		}

		wait := deadline.Sub(s.clock.Now())
		if wait <= 0 {
			s.ExpireDeadline(ctx)
			continue
		}

		timer := s.clock.NewTimer(wait)
		select {
		case <-ctx.Done():
			stopAndDrainTimer(timer)
			return ctx.Err()
		case <-s.wake:
			// Deadline may have moved (hint extension, early advance).
			stopAndDrainTimer(timer)
		case <-timer.Chan():
			s.ExpireDeadline(ctx)
		}
	}
}

// stopAndDrainTimer stops a timer and drains its channel so an
// already-fired timer cannot leak a stale tick into the next loop turn.
func stopAndDrainTimer(t clockwork.Timer) {
	if !t.Stop() {
		select {
		case <-t.Chan():
		default:
		}
	}
}

// StalenessThreshold is how long a player may go without a heartbeat
// before snapshots may flag them absent.
const StalenessThreshold = 10 * time.Second

// StalePlayers lists names of players whose last heartbeat is older than
// the threshold. Stale players are never removed; there is no admin
// re-election.
func (s *Session) StalePlayers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.clock.Now().Add(-StalenessThreshold)
	var stale []string
	for _, p := range s.roster() {
		if p.LastHeartbeat.Before(cutoff) {
			stale = append(stale, p.Name)
		}
	}
	return stale
}
