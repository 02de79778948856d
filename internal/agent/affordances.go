package agent

import (
	"github.com/mcdev12/awantura/internal/game"
	"github.com/mcdev12/awantura/internal/server"
)

// Affordances is the set of actions the UI should currently offer. It is
// recomputed from the mirror after every poll, never patched.
type Affordances struct {
	CanBid           bool
	CanAllIn         bool
	CanAnswer        bool
	CanBuyHint       bool
	CanFinishBidding bool
	CanNextRound     bool
	CanSelectSet     bool
}

// ComputeAffordances derives the action set for one player from a
// snapshot, under the server's configured economy rules.
func ComputeAffordances(snap server.Snapshot, playerID string, isAdmin bool, rules game.Rules) Affordances {
	var me *server.PlayerSnapshot
	for i := range snap.Players {
		if snap.Players[i].ID == playerID {
			me = &snap.Players[i]
			break
		}
	}
	if me == nil {
		return Affordances{}
	}

	var a Affordances
	switch snap.Phase {
	case string(game.PhaseLobby):
		a.CanSelectSet = isAdmin
	case string(game.PhaseCountdown):
		a.CanNextRound = isAdmin
	case string(game.PhaseBidding):
		a.CanBid = me.Money >= rules.BidStep && me.Bid < rules.MaxBid
		a.CanAllIn = me.Money > 0 && !me.IsAllIn
		a.CanFinishBidding = isAdmin
	case string(game.PhaseAnswering):
		answering := snap.AnsweringPlayerID == playerID
		a.CanAnswer = answering
		a.CanBuyHint = answering
	case string(game.PhaseDiscussion):
		a.CanBuyHint = snap.AnsweringPlayerID == playerID
	}
	return a
}

// Affordances derives the current action set for the agent's identity.
func (a *Agent) Affordances() Affordances {
	a.mu.Lock()
	snap, id, isAdmin := a.mirror, a.playerID, a.isAdmin
	a.mu.Unlock()
	return ComputeAffordances(snap, id, isAdmin, a.opts.Rules)
}
