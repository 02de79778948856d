package game

import (
	"math/rand"

	"github.com/google/uuid"
)

// Solo is the singleplayer variant: the same pot, ledger and hint shop,
// but one player bidding against the bank with no timers and no phases
// beyond "bidding, then answering". The base stake is debited at the start
// of every round and counts as the opening bid, so the bank bonus steps
// include it.
type Solo struct {
	rules  Rules
	rng    *rand.Rand
	player *Player
	pot    *Pot
	ledger *Ledger
	hints  *HintShop

	questions []Question
	index     int // -1 before the first round
	answering bool
	finished  bool
}

// SoloOutcome is the settled result of one singleplayer question.
type SoloOutcome struct {
	Score    int
	Accepted bool
	Correct  string
	PotWon   int
	Money    int
}

func NewSolo(rules Rules, rng *rand.Rand, questions []Question) *Solo {
	pot := NewPot()
	return &Solo{
		rules: rules,
		rng:   rng,
		player: &Player{
			ID:    uuid.New(),
			Name:  "solo",
			Money: rules.StartMoney,
		},
		pot:       pot,
		ledger:    NewLedger(rules, pot),
		hints:     NewHintShop(rules, rng),
		questions: questions,
		index:     -1,
	}
}

func (s *Solo) Player() *Player { return s.player }
func (s *Solo) Pot() *Pot       { return s.pot }
func (s *Solo) Finished() bool  { return s.finished }

// StartRound debits the base stake and opens bidding for the next
// question. Running out of questions or out of stake money ends the game.
func (s *Solo) StartRound() error {
	if s.finished {
		return ErrGameFinished
	}
	if s.index+1 >= len(s.questions) {
		s.finished = true
		return ErrGameFinished
	}
	if s.player.Money < s.rules.BaseStake {
		s.finished = true
		return ErrInsufficientFunds
	}

	s.index++
	s.answering = false
	s.player.Bid = 0
	s.player.AllIn = false
	s.pot.StartQuestion()
	s.ledger.StartQuestion()
	s.hints.StartQuestion()

	return s.ledger.Stake(s.player, s.rules.BaseStake)
}

// Bid raises the solo player's own stake by the bid step, growing the pot
// (and the bank bonus) before the question is revealed.
func (s *Solo) Bid() (BidResult, error) {
	if s.finished || s.answering {
		return BidResult{}, ErrWrongPhase
	}
	return s.ledger.Place(s.player, BidNormal)
}

// ShowQuestion closes bidding and reveals the current question.
func (s *Solo) ShowQuestion() (Question, error) {
	if s.finished || s.index < 0 {
		return Question{}, ErrWrongPhase
	}
	s.answering = true
	return s.questions[s.index], nil
}

// BuyHint is only available once the question is on the table.
func (s *Solo) BuyHint(kind HintKind) (HintResult, error) {
	if !s.answering {
		return HintResult{}, ErrWrongPhase
	}
	return s.hints.Purchase(kind, s.player, s.pot, s.questions[s.index])
}

// Answer settles the current question: a hit pays out the pot, a miss
// carries it into the next round.
func (s *Solo) Answer(text string) (SoloOutcome, error) {
	if !s.answering {
		return SoloOutcome{}, ErrWrongPhase
	}
	s.answering = false

	q := s.questions[s.index]
	score, accepted := Verify(text, q.Correct)
	out := SoloOutcome{Score: score, Accepted: accepted, Correct: q.Correct}
	if accepted {
		out.PotWon = s.pot.SettleWin()
		s.player.Money += out.PotWon
	} else {
		s.pot.SettleLoss()
	}
	out.Money = s.player.Money

	if s.index+1 >= len(s.questions) {
		s.finished = true
	}
	return out, nil
}
