package game

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/awantura/internal/events"
)

var testQuestions = []Question{
	{
		Text:    "Stolica Polski?",
		Correct: "Warszawa",
		Options: [4]string{"Warszawa", "Kraków", "Poznań", "Gdańsk"},
	},
	{
		Text:    "Najdłuższa rzeka Polski?",
		Correct: "Wisła",
		Options: [4]string{"Odra", "Wisła", "Warta", "Bug"},
	},
}

func newTestMachine(t *testing.T) (*Machine, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	m, evts := NewMachine(DefaultRules(), DefaultTimers(), clock, rand.New(rand.NewSource(1)), testQuestions)
	if len(evts) != 1 || evts[0].Type != events.TypeRoundStarted {
		t.Fatalf("expected a RoundStarted event, got %+v", evts)
	}
	return m, clock
}

func hasEvent(evts []events.Event, typ events.Type) bool {
	for _, e := range evts {
		if e.Type == typ {
			return true
		}
	}
	return false
}

func TestMachineFullRoundCycle(t *testing.T) {
	m, clock := newTestMachine(t)
	p1 := newTestPlayer("ala", 10000)
	p2 := newTestPlayer("ola", 10000)
	players := []*Player{p1, p2}

	if m.Phase() != PhaseCountdown || m.RoundID() != 1 {
		t.Fatalf("initial state: phase=%v round=%d", m.Phase(), m.RoundID())
	}

	// Countdown expires into bidding.
	clock.Advance(20 * time.Second)
	evts, err := m.ExpireDeadline(players)
	if err != nil {
		t.Fatalf("countdown expiry failed: %v", err)
	}
	if !hasEvent(evts, events.TypeBiddingOpened) || m.Phase() != PhaseBidding {
		t.Fatalf("expected bidding phase, got %v", m.Phase())
	}

	// p1 bids 100, p2 bids 200.
	if _, err := m.PlaceBid(p1, BidNormal); err != nil {
		t.Fatalf("p1 bid: %v", err)
	}
	if _, err := m.PlaceBid(p2, BidNormal); err != nil {
		t.Fatalf("p2 bid: %v", err)
	}
	if _, err := m.PlaceBid(p2, BidNormal); err != nil {
		t.Fatalf("p2 second bid: %v", err)
	}

	// Admin closes bidding; the 200 bidder answers.
	evts, err = m.CloseBidding(players)
	if err != nil {
		t.Fatalf("close bidding: %v", err)
	}
	if !hasEvent(evts, events.TypeQuestionRevealed) {
		t.Fatal("expected the question to be revealed")
	}
	if m.Phase() != PhaseAnswering || m.AnsweringID() != p2.ID {
		t.Fatalf("answering phase for p2 expected, got %v / %v", m.Phase(), m.AnsweringID())
	}

	// Winner answers; discussion runs its 20 seconds; verdict settles and
	// the next round's countdown begins with round_id bumped exactly once.
	if _, err := m.SubmitAnswer(p2.ID, "Warszawa", false); err != nil {
		t.Fatalf("submit answer: %v", err)
	}
	if m.Phase() != PhaseDiscussion {
		t.Fatalf("expected discussion, got %v", m.Phase())
	}

	clock.Advance(20 * time.Second)
	evts, err = m.ExpireDeadline(players)
	if err != nil {
		t.Fatalf("discussion expiry failed: %v", err)
	}
	if !hasEvent(evts, events.TypeVerdictReached) || !hasEvent(evts, events.TypeRoundStarted) {
		t.Fatalf("expected verdict and next round start, got %+v", evts)
	}
	if m.Phase() != PhaseCountdown || m.RoundID() != 2 || m.QuestionIndex() != 1 {
		t.Fatalf("after verdict: phase=%v round=%d question=%d", m.Phase(), m.RoundID(), m.QuestionIndex())
	}

	verdict := m.LastVerdict()
	if verdict == nil || !verdict.Accepted || verdict.PotWon != 300 {
		t.Fatalf("verdict = %+v, want accepted with pot 300", verdict)
	}
	if p2.Money != 10000-200+300 {
		t.Fatalf("winner money = %d, want 10100", p2.Money)
	}
}

func TestMachineRejectedAnswerCarriesPotOver(t *testing.T) {
	m, clock := newTestMachine(t)
	p := newTestPlayer("ala", 10000)
	players := []*Player{p}

	clock.Advance(20 * time.Second)
	mustExpire(t, m, players)
	if _, err := m.PlaceBid(p, BidNormal); err != nil {
		t.Fatalf("bid: %v", err)
	}
	if _, err := m.CloseBidding(players); err != nil {
		t.Fatalf("close bidding: %v", err)
	}
	potBefore := m.Pot().Main

	if _, err := m.SubmitAnswer(p.ID, "Kraków", false); err != nil {
		t.Fatalf("submit answer: %v", err)
	}
	clock.Advance(20 * time.Second)
	mustExpire(t, m, players)

	verdict := m.LastVerdict()
	if verdict.Accepted {
		t.Fatalf("Kraków should be rejected, verdict=%+v", verdict)
	}
	if verdict.CarryoverOut != potBefore {
		t.Fatalf("carryover = %d, want the full pot %d", verdict.CarryoverOut, potBefore)
	}
	if m.Pot().Main != potBefore {
		t.Fatalf("next question should open with the carried pot, got %d", m.Pot().Main)
	}
}

func TestMachineAnswerTimeoutSubmitsEmpty(t *testing.T) {
	m, clock := newTestMachine(t)
	p := newTestPlayer("ala", 10000)
	players := []*Player{p}

	clock.Advance(20 * time.Second)
	mustExpire(t, m, players)
	if _, err := m.PlaceBid(p, BidNormal); err != nil {
		t.Fatalf("bid: %v", err)
	}
	if _, err := m.CloseBidding(players); err != nil {
		t.Fatalf("close bidding: %v", err)
	}

	clock.Advance(60 * time.Second)
	evts := mustExpire(t, m, players)
	if !hasEvent(evts, events.TypeAnswerSubmitted) || m.Phase() != PhaseDiscussion {
		t.Fatalf("answer timeout should auto-submit, phase=%v", m.Phase())
	}

	clock.Advance(20 * time.Second)
	mustExpire(t, m, players)
	if v := m.LastVerdict(); v == nil || v.Accepted || !v.TimedOut {
		t.Fatalf("expected a timed-out rejection, got %+v", v)
	}
}

func TestMachineNoBidsSettlesAsMiss(t *testing.T) {
	m, clock := newTestMachine(t)
	players := []*Player{newTestPlayer("ala", 10000)}

	clock.Advance(20 * time.Second)
	mustExpire(t, m, players)
	clock.Advance(20 * time.Second)
	evts := mustExpire(t, m, players)

	if !hasEvent(evts, events.TypeVerdictReached) {
		t.Fatal("a bid-less round should settle immediately")
	}
	if m.Phase() != PhaseCountdown || m.RoundID() != 2 {
		t.Fatalf("expected the next countdown, got %v round %d", m.Phase(), m.RoundID())
	}
}

func TestMachineHintExtendsDeadline(t *testing.T) {
	m, clock := newTestMachine(t)
	p := newTestPlayer("ala", 100000)
	players := []*Player{p}

	clock.Advance(20 * time.Second)
	mustExpire(t, m, players)
	if _, err := m.PlaceBid(p, BidNormal); err != nil {
		t.Fatalf("bid: %v", err)
	}
	if _, err := m.CloseBidding(players); err != nil {
		t.Fatalf("close bidding: %v", err)
	}

	before := m.Deadline()
	if _, err := m.BuyHint(p, HintABCD); err != nil {
		t.Fatalf("buy hint: %v", err)
	}
	if got := m.Deadline().Sub(before); got != 30*time.Second {
		t.Fatalf("hint extension = %v, want 30s", got)
	}
}

func TestMachineHintOnlyForAnsweringPlayer(t *testing.T) {
	m, clock := newTestMachine(t)
	p := newTestPlayer("ala", 10000)
	other := newTestPlayer("ola", 10000)
	players := []*Player{p, other}

	clock.Advance(20 * time.Second)
	mustExpire(t, m, players)
	if _, err := m.PlaceBid(p, BidNormal); err != nil {
		t.Fatalf("bid: %v", err)
	}
	if _, err := m.CloseBidding(players); err != nil {
		t.Fatalf("close bidding: %v", err)
	}

	if _, err := m.BuyHint(other, HintABCD); !errors.Is(err, ErrNotAnswering) {
		t.Fatalf("err = %v, want ErrNotAnswering", err)
	}
}

func TestMachineFinishesWhenSetExhausted(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m, _ := NewMachine(DefaultRules(), DefaultTimers(), clock, rand.New(rand.NewSource(1)), testQuestions[:1])
	players := []*Player{newTestPlayer("ala", 10000)}

	clock.Advance(20 * time.Second)
	mustExpire(t, m, players)
	clock.Advance(20 * time.Second)
	evts := mustExpire(t, m, players)

	if !hasEvent(evts, events.TypeGameFinished) || m.Phase() != PhaseFinished {
		t.Fatalf("expected the game to finish, phase=%v", m.Phase())
	}
	if _, err := m.ExpireDeadline(players); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("finished machine should reject transitions, err=%v", err)
	}
}

func TestMachineWrongPhaseActions(t *testing.T) {
	m, _ := newTestMachine(t)
	p := newTestPlayer("ala", 10000)

	if _, err := m.PlaceBid(p, BidNormal); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("bid during countdown: err = %v, want ErrWrongPhase", err)
	}
	if _, err := m.SubmitAnswer(p.ID, "x", false); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("answer during countdown: err = %v, want ErrWrongPhase", err)
	}
	if _, err := m.CloseBidding([]*Player{p}); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("close bidding during countdown: err = %v, want ErrWrongPhase", err)
	}
}

func mustExpire(t *testing.T, m *Machine, players []*Player) []events.Event {
	t.Helper()
	evts, err := m.ExpireDeadline(players)
	if err != nil {
		t.Fatalf("ExpireDeadline in %v failed: %v", m.Phase(), err)
	}
	return evts
}
