package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/awantura/internal/events"
)

// Verdict is the settled outcome of one round.
type Verdict struct {
	RoundID       int
	QuestionIndex int
	PlayerID      uuid.UUID
	PlayerName    string
	Answer        string
	Correct       string
	Score         int
	Accepted      bool
	TimedOut      bool
	PotWon        int
	CarryoverOut  int
}

// Machine is the authoritative per-round lifecycle:
//
//	Countdown → Bidding → Answering → Discussion → Verdict → Countdown | Finished
//
// It owns the pot, the bidding ledger and the hint shop, and exposes the
// current deadline so a scheduler can drive the timed transitions. The
// verdict itself is instant: settling happens inside the discussion-end
// transition and the machine lands directly on the next countdown.
//
// Machine is not safe for concurrent use; the session serializes access.
type Machine struct {
	rules  Rules
	timers Timers
	clock  clockwork.Clock

	questions []Question
	pot       *Pot
	ledger    *Ledger
	hints     *HintShop

	roundID       int
	questionIndex int
	phase         Phase
	deadline      time.Time

	answeringID   uuid.UUID
	answeringName string
	answerText    string
	answerTimeout bool
	lastVerdict   *Verdict
}

// NewMachine starts round 1 in its countdown. The RNG feeds hint pricing
// only; inject a seeded one for deterministic tests.
func NewMachine(rules Rules, timers Timers, clock clockwork.Clock, rng *rand.Rand, questions []Question) (*Machine, []events.Event) {
	pot := NewPot()
	m := &Machine{
		rules:     rules,
		timers:    timers,
		clock:     clock,
		questions: questions,
		pot:       pot,
		ledger:    NewLedger(rules, pot),
		hints:     NewHintShop(rules, rng),
	}
	return m, m.startRound(1, 0)
}

func (m *Machine) startRound(roundID, questionIndex int) []events.Event {
	m.roundID = roundID
	m.questionIndex = questionIndex
	m.phase = PhaseCountdown
	m.deadline = m.clock.Now().Add(m.timers.Countdown)
	m.answeringID = uuid.Nil
	m.answeringName = ""
	m.answerText = ""
	m.answerTimeout = false

	m.pot.StartQuestion()
	m.ledger.StartQuestion()
	m.hints.StartQuestion()

	d := m.deadline
	return []events.Event{events.New(m.clock.Now(), events.TypeRoundStarted, events.RoundStartedPayload{
		RoundID:       m.roundID,
		QuestionIndex: m.questionIndex,
		Pot:           m.pot.Main,
		Carryover:     m.pot.Carryover,
		Deadline:      &d,
	})}
}

// StartBidding moves Countdown → Bidding, either on countdown expiry or on
// an admin next_round.
func (m *Machine) StartBidding() ([]events.Event, error) {
	if m.phase != PhaseCountdown {
		return nil, ErrWrongPhase
	}
	m.phase = PhaseBidding
	payload := events.BiddingOpenedPayload{RoundID: m.roundID}
	if m.timers.BiddingTimeout > 0 {
		m.deadline = m.clock.Now().Add(m.timers.BiddingTimeout)
		d := m.deadline
		payload.Deadline = &d
	} else {
		m.deadline = time.Time{}
	}
	return []events.Event{events.New(m.clock.Now(), events.TypeBiddingOpened, payload)}, nil
}

// PlaceBid applies a bid during the bidding phase.
func (m *Machine) PlaceBid(p *Player, kind BidKind) ([]events.Event, error) {
	if m.phase != PhaseBidding {
		return nil, ErrWrongPhase
	}
	res, err := m.ledger.Place(p, kind)
	if err != nil {
		return nil, err
	}
	return []events.Event{events.New(m.clock.Now(), events.TypeBidPlaced, events.BidPlacedPayload{
		PlayerID:   p.ID.String(),
		PlayerName: p.Name,
		Amount:     res.Amount,
		Total:      res.Total,
		Bonus:      res.Bonus,
		AllIn:      res.AllIn,
		Pot:        m.pot.Main,
	})}, nil
}

// CloseBidding ends the auction, on admin finish_bidding or on the bidding
// timeout. With at least one bid the highest bidder moves to Answering;
// with none the round settles immediately as a miss and the pot carries
// over to the next question.
func (m *Machine) CloseBidding(players []*Player) ([]events.Event, error) {
	if m.phase != PhaseBidding {
		return nil, ErrWrongPhase
	}

	winner, ok := m.ledger.Winner(players)
	if !ok {
		evts := []events.Event{events.New(m.clock.Now(), events.TypeBiddingClosed, events.BiddingClosedPayload{
			RoundID: m.roundID,
		})}
		return append(evts, m.settle(nil)...), nil
	}

	m.phase = PhaseAnswering
	m.answeringID = winner.ID
	m.answeringName = winner.Name
	m.deadline = m.clock.Now().Add(m.timers.Answering)

	d := m.deadline
	return []events.Event{
		events.New(m.clock.Now(), events.TypeBiddingClosed, events.BiddingClosedPayload{
			RoundID:    m.roundID,
			WinnerID:   winner.ID.String(),
			WinnerName: winner.Name,
			WinningBid: winner.Bid,
		}),
		events.New(m.clock.Now(), events.TypeQuestionRevealed, events.QuestionRevealedPayload{
			QuestionIndex: m.questionIndex,
			Text:          m.questions[m.questionIndex].Text,
			Deadline:      &d,
		}),
	}, nil
}

// SubmitAnswer records the answering player's first submission and moves to
// Discussion. The deadline path calls this with an empty answer.
func (m *Machine) SubmitAnswer(playerID uuid.UUID, answer string, timedOut bool) ([]events.Event, error) {
	if m.phase != PhaseAnswering {
		return nil, ErrWrongPhase
	}
	if playerID != m.answeringID {
		return nil, ErrNotAnswering
	}
	m.answerText = answer
	m.answerTimeout = timedOut
	m.phase = PhaseDiscussion
	m.deadline = m.clock.Now().Add(m.timers.Discussion)
	return []events.Event{events.New(m.clock.Now(), events.TypeAnswerSubmitted, events.AnswerSubmittedPayload{
		PlayerID: playerID.String(),
		Answer:   answer,
		TimedOut: timedOut,
	})}, nil
}

// BuyHint sells a hint to the answering player during Answering or
// Discussion and pushes the deadline out by the hint extension.
func (m *Machine) BuyHint(p *Player, kind HintKind) ([]events.Event, error) {
	if m.phase != PhaseAnswering && m.phase != PhaseDiscussion {
		return nil, ErrWrongPhase
	}
	if p.ID != m.answeringID {
		return nil, ErrNotAnswering
	}
	res, err := m.hints.Purchase(kind, p, m.pot, m.questions[m.questionIndex])
	if err != nil {
		return nil, err
	}
	m.deadline = m.deadline.Add(m.timers.HintExtension)
	d := m.deadline
	return []events.Event{events.New(m.clock.Now(), events.TypeHintPurchased, events.HintPurchasedPayload{
		PlayerID:   p.ID.String(),
		PlayerName: p.Name,
		Kind:       string(res.Kind),
		Cost:       res.Cost,
		Options:    res.Options,
		Eliminated: res.Eliminated,
		Pot:        m.pot.Main,
		Deadline:   &d,
	})}, nil
}

// FinishDiscussion reaches the verdict, settles the pot and starts the next
// round, or finishes the game when the set is exhausted.
func (m *Machine) FinishDiscussion(players []*Player) ([]events.Event, error) {
	if m.phase != PhaseDiscussion {
		return nil, ErrWrongPhase
	}
	var answering *Player
	for _, p := range players {
		if p.ID == m.answeringID {
			answering = p
			break
		}
	}
	return m.settle(answering), nil
}

// settle computes the verdict, moves the pot, resets per-round player state
// and transitions to the next countdown or to Finished. A nil player means
// nobody won the auction: scored as a miss with an empty answer.
func (m *Machine) settle(answering *Player) []events.Event {
	m.phase = PhaseVerdict

	q := m.questions[m.questionIndex]
	verdict := Verdict{
		RoundID:       m.roundID,
		QuestionIndex: m.questionIndex,
		Answer:        m.answerText,
		Correct:       q.Correct,
		TimedOut:      m.answerTimeout,
	}
	if answering != nil {
		verdict.PlayerID = answering.ID
		verdict.PlayerName = answering.Name
		verdict.Score, verdict.Accepted = Verify(m.answerText, q.Correct)
	}

	if verdict.Accepted {
		verdict.PotWon = m.pot.SettleWin()
		answering.Money += verdict.PotWon
	} else {
		m.pot.SettleLoss()
		verdict.CarryoverOut = m.pot.Carryover
	}
	m.lastVerdict = &verdict

	evts := []events.Event{events.New(m.clock.Now(), events.TypeVerdictReached, events.VerdictReachedPayload{
		RoundID:      verdict.RoundID,
		PlayerID:     idString(verdict.PlayerID),
		PlayerName:   verdict.PlayerName,
		Answer:       verdict.Answer,
		Correct:      verdict.Correct,
		Score:        verdict.Score,
		Accepted:     verdict.Accepted,
		PotWon:       verdict.PotWon,
		CarryoverOut: verdict.CarryoverOut,
	})}

	if m.questionIndex+1 >= len(m.questions) {
		m.phase = PhaseFinished
		m.deadline = time.Time{}
		m.answeringID = uuid.Nil
		return append(evts, events.New(m.clock.Now(), events.TypeGameFinished, events.GameFinishedPayload{
			Rounds:    m.roundID,
			Questions: len(m.questions),
		}))
	}

	return append(evts, m.startRound(m.roundID+1, m.questionIndex+1)...)
}

// ExpireDeadline fires the timed transition for the current phase. It is
// the scheduler's single entry point and the system's forward-progress
// guarantee: answer timeouts submit an empty answer, discussion timeouts
// reach the verdict.
func (m *Machine) ExpireDeadline(players []*Player) ([]events.Event, error) {
	switch m.phase {
	case PhaseCountdown:
		return m.StartBidding()
	case PhaseBidding:
		return m.CloseBidding(players)
	case PhaseAnswering:
		return m.SubmitAnswer(m.answeringID, "", true)
	case PhaseDiscussion:
		return m.FinishDiscussion(players)
	default:
		return nil, ErrWrongPhase
	}
}

// ResetRoundState clears per-round bid state on the given players. The
// session calls this alongside every round transition since the machine
// does not own the player set.
func ResetRoundState(players []*Player) {
	for _, p := range players {
		p.Bid = 0
		p.AllIn = false
	}
}

func (m *Machine) Phase() Phase           { return m.phase }
func (m *Machine) RoundID() int           { return m.roundID }
func (m *Machine) QuestionIndex() int     { return m.questionIndex }
func (m *Machine) QuestionCount() int     { return len(m.questions) }
func (m *Machine) Pot() *Pot              { return m.pot }
func (m *Machine) Ledger() *Ledger        { return m.ledger }
func (m *Machine) AnsweringID() uuid.UUID { return m.answeringID }
func (m *Machine) AnsweringName() string  { return m.answeringName }
func (m *Machine) LastVerdict() *Verdict  { return m.lastVerdict }

// Deadline returns the wall-clock moment of the next timed transition; the
// zero time means no deadline is armed (unbounded bidding, finished game).
func (m *Machine) Deadline() time.Time { return m.deadline }

// TimeLeft is the remaining time before the armed deadline, clamped at 0.
func (m *Machine) TimeLeft() time.Duration {
	if m.deadline.IsZero() {
		return 0
	}
	left := m.deadline.Sub(m.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}

// CurrentQuestion is only revealed from Answering onward.
func (m *Machine) CurrentQuestion() (Question, bool) {
	switch m.phase {
	case PhaseAnswering, PhaseDiscussion, PhaseVerdict:
		return m.questions[m.questionIndex], true
	default:
		return Question{}, false
	}
}

func idString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}
