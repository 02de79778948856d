// Package server owns the authoritative game session. Every mutation goes
// through the session mutex (single-writer discipline); clients only ever
// see snapshots.
package server

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/mcdev12/awantura/internal/chat"
	"github.com/mcdev12/awantura/internal/eventbus"
	"github.com/mcdev12/awantura/internal/events"
	"github.com/mcdev12/awantura/internal/game"
)

var (
	ErrNotAdmin         = errors.New("admin privileges required")
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrNameTaken        = errors.New("player name already taken")
	ErrReservedName     = errors.New("player name is reserved")
	ErrEmptyName        = errors.New("empty player name")
	ErrNoGame           = errors.New("no question set selected yet")
	ErrSetAlreadyChosen = errors.New("question set already chosen this session")
	ErrSetOutOfRange    = errors.New("question set number out of range")
)

// QuestionSource supplies a numbered question set.
type QuestionSource interface {
	FetchSet(ctx context.Context, set int) ([]game.Question, error)
}

// RoundRecorder archives settled rounds. Implementations must not block
// the game on failure.
type RoundRecorder interface {
	RecordRound(ctx context.Context, sessionID string, v game.Verdict, settledAt time.Time)
}

// Config carries the session's construction parameters.
type Config struct {
	Rules     game.Rules
	Timers    game.Timers
	MaxSets   int
	ChatCap   int
	Source    QuestionSource
	Publisher eventbus.Publisher
	Recorder  RoundRecorder // optional
	Clock     clockwork.Clock
	RNG       *rand.Rand
	Logger    zerolog.Logger
}

// Session is one game instance: the player roster, the chat log and, once
// an admin has chosen a question set, the round state machine.
type Session struct {
	id     string
	logger zerolog.Logger
	clock  clockwork.Clock
	rules  game.Rules
	timers game.Timers

	source    QuestionSource
	publisher eventbus.Publisher
	recorder  RoundRecorder
	rng       *rand.Rand
	maxSets   int
	chat      *chat.Log

	mu        sync.Mutex
	players   map[uuid.UUID]*game.Player
	order     []uuid.UUID
	machine   *game.Machine
	setChosen int
	staged    []sideEffect

	// pubMu keeps staged side effects FIFO across overlapping calls
	// without holding mu during sink I/O.
	pubMu sync.Mutex

	wake chan struct{}
}

// sideEffect is a unit of sink I/O (event publish or round archival)
// staged under the session mutex and executed by flush once it is
// released. A slow or dead sink must never stall handlers or the
// scheduler.
type sideEffect struct {
	event   events.Event
	verdict *game.Verdict
	at      time.Time
}

func NewSession(cfg Config) *Session {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	rng := cfg.RNG
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	id := uuid.NewString()
	return &Session{
		id:        id,
		logger:    cfg.Logger.With().Str("component", "session").Str("session_id", id).Logger(),
		clock:     clock,
		rules:     cfg.Rules,
		timers:    cfg.Timers,
		source:    cfg.Source,
		publisher: cfg.Publisher,
		recorder:  cfg.Recorder,
		rng:       rng,
		maxSets:   cfg.MaxSets,
		chat:      chat.NewLog(cfg.ChatCap),
		players:   make(map[uuid.UUID]*game.Player),
		wake:      make(chan struct{}, 1),
	}
}

func (s *Session) ID() string { return s.id }

// Register adds a player. The first registrant becomes the admin; names
// must be unique and "BOT" is reserved for system lines.
func (s *Session) Register(name string) (*game.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if strings.EqualFold(name, chat.BotAuthor) {
		return nil, ErrReservedName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		if strings.EqualFold(p.Name, name) {
			return nil, ErrNameTaken
		}
	}

	p := &game.Player{
		ID:            uuid.New(),
		Name:          name,
		IsAdmin:       len(s.order) == 0,
		Money:         s.rules.StartMoney,
		LastHeartbeat: s.clock.Now(),
	}
	s.players[p.ID] = p
	s.order = append(s.order, p.ID)

	s.logger.Info().Str("player", p.Name).Bool("admin", p.IsAdmin).Msg("player registered")
	s.chat.Bot(fmt.Sprintf("%s dołącza do gry", p.Name), s.clock.Now())
	return p, nil
}

// SelectSet loads a question set and starts the game. Admin only, at most
// once per session.
func (s *Session) SelectSet(ctx context.Context, playerID uuid.UUID, set int) error {
	defer s.flush(ctx)
	s.mu.Lock()
	if _, err := s.admin(playerID); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.setChosen != 0 {
		s.mu.Unlock()
		return ErrSetAlreadyChosen
	}
	if set < 1 || set > s.maxSets {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d not in [1,%d]", ErrSetOutOfRange, set, s.maxSets)
	}
	s.mu.Unlock()

	// Fetch outside the lock; the slow network call must not stall reads.
	qs, err := s.source.FetchSet(ctx, set)
	if err != nil {
		return fmt.Errorf("load set %d: %w", set, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setChosen != 0 {
		return ErrSetAlreadyChosen
	}
	s.setChosen = set

	machine, evts := game.NewMachine(s.rules, s.timers, s.clock, s.rng, qs)
	s.machine = machine
	game.ResetRoundState(s.roster())

	s.logger.Info().Int("set", set).Int("questions", len(qs)).Msg("question set selected")
	s.chat.Bot(fmt.Sprintf("Zestaw %02d wybrany, %d pytań. Gra się zaczyna!", set, len(qs)), s.clock.Now())
	s.dispatch(evts)
	return nil
}

// Bid places a bid for a player and returns the pot after the bid.
func (s *Session) Bid(ctx context.Context, playerID uuid.UUID, kind game.BidKind) (int, error) {
	defer s.flush(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, m, err := s.playerAndMachine(playerID)
	if err != nil {
		return 0, err
	}
	evts, err := m.PlaceBid(p, kind)
	if err != nil {
		return 0, err
	}
	s.dispatch(evts)
	return m.Pot().Main, nil
}

// FinishBidding closes the auction early. Admin only.
func (s *Session) FinishBidding(ctx context.Context, playerID uuid.UUID) error {
	defer s.flush(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.admin(playerID); err != nil {
		return err
	}
	if s.machine == nil {
		return ErrNoGame
	}
	evts, err := s.machine.CloseBidding(s.roster())
	if err != nil {
		return err
	}
	s.afterTransition(evts)
	return nil
}

// NextRound advances a countdown to bidding early. Admin only.
func (s *Session) NextRound(ctx context.Context, playerID uuid.UUID) error {
	defer s.flush(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.admin(playerID); err != nil {
		return err
	}
	if s.machine == nil {
		return ErrNoGame
	}
	evts, err := s.machine.StartBidding()
	if err != nil {
		return err
	}
	s.afterTransition(evts)
	return nil
}

// SubmitAnswer records the answering player's submission.
func (s *Session) SubmitAnswer(ctx context.Context, playerID uuid.UUID, answer string) error {
	defer s.flush(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, m, err := s.playerAndMachine(playerID)
	if err != nil {
		return err
	}
	evts, err := m.SubmitAnswer(playerID, answer, false)
	if err != nil {
		return err
	}
	s.afterTransition(evts)
	return nil
}

// PurchaseHint sells a hint to the answering player.
func (s *Session) PurchaseHint(ctx context.Context, playerID uuid.UUID, kind game.HintKind) error {
	defer s.flush(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, m, err := s.playerAndMachine(playerID)
	if err != nil {
		return err
	}
	evts, err := m.BuyHint(p, kind)
	if err != nil {
		return err
	}
	s.afterTransition(evts)
	return nil
}

// Heartbeat refreshes a player's last-seen timestamp and reports whether
// the player is the admin.
func (s *Session) Heartbeat(playerID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[playerID]
	if !ok {
		return false, ErrUnknownPlayer
	}
	p.LastHeartbeat = s.clock.Now()
	return p.IsAdmin, nil
}

// PostChat appends a chat line under the given player name. An admin line
// that is a bare set number doubles as the set selection command.
func (s *Session) PostChat(ctx context.Context, playerName, text string) error {
	s.mu.Lock()
	p := s.playerByName(playerName)
	if p == nil {
		s.mu.Unlock()
		return ErrUnknownPlayer
	}
	id, name, isAdmin := p.ID, p.Name, p.IsAdmin
	gameStarted := s.setChosen != 0
	s.mu.Unlock()

	s.chat.Append(name, text, s.clock.Now())

	if isAdmin && !gameStarted {
		if set, ok := chat.ParseSetCommand(text, s.maxSets); ok {
			if err := s.SelectSet(ctx, id, set); err != nil {
				s.logger.Warn().Err(err).Int("set", set).Msg("chat set command rejected")
			}
		}
	}
	return nil
}

// ExpireDeadline fires the timed transition once the armed deadline has
// passed. The scheduler calls this; a not-yet-due call is a no-op.
func (s *Session) ExpireDeadline(ctx context.Context) {
	defer s.flush(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine == nil {
		return
	}
	deadline := s.machine.Deadline()
	if deadline.IsZero() || s.clock.Now().Before(deadline) {
		return
	}
	evts, err := s.machine.ExpireDeadline(s.roster())
	if err != nil {
		if !errors.Is(err, game.ErrWrongPhase) {
			s.logger.Error().Err(err).Msg("deadline transition failed")
		}
		return
	}
	s.afterTransition(evts)
}

// afterTransition handles post-transition bookkeeping: per-round player
// state resets, staging the verdict for archival and event fan-out.
// Callers hold the mutex.
func (s *Session) afterTransition(evts []events.Event) {
	for _, e := range evts {
		if e.Type == events.TypeRoundStarted || e.Type == events.TypeGameFinished {
			game.ResetRoundState(s.roster())
		}
		if e.Type == events.TypeVerdictReached && s.recorder != nil {
			if v := s.machine.LastVerdict(); v != nil {
				verdict := *v
				s.staged = append(s.staged, sideEffect{verdict: &verdict, at: s.clock.Now()})
			}
		}
	}
	s.dispatch(evts)
}

// dispatch stamps and chat-mirrors a batch of events, stages them for the
// sinks and nudges the scheduler to re-arm on the new deadline. Callers
// hold the mutex; flush runs the staged I/O once it is released.
func (s *Session) dispatch(evts []events.Event) {
	for _, e := range evts {
		e.Session = s.id
		s.staged = append(s.staged, sideEffect{event: e})
		if line := botLine(e); line != "" {
			s.chat.Bot(line, e.At)
		}
	}
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// flush drains the staged side effects and runs them with the session
// mutex released, so a stalled publisher or archive cannot block handlers
// or the scheduler.
func (s *Session) flush(ctx context.Context) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	for {
		s.mu.Lock()
		staged := s.staged
		s.staged = nil
		s.mu.Unlock()
		if len(staged) == 0 {
			return
		}
		for _, fx := range staged {
			if fx.verdict != nil {
				if s.recorder != nil {
					s.recorder.RecordRound(ctx, s.id, *fx.verdict, fx.at)
				}
				continue
			}
			if s.publisher != nil {
				if err := s.publisher.Publish(ctx, fx.event); err != nil {
					s.logger.Error().Err(err).Str("event_type", string(fx.event.Type)).Msg("event publish failed")
				}
			}
		}
	}
}

// botLine renders the human-readable chat mirror of an event, in the
// voice legacy chat consumers expect.
func botLine(e events.Event) string {
	switch d := e.Data.(type) {
	case events.RoundStartedPayload:
		return fmt.Sprintf("Runda %d. Pula startowa: %d zł", d.RoundID, d.Pot)
	case events.BiddingOpenedPayload:
		return "Licytacja otwarta!"
	case events.BidPlacedPayload:
		if d.AllIn {
			return fmt.Sprintf("%s gra VA BANQUE: %d zł!", d.PlayerName, d.Total)
		}
		return fmt.Sprintf("%s licytuje %d zł (pula: %d zł)", d.PlayerName, d.Total, d.Pot)
	case events.BiddingClosedPayload:
		if d.WinnerID == "" {
			return "Licytacja zamknięta bez ofert, pula przechodzi dalej"
		}
		return fmt.Sprintf("Licytację wygrywa %s za %d zł", d.WinnerName, d.WinningBid)
	case events.QuestionRevealedPayload:
		return fmt.Sprintf("PYTANIE: %s", d.Text)
	case events.HintPurchasedPayload:
		if len(d.Options) > 0 {
			return fmt.Sprintf("%s kupuje ABCD za %d zł: A = %s, B = %s, C = %s, D = %s",
				d.PlayerName, d.Cost, d.Options[0], d.Options[1], d.Options[2], d.Options[3])
		}
		return fmt.Sprintf("%s kupuje 50/50 za %d zł, odpadają: %s",
			d.PlayerName, d.Cost, strings.Join(d.Eliminated, ", "))
	case events.AnswerSubmittedPayload:
		if d.TimedOut {
			return "Czas na odpowiedź minął!"
		}
		return fmt.Sprintf("Odpowiedź: %s", d.Answer)
	case events.VerdictReachedPayload:
		if d.Accepted {
			return fmt.Sprintf("DOBRA ODPOWIEDŹ! %s wygrywa %d zł", d.PlayerName, d.PotWon)
		}
		return fmt.Sprintf("ZŁA ODPOWIEDŹ! Prawidłowa: %s. Pula %d zł przechodzi dalej",
			d.Correct, d.CarryoverOut)
	case events.GameFinishedPayload:
		return fmt.Sprintf("Koniec gry po %d rundach!", d.Rounds)
	default:
		return ""
	}
}

func (s *Session) admin(playerID uuid.UUID) (*game.Player, error) {
	p, ok := s.players[playerID]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if !p.IsAdmin {
		return nil, ErrNotAdmin
	}
	return p, nil
}

// playerByName resolves a registration-name lookup, matching Register's
// case-insensitive uniqueness rule. Callers hold the mutex.
func (s *Session) playerByName(name string) *game.Player {
	for _, id := range s.order {
		if p := s.players[id]; strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

func (s *Session) playerAndMachine(playerID uuid.UUID) (*game.Player, *game.Machine, error) {
	p, ok := s.players[playerID]
	if !ok {
		return nil, nil, ErrUnknownPlayer
	}
	if s.machine == nil {
		return nil, nil, ErrNoGame
	}
	return p, s.machine, nil
}

// roster returns the players in registration order. Callers hold the mutex.
func (s *Session) roster() []*game.Player {
	out := make([]*game.Player, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.players[id])
	}
	return out
}

// PlayerSnapshot is the per-player slice of a state snapshot.
type PlayerSnapshot struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
	Money   int    `json:"money"`
	Bid     int    `json:"bid"`
	IsAllIn bool   `json:"is_all_in"`
}

// Snapshot is the wholesale state mirror served to every client. Clients
// replace their local copy with it, never merge.
type Snapshot struct {
	SessionID         string           `json:"session_id"`
	RoundID           int              `json:"round_id"`
	Phase             string           `json:"phase"`
	Pot               int              `json:"pot"`
	Bonus             int              `json:"bonus"`
	TimeLeft          float64          `json:"time_left"`
	QuestionIndex     int              `json:"question_index"`
	QuestionCount     int              `json:"question_count"`
	Question          string           `json:"question,omitempty"`
	AnsweringPlayerID string           `json:"answering_player_id,omitempty"`
	Players           []PlayerSnapshot `json:"players"`
	Chat              []chat.Message   `json:"chat"`
}

// Snapshot rebuilds the full state mirror.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID: s.id,
		Phase:     string(game.PhaseLobby),
		Chat:      s.chat.Messages(),
	}

	for _, p := range s.roster() {
		snap.Players = append(snap.Players, PlayerSnapshot{
			ID:      p.ID.String(),
			Name:    p.Name,
			IsAdmin: p.IsAdmin,
			Money:   p.Money,
			Bid:     p.Bid,
			IsAllIn: p.AllIn,
		})
	}

	if s.machine == nil {
		return snap
	}
	m := s.machine
	snap.RoundID = m.RoundID()
	snap.Phase = string(m.Phase())
	snap.Pot = m.Pot().Main
	snap.Bonus = m.Pot().Bonus
	snap.TimeLeft = m.TimeLeft().Seconds()
	snap.QuestionIndex = m.QuestionIndex()
	snap.QuestionCount = m.QuestionCount()
	snap.AnsweringPlayerID = answeringID(m)
	if q, ok := m.CurrentQuestion(); ok {
		snap.Question = q.Text
	}
	return snap
}

func answeringID(m *game.Machine) string {
	if m.AnsweringID() == uuid.Nil {
		return ""
	}
	return m.AnsweringID().String()
}

// NextDeadline reports the armed deadline, if any.
func (s *Session) NextDeadline() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine == nil {
		return time.Time{}, false
	}
	d := s.machine.Deadline()
	if d.IsZero() {
		return time.Time{}, false
	}
	return d, true
}
