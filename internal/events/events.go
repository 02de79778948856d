// Package events defines the typed event stream emitted by the game
// session. Chat mirrors these events as BOT-authored text for humans;
// programs should consume this stream instead of pattern-matching chat.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies the kind of event carried by an envelope.
type Type string

const (
	TypeRoundStarted     Type = "RoundStarted"
	TypeBiddingOpened    Type = "BiddingOpened"
	TypeBidPlaced        Type = "BidPlaced"
	TypeBiddingClosed    Type = "BiddingClosed"
	TypeQuestionRevealed Type = "QuestionRevealed"
	TypeHintPurchased    Type = "HintPurchased"
	TypeAnswerSubmitted  Type = "AnswerSubmitted"
	TypeVerdictReached   Type = "VerdictReached"
	TypeGameFinished     Type = "GameFinished"
)

// Event is the envelope published on the event stream. Session is stamped
// by the owning game session before publishing.
type Event struct {
	ID      uuid.UUID `json:"id"`
	Session string    `json:"session_id,omitempty"`
	Type    Type      `json:"type"`
	At      time.Time `json:"at"`
	Data    any       `json:"data"`
}

// New wraps a payload in an envelope stamped with a fresh ID.
func New(at time.Time, t Type, data any) Event {
	return Event{ID: uuid.New(), Type: t, At: at, Data: data}
}

// RoundStartedPayload announces a new round entering its countdown.
type RoundStartedPayload struct {
	RoundID       int        `json:"round_id"`
	QuestionIndex int        `json:"question_index"`
	Pot           int        `json:"pot"`
	Carryover     int        `json:"carryover"`
	Deadline      *time.Time `json:"deadline,omitempty"`
}

// BiddingOpenedPayload announces the bidding phase. Deadline is nil when
// bidding stays open until the admin closes it.
type BiddingOpenedPayload struct {
	RoundID  int        `json:"round_id"`
	Deadline *time.Time `json:"deadline,omitempty"`
}

// BidPlacedPayload echoes an accepted bid.
type BidPlacedPayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Amount     int    `json:"amount"`
	Total      int    `json:"total"`
	Bonus      int    `json:"bonus,omitempty"`
	AllIn      bool   `json:"all_in,omitempty"`
	Pot        int    `json:"pot"`
}

// BiddingClosedPayload names the auction winner. WinnerID is empty when the
// round closed without a single bid.
type BiddingClosedPayload struct {
	RoundID    int    `json:"round_id"`
	WinnerID   string `json:"winner_id,omitempty"`
	WinnerName string `json:"winner_name,omitempty"`
	WinningBid int    `json:"winning_bid,omitempty"`
}

// QuestionRevealedPayload carries the question shown to the winner.
type QuestionRevealedPayload struct {
	QuestionIndex int        `json:"question_index"`
	Text          string     `json:"text"`
	Deadline      *time.Time `json:"deadline,omitempty"`
}

// HintPurchasedPayload reports a hint sale and the new answer deadline.
type HintPurchasedPayload struct {
	PlayerID   string     `json:"player_id"`
	PlayerName string     `json:"player_name"`
	Kind       string     `json:"kind"`
	Cost       int        `json:"cost"`
	Options    []string   `json:"options,omitempty"`
	Eliminated []string   `json:"eliminated,omitempty"`
	Pot        int        `json:"pot"`
	Deadline   *time.Time `json:"deadline,omitempty"`
}

// AnswerSubmittedPayload records the winner's answer. TimedOut marks the
// automatic empty submission at the answering deadline.
type AnswerSubmittedPayload struct {
	PlayerID string `json:"player_id"`
	Answer   string `json:"answer"`
	TimedOut bool   `json:"timed_out,omitempty"`
}

// VerdictReachedPayload announces the settlement of a round.
type VerdictReachedPayload struct {
	RoundID      int    `json:"round_id"`
	PlayerID     string `json:"player_id,omitempty"`
	PlayerName   string `json:"player_name,omitempty"`
	Answer       string `json:"answer"`
	Correct      string `json:"correct"`
	Score        int    `json:"score"`
	Accepted     bool   `json:"accepted"`
	PotWon       int    `json:"pot_won,omitempty"`
	CarryoverOut int    `json:"carryover_out,omitempty"`
}

// GameFinishedPayload marks the exhaustion of the question set.
type GameFinishedPayload struct {
	Rounds    int `json:"rounds"`
	Questions int `json:"questions"`
}
