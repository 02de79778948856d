package game

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBidCeiling        = errors.New("bid ceiling reached")
	ErrWrongPhase        = errors.New("action not allowed in current phase")
	ErrNotAnswering      = errors.New("player is not the answering player")
	ErrHintOrder         = errors.New("50/50 requires ABCD to be bought first")
	ErrHintAlreadyOwned  = errors.New("hint already bought this round")
	ErrUnknownHint       = errors.New("unknown hint kind")
	ErrUnknownBid        = errors.New("unknown bid kind")
	ErrGameFinished      = errors.New("question set exhausted")
	ErrObserver          = errors.New("observers cannot play")
)

// Phase is the lifecycle stage of the current round.
type Phase string

const (
	PhaseLobby      Phase = "lobby" // no question set selected yet
	PhaseCountdown  Phase = "countdown"
	PhaseBidding    Phase = "bidding"
	PhaseAnswering  Phase = "answering"
	PhaseDiscussion Phase = "discussion"
	PhaseVerdict    Phase = "verdict"
	PhaseFinished   Phase = "finished"
)

// Question is one entry of an immutable, ordered question set.
type Question struct {
	Text    string
	Correct string
	Options [4]string
}

// Player holds the per-player economy state. Bidding and verdict settlement
// mutate Money/Bid/AllIn; everything else is registration metadata.
type Player struct {
	ID            uuid.UUID
	Name          string
	IsAdmin       bool
	IsObserver    bool
	Money         int
	Bid           int
	AllIn         bool
	LastHeartbeat time.Time
}

// Rules carries the economy constants. Build on DefaultRules and adjust
// fields rather than filling a zero struct.
type Rules struct {
	StartMoney  int
	BaseStake   int
	BidStep     int
	MaxBid      int
	BonusStep   int // cumulative bid threshold per bonus credit
	BonusAmount int // pot credit per threshold crossed

	ABCDCostMin  int
	ABCDCostMax  int
	FiftyCostMin int
	FiftyCostMax int
	// RequireABCDFirst gates 50/50 behind the ABCD purchase: two of the
	// four options can only be eliminated once the options are on the
	// table.
	RequireABCDFirst bool
}

// Timers carries the phase durations. BiddingTimeout == 0 means bidding
// stays open until the admin closes it.
type Timers struct {
	Countdown      time.Duration
	BiddingTimeout time.Duration
	Answering      time.Duration
	Discussion     time.Duration
	HintExtension  time.Duration
}

func DefaultRules() Rules {
	return Rules{
		StartMoney:       10000,
		BaseStake:        500,
		BidStep:          100,
		MaxBid:           5000,
		BonusStep:        1000,
		BonusAmount:      50,
		ABCDCostMin:      1000,
		ABCDCostMax:      3000,
		FiftyCostMin:     500,
		FiftyCostMax:     2500,
		RequireABCDFirst: true,
	}
}

func DefaultTimers() Timers {
	return Timers{
		Countdown:      20 * time.Second,
		BiddingTimeout: 20 * time.Second,
		Answering:      60 * time.Second,
		Discussion:     20 * time.Second,
		HintExtension:  30 * time.Second,
	}
}
