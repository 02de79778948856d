package game

import (
	"github.com/google/uuid"
)

// BidKind selects between the two bid moves.
type BidKind string

const (
	BidNormal BidKind = "normal" // +BidStep
	BidAllIn  BidKind = "allin"  // VA BANQUE, entire remaining balance
)

// BidResult describes an accepted bid.
type BidResult struct {
	Amount int  // amount moved from the player to the pot
	Bonus  int  // bank bonus credited alongside this bid, 0 if none
	AllIn  bool // the bid was a VA BANQUE
	Total  int  // player's cumulative bid after this one
}

// Ledger enforces bid legality for one question and remembers enough to
// pick the round winner. All money movement goes through the attached Pot
// so the pot invariant holds after every accepted bid.
type Ledger struct {
	rules Rules
	pot   *Pot

	creditedBonus map[uuid.UUID]int // bonus already triggered per player
	reachedAt     map[uuid.UUID]int // sequence of the player's latest raise
	seq           int
}

func NewLedger(rules Rules, pot *Pot) *Ledger {
	return &Ledger{
		rules:         rules,
		pot:           pot,
		creditedBonus: make(map[uuid.UUID]int),
		reachedAt:     make(map[uuid.UUID]int),
	}
}

// StartQuestion clears the per-question bookkeeping. Player.Bid and
// Player.AllIn are reset by the caller, which owns the player set.
func (l *Ledger) StartQuestion() {
	l.creditedBonus = make(map[uuid.UUID]int)
	l.reachedAt = make(map[uuid.UUID]int)
	l.seq = 0
}

// Place validates and applies a bid. On rejection neither the player nor
// the pot is touched.
func (l *Ledger) Place(p *Player, kind BidKind) (BidResult, error) {
	if p.IsObserver {
		return BidResult{}, ErrObserver
	}

	var amount int
	switch kind {
	case BidNormal:
		if p.Money < l.rules.BidStep {
			return BidResult{}, ErrInsufficientFunds
		}
		if p.Bid >= l.rules.MaxBid {
			return BidResult{}, ErrBidCeiling
		}
		amount = l.rules.BidStep
	case BidAllIn:
		// VA BANQUE is exempt from the ceiling.
		if p.Money <= 0 {
			return BidResult{}, ErrInsufficientFunds
		}
		amount = p.Money
	default:
		return BidResult{}, ErrUnknownBid
	}

	p.Money -= amount
	p.Bid += amount
	if kind == BidAllIn {
		p.AllIn = true
	}
	l.pot.AddBid(amount)

	l.seq++
	l.reachedAt[p.ID] = l.seq

	res := BidResult{Amount: amount, AllIn: p.AllIn, Total: p.Bid}
	if bonus := l.creditBonus(p); bonus > 0 {
		res.Bonus = bonus
	}
	return res, nil
}

// Stake applies the round-opening base stake as the player's first bid.
// Used by the singleplayer variant, where the stake seeds both pot and bid.
func (l *Ledger) Stake(p *Player, amount int) error {
	if p.Money < amount {
		return ErrInsufficientFunds
	}
	p.Money -= amount
	p.Bid += amount
	l.pot.AddBid(amount)
	l.seq++
	l.reachedAt[p.ID] = l.seq
	l.creditBonus(p)
	return nil
}

// creditBonus applies the bank bonus step function: every full BonusStep of
// cumulative bid earns BonusAmount, credited once per threshold crossed.
func (l *Ledger) creditBonus(p *Player) int {
	target := p.Bid / l.rules.BonusStep * l.rules.BonusAmount
	if target <= l.creditedBonus[p.ID] {
		return 0
	}
	diff := target - l.creditedBonus[p.ID]
	l.creditedBonus[p.ID] = target
	l.pot.AddBonus(diff)
	return diff
}

// Winner returns the player with the strictly highest cumulative bid. Ties
// go to whoever reached the amount first. ok is false when nobody bid.
func (l *Ledger) Winner(players []*Player) (winner *Player, ok bool) {
	for _, p := range players {
		if p.Bid <= 0 {
			continue
		}
		switch {
		case winner == nil,
			p.Bid > winner.Bid,
			p.Bid == winner.Bid && l.reachedAt[p.ID] < l.reachedAt[winner.ID]:
			winner = p
		}
	}
	return winner, winner != nil
}
