package game

// Pot tracks the shared prize economy for one question at a time.
//
// Invariant, checked by Conserved: Main == Carryover + bids + Bonus + HintCosts.
// Everything except Carryover resets when a new question starts.
type Pot struct {
	Main      int // prize currently at stake
	Carryover int // amount rolled in from the previous rejected answer
	Bonus     int // bank bonus credited this round
	HintCosts int // hint purchases credited to the pot this round
	Spent     int // all player outlays across the session, display only

	bids int // Σ accepted bids this round
}

func NewPot() *Pot {
	return &Pot{}
}

// StartQuestion resets the per-question counters. Whatever was left as
// carryover becomes the opening pot of the new question.
func (p *Pot) StartQuestion() {
	p.Main = p.Carryover
	p.Bonus = 0
	p.HintCosts = 0
	p.bids = 0
}

// AddBid credits an accepted bid (or the base stake) to the pot.
func (p *Pot) AddBid(amount int) {
	p.Main += amount
	p.bids += amount
	p.Spent += amount
}

// AddBonus credits a bank bonus to the pot. Bonuses come from the bank,
// not from a player, so Spent is untouched.
func (p *Pot) AddBonus(amount int) {
	p.Main += amount
	p.Bonus += amount
}

// AddHintCost credits a hint purchase to the pot; hint money inflates the
// prize rather than being burned.
func (p *Pot) AddHintCost(amount int) {
	p.Main += amount
	p.HintCosts += amount
	p.Spent += amount
}

// SettleWin empties the pot and returns the amount won.
func (p *Pot) SettleWin() int {
	won := p.Main
	p.Main = 0
	p.Carryover = 0
	p.Bonus = 0
	p.HintCosts = 0
	p.bids = 0
	return won
}

// SettleLoss rolls the whole pot into the next question's carryover.
func (p *Pot) SettleLoss() {
	p.Carryover = p.Main
	p.Bonus = 0
	p.HintCosts = 0
	p.bids = 0
}

// Bids returns the accepted-bid total for this round.
func (p *Pot) Bids() int { return p.bids }

// Conserved reports whether the pot invariant holds.
func (p *Pot) Conserved() bool {
	return p.Main == p.Carryover+p.bids+p.Bonus+p.HintCosts
}
