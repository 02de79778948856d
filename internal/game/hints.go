package game

import (
	"math/rand"
)

// HintKind selects one of the two purchasable hints.
type HintKind string

const (
	HintABCD HintKind = "abcd" // reveal all four options
	Hint5050 HintKind = "5050" // remove two of the three wrong options
)

// HintResult describes a completed purchase. For ABCD, Options holds all
// four answers; for 50/50, Eliminated holds the two options taken away.
type HintResult struct {
	Kind       HintKind
	Cost       int
	Options    []string
	Eliminated []string
}

// HintShop sells the two hints for one question at a time. Costs are drawn
// from the injected RNG so tests can pin them down.
type HintShop struct {
	rules Rules
	rng   *rand.Rand

	abcdBought  bool
	fiftyBought bool
}

func NewHintShop(rules Rules, rng *rand.Rand) *HintShop {
	return &HintShop{rules: rules, rng: rng}
}

// StartQuestion forgets the previous question's purchases.
func (h *HintShop) StartQuestion() {
	h.abcdBought = false
	h.fiftyBought = false
}

// ABCDBought reports whether the options have been revealed this question.
func (h *HintShop) ABCDBought() bool { return h.abcdBought }

// Purchase validates the buy, debits the buyer, credits the pot and returns
// what the hint revealed. On rejection nothing changes.
func (h *HintShop) Purchase(kind HintKind, buyer *Player, pot *Pot, q Question) (HintResult, error) {
	switch kind {
	case HintABCD:
		if h.abcdBought {
			return HintResult{}, ErrHintAlreadyOwned
		}
		cost := h.cost(h.rules.ABCDCostMin, h.rules.ABCDCostMax)
		if buyer.Money < cost {
			return HintResult{}, ErrInsufficientFunds
		}
		buyer.Money -= cost
		pot.AddHintCost(cost)
		h.abcdBought = true
		return HintResult{Kind: HintABCD, Cost: cost, Options: q.Options[:]}, nil

	case Hint5050:
		if h.fiftyBought {
			return HintResult{}, ErrHintAlreadyOwned
		}
		if h.rules.RequireABCDFirst && !h.abcdBought {
			return HintResult{}, ErrHintOrder
		}
		cost := h.cost(h.rules.FiftyCostMin, h.rules.FiftyCostMax)
		if buyer.Money < cost {
			return HintResult{}, ErrInsufficientFunds
		}
		buyer.Money -= cost
		pot.AddHintCost(cost)
		h.fiftyBought = true
		return HintResult{Kind: Hint5050, Cost: cost, Eliminated: h.eliminateTwo(q)}, nil

	default:
		return HintResult{}, ErrUnknownHint
	}
}

func (h *HintShop) cost(min, max int) int {
	return min + h.rng.Intn(max-min+1)
}

// eliminateTwo picks two of the three wrong options at random.
func (h *HintShop) eliminateTwo(q Question) []string {
	wrong := make([]string, 0, 3)
	for _, opt := range q.Options {
		if opt != q.Correct {
			wrong = append(wrong, opt)
		}
	}
	h.rng.Shuffle(len(wrong), func(i, j int) {
		wrong[i], wrong[j] = wrong[j], wrong[i]
	})
	if len(wrong) > 2 {
		wrong = wrong[:2]
	}
	return wrong
}
