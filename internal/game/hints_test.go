package game

import (
	"errors"
	"math/rand"
	"testing"
)

var testQuestion = Question{
	Text:    "Stolica Polski?",
	Correct: "Warszawa",
	Options: [4]string{"Warszawa", "Kraków", "Poznań", "Gdańsk"},
}

func newTestShop(rules Rules) (*HintShop, *Pot) {
	pot := NewPot()
	pot.StartQuestion()
	shop := NewHintShop(rules, rand.New(rand.NewSource(1)))
	shop.StartQuestion()
	return shop, pot
}

func TestHintABCDPurchase(t *testing.T) {
	shop, pot := newTestShop(DefaultRules())
	buyer := newTestPlayer("kupiec", 10000)

	res, err := shop.Purchase(HintABCD, buyer, pot, testQuestion)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Cost < 1000 || res.Cost > 3000 {
		t.Fatalf("ABCD cost %d outside [1000,3000]", res.Cost)
	}
	if len(res.Options) != 4 {
		t.Fatalf("expected all four options, got %v", res.Options)
	}
	if buyer.Money != 10000-res.Cost {
		t.Fatalf("buyer money = %d, want %d", buyer.Money, 10000-res.Cost)
	}
	if pot.Main != res.Cost || pot.HintCosts != res.Cost {
		t.Fatalf("hint cost should inflate the pot: main=%d hints=%d", pot.Main, pot.HintCosts)
	}
	if !pot.Conserved() {
		t.Fatal("pot invariant broken by hint purchase")
	}
}

func TestHint5050RequiresABCDFirst(t *testing.T) {
	shop, pot := newTestShop(DefaultRules())
	buyer := newTestPlayer("kupiec", 10000)

	if _, err := shop.Purchase(Hint5050, buyer, pot, testQuestion); !errors.Is(err, ErrHintOrder) {
		t.Fatalf("err = %v, want ErrHintOrder", err)
	}

	if _, err := shop.Purchase(HintABCD, buyer, pot, testQuestion); err != nil {
		t.Fatalf("ABCD purchase failed: %v", err)
	}
	res, err := shop.Purchase(Hint5050, buyer, pot, testQuestion)
	if err != nil {
		t.Fatalf("50/50 after ABCD failed: %v", err)
	}
	if res.Cost < 500 || res.Cost > 2500 {
		t.Fatalf("50/50 cost %d outside [500,2500]", res.Cost)
	}
	if len(res.Eliminated) != 2 {
		t.Fatalf("expected two eliminated options, got %v", res.Eliminated)
	}
	for _, opt := range res.Eliminated {
		if opt == testQuestion.Correct {
			t.Fatalf("50/50 eliminated the correct answer %q", opt)
		}
	}
}

func TestHint5050StandalonePolicy(t *testing.T) {
	rules := DefaultRules()
	rules.RequireABCDFirst = false
	shop, pot := newTestShop(rules)
	buyer := newTestPlayer("kupiec", 10000)

	if _, err := shop.Purchase(Hint5050, buyer, pot, testQuestion); err != nil {
		t.Fatalf("standalone 50/50 should be allowed when policy is off: %v", err)
	}
}

func TestHintRepurchaseRejected(t *testing.T) {
	shop, pot := newTestShop(DefaultRules())
	buyer := newTestPlayer("kupiec", 100000)

	if _, err := shop.Purchase(HintABCD, buyer, pot, testQuestion); err != nil {
		t.Fatalf("first ABCD failed: %v", err)
	}
	if _, err := shop.Purchase(HintABCD, buyer, pot, testQuestion); !errors.Is(err, ErrHintAlreadyOwned) {
		t.Fatalf("err = %v, want ErrHintAlreadyOwned", err)
	}
}

func TestHintUnaffordableLeavesStateAlone(t *testing.T) {
	shop, pot := newTestShop(DefaultRules())
	buyer := newTestPlayer("biedny", 100)

	_, err := shop.Purchase(HintABCD, buyer, pot, testQuestion)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if buyer.Money != 100 || pot.Main != 0 {
		t.Fatalf("rejected purchase moved money: money=%d pot=%d", buyer.Money, pot.Main)
	}
	if shop.ABCDBought() {
		t.Fatal("rejected purchase marked the hint as bought")
	}
}

func TestHintCostsDeterministicWithSeededRNG(t *testing.T) {
	shopA, potA := newTestShop(DefaultRules())
	shopB, potB := newTestShop(DefaultRules())
	buyerA := newTestPlayer("a", 100000)
	buyerB := newTestPlayer("b", 100000)

	resA, err := shopA.Purchase(HintABCD, buyerA, potA, testQuestion)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	resB, err := shopB.Purchase(HintABCD, buyerB, potB, testQuestion)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resA.Cost != resB.Cost {
		t.Fatalf("same seed, different costs: %d vs %d", resA.Cost, resB.Cost)
	}
}
