package game

import (
	"errors"
	"math/rand"
	"testing"
)

func newTestSolo(t *testing.T, questions []Question) *Solo {
	t.Helper()
	return NewSolo(DefaultRules(), rand.New(rand.NewSource(1)), questions)
}

func TestSoloRoundWin(t *testing.T) {
	s := newTestSolo(t, testQuestions)

	if err := s.StartRound(); err != nil {
		t.Fatalf("start round: %v", err)
	}
	if s.Player().Money != 9500 || s.Pot().Main != 500 {
		t.Fatalf("base stake not applied: money=%d pot=%d", s.Player().Money, s.Pot().Main)
	}

	for i := 0; i < 5; i++ {
		if _, err := s.Bid(); err != nil {
			t.Fatalf("bid %d: %v", i, err)
		}
	}
	// Stake 500 + 5×100 = 1000 cumulative: one bonus step fires.
	if s.Pot().Main != 1050 {
		t.Fatalf("pot = %d, want 1050 with the bank bonus", s.Pot().Main)
	}

	if _, err := s.ShowQuestion(); err != nil {
		t.Fatalf("show question: %v", err)
	}
	out, err := s.Answer("warszwa")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !out.Accepted || out.PotWon != 1050 {
		t.Fatalf("outcome = %+v, want accepted with 1050", out)
	}
	if s.Player().Money != 9000-500+1050+500 {
		t.Fatalf("money = %d, want 10050", s.Player().Money)
	}
}

func TestSoloMissCarriesPot(t *testing.T) {
	s := newTestSolo(t, testQuestions)

	if err := s.StartRound(); err != nil {
		t.Fatalf("start round: %v", err)
	}
	if _, err := s.ShowQuestion(); err != nil {
		t.Fatalf("show question: %v", err)
	}
	if out, err := s.Answer("Kraków"); err != nil || out.Accepted {
		t.Fatalf("expected a miss, out=%+v err=%v", out, err)
	}

	if err := s.StartRound(); err != nil {
		t.Fatalf("second round: %v", err)
	}
	// Carried 500 plus the new stake.
	if s.Pot().Main != 1000 {
		t.Fatalf("pot = %d, want 1000 after carryover", s.Pot().Main)
	}
}

func TestSoloBidCeiling(t *testing.T) {
	rules := DefaultRules()
	rules.StartMoney = 100000
	s := NewSolo(rules, rand.New(rand.NewSource(1)), testQuestions)

	if err := s.StartRound(); err != nil {
		t.Fatalf("start round: %v", err)
	}
	// Stake 500 + 45×100 reaches the 5000 ceiling.
	for i := 0; i < 45; i++ {
		if _, err := s.Bid(); err != nil {
			t.Fatalf("bid %d: %v", i, err)
		}
	}
	if _, err := s.Bid(); !errors.Is(err, ErrBidCeiling) {
		t.Fatalf("err = %v, want ErrBidCeiling", err)
	}
}

func TestSoloEndsWhenBroke(t *testing.T) {
	rules := DefaultRules()
	rules.StartMoney = 400 // below the base stake
	s := NewSolo(rules, rand.New(rand.NewSource(1)), testQuestions)

	if err := s.StartRound(); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if !s.Finished() {
		t.Fatal("game should be over when the stake is unaffordable")
	}
}

func TestSoloEndsWhenQuestionsRunOut(t *testing.T) {
	s := newTestSolo(t, testQuestions[:1])

	if err := s.StartRound(); err != nil {
		t.Fatalf("start round: %v", err)
	}
	if _, err := s.ShowQuestion(); err != nil {
		t.Fatalf("show question: %v", err)
	}
	if _, err := s.Answer("Warszawa"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err := s.StartRound(); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("err = %v, want ErrGameFinished", err)
	}
}
