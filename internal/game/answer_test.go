package game

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercase and trim", in: "  Warszawa ", want: "warszawa"},
		{name: "diacritics folded", in: "Łódź", want: "lodz"},
		{name: "u folds to o", in: "kura", want: "kora"},
		{name: "u-umlaut through u to o", in: "über", want: "ober"},
		{name: "inner whitespace stripped", in: "Stany  Zjednoczone", want: "stanyzjednoczone"},
		{name: "empty", in: "", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Łódź", "  Wisła  ", "Góra Kalwaria", "über alles", "PÓŁNOC"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeDiacriticEquivalence(t *testing.T) {
	if Normalize("Łódź") != Normalize("lodz") {
		t.Fatalf("want Normalize(Łódź) == Normalize(lodz), got %q vs %q",
			Normalize("Łódź"), Normalize("lodz"))
	}
}

func TestScoreSelfMatch(t *testing.T) {
	for _, answer := range []string{"Warszawa", "Mikołaj Kopernik", "Żubrówka"} {
		if got := Score(answer, answer); got != 100 {
			t.Fatalf("Score(%q, %q) = %d, want 100", answer, answer, got)
		}
	}
}

func TestVerify(t *testing.T) {
	cases := []struct {
		name     string
		user     string
		correct  string
		accepted bool
	}{
		{name: "typo within threshold", user: "warszwa", correct: "Warszawa", accepted: true},
		{name: "wrong option rejected", user: "Kraków", correct: "Warszawa", accepted: false},
		{name: "empty answer rejected", user: "", correct: "Warszawa", accepted: false},
		{name: "diacritic-free spelling accepted", user: "lodz", correct: "Łódź", accepted: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score, accepted := Verify(tc.user, tc.correct)
			if accepted != tc.accepted {
				t.Fatalf("Verify(%q, %q) accepted=%v (score %d), want %v",
					tc.user, tc.correct, accepted, score, tc.accepted)
			}
			if accepted && score < AcceptThreshold {
				t.Fatalf("accepted with score %d below threshold", score)
			}
		})
	}
}
