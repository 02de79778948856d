package questions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/mcdev12/awantura/internal/game"
)

const sampleSet = `01. Stolica Polski?
prawidłowa odpowiedz = Warszawa
odpowiedz ABCD = A = Warszawa, B = Kraków, C = Poznań, D = Gdańsk

2. Najdłuższa rzeka Polski?
PRAWIDŁOWA ODPOWIEDŹ = Wisła
Odpowiedź ABCD = A = Odra, B = Wisła, C = Warta, D = Bug

103. Kto napisał "Pana Tadeusza"?
prawidłowa odpowiedz = Adam Mickiewicz
odpowiedz ABCD = A = Juliusz Słowacki, B = Adam Mickiewicz, C = Cyprian Norwid, D = Bolesław Prus
`

func TestParseSampleSet(t *testing.T) {
	qs, err := Parse(sampleSet)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	// Header digits vary, and the answer lines match case-insensitively
	// with either z or ź.
	want := []game.Question{
		{
			Text:    "Stolica Polski?",
			Correct: "Warszawa",
			Options: [4]string{"Warszawa", "Kraków", "Poznań", "Gdańsk"},
		},
		{
			Text:    "Najdłuższa rzeka Polski?",
			Correct: "Wisła",
			Options: [4]string{"Odra", "Wisła", "Warta", "Bug"},
		},
		{
			Text:    `Kto napisał "Pana Tadeusza"?`,
			Correct: "Adam Mickiewicz",
			Options: [4]string{"Juliusz Słowacki", "Adam Mickiewicz", "Cyprian Norwid", "Bolesław Prus"},
		},
	}
	if diff := cmp.Diff(want, qs); diff != "" {
		t.Fatalf("parsed questions mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSkipsMalformedBlocks(t *testing.T) {
	content := `01. Pytanie bez odpowiedzi?
odpowiedz ABCD = A = a, B = b, C = c, D = d

02. Pytanie kompletne?
prawidłowa odpowiedz = tak
odpowiedz ABCD = A = tak, B = nie, C = może, D = nigdy

to nie jest blok pytania
`
	qs, err := Parse(content)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(qs) != 1 || qs[0].Correct != "tak" {
		t.Fatalf("expected only the complete block, got %+v", qs)
	}
}

func TestParseEmptyFile(t *testing.T) {
	if _, err := Parse(""); err == nil {
		t.Fatal("expected an error for an empty file")
	}
	if _, err := Parse("żadnych pytań tutaj"); err == nil {
		t.Fatal("expected an error for a file with no blocks")
	}
}

func TestLoaderFetchSet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/07.txt" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(sampleSet))
	}))
	defer srv.Close()

	l := NewLoader(srv.URL+"/", zerolog.New(os.Stderr).Level(zerolog.Disabled))

	qs, err := l.FetchSet(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(qs) != 3 {
		t.Fatalf("fetched %d questions, want 3", len(qs))
	}

	if _, err := l.FetchSet(context.Background(), 99); err == nil {
		t.Fatal("expected an error for a missing set")
	}
}
