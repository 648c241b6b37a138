package suite

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func testOptions() Options {
	return Options{Workers: 2, Depth: 2, HashMB: 1, Logger: zerolog.Nop()}
}

func TestDefaultCases(t *testing.T) {
	cases := DefaultCases()
	if len(cases) != 5 {
		t.Fatalf("got %d cases, want 5", len(cases))
	}
	strict := 0
	for _, c := range cases {
		if c.Strict {
			strict++
			if len(c.Expect) == 0 {
				t.Errorf("strict case %q has no expected moves", c.Name)
			}
		}
	}
	if strict != 2 {
		t.Errorf("got %d strict cases, want 2", strict)
	}
}

func TestRunDefaultCases(t *testing.T) {
	results, summary, err := Run(context.Background(), DefaultCases(), testOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 5 || summary.Total != 5 {
		t.Fatalf("got %d results, summary total %d", len(results), summary.Total)
	}

	for i, r := range results {
		if r.Case.Name != DefaultCases()[i].Name {
			t.Errorf("result %d is for %q", i, r.Case.Name)
		}
		if r.Err != nil || !r.Legal {
			t.Errorf("%s: legal=%v err=%v", r.Case.Name, r.Legal, r.Err)
		}
		t.Logf("%s: %s passed=%v nodes=%d", r.Case.Name, r.Move, r.Passed, r.Nodes)
	}

	if !results[0].Mate || results[0].Move != "e1e8" {
		t.Errorf("back rank case chose %s", results[0].Move)
	}
	// Non-strict and open cases pass with any legal move.
	for _, i := range []int{1, 3, 4} {
		if !results[i].Passed {
			t.Errorf("%s failed with %s", results[i].Case.Name, results[i].Move)
		}
	}
	if summary.Passed+len(summary.Failed) != summary.Total || summary.Passed < 4 {
		t.Errorf("summary %+v", summary)
	}
	if summary.RunID == "" || summary.Nodes == 0 {
		t.Errorf("summary missing run id or nodes: %+v", summary)
	}
}

func TestRunStrictMismatchFails(t *testing.T) {
	cases := []Case{{
		Name:   "impossible",
		FEN:    "6k1/5ppp/8/8/8/8/5PPP/4R1K1 w - - 0 1",
		Expect: []string{"a1a2"},
		Strict: true,
		Depth:  1,
	}, {
		Name:   "lenient",
		FEN:    "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 1",
		Expect: []string{"a2a3"},
		Depth:  1,
	}}

	results, summary, err := Run(context.Background(), cases, testOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Mate is accepted even when another move was expected.
	if !results[0].Passed || !results[0].Mate {
		t.Errorf("mating move should pass: %+v", results[0])
	}
	if !results[1].Passed || results[1].Matched && results[1].Move != "a2a3" {
		t.Errorf("lenient case: %+v", results[1])
	}
	if summary.Passed != 2 {
		t.Errorf("summary %+v", summary)
	}
}

func TestRunReportsBadPositions(t *testing.T) {
	cases := []Case{
		{Name: "bad fen", FEN: "8/8/8 w - -", Expect: []string{"e2e4"}, Strict: true},
		{Name: "stalemate", FEN: "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"},
	}
	results, summary, err := Run(context.Background(), cases, testOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, r := range results {
		if r.Err == nil || r.Passed {
			t.Errorf("%s: err=%v passed=%v", r.Case.Name, r.Err, r.Passed)
		}
	}
	if len(summary.Failed) != 2 {
		t.Errorf("failed = %v", summary.Failed)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Run(ctx, DefaultCases(), testOptions()); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestSuccessRate(t *testing.T) {
	if (Summary{}).SuccessRate() != 0 {
		t.Error("empty summary should have zero success rate")
	}
	if got := (Summary{Total: 4, Passed: 3}).SuccessRate(); got != 75 {
		t.Errorf("SuccessRate = %f, want 75", got)
	}
}
