package uci

import (
	"testing"

	"github.com/park285/cheese-engine/internal/board"
	"github.com/park285/cheese-engine/internal/search"
)

func TestParseTimeControlDepth(t *testing.T) {
	var l search.Limits
	ParseTimeControl("go depth 10", board.New(), &l)
	if l.Depth != 10 || l.TimeLimit || l.Infinite || l.Mate != 0 {
		t.Fatalf("unexpected limits %+v", l)
	}
	if l.Start.IsZero() {
		t.Fatalf("start not stamped")
	}
}

func TestParseTimeControlInfinite(t *testing.T) {
	var l search.Limits
	ParseTimeControl("go infinite", board.New(), &l)
	if !l.Infinite || l.Depth != 100 || l.TimeLimit {
		t.Fatalf("unexpected limits %+v", l)
	}
}

func TestParseTimeControlClockBySide(t *testing.T) {
	var l search.Limits
	line := "go wtime 60000 btime 50000 winc 1000 binc 500 movestogo 20"
	ParseTimeControl(line, board.New(), &l)
	if l.Time != 60000 || l.Inc != 1000 || !l.TimeLimit || l.MovesToGo != 20 {
		t.Fatalf("unexpected white limits %+v", l)
	}

	black, err := board.ParseFen("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
	if err != nil {
		t.Fatalf("ParseFen: %v", err)
	}
	ParseTimeControl(line, black, &l)
	if l.Time != 50000 || l.Inc != 500 {
		t.Fatalf("unexpected black limits %+v", l)
	}

	ParseTimeControl("go wtime 60000 winc 1000", board.New(), &l)
	if l.Time != 60000 || l.Inc != 1000 || !l.TimeLimit || l.MovesToGo != 0 {
		t.Fatalf("stale fields survived: %+v", l)
	}
}

func TestParseTimeControlMoveTimeAndMate(t *testing.T) {
	var l search.Limits
	ParseTimeControl("go movetime 250 mate 3", board.New(), &l)
	if l.MoveTime != 250 || !l.TimeLimit || l.Mate != 3 || l.Depth != 100 {
		t.Fatalf("unexpected limits %+v", l)
	}
}

func TestParseTimeControlKeepsMultiPV(t *testing.T) {
	l := search.Limits{MultiPV: 4, Depth: 7, Infinite: true}
	ParseTimeControl("go", board.New(), &l)
	if l.MultiPV != 4 || l.Infinite || l.Depth != 100 {
		t.Fatalf("unexpected limits %+v", l)
	}
}

func TestParseTimeControlSearchMoves(t *testing.T) {
	var l search.Limits
	bad := ParseTimeControl("go depth 3 searchmoves e2e4 E7E5 d2d4 0000 g1f3", board.New(), &l)
	want := []board.Move{"e2e4", "d2d4", "g1f3"}
	if len(l.SearchMoves) != len(want) {
		t.Fatalf("unexpected searchmoves %v", l.SearchMoves)
	}
	for i, m := range want {
		if l.SearchMoves[i] != m {
			t.Fatalf("searchmoves[%d] = %s, want %s", i, l.SearchMoves[i], m)
		}
	}
	if len(bad) != 2 || bad[0] != "E7E5" || bad[1] != "0000" {
		t.Fatalf("unexpected rejected tokens %v", bad)
	}
	if l.Depth != 3 {
		t.Fatalf("depth parsed from searchmoves tail: %+v", l)
	}
}

func TestAtoi(t *testing.T) {
	cases := map[string]int{
		"150":     150,
		" -42 x":  -42,
		"+7":      7,
		"abc":     0,
		"":        0,
		"12abc34": 12,
	}
	for in, want := range cases {
		if got := atoi(in); got != want {
			t.Fatalf("atoi(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseTimeControlBlankRuns(t *testing.T) {
	var l search.Limits
	ParseTimeControl("go depth\t10  movetime   250", board.New(), &l)
	if l.Depth != 10 || l.MoveTime != 250 || !l.TimeLimit {
		t.Fatalf("unexpected limits %+v", l)
	}
}

func TestIntAfterMatchesWholeWords(t *testing.T) {
	if got := intAfter("go depthx 3 depth 7", "depth"); got != 7 {
		t.Fatalf("expected the whole-word depth, got %d", got)
	}
	if got := intAfter("go xdepth 3", "depth"); got != 0 {
		t.Fatalf("expected no match inside a word, got %d", got)
	}
	if got := intAfter("go depth", "depth"); got != 0 {
		t.Fatalf("expected 0 for a missing value, got %d", got)
	}
}
