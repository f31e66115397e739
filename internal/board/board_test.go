package board

import (
	"errors"
	"strings"
	"testing"
)

func TestPerftStartPosition(t *testing.T) {
	p := New()
	if got := p.Perft(1); got != 20 {
		t.Fatalf("perft(1) expected 20, got %d", got)
	}
	if got := p.Perft(2); got != 400 {
		t.Fatalf("perft(2) expected 400, got %d", got)
	}
}

func TestParseMoveRejectsIllegalTokens(t *testing.T) {
	p := New()
	for _, tok := range []string{"e2e5", "zz", "e7e5", "", "e2e4qq"} {
		m, err := p.ParseMove(tok)
		if !errors.Is(err, ErrInvalidMove) {
			t.Fatalf("token %q: expected ErrInvalidMove, got %v", tok, err)
		}
		if m != NullMove {
			t.Fatalf("token %q: expected null move, got %s", tok, m)
		}
	}
	m, err := p.ParseMove(" E2E4 ")
	if err != nil || m != "e2e4" {
		t.Fatalf("expected e2e4, got %s (%v)", m, err)
	}
}

func TestMakeMoveAdvancesFullmoveAfterBlack(t *testing.T) {
	p := New()
	if err := p.MakeMove("e2e4"); err != nil {
		t.Fatalf("MakeMove: %v", err)
	}
	if p.GameMoves != 1 || p.SideToMove() != Black {
		t.Fatalf("after white move: moves=%d side=%s", p.GameMoves, p.SideToMove())
	}
	if err := p.MakeMove("e7e5"); err != nil {
		t.Fatalf("MakeMove: %v", err)
	}
	if p.GameMoves != 2 || p.SideToMove() != White {
		t.Fatalf("after black move: moves=%d side=%s", p.GameMoves, p.SideToMove())
	}
	if err := p.MakeMove(NullMove); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("expected null move to be rejected, got %v", err)
	}
}

func TestParseFen(t *testing.T) {
	p, err := ParseFen("8/8/8/8/8/2k5/8/K7 b - - 0 42")
	if err != nil {
		t.Fatalf("ParseFen: %v", err)
	}
	if p.GameMoves != 42 || p.SideToMove() != Black || p.PieceCount() != 2 {
		t.Fatalf("unexpected position: moves=%d side=%s pieces=%d", p.GameMoves, p.SideToMove(), p.PieceCount())
	}
	if _, err := ParseFen(""); !errors.Is(err, ErrInvalidFEN) {
		t.Fatalf("expected ErrInvalidFEN for empty input, got %v", err)
	}
	if _, err := ParseFen("not a fen"); !errors.Is(err, ErrInvalidFEN) {
		t.Fatalf("expected ErrInvalidFEN, got %v", err)
	}
}

func TestOutcomeCheckmate(t *testing.T) {
	p := New()
	for _, m := range []Move{"f2f3", "e7e5", "g2g4", "d8h4"} {
		if err := p.MakeMove(m); err != nil {
			t.Fatalf("MakeMove %s: %v", m, err)
		}
	}
	if got := p.Outcome(); got != Mated {
		t.Fatalf("expected mated, got %d", got)
	}
	if New().Outcome() != Ongoing {
		t.Fatalf("start position should be ongoing")
	}
}

func TestKeyDistinguishesSideToMove(t *testing.T) {
	a := New()
	b, err := a.Play("g1f3")
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if a.Key() == 0 || a.Key() == b.Key() {
		t.Fatalf("expected distinct nonzero keys, got %x %x", a.Key(), b.Key())
	}
	if a.SideToMove() != White {
		t.Fatalf("Play must not mutate the receiver")
	}
}

func TestCandidatesTagCaptures(t *testing.T) {
	p, err := ParseFen("4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFen: %v", err)
	}
	found := false
	for _, c := range p.Candidates() {
		if c.Move == "e4d5" {
			found = true
			if !c.Capture || c.Victim != Pawn || c.Attacker != Pawn {
				t.Fatalf("unexpected candidate %+v", c)
			}
		}
	}
	if !found {
		t.Fatalf("capture e4d5 not generated")
	}
}

func TestStringDrawsBoard(t *testing.T) {
	s := New().String()
	if !strings.Contains(s, "| r | n | b | q | k | b | n | r | 8") {
		t.Fatalf("missing black back rank in\n%s", s)
	}
	if !strings.Contains(s, "Fen: "+StartFEN) {
		t.Fatalf("missing fen in\n%s", s)
	}
}
