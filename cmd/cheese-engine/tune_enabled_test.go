//go:build tune

package main

import (
	"testing"

	"github.com/park285/cheese-engine/internal/tune"
)

func TestParseSample(t *testing.T) {
	s, ok := parseSample(`rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - c9 "1-0";`)
	if !ok || s.result != 1 {
		t.Fatalf("epd line not parsed: %+v %v", s, ok)
	}
	s, ok = parseSample("8/8/8/8/8/8/8/K6k w - - 0 70 [0.5]")
	if !ok || s.result != 0.5 {
		t.Fatalf("fen line not parsed: %+v %v", s, ok)
	}
	if _, ok := parseSample("no result here"); ok {
		t.Fatalf("line without result accepted")
	}
}

func TestTuneErrorPrefersMaterialWinner(t *testing.T) {
	up, _ := parseSample("4k3/8/8/8/8/8/8/3QK3 w - - 0 1 [1.0]")
	p := tune.Defaults()
	withQueen := tuneError([]sample{up}, &p)
	p.QueenValue = 0
	if e := tuneError([]sample{up}, &p); e <= withQueen {
		t.Fatalf("removing the queen's value must increase the error: %v <= %v", e, withQueen)
	}
}
