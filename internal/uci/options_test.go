package uci

import (
	"io"
	"strings"
	"testing"

	"github.com/park285/cheese-engine/internal/tune"
)

func TestUnknownOptionChangesNothing(t *testing.T) {
	h := newHarness(t, testConfig())
	before := *h.e.Params()
	h.send("setoption name NoSuchThing value 5")
	lines := h.awaitToken(t, "info string")
	if lines[0] != "info string No such option." {
		t.Fatalf("unexpected report %v", lines)
	}
	if *h.e.Params() != before {
		t.Fatalf("params changed by unknown option")
	}
}

func TestFloatOptionScaledByHundred(t *testing.T) {
	e := New(testConfig(), io.Discard)
	e.Handle("setoption name TrendDiv value 150")
	if e.Params().TrendDiv != 1.5 {
		t.Fatalf("TrendDiv = %v, want 1.5", e.Params().TrendDiv)
	}
	var b strings.Builder
	e.Registry().Describe(&b)
	if !strings.Contains(b.String(), "option name TrendDiv type spin default 150 min -100000 max 100000\n") {
		t.Fatalf("TrendDiv does not round trip")
	}
	e.Handle("setoption name LMRQuietDiv value 29")
	if got := e.Params().LMRQuietDiv; got != 0.29 {
		t.Fatalf("LMRQuietDiv = %v", got)
	}
	b.Reset()
	e.Registry().Describe(&b)
	if !strings.Contains(b.String(), "option name LMRQuietDiv type spin default 29 ") {
		t.Fatalf("LMRQuietDiv does not round trip")
	}
}

func TestSpinValuesOutsideRangeAreKept(t *testing.T) {
	e := New(testConfig(), io.Discard)
	e.Handle("setoption name Tempo value 999999")
	if e.Params().Tempo != 999999 {
		t.Fatalf("Tempo = %d", e.Params().Tempo)
	}
	e.Handle("setoption name Tempo value junk")
	if e.Params().Tempo != 0 {
		t.Fatalf("garbage must parse as 0, got %d", e.Params().Tempo)
	}
}

func TestAllocationOptionsAreClamped(t *testing.T) {
	e := New(testConfig(), io.Discard)
	e.Handle("setoption name Hash value 0")
	e.Handle("setoption name Threads value 5000")
	e.Handle("setoption name MultiPV value 500")
	if e.hashMB != 1 || e.threads != 2048 || e.limits.MultiPV != 64 {
		t.Fatalf("unexpected clamped values hash=%d threads=%d multipv=%d", e.hashMB, e.threads, e.limits.MultiPV)
	}
	e.Handle("setoption name Threads value 3")
	e.Handle("isready")
	if e.search.ThreadCount() != 3 {
		t.Fatalf("thread count not applied by isready: %d", e.search.ThreadCount())
	}
	e.Handle("setoption name Hash value 2")
	e.Handle("isready")
	if e.table.SizeMB() != 2 {
		t.Fatalf("hash size not applied by isready: %d", e.table.SizeMB())
	}
}

func TestCheckOptionAcceptsOnlyTrue(t *testing.T) {
	e := New(testConfig(), io.Discard)
	e.Handle("setoption name NoobBook value true")
	if !e.noobBook {
		t.Fatalf("true not accepted")
	}
	for _, v := range []string{"false", "TRUE", "1", ""} {
		e.Handle("setoption name NoobBook value " + v)
		if e.noobBook {
			t.Fatalf("%q must read as false", v)
		}
	}
}

func TestExactNameWinsOverPrefix(t *testing.T) {
	e := New(testConfig(), io.Discard)
	p := e.Params()
	probCut := p.ProbCut
	e.Handle("setoption name ProbCutDepth value 9")
	if p.ProbCutDepth != 9 || p.ProbCut != probCut {
		t.Fatalf("ProbCutDepth routed wrong: %+v", p)
	}
	e.Handle("setoption name NoobBookLimit value 12")
	if e.noobBookLimit != 12 || e.noobBook {
		t.Fatalf("NoobBookLimit routed wrong")
	}
	// An unregistered name falls back to the first registered prefix.
	e.Handle("setoption name AspiX value 33")
	if p.Aspi != 33 {
		t.Fatalf("prefix fallback failed: Aspi = %d", p.Aspi)
	}
}

func TestStringOptions(t *testing.T) {
	e := New(testConfig(), io.Discard)
	e.Handle("setoption name SyzygyPath value /tb/a;/tb/b")
	if e.syzygyPath != "/tb/a;/tb/b" {
		t.Fatalf("SyzygyPath = %q", e.syzygyPath)
	}
	e.Handle("setoption name SyzygyPath value <empty>")
	if e.syzygyPath != "" {
		t.Fatalf("<empty> must clear the path")
	}
	e.Handle("setoption name BookFile value /does/not/exist.bin")
	if e.book != nil {
		t.Fatalf("missing book must leave no book loaded")
	}
}

func TestSplitSetOption(t *testing.T) {
	name, value := splitSetOption("setoption name Move Overhead value 100\r\n")
	if name != "Move Overhead" || value != "100" {
		t.Fatalf("got %q %q", name, value)
	}
	name, value = splitSetOption("setoption name Clear Hash")
	if name != "Clear Hash" || value != "" {
		t.Fatalf("got %q %q", name, value)
	}
	if name, _ := splitSetOption("setoption"); name != "" {
		t.Fatalf("expected empty name")
	}
}

func TestApplyProfile(t *testing.T) {
	e := New(testConfig(), io.Discard)
	unknown := e.Registry().ApplyProfile([]tune.Setting{
		{Name: "KnightValue", Value: 345},
		{Name: "TrendDiv", Value: 175},
		{Name: "Bogus", Value: 1},
	})
	if len(unknown) != 1 || unknown[0] != "Bogus" {
		t.Fatalf("unexpected unknown names %v", unknown)
	}
	if e.Params().KnightValue != 345 || e.Params().TrendDiv != 1.75 {
		t.Fatalf("profile not applied: %+v", e.Params())
	}
}
