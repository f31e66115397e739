package uci

import "testing"

func TestKeywordHashesAreDistinct(t *testing.T) {
	seen := map[command]string{}
	for c, kw := range keywords {
		h := hashInput(kw)
		if h != c {
			t.Fatalf("hashInput(%q) = %d, constant is %d", kw, h, c)
		}
		if prev, dup := seen[h]; dup {
			t.Fatalf("%q and %q collide on %d", prev, kw, h)
		}
		seen[h] = kw
	}
	if len(seen) != 11 {
		t.Fatalf("expected 11 keywords, got %d", len(seen))
	}
}

func TestHashStopsAtWhitespace(t *testing.T) {
	if hashInput("go depth 5") != cmdGo || hashInput("quit\r\n") != cmdQuit || hashInput("stop\tnow") != cmdStop {
		t.Fatalf("hash must only cover the leading token")
	}
	if hashInput("") != 0 {
		t.Fatalf("empty input hashes to 0")
	}
}

func TestLookupRejectsLookalikes(t *testing.T) {
	if c, ok := lookup("isready"); !ok || c != cmdIsReady {
		t.Fatalf("isready not recognized")
	}
	// "og" folds to the same value as "go" but is not a command.
	if hashInput("og") == cmdGo {
		if _, ok := lookup("og"); ok {
			t.Fatalf("lookalike accepted")
		}
	}
	for _, tok := range []string{"Go", "GO", "uci2", "stopp", "position_"} {
		if _, ok := lookup(tok); ok {
			t.Fatalf("%q must not be recognized", tok)
		}
	}
}
