package tt

import "testing"

func TestResizeIsDeferredUntilInit(t *testing.T) {
	tab := New(1)
	if tab.SizeMB() != 1 {
		t.Fatalf("expected 1MB, got %d", tab.SizeMB())
	}
	tab.RequestSize(2)
	if tab.SizeMB() != 1 {
		t.Fatalf("resize applied before Init")
	}
	tab.Init()
	if tab.SizeMB() != 2 {
		t.Fatalf("expected 2MB after Init, got %d", tab.SizeMB())
	}
	tab.RequestSize(0)
	tab.Init()
	if tab.SizeMB() != MinMB {
		t.Fatalf("expected clamp to %d, got %d", MinMB, tab.SizeMB())
	}
}

func TestStoreProbeClear(t *testing.T) {
	tab := New(1)
	tab.Store(12345, "e2e4", 35, 10, 6, BoundExact)
	e, ok := tab.Probe(12345)
	if !ok || e.Move != "e2e4" || e.Score != 35 || e.Depth != 6 {
		t.Fatalf("unexpected probe: %+v ok=%v", e, ok)
	}
	if _, ok := tab.Probe(54321); ok {
		t.Fatalf("unexpected hit for absent key")
	}
	tab.Clear()
	if _, ok := tab.Probe(12345); ok {
		t.Fatalf("entry survived Clear")
	}
}

func TestStoreKeepsMoveWhenNoneGiven(t *testing.T) {
	tab := New(1)
	tab.Store(7, "g1f3", 0, 0, 3, BoundLower)
	tab.Store(7, "", 5, 0, 4, BoundUpper)
	e, _ := tab.Probe(7)
	if e.Move != "g1f3" || e.Bound != BoundUpper {
		t.Fatalf("unexpected entry %+v", e)
	}
}

func TestHashFullCountsCurrentAge(t *testing.T) {
	tab := New(1)
	if tab.HashFull() != 0 {
		t.Fatalf("expected empty table")
	}
	for i := uint64(0); i < 500; i++ {
		tab.Store(i, "", 0, 0, 1, BoundExact)
	}
	if got := tab.HashFull(); got != 500 {
		t.Fatalf("expected 500 permille, got %d", got)
	}
	tab.NewSearch()
	if got := tab.HashFull(); got != 0 {
		t.Fatalf("expected aged entries to be ignored, got %d", got)
	}
}
