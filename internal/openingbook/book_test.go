package openingbook

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	chesslib "github.com/corentings/chess/v2"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// polyglotMove packs from/to squares (a1=0) into the polyglot move layout.
func polyglotMove(from, to int) uint16 {
	return uint16(to%8 | (to/8)<<3 | (from%8)<<6 | (from/8)<<9)
}

func writeBook(t *testing.T, entries ...[3]uint64) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, e := range entries {
		_ = binary.Write(&buf, binary.BigEndian, e[0])
		_ = binary.Write(&buf, binary.BigEndian, uint16(e[1]))
		_ = binary.Write(&buf, binary.BigEndian, uint16(e[2]))
		_ = binary.Write(&buf, binary.BigEndian, uint32(0))
	}
	return buf.Bytes()
}

func startKey(t *testing.T) uint64 {
	t.Helper()
	h, err := chesslib.NewZobristHasher().HashPosition(startFEN)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return chesslib.ZobristHashToUint64(h)
}

func TestLookupOrdersByWeightAndDropsIllegal(t *testing.T) {
	key := startKey(t)
	raw := writeBook(t,
		[3]uint64{key, uint64(polyglotMove(11, 27)), 5},  // d2d4
		[3]uint64{key, uint64(polyglotMove(12, 28)), 10}, // e2e4
		[3]uint64{key, uint64(polyglotMove(12, 36)), 50}, // e2e5, illegal
	)
	path := filepath.Join(t.TempDir(), "book.bin")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	results, err := b.Lookup(startFEN)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(results) != 2 || results[0].Move != "e2e4" || results[1].Move != "d2d4" {
		t.Fatalf("unexpected results %+v", results)
	}
	best, ok, err := b.Best("startpos")
	if err != nil || !ok || best.Move != "e2e4" {
		t.Fatalf("unexpected best %+v ok=%v err=%v", best, ok, err)
	}
}

func TestLookupMissAndErrors(t *testing.T) {
	b, err := LoadFromReader(bytes.NewReader(writeBook(t, [3]uint64{1, uint64(polyglotMove(12, 28)), 1})))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if _, ok, err := b.Best(startFEN); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if _, err := b.Lookup("garbage"); err == nil {
		t.Fatalf("expected fen error")
	}
	if _, err := LoadFromPath(""); err == nil {
		t.Fatalf("expected path error")
	}
}
