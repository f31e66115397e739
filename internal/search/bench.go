package search

import (
	"fmt"
	"time"

	"github.com/park285/cheese-engine/internal/board"
)

// BenchPositions is the fixed benchmark suite.
var BenchPositions = []string{
	"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	"r3k2r/1bp1qpb1/p1np1np1/4p2p/2P1P3/1PN2N1P/PB1PQPB1/R3K2R w KQkq - 0 1",
	"2kr3r/pbpn1pq1/1p2pn1p/3p2p1/2PP4/P1N1P1P1/1PQ1NPBP/R4RK1 w - - 0 1",
}

const DefaultBenchDepth = 5

type BenchResult struct {
	Nodes   uint64
	Elapsed time.Duration
}

// NPS is nodes per second, guarded against a zero duration.
func (r BenchResult) NPS() uint64 {
	ms := uint64(r.Elapsed.Milliseconds())
	return 1000 * r.Nodes / (ms + 1)
}

// Bench searches every position to depth on a fresh table and sums nodes.
func (e *Engine) Bench(fens []string, depth int, rep Reporter) (BenchResult, error) {
	if depth <= 0 {
		depth = DefaultBenchDepth
	}
	var res BenchResult
	start := time.Now()
	for _, fen := range fens {
		pos, err := board.ParseFen(fen)
		if err != nil {
			return res, fmt.Errorf("bench position %q: %w", fen, err)
		}
		e.TT.Clear()
		e.Reset()
		limits := &Limits{MultiPV: 1}
		limits.Start = time.Now()
		limits.Depth = depth
		e.Run(pos, limits, NewSignal(), rep)
		res.Nodes += e.Nodes()
	}
	res.Elapsed = time.Since(start)
	return res, nil
}
