package uci

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/park285/cheese-engine/internal/board"
	"github.com/park285/cheese-engine/internal/journal"
	"github.com/park285/cheese-engine/internal/search"
)

// Writer serializes protocol output. Each Write is flushed before it
// returns, so lines from the search goroutine never interleave with
// dispatcher output.
type Writer struct {
	mu  sync.Mutex
	buf *bufio.Writer
	tap func(line string)
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{buf: bufio.NewWriter(w)}
}

// SetTap registers a callback that sees every written line.
func (w *Writer) SetTap(fn func(line string)) {
	w.mu.Lock()
	w.tap = fn
	w.mu.Unlock()
}

func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, err := w.buf.Write(p)
	if err == nil {
		err = w.buf.Flush()
	}
	if w.tap != nil {
		for _, line := range strings.Split(strings.TrimRight(string(p[:n]), "\n"), "\n") {
			if line != "" {
				w.tap(line)
			}
		}
	}
	return n, err
}

func (w *Writer) Println(line string) {
	_, _ = io.WriteString(w, line+"\n")
}

func (w *Writer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// reporter renders one search run.
type reporter struct {
	out     *Writer
	runID   string
	fen     string
	journal *journal.Journal
}

// scoreText classifies a raw score against the window it was searched with.
func scoreText(score, alpha, beta, pvLen int) (kind string, value int, bound string) {
	switch {
	case score >= beta:
		bound = " lowerbound"
	case score <= alpha:
		bound = " upperbound"
	}
	switch {
	case abs(score) >= search.MateInMax:
		return "mate", search.MateScore(score), bound
	case abs(score) <= 8 && pvLen <= 2:
		return "cp", 0, bound
	default:
		return "cp", score, bound
	}
}

// selDepth is one past the deepest ply that holds a key.
func selDepth(th *search.Thread) int {
	sd := search.MaxPly
	for ; sd > 0; sd-- {
		if th.KeyStack[sd-1] != 0 {
			break
		}
	}
	return sd
}

func nps(nodes uint64, elapsedMS int64) uint64 {
	if elapsedMS < 0 {
		elapsedMS = 0
	}
	return 1000 * nodes / uint64(elapsedMS+1)
}

func (r *reporter) PrintThinking(th *search.Thread, alpha, beta int) {
	e := th.Engine()
	limits := e.Limits()
	elapsed := limits.Elapsed()
	nodes := e.Nodes()
	tbhits := e.TBHits()
	hashFull := e.HashFull()
	seldepth := selDepth(th)

	var b strings.Builder
	for i := 0; i < limits.MultiPV && i < len(th.RootMoves); i++ {
		rm := th.RootMoves[i]
		if len(rm.PV) == 0 {
			break
		}
		kind, value, bound := scoreText(rm.Score, alpha, beta, len(rm.PV))
		fmt.Fprintf(&b, "info depth %d seldepth %d multipv %d score %s %d%s time %d nodes %d nps %d tbhits %d hashfull %d pv",
			th.Depth, seldepth, i+1, kind, value, bound, elapsed, nodes, nps(nodes, elapsed), tbhits, hashFull)
		for _, m := range rm.PV {
			b.WriteByte(' ')
			b.WriteString(m.String())
		}
		b.WriteByte('\n')
	}
	if b.Len() > 0 {
		_, _ = io.WriteString(r.out, b.String())
	}
}

func (r *reporter) PrintConclusion(th *search.Thread) {
	best := board.NullMove
	if len(th.RootMoves) > 0 {
		best = th.RootMoves[0].Move
	}
	r.out.Println("bestmove " + best.String())

	if r.journal == nil || len(th.RootMoves) == 0 {
		return
	}
	e := th.Engine()
	kind, value, _ := scoreText(th.RootMoves[0].Score, -search.Infinite, search.Infinite, len(th.RootMoves[0].PV))
	r.journal.Submit(journal.Entry{
		RunID:     r.runID,
		FEN:       r.fen,
		BestMove:  best.String(),
		ScoreType: kind,
		Score:     value,
		Depth:     th.Depth,
		SelDepth:  selDepth(th),
		Nodes:     e.Nodes(),
		Elapsed:   time.Duration(e.Limits().Elapsed()) * time.Millisecond,
	})
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
