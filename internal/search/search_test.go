package search

import (
	"sync"
	"testing"
	"time"

	"github.com/park285/cheese-engine/internal/board"
	"github.com/park285/cheese-engine/internal/tt"
	"github.com/park285/cheese-engine/internal/tune"
)

type recorder struct {
	mu       sync.Mutex
	depths   []int
	scores   []int
	best     board.Move
	thinking chan struct{}
}

func (r *recorder) PrintThinking(th *Thread, alpha, beta int) {
	r.mu.Lock()
	r.depths = append(r.depths, th.Depth)
	r.scores = append(r.scores, th.RootMoves[0].Score)
	r.mu.Unlock()
	if r.thinking != nil {
		select {
		case r.thinking <- struct{}{}:
		default:
		}
	}
}

func (r *recorder) PrintConclusion(th *Thread) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(th.RootMoves) > 0 {
		r.best = th.RootMoves[0].Move
	}
}

func newTestEngine() *Engine {
	p := tune.Defaults()
	return NewEngine(tt.New(1), &p)
}

func limitsAt(depth int) *Limits {
	l := &Limits{MultiPV: 1}
	l.Start = time.Now()
	l.Depth = depth
	return l
}

func TestLimitsResetKeepsMultiPV(t *testing.T) {
	l := Limits{MultiPV: 3, Depth: 9, Infinite: true, SearchMoves: []board.Move{"e2e4"}}
	l.Reset()
	if l.MultiPV != 3 {
		t.Fatalf("MultiPV lost on reset")
	}
	if l.Depth != 0 || l.Infinite || len(l.SearchMoves) != 0 {
		t.Fatalf("per-go fields survived reset: %+v", l)
	}
}

func TestMateScore(t *testing.T) {
	cases := map[int]int{Mate - 1: 1, Mate - 2: 1, Mate - 3: 2, -(Mate - 2): -1, -(Mate - 4): -2}
	for in, want := range cases {
		if got := MateScore(in); got != want {
			t.Fatalf("MateScore(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestSignalParkReleasedByWake(t *testing.T) {
	s := NewSignal()
	done := make(chan struct{})
	go func() {
		s.Park()
		close(done)
	}()
	s.Abort()
	s.Wake()
	<-done
	if !s.Aborted() {
		t.Fatalf("expected aborted")
	}
	s.Reset()
	if s.Aborted() {
		t.Fatalf("expected reset")
	}
}

func TestSearchFindsBackRankMate(t *testing.T) {
	e := newTestEngine()
	pos, err := board.ParseFen("6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFen: %v", err)
	}
	rec := &recorder{}
	e.Run(pos, limitsAt(2), NewSignal(), rec)
	if rec.best != "a1a8" {
		t.Fatalf("expected a1a8, got %q", rec.best)
	}
	last := rec.scores[len(rec.scores)-1]
	if last < MateInMax || MateScore(last) != 1 {
		t.Fatalf("expected mate in 1, got score %d", last)
	}
}

func TestSearchMovesRestrictRoot(t *testing.T) {
	e := newTestEngine()
	l := limitsAt(2)
	l.SearchMoves = []board.Move{"a2a3", board.NullMove}
	rec := &recorder{}
	e.Run(board.New(), l, NewSignal(), rec)
	if rec.best != "a2a3" {
		t.Fatalf("expected restricted best move a2a3, got %q", rec.best)
	}
	if len(e.MainThread().RootMoves) != 1 {
		t.Fatalf("expected one root move, got %d", len(e.MainThread().RootMoves))
	}
}

func TestInfiniteSearchWaitsForAbort(t *testing.T) {
	e := newTestEngine()
	l := limitsAt(1)
	l.Infinite = true
	rec := &recorder{thinking: make(chan struct{}, 1)}
	sig := NewSignal()
	done := make(chan struct{})
	go func() {
		e.Run(board.New(), l, sig, rec)
		close(done)
	}()
	<-rec.thinking
	sig.Abort()
	sig.Wake()
	<-done
	if rec.best == "" {
		t.Fatalf("expected a best move after stop")
	}
}

func TestHelperThreadsShareTable(t *testing.T) {
	e := newTestEngine()
	e.RequestThreads(3)
	if e.ThreadCount() != 1 {
		t.Fatalf("thread change applied before Reinit")
	}
	rec := &recorder{}
	e.Run(board.New(), limitsAt(2), NewSignal(), rec)
	if e.ThreadCount() != 3 {
		t.Fatalf("expected 3 threads, got %d", e.ThreadCount())
	}
	if _, err := board.New().ParseMove(rec.best.String()); err != nil {
		t.Fatalf("best move %q not legal: %v", rec.best, err)
	}
	if e.HashFull() == 0 && e.Nodes() == 0 {
		t.Fatalf("expected search work")
	}
}

func TestMatedRootConcludesWithoutMoves(t *testing.T) {
	e := newTestEngine()
	pos, err := board.ParseFen("R5k1/5ppp/8/8/8/8/5PPP/6K1 b - - 1 1")
	if err != nil {
		t.Fatalf("ParseFen: %v", err)
	}
	rec := &recorder{}
	e.Run(pos, limitsAt(3), NewSignal(), rec)
	if rec.best != "" {
		t.Fatalf("expected no best move, got %q", rec.best)
	}
}

func TestBenchCountsNodes(t *testing.T) {
	e := newTestEngine()
	res, err := e.Bench(BenchPositions[:2], 2, nil)
	if err != nil {
		t.Fatalf("Bench: %v", err)
	}
	if res.Nodes == 0 {
		t.Fatalf("expected nodes")
	}
	if _, err := e.Bench([]string{"bogus"}, 1, nil); err == nil {
		t.Fatalf("expected error for bad fen")
	}
}

func TestTimeManagerBudgets(t *testing.T) {
	l := &Limits{Time: 60000, Inc: 1000, TimeLimit: true}
	tm := newTimeManager(l)
	if tm.optimal != 60000/50+750 || tm.maximum <= tm.optimal {
		t.Fatalf("unexpected budget optimal=%d maximum=%d", tm.optimal, tm.maximum)
	}
	l = &Limits{MoveTime: 500, TimeLimit: true}
	tm = newTimeManager(l)
	if tm.maximum != 470 || tm.optimal != 470 {
		t.Fatalf("unexpected movetime budget %d/%d", tm.optimal, tm.maximum)
	}
}
