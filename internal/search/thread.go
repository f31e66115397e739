package search

import (
	"sync/atomic"

	"github.com/park285/cheese-engine/internal/board"
	"github.com/park285/cheese-engine/internal/tune"
)

type RootMove struct {
	Move      board.Move
	Score     int
	PrevScore int
	PV        []board.Move
}

// Thread is one searcher. Thread 0 is the main thread and the only one that
// reports.
type Thread struct {
	Index      int
	Depth      int
	MultiPVIdx int
	RootMoves  []RootMove

	// KeyStack holds the key of the position searched at each ply of the
	// current line. Entries are cleared when a run starts, so the deepest
	// nonzero slot is the selective depth.
	KeyStack [MaxPly]uint64

	nodes  atomic.Uint64
	tbhits atomic.Uint64

	engine  *Engine
	params  *tune.Params
	ctl     Control
	tm      *timeManager
	killers [MaxPly][2]board.Move
	history [2][64][64]int
}

func (th *Thread) Engine() *Engine { return th.engine }

func (th *Thread) Nodes() uint64  { return th.nodes.Load() }
func (th *Thread) TBHits() uint64 { return th.tbhits.Load() }

func (th *Thread) isMain() bool { return th.Index == 0 }

func (th *Thread) resetRun(ctl Control, params *tune.Params, tm *timeManager) {
	th.ctl = ctl
	th.params = params
	th.tm = tm
	th.Depth = 0
	th.MultiPVIdx = 0
	th.RootMoves = th.RootMoves[:0]
	th.KeyStack = [MaxPly]uint64{}
	th.nodes.Store(0)
	th.tbhits.Store(0)
}

// clear wipes state that carries over between searches of the same game.
func (th *Thread) clear() {
	th.killers = [MaxPly][2]board.Move{}
	th.history = [2][64][64]int{}
}

// Fresh reports whether no killer or history entry survives from earlier
// searches.
func (th *Thread) Fresh() bool {
	return th.killers == [MaxPly][2]board.Move{} && th.history == [2][64][64]int{}
}

func (th *Thread) aborted() bool { return th.ctl.Aborted() }

// visit counts a node and, on the main thread, enforces the hard time limit.
func (th *Thread) visit() {
	n := th.nodes.Add(1)
	if th.isMain() && n&1023 == 0 && th.tm.outOfTime() {
		th.ctl.Abort()
	}
}

func (th *Thread) rootMove(m board.Move) *RootMove {
	for i := th.MultiPVIdx; i < len(th.RootMoves); i++ {
		if th.RootMoves[i].Move == m {
			return &th.RootMoves[i]
		}
	}
	return nil
}

func squares(m board.Move) (from, to int) {
	s := string(m)
	if len(s) < 4 {
		return 0, 0
	}
	from = int(s[1]-'1')*8 + int(s[0]-'a')
	to = int(s[3]-'1')*8 + int(s[2]-'a')
	if from < 0 || from > 63 || to < 0 || to > 63 {
		return 0, 0
	}
	return from, to
}
