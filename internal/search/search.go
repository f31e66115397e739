package search

import (
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/park285/cheese-engine/internal/board"
	"github.com/park285/cheese-engine/internal/obslog"
	"github.com/park285/cheese-engine/internal/tt"
	"github.com/park285/cheese-engine/internal/tune"
)

// Reporter receives progress from the main thread.
type Reporter interface {
	PrintThinking(th *Thread, alpha, beta int)
	PrintConclusion(th *Thread)
}

// OracleHit is a root answer that replaces searching.
type OracleHit struct {
	Move   board.Move
	Score  int
	TBHit  bool
	Source string
}

// Oracle is consulted once before the root search. Book and tablebase
// probes implement it.
type Oracle interface {
	ProbeRoot(pos *board.Position) (OracleHit, bool)
}

// Engine owns the threads and the shared table. Thread count changes are
// deferred to Reinit so they never happen under a running search.
type Engine struct {
	TT     *tt.Table
	Oracle Oracle

	params         *tune.Params
	limits         *Limits
	threads        []*Thread
	pendingThreads int
}

func NewEngine(table *tt.Table, params *tune.Params) *Engine {
	e := &Engine{TT: table, params: params, pendingThreads: 1}
	e.Reinit()
	return e
}

// Params is the live tuning the option registry mutates.
func (e *Engine) Params() *tune.Params { return e.params }

// Limits of the current or last run.
func (e *Engine) Limits() *Limits { return e.limits }

func (e *Engine) RequestThreads(n int) { e.pendingThreads = max(n, 1) }

func (e *Engine) ThreadCount() int { return len(e.threads) }

// Reinit applies a pending thread count.
func (e *Engine) Reinit() {
	if len(e.threads) == e.pendingThreads {
		return
	}
	threads := make([]*Thread, e.pendingThreads)
	for i := range threads {
		if i < len(e.threads) {
			threads[i] = e.threads[i]
			continue
		}
		threads[i] = &Thread{Index: i, engine: e}
	}
	e.threads = threads
}

// Reset clears per-game heuristics in every thread.
func (e *Engine) Reset() {
	for _, th := range e.threads {
		th.clear()
	}
}

// Nodes sums the node counters of all threads.
func (e *Engine) Nodes() uint64 {
	var n uint64
	for _, th := range e.threads {
		n += th.Nodes()
	}
	return n
}

func (e *Engine) TBHits() uint64 {
	var n uint64
	for _, th := range e.threads {
		n += th.TBHits()
	}
	return n
}

func (e *Engine) HashFull() int { return e.TT.HashFull() }

// MainThread is thread 0.
func (e *Engine) MainThread() *Thread { return e.threads[0] }

// Run searches pos under limits until the limits are met or ctl is aborted,
// then reports the best move. It blocks; callers run it on its own goroutine.
func (e *Engine) Run(pos *board.Position, limits *Limits, ctl Control, rep Reporter) {
	if rep == nil {
		rep = nopReporter{}
	}
	e.Reinit()
	e.limits = limits
	e.TT.NewSearch()

	params := e.params.Clone()
	tm := newTimeManager(limits)
	roots := rootMoves(pos, limits.SearchMoves)
	for _, th := range e.threads {
		th.resetRun(ctl, params, tm)
		th.RootMoves = append(th.RootMoves, roots...)
	}
	main := e.threads[0]
	log := obslog.L()

	if len(roots) == 0 {
		log.Debug("search_no_moves", zap.String("fen", pos.FEN()))
		e.finish(main, limits, ctl, rep)
		return
	}

	if e.Oracle != nil {
		if hit, ok := e.Oracle.ProbeRoot(pos); ok && main.rootMove(hit.Move) != nil {
			log.Debug("search_oracle_hit", zap.String("source", hit.Source), zap.String("move", hit.Move.String()))
			if hit.TBHit {
				main.tbhits.Add(1)
			}
			main.Depth = 1
			main.KeyStack[0] = pos.Key()
			main.RootMoves = []RootMove{{Move: hit.Move, Score: hit.Score, PV: []board.Move{hit.Move}}}
			rep.PrintThinking(main, -Infinite, Infinite)
			e.finish(main, limits, ctl, rep)
			return
		}
	}

	var g errgroup.Group
	for _, th := range e.threads[1:] {
		g.Go(func() error {
			th.iterate(pos.Clone(), nil)
			return nil
		})
	}
	main.iterate(pos, rep)
	if limits.Infinite && !ctl.Aborted() {
		ctl.Park()
	}
	ctl.Abort()
	_ = g.Wait()

	log.Debug("search_done",
		zap.Int("depth", main.Depth),
		zap.Uint64("nodes", e.Nodes()),
		zap.Duration("elapsed", time.Since(limits.Start)),
	)
	rep.PrintConclusion(main)
}

// finish handles runs that never searched: an infinite search still waits
// for stop before reporting.
func (e *Engine) finish(main *Thread, limits *Limits, ctl Control, rep Reporter) {
	if limits.Infinite && !ctl.Aborted() {
		ctl.Park()
	}
	ctl.Abort()
	rep.PrintConclusion(main)
}

func rootMoves(pos *board.Position, restrict []board.Move) []RootMove {
	legal := pos.LegalMoves()
	allowed := map[board.Move]bool{}
	for _, m := range restrict {
		if m != board.NullMove {
			allowed[m] = true
		}
	}
	out := make([]RootMove, 0, len(legal))
	for _, m := range legal {
		if len(allowed) > 0 && !allowed[m] {
			continue
		}
		out = append(out, RootMove{Move: m, Score: -Infinite, PrevScore: -Infinite})
	}
	return out
}

// iterate runs iterative deepening. Only the main thread passes a reporter
// and decides when to stop.
func (th *Thread) iterate(pos *board.Position, rep Reporter) {
	limits := th.engine.limits
	multiPV := min(max(limits.MultiPV, 1), len(th.RootMoves))
	start := 1
	if !th.isMain() {
		start += th.Index % 2
	}
	for depth := start; depth <= limits.Depth && depth < MaxPly; depth++ {
		th.Depth = depth
		for i := range th.RootMoves {
			th.RootMoves[i].PrevScore = th.RootMoves[i].Score
		}
		for th.MultiPVIdx = 0; th.MultiPVIdx < multiPV; th.MultiPVIdx++ {
			th.aspiration(pos, depth, rep)
			if th.aborted() {
				break
			}
		}
		th.MultiPVIdx = 0
		if th.aborted() {
			break
		}
		if rep != nil {
			rep.PrintThinking(th, -Infinite, Infinite)
		}
		if !th.isMain() {
			continue
		}
		best := th.RootMoves[0].Score
		if limits.Mate > 0 && best >= MateInMax && MateScore(best) <= limits.Mate {
			break
		}
		if !th.tm.finishIteration(th.params, th.RootMoves[0].PrevScore, best) {
			break
		}
	}
}

func (th *Thread) aspiration(pos *board.Position, depth int, rep Reporter) {
	p := th.params
	prev := th.RootMoves[th.MultiPVIdx].PrevScore
	alpha, beta := -Infinite, Infinite
	delta := p.Aspi
	if p.AspiScoreDiv > 0 && abs(prev) < MateInMax {
		delta += prev * prev / p.AspiScoreDiv
	}
	if depth > 4 && delta > 0 && abs(prev) < MateInMax {
		alpha = max(prev-delta, -Infinite)
		beta = min(prev+delta, Infinite)
	}
	for {
		var pv []board.Move
		score := th.alphaBeta(pos, alpha, beta, depth, 0, &pv)
		rest := th.RootMoves[th.MultiPVIdx:]
		sort.SliceStable(rest, func(i, j int) bool { return rest[i].Score > rest[j].Score })
		if th.aborted() {
			return
		}
		failed := score <= alpha || score >= beta
		if rep != nil && failed && th.engine.limits.Elapsed() > 3000 {
			rep.PrintThinking(th, alpha, beta)
		}
		switch {
		case score <= alpha:
			beta = (alpha + beta) / 2
			alpha = max(score-delta, -Infinite)
		case score >= beta:
			beta = min(score+delta, Infinite)
		default:
			return
		}
		if delta <= 0 {
			alpha, beta = -Infinite, Infinite
		}
		delta += delta/2 + 1
	}
}

func (th *Thread) alphaBeta(pos *board.Position, alpha, beta, depth, ply int, pv *[]board.Move) int {
	*pv = (*pv)[:0]
	if depth <= 0 {
		return th.quiescence(pos, alpha, beta, ply)
	}
	th.visit()
	if th.aborted() {
		return 0
	}
	p := th.params
	root := ply == 0
	pvNode := beta-alpha > 1
	key := pos.Key()
	th.KeyStack[ply] = key

	if !root {
		if th.repeated(key, ply) || pos.DrawnByRule() {
			return 0
		}
		alpha = max(alpha, -Mate+ply)
		beta = min(beta, Mate-ply-1)
		if alpha >= beta {
			return alpha
		}
	}
	if ply >= MaxPly-1 {
		return evaluatePieces(pos.Pieces(), pos.SideToMove(), p)
	}

	var ttMove board.Move
	entry, hit := th.engine.TT.Probe(key)
	if hit {
		ttMove = entry.Move
		score := scoreFromTT(int(entry.Score), ply)
		if !pvNode && !root && int(entry.Depth) >= depth {
			switch {
			case entry.Bound == tt.BoundExact,
				entry.Bound == tt.BoundLower && score >= beta,
				entry.Bound == tt.BoundUpper && score <= alpha:
				return score
			}
		}
	}

	moves := pos.Candidates()
	if len(moves) == 0 {
		if pos.Checkmated() {
			return -Mate + ply
		}
		return 0
	}

	eval := evaluatePieces(pos.Pieces(), pos.SideToMove(), p)
	if hit && entry.Bound != tt.BoundNone {
		eval = int(entry.Eval)
	}

	if !pvNode && !root && depth <= p.RFPDepth && abs(beta) < MateInMax && eval-p.RFPBase*depth >= beta {
		return eval
	}

	if root {
		moves = th.restrictToRoot(moves)
	}
	side := pos.SideToMove()
	th.order(moves, ttMove, ply, side)

	best := -Infinite
	var bestMove board.Move
	var childPV []board.Move
	quiets := make([]board.Move, 0, 16)
	count := 0
	for _, c := range moves {
		child, err := pos.Play(c.Move)
		if err != nil {
			continue
		}
		count++
		quiet := !c.Capture && !c.Promotion
		newDepth := depth - 1
		if c.Check && ply < 2*th.Depth {
			newDepth++
		}

		var score int
		if count == 1 {
			score = -th.alphaBeta(child, -beta, -alpha, newDepth, ply+1, &childPV)
		} else {
			r := 0
			if depth >= 3 && count > 3 && quiet && !c.Check {
				r = th.reduction(depth, count, th.historyScore(side, c.Move))
				r = min(max(r, 0), newDepth-1)
			}
			score = -th.alphaBeta(child, -alpha-1, -alpha, newDepth-r, ply+1, &childPV)
			if score > alpha && r > 0 {
				score = -th.alphaBeta(child, -alpha-1, -alpha, newDepth, ply+1, &childPV)
			}
			if score > alpha && score < beta {
				score = -th.alphaBeta(child, -beta, -alpha, newDepth, ply+1, &childPV)
			}
		}
		if th.aborted() {
			return 0
		}

		if root {
			if rm := th.rootMove(c.Move); rm != nil {
				if count == 1 || score > alpha {
					rm.Score = score
					rm.PV = append(append(rm.PV[:0], c.Move), childPV...)
				} else {
					rm.Score = -Infinite
				}
			}
		}

		if score > best {
			best = score
			if score > alpha {
				bestMove = c.Move
				alpha = score
				*pv = append(append((*pv)[:0], c.Move), childPV...)
				if score >= beta {
					if quiet {
						th.rewardQuiet(side, c.Move, quiets, depth, ply)
					}
					break
				}
			}
		}
		if quiet {
			quiets = append(quiets, c.Move)
		}
	}

	bound := tt.BoundUpper
	switch {
	case best >= beta:
		bound = tt.BoundLower
	case bestMove != "":
		bound = tt.BoundExact
	}
	if !root || th.MultiPVIdx == 0 {
		th.engine.TT.Store(key, bestMove, int32(scoreToTT(best, ply)), int32(eval), depth, bound)
	}
	return best
}

func (th *Thread) quiescence(pos *board.Position, alpha, beta, ply int) int {
	th.visit()
	if th.aborted() {
		return 0
	}
	p := th.params
	if ply < MaxPly {
		th.KeyStack[ply] = pos.Key()
	}
	if pos.DrawnByRule() {
		return 0
	}
	moves := pos.Candidates()
	if len(moves) == 0 {
		if pos.Checkmated() {
			return -Mate + ply
		}
		return 0
	}
	stand := evaluatePieces(pos.Pieces(), pos.SideToMove(), p)
	if ply >= MaxPly-1 || stand >= beta {
		return stand
	}
	alpha = max(alpha, stand)
	best := stand
	futility := stand + p.QSFutility

	noisy := moves[:0]
	for _, c := range moves {
		if c.Capture || c.Promotion {
			noisy = append(noisy, c)
		}
	}
	th.order(noisy, "", ply, pos.SideToMove())
	for _, c := range noisy {
		if !c.Promotion && futility+PieceValue(p, c.Victim) <= alpha {
			best = max(best, futility+PieceValue(p, c.Victim))
			continue
		}
		child, err := pos.Play(c.Move)
		if err != nil {
			continue
		}
		score := -th.quiescence(child, -beta, -alpha, ply+1)
		if th.aborted() {
			return 0
		}
		if score > best {
			best = score
			if score > alpha {
				alpha = score
				if score >= beta {
					break
				}
			}
		}
	}
	return best
}

// repeated looks for the same key an even number of plies back.
func (th *Thread) repeated(key uint64, ply int) bool {
	for i := ply - 2; i >= 0; i -= 2 {
		if th.KeyStack[i] == key {
			return true
		}
	}
	return false
}

func (th *Thread) restrictToRoot(moves []board.Candidate) []board.Candidate {
	out := moves[:0]
	for _, c := range moves {
		if th.rootMove(c.Move) != nil {
			out = append(out, c)
		}
	}
	return out
}

func (th *Thread) order(moves []board.Candidate, ttMove board.Move, ply int, side board.Color) {
	scores := make(map[board.Move]int, len(moves))
	for _, c := range moves {
		var s int
		switch {
		case c.Move == ttMove:
			s = 1 << 30
		case c.Capture:
			s = 1<<20 + PieceValue(th.params, c.Victim)*16 - int(c.Attacker)
		case c.Promotion:
			s = 1 << 19
		case ply < MaxPly && c.Move == th.killers[ply][0]:
			s = 1<<18 + 1
		case ply < MaxPly && c.Move == th.killers[ply][1]:
			s = 1 << 18
		default:
			s = th.historyScore(side, c.Move)
		}
		scores[c.Move] = s
	}
	sort.SliceStable(moves, func(i, j int) bool { return scores[moves[i].Move] > scores[moves[j].Move] })
}

func (th *Thread) reduction(depth, count, history int) int {
	p := th.params
	div := p.LMRQuietDiv
	if div <= 0 {
		div = 1
	}
	r := p.LMRQuietBase + math.Log(float64(depth))*math.Log(float64(count))/div
	if p.LMRHist != 0 {
		r -= float64(history) / float64(p.LMRHist)
	}
	return int(r)
}

func (th *Thread) historyScore(side board.Color, m board.Move) int {
	from, to := squares(m)
	return th.history[side][from][to]
}

func (th *Thread) rewardQuiet(side board.Color, m board.Move, tried []board.Move, depth, ply int) {
	p := th.params
	if ply < MaxPly && th.killers[ply][0] != m {
		th.killers[ply][1] = th.killers[ply][0]
		th.killers[ply][0] = m
	}
	bonus := min(p.HistBonusMax, p.HistBonusDepth*depth-p.HistBonusBase)
	malus := min(p.HistMalusMax, p.HistMalusDepth*depth-p.HistMalusBase)
	th.addHistory(side, m, bonus)
	for _, q := range tried {
		th.addHistory(side, q, -malus)
	}
}

func (th *Thread) addHistory(side board.Color, m board.Move, delta int) {
	div := th.params.HistQDiv
	if div <= 0 {
		div = 1
	}
	from, to := squares(m)
	h := &th.history[side][from][to]
	*h += delta - *h*abs(delta)/div
}

func scoreToTT(score, ply int) int {
	switch {
	case score >= MateInMax:
		return score + ply
	case score <= -MateInMax:
		return score - ply
	}
	return score
}

func scoreFromTT(score, ply int) int {
	switch {
	case score >= MateInMax:
		return score - ply
	case score <= -MateInMax:
		return score + ply
	}
	return score
}

type nopReporter struct{}

func (nopReporter) PrintThinking(*Thread, int, int) {}
func (nopReporter) PrintConclusion(*Thread)         {}
