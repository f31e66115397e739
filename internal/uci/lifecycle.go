package uci

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/cheese-engine/internal/board"
	"github.com/park285/cheese-engine/internal/config"
	"github.com/park285/cheese-engine/internal/journal"
	"github.com/park285/cheese-engine/internal/obslog"
	"github.com/park285/cheese-engine/internal/openingbook"
	"github.com/park285/cheese-engine/internal/probe"
	"github.com/park285/cheese-engine/internal/search"
	"github.com/park285/cheese-engine/internal/tt"
	"github.com/park285/cheese-engine/internal/tune"
)

const (
	maxThreads       = 2048
	maxNoobBookLimit = 1000
	maxTBPieces      = 7
)

type EngineOption func(*Engine)

// WithProber enables the online book and tablebase options.
func WithProber(p *probe.Prober) EngineOption {
	return func(e *Engine) { e.prober = p }
}

// WithJournal records every finished search.
func WithJournal(j *journal.Journal) EngineOption {
	return func(e *Engine) { e.journal = j }
}

// WithTap mirrors every output line, e.g. to a broadcast feed.
func WithTap(fn func(line string)) EngineOption {
	return func(e *Engine) { e.out.SetTap(fn) }
}

// WithParams replaces the compiled-in tuning.
func WithParams(p tune.Params) EngineOption {
	return func(e *Engine) { *e.params = p }
}

// Engine is the protocol side of the engine: it owns the current position,
// the option state and at most one running search.
type Engine struct {
	cfg *config.AppConfig
	out *Writer
	log *zap.Logger

	params   *tune.Params
	table    *tt.Table
	search   *search.Engine
	limits   *search.Limits
	signal   *search.Signal
	registry *Registry

	// done is closed by the search goroutine after its conclusion was
	// printed. nil when no search was started since the last Stop.
	done        chan struct{}
	probeCtx    context.Context
	probeCancel context.CancelFunc

	pos *board.Position

	prober  *probe.Prober
	book    *openingbook.Book
	journal *journal.Journal

	hashMB        int
	threads       int
	syzygyPath    string
	chess960      bool
	noobBook      bool
	noobBookLimit int
	onlineSyzygy  bool
	bookFile      string
}

func New(cfg *config.AppConfig, out io.Writer, opts ...EngineOption) *Engine {
	if cfg == nil {
		cfg = &config.AppConfig{EngineName: "Cheese", HashMB: tt.DefaultMB, Threads: 1}
	}
	params := tune.Defaults()
	e := &Engine{
		cfg:      cfg,
		out:      NewWriter(out),
		log:      obslog.L(),
		params:   &params,
		limits:   &search.Limits{MultiPV: 1},
		signal:   search.NewSignal(),
		pos:      board.New(),
		hashMB:   min(max(cfg.HashMB, tt.MinMB), tt.MaxMB),
		threads:  min(max(cfg.Threads, 1), maxThreads),
		bookFile: cfg.BookPath,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.table = tt.New(e.hashMB)
	e.search = search.NewEngine(e.table, e.params)
	e.search.RequestThreads(e.threads)
	e.search.Oracle = e
	e.registry = e.newRegistry()
	if e.bookFile != "" {
		e.loadBook()
	}
	return e
}

// Registry exposes the option table, e.g. for applying a tuning profile.
func (e *Engine) Registry() *Registry { return e.registry }

func (e *Engine) Params() *tune.Params { return e.params }

// Position is the position the next go searches.
func (e *Engine) Position() *board.Position { return e.pos }

func (e *Engine) running() bool {
	if e.done == nil {
		return false
	}
	select {
	case <-e.done:
		return false
	default:
		return true
	}
}

// Go starts a search of the current position and returns immediately.
func (e *Engine) Go(line string) {
	if e.running() {
		e.log.Warn("go_while_searching")
		e.Stop()
	}
	e.signal.Reset()
	e.table.Init()
	for _, tok := range ParseTimeControl(line, e.pos, e.limits) {
		e.out.Printf("info string invalid move %s\n", tok)
	}

	runID := uuid.NewString()
	pos := e.pos.Clone()
	rep := &reporter{out: e.out, runID: runID, fen: pos.FEN(), journal: e.journal}
	if e.probeCancel != nil {
		e.probeCancel()
	}
	e.probeCtx, e.probeCancel = context.WithCancel(context.Background())
	done := make(chan struct{})
	e.done = done

	l := e.limits
	e.log.Info("search_start",
		zap.String("run_id", runID),
		zap.String("fen", rep.fen),
		zap.Int("depth", l.Depth),
		zap.Int("time", l.Time),
		zap.Int("movetime", l.MoveTime),
		zap.Bool("infinite", l.Infinite),
		zap.Int("multipv", l.MultiPV),
	)
	go func() {
		defer close(done)
		e.search.Run(pos, l, e.signal, rep)
		e.log.Info("search_stop",
			zap.String("run_id", runID),
			zap.Uint64("nodes", e.search.Nodes()),
			zap.Duration("elapsed", time.Since(l.Start)),
		)
	}()
}

// Stop aborts the running search and returns once it has printed its
// conclusion. It is a no-op when idle.
func (e *Engine) Stop() {
	e.signal.Abort()
	e.signal.Wake()
	if e.probeCancel != nil {
		e.probeCancel()
	}
	if e.done != nil {
		<-e.done
		e.done = nil
	}
}

// IsReady applies deferred resizes and answers readyok. While a search runs
// the tables are left alone.
func (e *Engine) IsReady() {
	if !e.running() {
		e.search.Reinit()
		e.table.Init()
	}
	e.out.Println("readyok")
}

// NewGame clears everything that carries over between games.
func (e *Engine) NewGame() {
	if e.running() {
		e.log.Warn("ucinewgame_while_searching")
		e.Stop()
	}
	e.table.Init()
	e.table.Clear()
	e.search.Reinit()
	e.search.Reset()
	if e.prober != nil {
		e.prober.ResetFailures()
	}
}

// Close stops any search.
func (e *Engine) Close() {
	e.Stop()
}

// ProbeRoot answers the root from the local book, the online book or the
// online tablebase before any searching happens.
func (e *Engine) ProbeRoot(pos *board.Position) (search.OracleHit, bool) {
	fen := pos.FEN()
	if e.book != nil {
		res, ok, err := e.book.Best(fen)
		if err != nil {
			e.log.Debug("book_lookup_failed", zap.Error(err))
		} else if ok {
			if m, err := pos.ParseMove(res.Move); err == nil {
				return search.OracleHit{Move: m, Source: "book"}, true
			}
		}
	}
	if e.prober == nil {
		return search.OracleHit{}, false
	}

	parent := e.probeCtx
	if parent == nil {
		parent = context.Background()
	}
	timeout := time.Duration(e.cfg.ProbeTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	if e.noobBook && (e.noobBookLimit == 0 || pos.GameMoves <= e.noobBookLimit) {
		if mv, err := e.prober.Book(ctx, fen); err == nil {
			if m, err := pos.ParseMove(mv); err == nil {
				return search.OracleHit{Move: m, Source: "noobbook"}, true
			}
		}
	}
	if e.onlineSyzygy && pos.PieceCount() <= maxTBPieces {
		if res, err := e.prober.Tablebase(ctx, fen); err == nil {
			if m, err := pos.ParseMove(res.Move); err == nil {
				return search.OracleHit{Move: m, Score: tbScore(res.WDL), TBHit: true, Source: "syzygy"}, true
			}
		}
	}
	return search.OracleHit{}, false
}

func tbScore(wdl int) int {
	switch {
	case wdl > 0:
		return search.TBWin
	case wdl < 0:
		return -search.TBWin
	default:
		return 0
	}
}

func (e *Engine) loadBook() {
	if e.bookFile == "" {
		e.book = nil
		return
	}
	b, err := openingbook.LoadFromPath(e.bookFile)
	if err != nil {
		e.book = nil
		e.log.Warn("book_load_failed", zap.String("path", e.bookFile), zap.Error(err))
		e.out.Printf("info string cannot load book %s\n", e.bookFile)
		return
	}
	e.book = b
}

func (e *Engine) newRegistry() *Registry {
	r := NewRegistry()
	r.Add(Option{Name: "Hash", Kind: KindSpin, Min: tt.MinMB, Max: tt.MaxMB, Int: &e.hashMB, Clamp: true,
		OnSet: func() { e.table.RequestSize(e.hashMB) }})
	r.Add(Option{Name: "Threads", Kind: KindSpin, Min: 1, Max: maxThreads, Int: &e.threads, Clamp: true,
		OnSet: func() { e.search.RequestThreads(e.threads) }})
	r.Add(Option{Name: "SyzygyPath", Kind: KindString, Str: &e.syzygyPath,
		OnSet: func() {
			if e.syzygyPath != "" {
				e.log.Info("syzygy_path_ignored", zap.String("path", e.syzygyPath))
			}
		}})
	r.Add(Option{Name: "MultiPV", Kind: KindSpin, Min: 1, Max: search.MultiPVMax, Int: &e.limits.MultiPV, Clamp: true})
	r.Add(Option{Name: "UCI_Chess960", Kind: KindCheck, Bool: &e.chess960})
	r.Add(Option{Name: "NoobBook", Kind: KindCheck, Bool: &e.noobBook})
	r.Add(Option{Name: "NoobBookLimit", Kind: KindSpin, Min: 0, Max: maxNoobBookLimit, Int: &e.noobBookLimit})
	r.Add(Option{Name: "OnlineSyzygy", Kind: KindCheck, Bool: &e.onlineSyzygy})
	r.Add(Option{Name: "BookFile", Kind: KindString, Str: &e.bookFile, OnSet: e.loadBook})
	addTuning(r, e.params)
	return r
}
