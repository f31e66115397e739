package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/park285/cheese-engine/internal/obslog"
)

const (
	queueSize    = 64
	writeTimeout = 5 * time.Second
)

// Entry is one finished search.
type Entry struct {
	RunID      string
	FEN        string
	BestMove   string
	ScoreType  string
	Score      int
	Depth      int
	SelDepth   int
	Nodes      uint64
	Elapsed    time.Duration
	FinishedAt time.Time
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Journal writes entries on a background goroutine so the search never
// waits on the database. Entries are dropped when the queue is full.
type Journal struct {
	db   *sql.DB
	exec execer

	// mu orders Submit against Close so no send hits a closed queue.
	mu     sync.RWMutex
	closed bool
	queue  chan Entry
	wg     sync.WaitGroup
}

const schema = `CREATE TABLE IF NOT EXISTS search_journal (
  run_id      UUID PRIMARY KEY,
  fen         TEXT NOT NULL,
  best_move   TEXT NOT NULL,
  score_type  TEXT NOT NULL,
  score       INTEGER NOT NULL,
  depth       INTEGER NOT NULL,
  seldepth    INTEGER NOT NULL,
  nodes       BIGINT NOT NULL,
  elapsed_ms  BIGINT NOT NULL,
  finished_at TIMESTAMPTZ NOT NULL
)`

const insertEntry = `INSERT INTO search_journal (
    run_id, fen, best_move, score_type, score, depth, seldepth, nodes, elapsed_ms, finished_at
  ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
  ON CONFLICT (run_id) DO UPDATE SET
    best_move=EXCLUDED.best_move,
    score_type=EXCLUDED.score_type,
    score=EXCLUDED.score,
    depth=EXCLUDED.depth,
    seldepth=EXCLUDED.seldepth,
    nodes=EXCLUDED.nodes,
    elapsed_ms=EXCLUDED.elapsed_ms,
    finished_at=EXCLUDED.finished_at`

// Open connects to Postgres and makes sure the table exists.
func Open(databaseURL string) (*Journal, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create search_journal: %w", err)
	}
	j := newJournal(db)
	j.db = db
	return j, nil
}

func newJournal(exec execer) *Journal {
	j := &Journal{exec: exec, queue: make(chan Entry, queueSize)}
	j.wg.Add(1)
	go j.run()
	return j
}

func (j *Journal) run() {
	defer j.wg.Done()
	for e := range j.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := j.write(ctx, e)
		cancel()
		if err != nil {
			obslog.L().Warn("journal_write_failed", zap.String("run_id", e.RunID), zap.Error(err))
		}
	}
}

func (j *Journal) write(ctx context.Context, e Entry) error {
	_, err := j.exec.ExecContext(ctx, insertEntry,
		e.RunID, e.FEN, e.BestMove, e.ScoreType, e.Score, e.Depth, e.SelDepth,
		int64(e.Nodes), e.Elapsed.Milliseconds(), e.FinishedAt,
	)
	return err
}

// Submit queues an entry. It never blocks, and after Close it drops the
// entry.
func (j *Journal) Submit(e Entry) {
	if j == nil {
		return
	}
	if e.FinishedAt.IsZero() {
		e.FinishedAt = time.Now()
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		obslog.L().Debug("journal_closed", zap.String("run_id", e.RunID))
		return
	}
	select {
	case j.queue <- e:
	default:
		obslog.L().Warn("journal_queue_full", zap.String("run_id", e.RunID))
	}
}

// Close drains the queue and closes the database.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	if !j.closed {
		j.closed = true
		close(j.queue)
	}
	j.mu.Unlock()
	j.wg.Wait()
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}
