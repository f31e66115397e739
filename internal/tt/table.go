package tt

import (
	"sync"

	"github.com/park285/cheese-engine/internal/board"
)

const (
	DefaultMB = 32
	MinMB     = 1
	MaxMB     = 65536

	entryBytes = 32
	stripes    = 256
)

type Bound uint8

const (
	BoundNone Bound = iota
	BoundUpper
	BoundLower
	BoundExact
)

type Entry struct {
	Key   uint64
	Move  board.Move
	Score int32
	Eval  int32
	Depth int16
	Bound Bound
	age   uint8
}

// Table is a shared transposition table. Resizes requested by setoption are
// deferred until Init so a running search never sees the backing slice move.
type Table struct {
	locks [stripes]sync.Mutex

	entries   []Entry
	currentMB int
	pendingMB int
	age       uint8
}

func New(mb int) *Table {
	t := &Table{pendingMB: clampMB(mb)}
	t.Init()
	return t
}

func clampMB(mb int) int {
	if mb < MinMB {
		return MinMB
	}
	if mb > MaxMB {
		return MaxMB
	}
	return mb
}

// RequestSize records a new size to be applied by the next Init.
func (t *Table) RequestSize(mb int) { t.pendingMB = clampMB(mb) }

// SizeMB is the size currently allocated.
func (t *Table) SizeMB() int { return t.currentMB }

// Init applies a pending resize. It is a no-op when the size is unchanged.
func (t *Table) Init() {
	if t.entries != nil && t.pendingMB == t.currentMB {
		return
	}
	n := t.pendingMB * 1024 * 1024 / entryBytes
	if n < stripes {
		n = stripes
	}
	t.entries = make([]Entry, n)
	t.currentMB = t.pendingMB
	t.age = 0
}

// Clear wipes every entry.
func (t *Table) Clear() {
	for i := range t.locks {
		t.locks[i].Lock()
	}
	clear(t.entries)
	t.age = 0
	for i := range t.locks {
		t.locks[i].Unlock()
	}
}

// NewSearch ages the table so stale entries are replaced first.
func (t *Table) NewSearch() { t.age++ }

func (t *Table) index(key uint64) int { return int(key % uint64(len(t.entries))) }

// Probe returns the entry stored for key.
func (t *Table) Probe(key uint64) (Entry, bool) {
	i := t.index(key)
	mu := &t.locks[i%stripes]
	mu.Lock()
	e := t.entries[i]
	mu.Unlock()
	if e.Key != key || e.Bound == BoundNone {
		return Entry{}, false
	}
	return e, true
}

// Store writes an entry, preferring deeper results from the current search.
func (t *Table) Store(key uint64, move board.Move, score, eval int32, depth int, bound Bound) {
	i := t.index(key)
	mu := &t.locks[i%stripes]
	mu.Lock()
	defer mu.Unlock()
	old := &t.entries[i]
	if old.Key == key && old.age == t.age && bound != BoundExact && int(old.Depth) > depth+2 {
		return
	}
	if move == "" && old.Key == key {
		move = old.Move
	}
	*old = Entry{Key: key, Move: move, Score: score, Eval: eval, Depth: int16(depth), Bound: bound, age: t.age}
}

// HashFull estimates occupancy in permille from the first thousand slots,
// counting only entries written by the current search.
func (t *Table) HashFull() int {
	n := 1000
	if len(t.entries) < n {
		n = len(t.entries)
	}
	used := 0
	for i := 0; i < n; i++ {
		mu := &t.locks[i%stripes]
		mu.Lock()
		if t.entries[i].Bound != BoundNone && t.entries[i].age == t.age {
			used++
		}
		mu.Unlock()
	}
	if n == 0 {
		return 0
	}
	return used * 1000 / n
}
