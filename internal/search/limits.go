package search

import (
	"time"

	"github.com/park285/cheese-engine/internal/board"
)

const (
	MaxPly         = 128
	Mate           = 32000
	MateInMax      = Mate - MaxPly
	Infinite       = Mate + 1
	TBWin          = MateInMax - 1
	MaxSearchMoves = 256
	MultiPVMax     = 64
	DefaultDepth   = 100
)

// Limits constrains one search. Everything declared before MultiPV is
// per-go state; MultiPV is configuration and survives Reset.
type Limits struct {
	Start       time.Time
	Time        int
	Inc         int
	MovesToGo   int
	MoveTime    int
	Depth       int
	Mate        int
	Infinite    bool
	SearchMoves []board.Move
	TimeLimit   bool

	MultiPV int
}

// Reset clears the per-go fields and keeps MultiPV.
func (l *Limits) Reset() {
	*l = Limits{MultiPV: l.MultiPV}
}

// Elapsed is the time since Start in milliseconds.
func (l *Limits) Elapsed() int64 {
	return time.Since(l.Start).Milliseconds()
}

// MateScore converts an internal mate score into moves to mate, positive
// when the side to move mates.
func MateScore(score int) int {
	s := score
	if s < 0 {
		s = -s
	}
	d := (Mate - s + 1) / 2
	if score > 0 {
		return d
	}
	return -d
}
