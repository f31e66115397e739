package search

import (
	"github.com/park285/cheese-engine/internal/board"
	"github.com/park285/cheese-engine/internal/tune"
)

// PieceValue returns the material value of a kind under p.
func PieceValue(p *tune.Params, k board.PieceKind) int {
	switch k {
	case board.Pawn:
		return p.PawnValue
	case board.Knight:
		return p.KnightValue
	case board.Bishop:
		return p.BishopValue
	case board.Rook:
		return p.RookValue
	case board.Queen:
		return p.QueenValue
	default:
		return 0
	}
}

// Evaluate scores the position from the side to move's point of view.
func Evaluate(pos *board.Position, p *tune.Params) int {
	return evaluatePieces(pos.Pieces(), pos.SideToMove(), p)
}

func evaluatePieces(pieces []board.Piece, stm board.Color, p *tune.Params) int {
	var score [2]int
	var bishops [2]int
	var phase int
	for _, pc := range pieces {
		switch pc.Kind {
		case board.Knight, board.Bishop:
			phase++
		case board.Rook:
			phase += 2
		case board.Queen:
			phase += 4
		}
	}
	if phase > 24 {
		phase = 24
	}
	for _, pc := range pieces {
		file, rank := pc.Square%8, pc.Square/8
		rel := rank
		if pc.Color == board.Black {
			rel = 7 - rank
		}
		centre := 6 - (abs(2*file-7)+abs(2*rank-7))/2
		s := PieceValue(p, pc.Kind)
		switch pc.Kind {
		case board.Pawn:
			s += rel * 4
			if file >= 2 && file <= 5 {
				s += rel * 2
			}
		case board.Knight:
			s += centre * 5
		case board.Bishop:
			s += centre * 3
			bishops[pc.Color]++
		case board.Rook:
			if rel == 6 {
				s += 20
			}
		case board.Queen:
			s += centre
		case board.King:
			// Shelter while material remains, centralize in the endgame.
			s += (phase*(-rel*12) + (24-phase)*centre*6) / 24
		}
		score[pc.Color] += s
	}
	for c := range bishops {
		if bishops[c] >= 2 {
			score[c] += 30
		}
	}
	v := score[board.White] - score[board.Black]
	if stm == board.Black {
		v = -v
	}
	return v + p.Tempo
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
