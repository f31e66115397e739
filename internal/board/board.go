package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	chesslib "github.com/corentings/chess/v2"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	ErrInvalidMove = errors.New("invalid move")
	ErrInvalidFEN  = errors.New("invalid fen")
)

// Move is a move in UCI long algebraic notation (e2e4, e7e8q).
type Move string

// NullMove is the UCI null move. It is never produced by ParseMove on success.
const NullMove Move = "0000"

func (m Move) String() string { return string(m) }

type Color int8

const (
	White Color = iota
	Black
)

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Other returns the opposing color.
func (c Color) Other() Color { return 1 - c }

type PieceKind int8

const (
	NoKind PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// Letter returns the FEN letter of the kind in the given color.
func (k PieceKind) Letter(c Color) byte {
	l := " pnbrqk"[k]
	if c == White && k != NoKind {
		l -= 'a' - 'A'
	}
	return l
}

// Outcome classifies a position with respect to game end.
type Outcome int8

const (
	Ongoing Outcome = iota
	Mated
	Drawn
)

// Position wraps a game so the engine can ask for legal moves, keys and
// material without depending on the library's types.
type Position struct {
	game *chesslib.Game

	// GameMoves is the fullmove counter, advanced after every black move.
	GameMoves int
}

// New returns the start position.
func New() *Position {
	return &Position{game: chesslib.NewGame(), GameMoves: 1}
}

// ParseFen builds a position from a FEN string.
func ParseFen(fen string) (*Position, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" {
		return nil, ErrInvalidFEN
	}
	option, err := chesslib.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	p := &Position{game: chesslib.NewGame(option), GameMoves: 1}
	fields := strings.Fields(fen)
	if len(fields) >= 6 {
		if n, err := strconv.Atoi(fields[5]); err == nil && n > 0 {
			p.GameMoves = n
		}
	}
	return p, nil
}

// Clone returns an independent copy.
func (p *Position) Clone() *Position {
	return &Position{game: p.game.Clone(), GameMoves: p.GameMoves}
}

func (p *Position) FEN() string { return p.game.FEN() }

func (p *Position) SideToMove() Color {
	if p.game.Position().Turn() == chesslib.Black {
		return Black
	}
	return White
}

// Key returns the polyglot Zobrist key of the position. Zero means the key
// could not be computed, which only happens for corrupt positions.
func (p *Position) Key() uint64 {
	hash, err := chesslib.NewZobristHasher().HashPosition(p.game.FEN())
	if err != nil {
		return 0
	}
	return chesslib.ZobristHashToUint64(hash)
}

// ParseMove resolves a UCI move token against the legal moves of the
// position. An unknown or illegal token returns NullMove and ErrInvalidMove.
func (p *Position) ParseMove(tok string) (Move, error) {
	tok = strings.ToLower(strings.TrimSpace(tok))
	if len(tok) < 4 || len(tok) > 5 {
		return NullMove, fmt.Errorf("%w: %q", ErrInvalidMove, tok)
	}
	for _, mv := range p.game.ValidMoves() {
		if mv.String() == tok {
			return Move(tok), nil
		}
	}
	return NullMove, fmt.Errorf("%w: %q", ErrInvalidMove, tok)
}

// MakeMove applies a legal move in place.
func (p *Position) MakeMove(m Move) error {
	if m == NullMove || m == "" {
		return ErrInvalidMove
	}
	mover := p.SideToMove()
	if err := p.game.PushNotationMove(string(m), chesslib.UCINotation{}, nil); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidMove, m, err)
	}
	if mover == Black {
		p.GameMoves++
	}
	return nil
}

// Play returns a copy of the position with m applied.
func (p *Position) Play(m Move) (*Position, error) {
	child := p.Clone()
	if err := child.MakeMove(m); err != nil {
		return nil, err
	}
	return child, nil
}

// Candidate is a legal move with the tags move ordering needs.
type Candidate struct {
	Move      Move
	Capture   bool
	Check     bool
	Promotion bool
	Victim    PieceKind
	Attacker  PieceKind
}

// Candidates lists the legal moves.
func (p *Position) Candidates() []Candidate {
	valid := p.game.ValidMoves()
	out := make([]Candidate, 0, len(valid))
	for _, mv := range valid {
		text := mv.String()
		c := Candidate{
			Move:      Move(text),
			Capture:   mv.HasTag(chesslib.Capture) || mv.HasTag(chesslib.EnPassant),
			Check:     mv.HasTag(chesslib.Check),
			Promotion: len(text) == 5,
		}
		if c.Capture {
			c.Victim = p.kindAt(text[2:4])
			if c.Victim == NoKind {
				c.Victim = Pawn
			}
		}
		c.Attacker = p.kindAt(text[0:2])
		out = append(out, c)
	}
	return out
}

// LegalMoves lists the legal moves in UCI notation.
func (p *Position) LegalMoves() []Move {
	valid := p.game.ValidMoves()
	out := make([]Move, 0, len(valid))
	for _, mv := range valid {
		out = append(out, Move(mv.String()))
	}
	return out
}

// Outcome reports whether the side to move is mated, the game is drawn by
// rule, or play continues. Repetition is left to the caller.
func (p *Position) Outcome() Outcome {
	if len(p.game.ValidMoves()) == 0 {
		if p.game.Method() == chesslib.Checkmate {
			return Mated
		}
		return Drawn
	}
	if p.game.Outcome() == chesslib.Draw {
		return Drawn
	}
	return Ongoing
}

// DrawnByRule reports draws the game records on its own, such as stalemate,
// insufficient material or the seventy-five move rule.
func (p *Position) DrawnByRule() bool { return p.game.Outcome() == chesslib.Draw }

// Checkmated reports whether the side to move is mated.
func (p *Position) Checkmated() bool { return p.game.Method() == chesslib.Checkmate }

// Piece is an occupied square. Square numbering is a1=0 .. h8=63.
type Piece struct {
	Square int
	Kind   PieceKind
	Color  Color
}

// Pieces lists every piece on the board, a1 first.
func (p *Position) Pieces() []Piece {
	b := p.game.Position().Board()
	out := make([]Piece, 0, 32)
	for rank := chesslib.Rank1; rank <= chesslib.Rank8; rank++ {
		for file := chesslib.FileA; file <= chesslib.FileH; file++ {
			pc := b.Piece(chesslib.NewSquare(file, rank))
			if pc == chesslib.NoPiece {
				continue
			}
			color := White
			if pc.Color() == chesslib.Black {
				color = Black
			}
			out = append(out, Piece{
				Square: int(rank)*8 + int(file),
				Kind:   kindOf(pc.Type()),
				Color:  color,
			})
		}
	}
	return out
}

// PieceCount is the number of pieces including kings.
func (p *Position) PieceCount() int { return len(p.Pieces()) }

func (p *Position) kindAt(sq string) PieceKind {
	if len(sq) != 2 || sq[0] < 'a' || sq[0] > 'h' || sq[1] < '1' || sq[1] > '8' {
		return NoKind
	}
	file := chesslib.File(int(sq[0] - 'a'))
	rank := chesslib.Rank(int(sq[1] - '1'))
	pc := p.game.Position().Board().Piece(chesslib.NewSquare(file, rank))
	if pc == chesslib.NoPiece {
		return NoKind
	}
	return kindOf(pc.Type())
}

func kindOf(t chesslib.PieceType) PieceKind {
	switch t {
	case chesslib.Pawn:
		return Pawn
	case chesslib.Knight:
		return Knight
	case chesslib.Bishop:
		return Bishop
	case chesslib.Rook:
		return Rook
	case chesslib.Queen:
		return Queen
	case chesslib.King:
		return King
	default:
		return NoKind
	}
}

// Perft counts leaf nodes of the legal move tree to the given depth.
func (p *Position) Perft(depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := p.LegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var total uint64
	for _, m := range moves {
		child, err := p.Play(m)
		if err != nil {
			continue
		}
		total += child.Perft(depth - 1)
	}
	return total
}

// String draws the board from white's side followed by FEN and key.
func (p *Position) String() string {
	var grid [64]byte
	for i := range grid {
		grid[i] = '.'
	}
	for _, pc := range p.Pieces() {
		grid[pc.Square] = pc.Kind.Letter(pc.Color)
	}
	var b strings.Builder
	b.WriteString("\n +---+---+---+---+---+---+---+---+\n")
	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			fmt.Fprintf(&b, " | %c", grid[rank*8+file])
		}
		fmt.Fprintf(&b, " | %d\n +---+---+---+---+---+---+---+---+\n", rank+1)
	}
	b.WriteString("   a   b   c   d   e   f   g   h\n\n")
	fmt.Fprintf(&b, "Fen: %s\nKey: %016X\n", p.FEN(), p.Key())
	return b.String()
}
