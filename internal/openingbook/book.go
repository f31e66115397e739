package openingbook

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	chesslib "github.com/corentings/chess/v2"
)

type Result struct {
	Move   string
	Weight uint16
}

// Book is a loaded polyglot opening book.
type Book struct {
	path string
	book *chesslib.PolyglotBook
}

// LoadFromPath opens and parses a polyglot .bin file.
func LoadFromPath(bookPath string) (*Book, error) {
	if strings.TrimSpace(bookPath) == "" {
		return nil, fmt.Errorf("polyglot book path required")
	}
	file, err := os.Open(bookPath)
	if err != nil {
		return nil, fmt.Errorf("open polyglot book %q: %w", bookPath, err)
	}
	defer file.Close()

	b, err := LoadFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("load polyglot book %q: %w", bookPath, err)
	}
	b.path = bookPath
	return b, nil
}

func LoadFromReader(r io.Reader) (*Book, error) {
	book, err := chesslib.LoadFromReader(r)
	if err != nil {
		return nil, err
	}
	return &Book{book: book}, nil
}

func (b *Book) Path() string { return b.path }

// Lookup returns the book moves for fen ordered by weight, heaviest first.
// Entries that are not legal in the position are dropped.
func (b *Book) Lookup(fen string) ([]Result, error) {
	if b == nil || b.book == nil {
		return nil, nil
	}
	game, err := buildGame(fen)
	if err != nil {
		return nil, err
	}

	hasher := chesslib.NewZobristHasher()
	hashStr, err := hasher.HashPosition(game.FEN())
	if err != nil {
		return nil, fmt.Errorf("compute polyglot hash: %w", err)
	}
	entries := b.book.FindMoves(chesslib.ZobristHashToUint64(hashStr))
	if len(entries) == 0 {
		return nil, nil
	}

	results := make([]Result, 0, len(entries))
	for _, entry := range entries {
		move := chesslib.DecodeMove(entry.Move).ToMove()
		uciMove := move.String()
		verify := game.Clone()
		if err := verify.PushNotationMove(uciMove, chesslib.UCINotation{}, nil); err != nil {
			continue
		}
		results = append(results, Result{Move: uciMove, Weight: entry.Weight})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Weight > results[j].Weight })
	return results, nil
}

// Best is the heaviest legal book move, if any.
func (b *Book) Best(fen string) (Result, bool, error) {
	results, err := b.Lookup(fen)
	if err != nil || len(results) == 0 {
		return Result{}, false, err
	}
	return results[0], true, nil
}

func buildGame(fen string) (*chesslib.Game, error) {
	if strings.TrimSpace(fen) == "" || fen == "startpos" {
		return chesslib.NewGame(), nil
	}
	option, err := chesslib.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen %q: %w", fen, err)
	}
	return chesslib.NewGame(option), nil
}
