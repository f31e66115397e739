package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/park285/cheese-engine/internal/board"
	"github.com/park285/cheese-engine/internal/render"
	"github.com/park285/cheese-engine/internal/search"
)

const (
	maxLineBytes      = 1 << 20
	defaultPerftDepth = 5
	renderTimeout     = 10 * time.Second
)

// Loop reads commands until quit or end of input. A search still running
// at end of input is stopped before Loop returns.
func (e *Engine) Loop(in io.Reader) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		if e.Handle(sc.Text()) {
			return nil
		}
	}
	e.Stop()
	return sc.Err()
}

// Handle executes one command line and reports whether it was quit.
// Unknown commands are ignored.
func (e *Engine) Handle(line string) bool {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, ok := lookup(fields[0])
	if !ok {
		return false
	}
	if cmd.debugOnly() && !e.cfg.Debug {
		return false
	}

	switch cmd {
	case cmdGo:
		e.Go(line)
	case cmdUCI:
		e.describe()
	case cmdIsReady:
		e.IsReady()
	case cmdPosition:
		e.setPosition(line)
	case cmdSetOption:
		if !e.registry.Set(line) {
			e.out.Println("info string No such option.")
		}
	case cmdUCINewGame:
		e.NewGame()
	case cmdStop:
		e.Stop()
	case cmdQuit:
		e.Stop()
		return true
	case cmdEval:
		e.out.Printf("info string eval %d\n", search.Evaluate(e.pos, e.params))
	case cmdPrint:
		e.print(line)
	case cmdPerft:
		e.perft(line)
	}
	return false
}

func (e *Engine) describe() {
	var b strings.Builder
	fmt.Fprintf(&b, "id name %s\n", e.cfg.EngineName)
	fmt.Fprintf(&b, "id author %s\n", e.cfg.EngineAuthor)
	e.registry.Describe(&b)
	b.WriteString("uciok\n")
	_, _ = io.WriteString(e.out, b.String())
}

// setPosition handles "position startpos|fen <fen> [moves ...]". A bad FEN
// keeps the previous position; moves are applied up to the first bad one.
func (e *Engine) setPosition(line string) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "position"))
	setup, moves, _ := strings.Cut(rest, "moves")
	setup = strings.TrimSpace(setup)

	pos := board.New()
	if fen, ok := strings.CutPrefix(setup, "fen"); ok {
		p, err := board.ParseFen(strings.TrimSpace(fen))
		if err != nil {
			e.log.Debug("position_invalid_fen", zap.String("fen", fen), zap.Error(err))
			e.out.Println("info string invalid fen")
			return
		}
		pos = p
	}

	for _, tok := range strings.Fields(moves) {
		m, err := pos.ParseMove(tok)
		if err == nil {
			err = pos.MakeMove(m)
		}
		if err != nil {
			e.out.Printf("info string invalid move %s\n", tok)
			break
		}
	}
	e.pos = pos
}

// print writes the board diagram, or with "print png <file>" a PNG of it.
func (e *Engine) print(line string) {
	args := strings.Fields(line)
	if len(args) >= 3 && args[1] == "png" {
		ctx, cancel := context.WithTimeout(context.Background(), renderTimeout)
		defer cancel()
		if err := render.WriteFile(ctx, args[2], e.pos, render.Options{}); err != nil {
			e.out.Printf("info string cannot render %s: %v\n", args[2], err)
			return
		}
		e.out.Printf("info string wrote %s\n", args[2])
		return
	}
	_, _ = io.WriteString(e.out, e.pos.String())
}

// perft prints the leaf count below each root move and the total.
func (e *Engine) perft(line string) {
	depth := defaultPerftDepth
	if f := strings.Fields(line); len(f) > 1 {
		if d := atoi(f[1]); d > 0 {
			depth = d
		}
	}
	start := time.Now()
	var b strings.Builder
	var total uint64
	for _, m := range e.pos.LegalMoves() {
		child, err := e.pos.Play(m)
		if err != nil {
			continue
		}
		n := child.Perft(depth - 1)
		total += n
		fmt.Fprintf(&b, "%s: %d\n", m, n)
	}
	elapsed := time.Since(start).Milliseconds()
	fmt.Fprintf(&b, "\nNodes: %d\nTime: %dms\nNPS: %d\n", total, elapsed, nps(total, elapsed))
	_, _ = io.WriteString(e.out, b.String())
}
