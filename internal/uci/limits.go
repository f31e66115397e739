package uci

import (
	"strings"
	"time"

	"github.com/park285/cheese-engine/internal/board"
	"github.com/park285/cheese-engine/internal/search"
)

// ParseTimeControl fills l from a go command line. Only the per-go fields
// are reset, so MultiPV survives. searchmoves must be the last group on the
// line; tokens that are not legal moves in pos are skipped and returned.
func ParseTimeControl(line string, pos *board.Position, l *search.Limits) []string {
	l.Reset()
	l.Start = time.Now()

	head, tail := line, ""
	if i := strings.Index(line, "searchmoves"); i >= 0 {
		head, tail = line[:i], line[i+len("searchmoves"):]
	}

	l.Infinite = strings.Contains(head, "infinite")
	if pos.SideToMove() == board.White {
		l.Time = intAfter(head, "wtime")
		l.Inc = intAfter(head, "winc")
	} else {
		l.Time = intAfter(head, "btime")
		l.Inc = intAfter(head, "binc")
	}
	l.MovesToGo = intAfter(head, "movestogo")
	l.MoveTime = intAfter(head, "movetime")
	l.Depth = intAfter(head, "depth")
	l.Mate = intAfter(head, "mate")

	var rejected []string
	for _, tok := range strings.Fields(tail) {
		if len(l.SearchMoves) >= search.MaxSearchMoves {
			break
		}
		m, err := pos.ParseMove(tok)
		if err != nil {
			rejected = append(rejected, tok)
			continue
		}
		l.SearchMoves = append(l.SearchMoves, m)
	}

	l.TimeLimit = l.Time != 0 || l.MoveTime != 0
	if l.Depth == 0 {
		l.Depth = search.DefaultDepth
	}
	return rejected
}

// intAfter returns the integer following the first whole-word key in s,
// 0 if absent. Any run of blanks may separate key and value.
func intAfter(s, key string) int {
	for from := 0; ; {
		i := strings.Index(s[from:], key)
		if i < 0 {
			return 0
		}
		start, end := from+i, from+i+len(key)
		if (start == 0 || isBlank(s[start-1])) && (end == len(s) || isBlank(s[end])) {
			return atoi(s[end:])
		}
		from = end
	}
}

func isBlank(c byte) bool { return c == ' ' || c == '\t' }

// atoi parses a leading signed decimal after optional blanks and stops at
// the first other byte. Garbage yields 0.
func atoi(s string) int {
	i := 0
	for i < len(s) && isBlank(s[i]) {
		i++
	}
	neg := false
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		neg = s[i] == '-'
		i++
	}
	n := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
		if n > 1<<40 {
			break
		}
	}
	if neg {
		return -n
	}
	return n
}
