package uci

type command uint32

// Precomputed hashInput values of the recognized keywords.
const (
	cmdGo         command = 11
	cmdUCI        command = 127
	cmdIsReady    command = 113
	cmdPosition   command = 17
	cmdSetOption  command = 96
	cmdUCINewGame command = 6
	cmdStop       command = 28
	cmdQuit       command = 29

	// debug only
	cmdEval  command = 26
	cmdPrint command = 112
	cmdPerft command = 116
)

var keywords = map[command]string{
	cmdGo:         "go",
	cmdUCI:        "uci",
	cmdIsReady:    "isready",
	cmdPosition:   "position",
	cmdSetOption:  "setoption",
	cmdUCINewGame: "ucinewgame",
	cmdStop:       "stop",
	cmdQuit:       "quit",
	cmdEval:       "eval",
	cmdPrint:      "print",
	cmdPerft:      "perft",
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// hashInput folds the leading token of s: h ^= c ^ n with n counting from 1.
func hashInput(s string) command {
	var h, n uint32 = 0, 1
	for i := 0; i < len(s) && !isSpace(s[i]); i++ {
		h ^= uint32(s[i]) ^ n
		n++
	}
	return command(h)
}

// lookup maps the leading token to a command. Tokens that hash onto a
// keyword without spelling it are rejected.
func lookup(token string) (command, bool) {
	c := hashInput(token)
	kw, ok := keywords[c]
	if !ok || kw != token {
		return 0, false
	}
	return c, true
}

func (c command) debugOnly() bool {
	return c == cmdEval || c == cmdPrint || c == cmdPerft
}
