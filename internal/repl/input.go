package repl

import (
	"io"
	"strings"

	"github.com/chzyer/readline"
)

func (r *REPL) readInput() (string, error) {
	line, err := r.rl.Readline()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

func parseCommand(input string) (bool, string, string) {
	if !strings.HasPrefix(input, "/") {
		return false, "", ""
	}

	parts := strings.SplitN(input, " ", 2)
	command := strings.ToLower(parts[0])

	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}

	return true, command, args
}

// SetupReadline creates the terminal line editor. Asynchronous output such
// as banners should go through its Stdout so the prompt is redrawn.
func SetupReadline(prompt, historyFile string) (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:              prompt,
		HistoryFile:         historyFile,
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		AutoComplete:        completer,
		FuncFilterInputRune: filterInput,
	})
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("/help"),
	readline.PcItem("/list"),
	readline.PcItem("/add"),
	readline.PcItem("/done"),
	readline.PcItem("/rm"),
	readline.PcItem("/upcoming"),
	readline.PcItem("/history"),
	readline.PcItem("/stats"),
	readline.PcItem("/notes"),
	readline.PcItem("/note"),
	readline.PcItem("/rmnote"),
	readline.PcItem("/edit"),
	readline.PcItem("/notify", readline.PcItem("on")),
	readline.PcItem("/theme", readline.PcItem("light"), readline.PcItem("dark")),
	readline.PcItem("/refresh"),
	readline.PcItem("/quit"),
)

func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func isEOF(err error) bool {
	return err == io.EOF || err == readline.ErrInterrupt
}
