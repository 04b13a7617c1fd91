package repl

import (
	"errors"
	"fmt"
)

func (r *REPL) displayError(err error) {
	if errors.Is(err, errHandled) {
		return
	}
	fmt.Fprintln(r.out, r.Formatter.FormatError(err))
	fmt.Fprintln(r.out)
}

func (r *REPL) displayWelcome() {
	fmt.Fprint(r.out, r.Formatter.FormatWelcome(r.StoreURL))
}

func (r *REPL) displayHelp() {
	fmt.Fprint(r.out, r.Formatter.FormatHelp())
}

func (r *REPL) displayInfo(msg string) {
	fmt.Fprintln(r.out, r.Formatter.FormatInfo(msg))
	fmt.Fprintln(r.out)
}

func (r *REPL) displaySystem(msg string) {
	fmt.Fprintln(r.out, r.Formatter.FormatSystem(msg))
	fmt.Fprintln(r.out)
}
