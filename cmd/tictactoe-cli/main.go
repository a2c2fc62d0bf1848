// Command tictactoe-cli is a hot-seat game in the terminal: both players
// share the keyboard.
package main

import (
	"flag"
	"fmt"
	"os"

	"ctchen222/Hotseat-Tic-Tac-Toe/internal/match"

	"github.com/muesli/termenv"
)

func main() {
	starter := flag.String("next-round-starter", string(match.StarterKeep), `who opens a new round: "keep" or "player-one"`)
	flag.Parse()

	policy, err := match.ParseStarter(*starter)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	out := termenv.NewOutput(os.Stdout)
	restore, err := termenv.EnableVirtualTerminalProcessing(out)
	if err == nil {
		defer restore() //nolint:errcheck
	}

	v := newView(os.Stdin, out, match.New(match.WithNextRoundStarter(policy)))
	if err := v.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
