package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ctchen222/Hotseat-Tic-Tac-Toe/internal/game"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/match"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/player"

	"github.com/muesli/termenv"
)

var errQuit = errors.New("quit")

// view renders a match on a terminal and feeds it keyboard input.
type view struct {
	in  *bufio.Scanner
	out *termenv.Output
	m   *match.Match
}

func newView(in io.Reader, out *termenv.Output, m *match.Match) *view {
	v := &view{in: bufio.NewScanner(in), out: out, m: m}
	m.Subscribe(match.ListenerFunc(v.onResult))
	m.Board().OnReset(func() {
		if m.Started() {
			fmt.Fprintf(v.out, "\nRound %d\n", m.Round())
		}
	})
	return v
}

// Run plays until q or end of input.
func (v *view) Run() error {
	one, err := v.promptName("Player X", game.PlayerX)
	if err != nil {
		return ignoreQuit(err)
	}
	two, err := v.promptName("Player O", game.PlayerO)
	if err != nil {
		return ignoreQuit(err)
	}
	if err := v.m.Start(one, two); err != nil {
		return err
	}

	for {
		v.drawBoard()
		index, err := v.promptCell()
		if err != nil {
			v.printScores()
			return ignoreQuit(err)
		}
		res, err := v.m.ApplyMove(index)
		if err != nil {
			return err
		}
		if res.Outcome == match.OutcomeIgnored {
			fmt.Fprintln(v.out, "That cell is taken.")
		}
	}
}

func (v *view) promptName(label string, mark game.PlayerMark) (*player.Player, error) {
	for {
		fmt.Fprintf(v.out, "%s name: ", label)
		line, err := v.readLine()
		if err != nil {
			return nil, err
		}
		p, err := player.New(line, mark)
		if errors.Is(err, player.ErrBlankName) {
			fmt.Fprintln(v.out, "Please enter the player name")
			continue
		}
		return p, err
	}
}

// promptCell reads a 1-9 cell number and returns its 0-based index.
func (v *view) promptCell() (int, error) {
	current := v.m.CurrentTurn()
	for {
		fmt.Fprintf(v.out, "%s (%s), pick a cell 1-9 or q: ", current.Name, v.mark(current.Mark))
		line, err := v.readLine()
		if err != nil {
			return 0, err
		}
		if strings.EqualFold(line, "q") {
			return 0, errQuit
		}
		n, err := strconv.Atoi(line)
		if err != nil || !game.InRange(n-1) {
			fmt.Fprintln(v.out, "Enter a number from 1 to 9.")
			continue
		}
		return n - 1, nil
	}
}

func (v *view) onResult(res match.Result) {
	if !res.Terminal() {
		return
	}
	final := game.NewBoard()
	if err := final.Load(res.Board); err == nil {
		fmt.Fprintln(v.out)
		v.drawCells(final.Cells(), res.Line, res.Outcome == match.OutcomeWin)
	}
	fmt.Fprintln(v.out, v.out.String(res.Message()).Bold())
	v.printScores()
}

func (v *view) drawBoard() {
	fmt.Fprintln(v.out)
	v.drawCells(v.m.Board().Cells(), [3]int{}, false)
}

func (v *view) drawCells(cells [game.Size]game.PlayerMark, line [3]int, highlight bool) {
	onLine := func(i int) bool {
		return highlight && (i == line[0] || i == line[1] || i == line[2])
	}
	for row := 0; row < game.Side; row++ {
		parts := make([]string, game.Side)
		for col := 0; col < game.Side; col++ {
			i := row*game.Side + col
			cell := v.out.String(strconv.Itoa(i + 1)).Faint().String()
			if cells[i] != game.None {
				cell = v.mark(cells[i])
			}
			if onLine(i) {
				cell = v.out.String(string(cells[i])).Reverse().String()
			}
			parts[col] = " " + cell + " "
		}
		fmt.Fprintln(v.out, strings.Join(parts, "|"))
		if row < game.Side-1 {
			fmt.Fprintln(v.out, "---+---+---")
		}
	}
}

func (v *view) mark(m game.PlayerMark) string {
	color := "4"
	if m == game.PlayerX {
		color = "1"
	}
	return v.out.String(string(m)).Foreground(v.out.Color(color)).Bold().String()
}

func (v *view) printScores() {
	one, two := v.m.PlayerOne(), v.m.PlayerTwo()
	if one == nil || two == nil {
		return
	}
	fmt.Fprintf(v.out, "%s: %d  %s: %d\n", one.Name, one.Score, two.Name, two.Score)
}

func (v *view) readLine() (string, error) {
	if !v.in.Scan() {
		if err := v.in.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	return strings.TrimSpace(v.in.Text()), nil
}

func ignoreQuit(err error) error {
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}
