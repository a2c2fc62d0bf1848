package game

import (
	"errors"
	"fmt"
	"strings"
)

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

const (
	// Player marks
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// Size is the number of cells on the board, indexed 0-8 in row-major order.
	Size = 9
	// Side is the length of one row.
	Side = 3
)

var ErrIndexOutOfRange = errors.New("cell index out of range")

// Valid reports whether the mark is one a player can hold.
func (m PlayerMark) Valid() bool {
	return m == PlayerX || m == PlayerO
}

// Opponent returns the other player's mark.
func (m PlayerMark) Opponent() PlayerMark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return None
	}
}

// Board is the 3x3 grid. The zero value is an empty board.
type Board struct {
	cells   [Size]PlayerMark
	onReset []func()
}

func NewBoard() *Board {
	return &Board{}
}

// Get returns the mark at index.
func (b *Board) Get(index int) (PlayerMark, error) {
	if !InRange(index) {
		return None, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return b.cells[index], nil
}

// Place sets the cell at index to mark. It reports false and leaves the board
// untouched when the index is out of range, the cell is taken or the mark is
// not a player mark.
func (b *Board) Place(index int, mark PlayerMark) bool {
	if !InRange(index) || !mark.Valid() {
		return false
	}
	if b.cells[index] != None {
		return false
	}
	b.cells[index] = mark
	return true
}

// Reset empties every cell and notifies the hooks registered with OnReset.
func (b *Board) Reset() {
	b.cells = [Size]PlayerMark{}
	for _, fn := range b.onReset {
		fn()
	}
}

// OnReset registers fn to run after every Reset.
func (b *Board) OnReset(fn func()) {
	b.onReset = append(b.onReset, fn)
}

// AllFilled checks if no cell is empty.
func (b *Board) AllFilled() bool {
	for _, cell := range b.cells {
		if cell == None {
			return false
		}
	}
	return true
}

// Cells returns a copy of the grid.
func (b *Board) Cells() [Size]PlayerMark {
	return b.cells
}

// Load replaces the grid with cells without firing reset hooks.
func (b *Board) Load(cells [Size]PlayerMark) error {
	for i, cell := range cells {
		if cell != None && !cell.Valid() {
			return fmt.Errorf("invalid mark %q at cell %d", cell, i)
		}
	}
	b.cells = cells
	return nil
}

func (b *Board) String() string {
	var sb strings.Builder
	for row := range Side {
		for col := range Side {
			cell := b.cells[row*Side+col]
			if cell == None {
				sb.WriteByte('.')
			} else {
				sb.WriteString(string(cell))
			}
		}
		if row < Side-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// InRange reports whether index addresses a cell.
func InRange(index int) bool {
	return index >= 0 && index < Size
}
