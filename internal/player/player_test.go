package player

import (
	"testing"

	"ctchen222/Hotseat-Tic-Tac-Toe/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		mark    game.PlayerMark
		want    string
		wantErr error
	}{
		{name: "Plain name", input: "Alice", mark: game.PlayerX, want: "Alice"},
		{name: "Trims spaces", input: "  Bob \t", mark: game.PlayerO, want: "Bob"},
		{name: "Empty name", input: "", mark: game.PlayerX, wantErr: ErrBlankName},
		{name: "Whitespace name", input: "   ", mark: game.PlayerX, wantErr: ErrBlankName},
		{name: "Missing mark", input: "Carol", mark: game.None, wantErr: ErrInvalidMark},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.input, tt.mark)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name)
			assert.Equal(t, tt.mark, p.Mark)
			assert.Zero(t, p.Score)
		})
	}
}
