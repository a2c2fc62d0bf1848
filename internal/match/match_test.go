package match

import (
	"testing"

	"ctchen222/Hotseat-Tic-Tac-Toe/internal/game"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/player"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlayers(t *testing.T) (*player.Player, *player.Player) {
	t.Helper()
	alice, err := player.New("Alice", game.PlayerX)
	require.NoError(t, err)
	bob, err := player.New("Bob", game.PlayerO)
	require.NoError(t, err)
	return alice, bob
}

func startedMatch(t *testing.T, opts ...Option) (*Match, *player.Player, *player.Player) {
	t.Helper()
	m := New(opts...)
	alice, bob := newPlayers(t)
	require.NoError(t, m.Start(alice, bob))
	return m, alice, bob
}

// play applies moves and returns the result of the last one.
func play(t *testing.T, m *Match, moves ...int) Result {
	t.Helper()
	var res Result
	for i, index := range moves {
		var err error
		res, err = m.ApplyMove(index)
		require.NoError(t, err, "move %d (cell %d)", i, index)
	}
	return res
}

func TestMatch_Start(t *testing.T) {
	t.Run("Player one opens on an empty board", func(t *testing.T) {
		m, alice, bob := startedMatch(t)

		assert.Same(t, alice, m.CurrentTurn())
		assert.Same(t, alice, m.PlayerOne())
		assert.Same(t, bob, m.PlayerTwo())
		assert.Equal(t, 1, m.Round())
		assert.Equal(t, [game.Size]game.PlayerMark{}, m.Board().Cells())
	})

	t.Run("Scores start from zero", func(t *testing.T) {
		m := New()
		alice, bob := newPlayers(t)
		alice.Score, bob.Score = 4, 2

		require.NoError(t, m.Start(alice, bob))

		assert.Zero(t, alice.Score)
		assert.Zero(t, bob.Score)
	})

	t.Run("Rejects swapped or missing players", func(t *testing.T) {
		m := New()
		alice, bob := newPlayers(t)

		assert.ErrorIs(t, m.Start(bob, alice), ErrMarksNotDistinct)
		assert.ErrorIs(t, m.Start(alice, nil), ErrMissingPlayer)
		assert.False(t, m.Started())
	})

	t.Run("Restart clears the board", func(t *testing.T) {
		m, alice, bob := startedMatch(t)
		play(t, m, 0, 4)

		require.NoError(t, m.Start(alice, bob))

		assert.Equal(t, [game.Size]game.PlayerMark{}, m.Board().Cells())
		assert.Same(t, alice, m.CurrentTurn())
	})
}

func TestMatch_ApplyMove_BeforeStart(t *testing.T) {
	_, err := New().ApplyMove(0)
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestMatch_ApplyMove_OutOfRange(t *testing.T) {
	m, alice, _ := startedMatch(t)

	for _, index := range []int{-1, 9} {
		_, err := m.ApplyMove(index)
		assert.ErrorIs(t, err, game.ErrIndexOutOfRange)
	}
	assert.Same(t, alice, m.CurrentTurn())
}

func TestMatch_ScenarioA_WinOnTopRow(t *testing.T) {
	// Given: Alice (X) and Bob (O)
	m, alice, bob := startedMatch(t)

	// When: X takes 0, 1, 2 while O takes 3, 4
	res := play(t, m, 0, 3, 1, 4, 2)

	// Then: Alice wins the round
	assert.Equal(t, OutcomeWin, res.Outcome)
	assert.Equal(t, "Alice wins!", res.Message())
	assert.Same(t, alice, res.Winner)
	assert.Equal(t, [3]int{0, 1, 2}, res.Line)
	assert.Equal(t, 1, alice.Score)
	assert.Zero(t, bob.Score)

	// Then: the board is reset and the winner keeps the turn
	assert.Equal(t, [game.Size]game.PlayerMark{}, m.Board().Cells())
	assert.Same(t, alice, m.CurrentTurn())
	assert.Same(t, alice, res.Next)
	assert.Equal(t, 2, m.Round())

	// Then: the result still shows the final grid
	assert.Equal(t, game.PlayerX, res.Board[2])
}

func TestMatch_ScenarioB_Tie(t *testing.T) {
	// Given: a fresh match
	m, alice, bob := startedMatch(t)

	// When: the board fills without any triple
	// X: 0 2 3 7 8, O: 1 4 5 6
	res := play(t, m, 0, 1, 2, 4, 3, 5, 7, 6, 8)

	// Then: the round is a tie and nobody scores
	assert.Equal(t, OutcomeTie, res.Outcome)
	assert.Equal(t, "It's a tie!", res.Message())
	assert.Nil(t, res.Winner)
	assert.Zero(t, alice.Score)
	assert.Zero(t, bob.Score)
	assert.Equal(t, [game.Size]game.PlayerMark{}, m.Board().Cells())

	// Then: the player who filled the last cell keeps the turn
	assert.Same(t, alice, m.CurrentTurn())
}

func TestMatch_RowMajorSequenceEndsOnDiagonal(t *testing.T) {
	// Cells 0..6 in order hand X the 2-4-6 diagonal on the seventh move,
	// so the board never fills.
	m, alice, _ := startedMatch(t)

	res := play(t, m, 0, 1, 2, 3, 4, 5, 6)

	assert.Equal(t, OutcomeWin, res.Outcome)
	assert.Equal(t, [3]int{2, 4, 6}, res.Line)
	assert.Equal(t, 1, alice.Score)
}

func TestMatch_ScenarioC_OccupiedCellIsIgnored(t *testing.T) {
	// Given: X has taken cell 0
	m, _, bob := startedMatch(t)
	play(t, m, 0)

	// When: O clicks cell 0 as well
	res, err := m.ApplyMove(0)

	// Then: nothing changes and it is still O's turn
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, res.Outcome)
	assert.Empty(t, res.Message())
	assert.Equal(t, game.PlayerX, m.Board().Cells()[0])
	assert.Same(t, bob, m.CurrentTurn())
}

func TestMatch_IgnoredMoveIsIdempotent(t *testing.T) {
	m, alice, bob := startedMatch(t)
	play(t, m, 4, 0, 8)

	before, err := m.Snapshot()
	require.NoError(t, err)

	for range 3 {
		res, err := m.ApplyMove(4)
		require.NoError(t, err)
		assert.Equal(t, OutcomeIgnored, res.Outcome)
	}

	after, err := m.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Zero(t, alice.Score)
	assert.Zero(t, bob.Score)
}

func TestMatch_EveryTripleWins(t *testing.T) {
	for _, triple := range game.WinningTriples {
		m, alice, bob := startedMatch(t)

		var filler []int
		for i := 0; i < game.Size && len(filler) < 2; i++ {
			if i != triple[0] && i != triple[1] && i != triple[2] {
				filler = append(filler, i)
			}
		}

		res := play(t, m, triple[0], filler[0], triple[1], filler[1], triple[2])

		assert.Equal(t, OutcomeWin, res.Outcome, "triple %v", triple)
		assert.Equal(t, triple, res.Line)
		assert.Equal(t, 1, alice.Score)
		assert.Zero(t, bob.Score)
	}
}

func TestMatch_SecondPlayerCanWin(t *testing.T) {
	m, alice, bob := startedMatch(t)

	// X: 0 1 8, O: 3 4 5
	res := play(t, m, 0, 3, 1, 4, 8, 5)

	assert.Equal(t, OutcomeWin, res.Outcome)
	assert.Equal(t, "Bob wins!", res.Message())
	assert.Equal(t, 1, bob.Score)
	assert.Zero(t, alice.Score)
	assert.Same(t, bob, m.CurrentTurn())
}

func TestMatch_TurnAlternates(t *testing.T) {
	m, alice, bob := startedMatch(t)
	want := []*player.Player{bob, alice, bob, alice}

	for i, index := range []int{0, 4, 8, 2} {
		res, err := m.ApplyMove(index)
		require.NoError(t, err)
		assert.Equal(t, OutcomeContinue, res.Outcome)
		assert.Same(t, want[i], m.CurrentTurn())
		assert.Same(t, want[i], res.Next)
	}
}

func TestMatch_ScoresAccumulateAcrossRounds(t *testing.T) {
	m, alice, bob := startedMatch(t)

	play(t, m, 0, 3, 1, 4, 2) // Alice wins, keeps the turn
	play(t, m, 6, 0, 7, 1, 8) // Alice wins again on the bottom row

	assert.Equal(t, 2, alice.Score)
	assert.Zero(t, bob.Score)
	assert.Equal(t, 3, m.Round())
}

func TestMatch_StarterPlayerOne(t *testing.T) {
	m, alice, bob := startedMatch(t, WithNextRoundStarter(StarterPlayerOne))

	res := play(t, m, 0, 3, 1, 4, 8, 5)

	require.Equal(t, OutcomeWin, res.Outcome)
	assert.Equal(t, 1, bob.Score)
	assert.Same(t, alice, m.CurrentTurn())
	assert.Same(t, alice, res.Next)
}

func TestMatch_Subscribe(t *testing.T) {
	m, _, _ := startedMatch(t)
	var got []Outcome
	m.Subscribe(ListenerFunc(func(r Result) {
		got = append(got, r.Outcome)
	}))

	play(t, m, 0, 0, 3, 1, 4, 2)

	assert.Equal(t, []Outcome{OutcomeContinue, OutcomeContinue, OutcomeContinue, OutcomeContinue, OutcomeWin}, got)
}

func TestMatch_ResetDoesNotTouchScores(t *testing.T) {
	m, alice, _ := startedMatch(t)
	play(t, m, 0, 3, 1, 4, 2)
	play(t, m, 4)

	m.Board().Reset()

	assert.Equal(t, [game.Size]game.PlayerMark{}, m.Board().Cells())
	assert.Equal(t, 1, alice.Score)
}

func TestMatch_BoardResetHookFiresOnTerminal(t *testing.T) {
	m, _, _ := startedMatch(t)
	resets := 0
	m.Board().OnReset(func() { resets++ })

	play(t, m, 0, 3, 1, 4, 2)

	assert.Equal(t, 1, resets)
}

func TestParseStarter(t *testing.T) {
	tests := []struct {
		in      string
		want    Starter
		wantErr bool
	}{
		{in: "", want: StarterKeep},
		{in: "keep", want: StarterKeep},
		{in: "player-one", want: StarterPlayerOne},
		{in: "loser", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStarter(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownStarter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
