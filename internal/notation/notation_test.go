package notation

import (
	"bytes"
	"sort"
	"testing"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	nc "github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanchess/nanchess/internal/agent"
	"github.com/nanchess/nanchess/internal/chess"
)

func TestSquareName(t *testing.T) {
	tests := []struct {
		player chess.Color
		x, y   int
		want   string
	}{
		{chess.White, 4, 6, "e2"},
		{chess.White, 0, 0, "a8"},
		{chess.White, 7, 7, "h1"},
		{chess.Black, 4, 6, "e7"},
		{chess.Black, 3, 7, "d8"},
		{chess.Black, 0, 0, "a1"},
	}
	for _, tt := range tests {
		sq := chess.NewSquare(tt.x, tt.y)
		assert.Equal(t, tt.want, SquareName(tt.player, sq))

		back, err := ParseSquare(tt.player, tt.want)
		require.NoError(t, err)
		assert.Equal(t, sq, back)
	}
}

func TestParseSquareInvalid(t *testing.T) {
	for _, s := range []string{"", "e", "i1", "a9", "a0", "e22"} {
		_, err := ParseSquare(chess.White, s)
		assert.ErrorIs(t, err, ErrBadSquare, s)
	}
	sq, err := ParseSquare(chess.White, " E4 ")
	require.NoError(t, err)
	assert.Equal(t, chess.NewSquare(4, 4), sq)
}

func TestFENStartPosition(t *testing.T) {
	const start = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	for _, player := range []chess.Color{chess.White, chess.Black} {
		b := chess.NewBoard()
		b.NewGame(player)
		assert.Equal(t, start, FEN(b.Snapshot()), "player %s", player)
	}
}

func TestFENAfterMoves(t *testing.T) {
	b := chess.NewBoard()
	b.NewGame(chess.White)
	b.ResumeGame()
	require.True(t, b.Pawn(chess.White, 5).Move(4, 4))
	require.False(t, b.Rook(chess.Black, 2).Move(7, 1), "blocked by its own pawn")
	require.True(t, b.Knight(chess.Black, 2).Move(7, 2))
	require.True(t, b.King(chess.White).Move(4, 6))

	assert.Equal(t, "rnbqkb1r/pppppppp/7n/8/4P3/8/PPPPKPPP/RNBQ1BNR b kq - 0 2", FEN(b.Snapshot()))
}

func TestRender(t *testing.T) {
	color.NoColor = true
	b := chess.NewBoard()
	b.NewGame(chess.White)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, b.Snapshot()))
	out := buf.String()
	assert.Contains(t, out, "8 ♜ ♞ ♝ ♛ ♚ ♝ ♞ ♜\n")
	assert.Contains(t, out, "4 · · · · · · · ·\n")
	assert.Contains(t, out, "1 ♖ ♘ ♗ ♕ ♔ ♗ ♘ ♖\n")
	assert.Contains(t, out, "  a b c d e f g h\n")
	assert.Contains(t, out, "white to move, move 1, paused")

	b.NewGame(chess.Black)
	buf.Reset()
	require.NoError(t, Render(&buf, b.Snapshot()))
	assert.Contains(t, buf.String(), "1 ♖ ♘ ♗ ♕ ♔ ♗ ♘ ♖\n", "white at the top for a black player")
}

// ourMoves lists the side to move's legal moves, leaving out castling and
// en passant, which the oracle position cannot express.
func ourMoves(snap chess.Snapshot) []string {
	occupied := make(map[chess.Square]chess.Color)
	for _, p := range snap.Pieces {
		if !p.Captured {
			occupied[p.Square] = p.Color
		}
	}
	var out []string
	for _, p := range snap.Pieces {
		if p.Color != snap.Turn {
			continue
		}
		for _, to := range p.LegalMoves {
			c, taken := occupied[to]
			if taken && c == p.Color {
				continue
			}
			if p.Kind == chess.Pawn && !p.Promoted && !taken && to.X() != p.Square.X() {
				continue
			}
			out = append(out, MoveName(snap.PlayerColor, p.Square, to))
		}
	}
	sort.Strings(out)
	return out
}

func oracleMoves(t *testing.T, snap chess.Snapshot) []string {
	t.Helper()
	turn := "w"
	if snap.Turn == chess.Black {
		turn = "b"
	}
	fen, err := nc.FEN(ToBoard(snap).String() + " " + turn + " - - 0 1")
	require.NoError(t, err)
	g := nc.NewGame(fen)

	seen := make(map[string]bool)
	var out []string
	for _, m := range g.ValidMoves() {
		name := m.S1().String() + m.S2().String()
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func TestLegalMovesMatchReference(t *testing.T) {
	for _, player := range []chess.Color{chess.White, chess.Black} {
		for _, seed := range []int64{3, 11, 29} {
			b := chess.NewBoard()
			b.NewGame(player)
			b.ResumeGame()
			r := agent.NewRandom(nil, agent.WithSeed(seed))

			for ply := 0; ply < 80 && b.State() == chess.StatePlaying; ply++ {
				snap := b.Snapshot()
				if diff := cmp.Diff(oracleMoves(t, snap), ourMoves(snap)); diff != "" {
					t.Fatalf("player %s seed %d ply %d (%s) moves mismatch (-reference +ours):\n%s",
						player, seed, ply, FEN(snap), diff)
				}
				code, ok := r.Choose(snap)
				require.True(t, ok)
				require.True(t, b.PerformAction(code))
			}
		}
	}
}
