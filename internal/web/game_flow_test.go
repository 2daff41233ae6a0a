package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	nc "github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanchess/nanchess/internal/chess"
	"github.com/nanchess/nanchess/internal/notation"
)

// TestScholarsMate plays a full game over HTTP, the human as white and the
// agent answering through signed action codes, and follows along on a
// reference board.
func TestScholarsMate(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusCreated, ts.do(t, "POST", "/api/game", CreateGameRequest{Color: "white", Preset: "CLK_NONE"}, "").Code)
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/game/resume", nil, "").Code)

	token, err := ts.signer.IssueAgentToken("scripted", "")
	require.NoError(t, err)

	ref := nc.NewGame(nc.UseNotation(nc.UCINotation{}))

	type ply struct {
		from, to string
		agent    *chess.Action
	}
	agentMove := func(k chess.Kind, n int) *chess.Action {
		return &chess.Action{Color: chess.Black, Kind: k, Number: n}
	}
	plies := []ply{
		{"e2", "e4", nil},
		{"e7", "e5", agentMove(chess.Pawn, 5)},
		{"f1", "c4", nil},
		{"b8", "c6", agentMove(chess.Knight, 1)},
		{"d1", "h5", nil},
		{"g8", "f6", agentMove(chess.Knight, 2)},
		{"h5", "f7", nil},
	}

	var resp GameResponse
	for _, p := range plies {
		var rr *httptest.ResponseRecorder
		if p.agent == nil {
			rr = ts.do(t, "POST", "/api/moves", MakeMoveRequest{From: p.from, To: p.to}, "")
		} else {
			target, err := notation.ParseSquare(chess.White, p.to)
			require.NoError(t, err)
			p.agent.Target = target
			code, err := p.agent.Encode()
			require.NoError(t, err)
			rr = ts.do(t, "POST", "/api/actions", ActionRequest{Code: uint32(code)}, token)
		}
		require.Equal(t, http.StatusOK, rr.Code, "%s%s: %s", p.from, p.to, rr.Body.String())
		resp = decodeGame(t, rr)

		require.NoError(t, ref.MoveStr(p.from+p.to))
		board := strings.Fields(resp.FEN)[0]
		assert.Equal(t, ref.Position().Board().String(), board, "after %s%s", p.from, p.to)
	}

	assert.Equal(t, chess.StatePlayerWins, resp.Board.State)
	assert.Equal(t, chess.KingCheckmated, resp.Board.KingStates["black"])
	assert.Equal(t, nc.WhiteWon, ref.Outcome())
	assert.Equal(t, nc.Checkmate, ref.Method())

	rr := ts.do(t, "POST", "/api/moves", MakeMoveRequest{From: "a2", To: "a3"}, "")
	assert.Equal(t, http.StatusConflict, rr.Code, "game is over")
}
