package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanchess/nanchess/internal/auth"
	"github.com/nanchess/nanchess/internal/chess"
	"github.com/nanchess/nanchess/internal/clock"
	"github.com/nanchess/nanchess/internal/config"
	"github.com/nanchess/nanchess/internal/game"
)

type testServer struct {
	session *game.Session
	signer  *auth.Signer
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	session := game.New(game.WithTickInterval(0), game.WithID("quiet-green-heron"))
	t.Cleanup(session.Close)

	key, err := auth.GenerateES256KeyPair()
	require.NoError(t, err)
	signer := auth.NewSigner(key, time.Hour)

	cfg := &config.Config{Game: config.GameConfig{PlayerColor: "white", ClockPreset: "CLK_G5"}}
	svc := NewService(session, signer, cfg, nil)
	return &testServer{session: session, signer: signer, handler: svc.Router()}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decodeGame(t *testing.T, rr *httptest.ResponseRecorder) GameResponse {
	t.Helper()
	var resp GameResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return resp
}

func TestHealthAndPresets(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, "GET", "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","session":"quiet-green-heron"}`, rr.Body.String())

	rr = ts.do(t, "GET", "/api/presets", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var presets []clock.PresetInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &presets))
	assert.Equal(t, clock.Presets(), presets)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(t, "OPTIONS", "/api/moves", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestCreateGameUsesConfigDefaults(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, "POST", "/api/game", map[string]string{}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	resp := decodeGame(t, rr)
	assert.Equal(t, chess.White, resp.Board.PlayerColor)
	assert.Equal(t, chess.StatePaused, resp.Board.State)
	assert.Equal(t, clock.PresetBlitz, resp.Clock.Preset)
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", resp.FEN)

	rr = ts.do(t, "POST", "/api/game", CreateGameRequest{Color: "purple"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, "POST", "/api/game", CreateGameRequest{Preset: "CLK_NOPE"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, "POST", "/api/game", CreateGameRequest{Color: "black", Preset: "Bullet"}, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	resp = decodeGame(t, rr)
	assert.Equal(t, chess.Black, resp.Board.PlayerColor)
	assert.Equal(t, clock.PresetBullet, resp.Clock.Preset)
}

func TestMoveFlow(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusCreated, ts.do(t, "POST", "/api/game", CreateGameRequest{}, "").Code)

	rr := ts.do(t, "POST", "/api/moves", MakeMoveRequest{From: "e2", To: "e4"}, "")
	assert.Equal(t, http.StatusConflict, rr.Code, "paused")

	rr = ts.do(t, "POST", "/api/game/resume", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, chess.StatePlaying, decodeGame(t, rr).Board.State)

	rr = ts.do(t, "POST", "/api/moves", MakeMoveRequest{From: "e2", To: "e5"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = ts.do(t, "POST", "/api/moves", MakeMoveRequest{From: "z9", To: "e4"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, "POST", "/api/moves", MakeMoveRequest{From: "e7", To: "e5"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code, "opponent's pawn")

	rr = ts.do(t, "POST", "/api/moves", MakeMoveRequest{From: "e2", To: "e4"}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decodeGame(t, rr)
	assert.Equal(t, chess.Black, resp.Board.Turn)
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1", resp.FEN)

	rr = ts.do(t, "POST", "/api/moves", MakeMoveRequest{From: "d2", To: "d4"}, "")
	assert.Equal(t, http.StatusConflict, rr.Code, "not the player's turn")

	rr = ts.do(t, "POST", "/api/game/pause", nil, "")
	assert.Equal(t, chess.StatePaused, decodeGame(t, rr).Board.State)

	rr = ts.do(t, "POST", "/api/game/resume", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	rr = ts.do(t, "POST", "/api/game/end", nil, "")
	assert.Equal(t, chess.StateDraw, decodeGame(t, rr).Board.State)

	rr = ts.do(t, "GET", "/api/game", nil, "")
	assert.Equal(t, chess.StateDraw, decodeGame(t, rr).Board.State)
}

func TestActions(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusCreated, ts.do(t, "POST", "/api/game", CreateGameRequest{Color: "black"}, "").Code)
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/game/resume", nil, "").Code)

	code, err := chess.Action{Color: chess.White, Kind: chess.Knight, Number: 2, Target: chess.NewSquare(5, 2)}.Encode()
	require.NoError(t, err)
	body := ActionRequest{Code: uint32(code)}

	rr := ts.do(t, "POST", "/api/actions", body, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	wrong, err := ts.signer.IssueAgentToken("bot", "some-other-session")
	require.NoError(t, err)
	rr = ts.do(t, "POST", "/api/actions", body, wrong)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	token, err := ts.signer.IssueAgentToken("bot", "quiet-green-heron")
	require.NoError(t, err)

	rr = ts.do(t, "POST", "/api/actions", ActionRequest{Code: 1 << 20}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, "POST", "/api/actions", body, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, chess.Black, decodeGame(t, rr).Board.Turn)

	rr = ts.do(t, "POST", "/api/actions", body, token)
	assert.Equal(t, http.StatusConflict, rr.Code, "player's turn now")
}

func TestActionsDisabledWithoutSigner(t *testing.T) {
	session := game.New(game.WithTickInterval(0))
	t.Cleanup(session.Close)
	h := NewService(session, nil, nil, nil).Router()

	req := httptest.NewRequest("POST", "/api/actions", bytes.NewBufferString(`{"code":1}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSpectator(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusCreated, ts.do(t, "POST", "/api/game", CreateGameRequest{}, "").Code)

	rr := ts.do(t, "GET", "/api/spectate", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var view SpectatorView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, "quiet-green-heron", view.SessionID)
	assert.Equal(t, MaterialCount{White: 39, Black: 39}, view.Material)
	assert.Equal(t, chess.KingSafe, view.KingStates["white"])
	assert.Zero(t, view.SpectatorCount)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(game.ErrClosed))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
