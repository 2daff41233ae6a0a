package web

import (
	"net/http"

	"github.com/nanchess/nanchess/internal/chess"
	"github.com/nanchess/nanchess/internal/notation"
)

// MaterialCount is the standard point value of each side's pieces on the
// board.
type MaterialCount struct {
	White int `json:"white"`
	Black int `json:"black"`
}

var pieceValues = map[chess.Kind]int{
	chess.Pawn:   1,
	chess.Knight: 3,
	chess.Bishop: 3,
	chess.Rook:   5,
	chess.Queen:  9,
}

// Material sums piece values for both sides. Kings count zero.
func Material(snap chess.Snapshot) MaterialCount {
	var m MaterialCount
	for _, p := range snap.Pieces {
		if p.Captured {
			continue
		}
		if p.Color == chess.White {
			m.White += pieceValues[p.Kind]
		} else {
			m.Black += pieceValues[p.Kind]
		}
	}
	return m
}

// SpectatorView is a compact summary for watchers.
type SpectatorView struct {
	SessionID      string                     `json:"sessionId"`
	State          chess.GameState            `json:"state"`
	Turn           chess.Color                `json:"turn"`
	MoveNumber     int                        `json:"moveNumber"`
	KingStates     map[string]chess.KingState `json:"kingStates"`
	FEN            string                     `json:"fen"`
	Material       MaterialCount              `json:"materialCount"`
	SpectatorCount int                        `json:"spectatorCount"`
}

// SpectatorHandler returns game data optimized for spectators
func (s *Service) SpectatorHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.session.Snapshot()
	view := SpectatorView{
		SessionID:  s.session.ID(),
		State:      snap.State,
		Turn:       snap.Turn,
		MoveNumber: snap.MoveNumber,
		KingStates: snap.KingStates,
		FEN:        notation.FEN(snap),
		Material:   Material(snap),
	}
	if s.hub != nil {
		view.SpectatorCount = s.hub.Count()
	}
	writeJSON(w, http.StatusOK, view)
}
