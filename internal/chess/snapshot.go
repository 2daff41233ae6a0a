package chess

// PieceInfo is a read-only view of one piece for renderers and agents.
type PieceInfo struct {
	Color      Color    `json:"color"`
	Kind       Kind     `json:"kind"`
	Number     int      `json:"number"`
	Promoted   bool     `json:"promoted"`
	Captured   bool     `json:"captured"`
	Square     Square   `json:"square"`
	MoveCount  int      `json:"moveCount"`
	LegalMoves []Square `json:"legalMoves"`
}

// Action builds the action that moves this piece to target.
func (pi PieceInfo) Action(target Square) Action {
	kind := pi.Kind
	if pi.Promoted {
		kind = Pawn
	}
	return Action{Color: pi.Color, Kind: kind, Number: pi.Number, Target: target}
}

// Snapshot is a copy of the board state safe to hand to other goroutines.
type Snapshot struct {
	PlayerColor Color                `json:"playerColor"`
	Turn        Color                `json:"turn"`
	MoveNumber  int                  `json:"moveNumber"`
	State       GameState            `json:"state"`
	KingStates  map[string]KingState `json:"kingStates"`
	Pieces      []PieceInfo          `json:"pieces"`
}

// Movable returns the pieces of c that have at least one legal move.
func (s Snapshot) Movable(c Color) []PieceInfo {
	var out []PieceInfo
	for _, p := range s.Pieces {
		if p.Color == c && len(p.LegalMoves) > 0 {
			out = append(out, p)
		}
	}
	return out
}

func (b *Board) Snapshot() Snapshot {
	s := Snapshot{
		PlayerColor: b.playerColor,
		Turn:        b.turn,
		MoveNumber:  b.moveNumber,
		State:       b.state,
		KingStates: map[string]KingState{
			White.String(): b.kingStates[White],
			Black.String(): b.kingStates[Black],
		},
		Pieces: make([]PieceInfo, 0, NumPieces),
	}
	for _, p := range b.pieces {
		info := PieceInfo{
			Color:      p.color,
			Kind:       p.kind,
			Number:     p.number,
			Promoted:   p.Promoted(),
			Captured:   p.Captured(),
			MoveCount:  p.moveCount,
			LegalMoves: p.LegalMovesAsSquares(),
		}
		if sq, ok := p.Square(); ok {
			info.Square = sq
		}
		s.Pieces = append(s.Pieces, info)
	}
	return s
}
