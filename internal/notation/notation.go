// Package notation converts board coordinates and snapshots to standard
// chess notation using github.com/notnil/chess.
package notation

import (
	"errors"
	"fmt"
	"strings"

	nc "github.com/notnil/chess"

	"github.com/nanchess/nanchess/internal/chess"
)

var ErrBadSquare = errors.New("invalid square name")

// toNotnil maps a board square to the standard square. The human's pieces
// start on rows 6 and 7, so White on ranks 1 and 2 needs a flip only when
// the human plays White.
func toNotnil(player chess.Color, sq chess.Square) nc.Square {
	rank := sq.Y()
	if player == chess.White {
		rank = 7 - sq.Y()
	}
	return nc.NewSquare(nc.File(sq.X()), nc.Rank(rank))
}

func fromNotnil(player chess.Color, sq nc.Square) chess.Square {
	y := int(sq.Rank())
	if player == chess.White {
		y = 7 - y
	}
	return chess.NewSquare(int(sq.File()), y)
}

// SquareName returns the algebraic name ("e4") of sq as seen by a human
// playing player.
func SquareName(player chess.Color, sq chess.Square) string {
	return toNotnil(player, sq).String()
}

// ParseSquare is the inverse of SquareName.
func ParseSquare(player chess.Color, name string) (chess.Square, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) != 2 || name[0] < 'a' || name[0] > 'h' || name[1] < '1' || name[1] > '8' {
		return 0, fmt.Errorf("%w: %q", ErrBadSquare, name)
	}
	sq := nc.NewSquare(nc.File(name[0]-'a'), nc.Rank(name[1]-'1'))
	return fromNotnil(player, sq), nil
}

var pieceTypes = map[chess.Kind]nc.PieceType{
	chess.Pawn:   nc.Pawn,
	chess.Rook:   nc.Rook,
	chess.Knight: nc.Knight,
	chess.Bishop: nc.Bishop,
	chess.Queen:  nc.Queen,
	chess.King:   nc.King,
}

func toNotnilColor(c chess.Color) nc.Color {
	if c == chess.White {
		return nc.White
	}
	return nc.Black
}

// ToBoard builds a notnil board holding the snapshot's pieces.
func ToBoard(snap chess.Snapshot) *nc.Board {
	m := make(map[nc.Square]nc.Piece)
	for _, p := range snap.Pieces {
		if p.Captured {
			continue
		}
		m[toNotnil(snap.PlayerColor, p.Square)] = nc.NewPiece(pieceTypes[p.Kind], toNotnilColor(p.Color))
	}
	return nc.NewBoard(m)
}

// FEN returns the position in Forsyth-Edwards notation. En passant targets
// are not tracked and always read "-".
func FEN(snap chess.Snapshot) string {
	turn := "w"
	if snap.Turn == chess.Black {
		turn = "b"
	}
	return fmt.Sprintf("%s %s %s - 0 %d", ToBoard(snap).String(), turn, castlingRights(snap), max(snap.MoveNumber, 1))
}

// castlingRights lists K, Q, k, q for every unmoved king and rook still on
// their starting squares.
func castlingRights(snap chess.Snapshot) string {
	var b strings.Builder
	for _, c := range []chess.Color{chess.White, chess.Black} {
		row := 0
		if c == snap.PlayerColor {
			row = 7
		}
		if !unmovedAt(snap, c, chess.King, 1, chess.NewSquare(4, row)) {
			continue
		}
		rights := ""
		if unmovedAt(snap, c, chess.Rook, 2, chess.NewSquare(7, row)) {
			rights += "K"
		}
		if unmovedAt(snap, c, chess.Rook, 1, chess.NewSquare(0, row)) {
			rights += "Q"
		}
		if c == chess.Black {
			rights = strings.ToLower(rights)
		}
		b.WriteString(rights)
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}

func unmovedAt(snap chess.Snapshot, c chess.Color, k chess.Kind, n int, sq chess.Square) bool {
	for _, p := range snap.Pieces {
		if p.Color == c && p.Kind == k && p.Number == n && !p.Promoted {
			return !p.Captured && p.MoveCount == 0 && p.Square == sq
		}
	}
	return false
}

// Draw returns notnil's text diagram of the position, White at the bottom.
func Draw(snap chess.Snapshot) string {
	return ToBoard(snap).Draw()
}

// MoveName renders a move as long algebraic notation, e.g. "e2e4".
func MoveName(player chess.Color, from, to chess.Square) string {
	return SquareName(player, from) + SquareName(player, to)
}
