package notation

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	nc "github.com/notnil/chess"

	"github.com/nanchess/nanchess/internal/chess"
)

var (
	whitePiece = color.New(color.FgHiWhite, color.Bold)
	blackPiece = color.New(color.FgHiRed, color.Bold)
	emptySq    = color.New(color.FgHiBlack)
	label      = color.New(color.FgCyan)
)

// Render writes the board as the human sees it, their pieces at the bottom.
// Color is controlled by color.NoColor.
func Render(w io.Writer, snap chess.Snapshot) error {
	var grid [chess.NumSquares]*chess.PieceInfo
	for i := range snap.Pieces {
		if p := &snap.Pieces[i]; !p.Captured {
			grid[p.Square] = p
		}
	}

	var b strings.Builder
	for y := 0; y < 8; y++ {
		rank := SquareName(snap.PlayerColor, chess.NewSquare(0, y))[1:]
		b.WriteString(label.Sprint(rank))
		for x := 0; x < 8; x++ {
			b.WriteByte(' ')
			p := grid[chess.NewSquare(x, y)]
			if p == nil {
				b.WriteString(emptySq.Sprint("·"))
				continue
			}
			glyph := nc.NewPiece(pieceTypes[p.Kind], toNotnilColor(p.Color)).String()
			if p.Color == chess.White {
				b.WriteString(whitePiece.Sprint(glyph))
			} else {
				b.WriteString(blackPiece.Sprint(glyph))
			}
		}
		b.WriteByte('\n')
	}
	b.WriteString(" ")
	for x := 0; x < 8; x++ {
		b.WriteByte(' ')
		b.WriteString(label.Sprint(SquareName(snap.PlayerColor, chess.NewSquare(x, 0))[:1]))
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "%s to move, move %d, %s\n", snap.Turn, snap.MoveNumber, snap.State)

	_, err := io.WriteString(w, b.String())
	return err
}
