package chess

import "fmt"

// ThreatLine is an attack on a king: the attacker's square plus every square
// strictly between it and the king.
type ThreatLine struct {
	Attacker *Piece
	Line     Bitboard
}

// blockers returns the occupied squares of the line other than the attacker's.
func (t ThreatLine) blockers(occupied Bitboard) Bitboard {
	return t.Line &^ t.Attacker.position & occupied
}

// Piece is one of the 32 men on a board. Its Kind selects the movement rule.
type Piece struct {
	board *Board

	kind     Kind
	identity Kind // kind at setup; a promoted pawn keeps Pawn
	color    Color
	number   int

	position         Bitboard
	moveCount        int
	spacesMoved      int
	totalSpacesMoved int
	legalMoves       Bitboard
	threatLines      []ThreatLine
	enPassant        bool
}

func (p *Piece) Kind() Kind     { return p.kind }
func (p *Piece) Identity() Kind { return p.identity }
func (p *Piece) Color() Color   { return p.color }
func (p *Piece) Number() int    { return p.number }

func (p *Piece) Position() Bitboard { return p.position }

// Captured reports whether the piece is off the board.
func (p *Piece) Captured() bool { return p.position == 0 }

// Square returns the piece's square; ok is false once captured.
func (p *Piece) Square() (sq Square, ok bool) { return p.position.First() }

func (p *Piece) MoveCount() int        { return p.moveCount }
func (p *Piece) SpacesMoved() int      { return p.spacesMoved }
func (p *Piece) TotalSpacesMoved() int { return p.totalSpacesMoved }
func (p *Piece) LegalMoves() Bitboard  { return p.legalMoves }

// EnPassant reports whether the pawn's last move was an en-passant capture.
func (p *Piece) EnPassant() bool { return p.enPassant }

// Promoted reports whether a pawn has been turned into a queen.
func (p *Piece) Promoted() bool { return p.identity == Pawn && p.kind != Pawn }

func (p *Piece) LegalMovesAsSquares() []Square { return p.legalMoves.Squares() }

func (p *Piece) NumThreatLines() int { return len(p.threatLines) }

// ThreatLine returns the i-th line threatening this piece. Panics if i is out
// of range.
func (p *Piece) ThreatLine(i int) ThreatLine {
	if i < 0 || i >= len(p.threatLines) {
		panic(fmt.Sprintf("threat line index %d out of range [0,%d)", i, len(p.threatLines)))
	}
	return p.threatLines[i]
}

func (p *Piece) ThreatLines() []ThreatLine {
	out := make([]ThreatLine, len(p.threatLines))
	copy(out, p.threatLines)
	return out
}

// SetPosition places the piece on x, y. It panics when x, y are off the board
// or the square holds another piece.
func (p *Piece) SetPosition(x, y int) {
	sq := NewSquare(x, y)
	p.board.place(p, sq)
}

// Move plays the piece to x, y. It panics when x, y are off the board and
// returns false without touching the board when the destination is not one of
// the piece's legal moves or it is not the piece's turn.
func (p *Piece) Move(x, y int) bool {
	dest := NewSquare(x, y)
	if p.Captured() || p.color != p.board.turn || !p.legalMoves.Has(dest) {
		return false
	}
	p.board.apply(p, dest)
	return true
}

// PerformAction moves the piece when the code addresses it.
func (p *Piece) PerformAction(code ActionCode) bool {
	a, err := code.Decode()
	if err != nil {
		return false
	}
	if a.Color != p.color || a.Kind != p.identity || a.Number != p.number {
		return false
	}
	return p.Move(a.Target.X(), a.Target.Y())
}

func (p *Piece) String() string {
	return fmt.Sprintf("%s %s %d", p.color, p.kind, p.number)
}

func (p *Piece) addThreatLine(t ThreatLine) {
	p.threatLines = append(p.threatLines, t)
}

// removeThreatLines drops every line created by attacker.
func (p *Piece) removeThreatLines(attacker *Piece) {
	kept := p.threatLines[:0]
	for _, t := range p.threatLines {
		if t.Attacker != attacker {
			kept = append(kept, t)
		}
	}
	p.threatLines = kept
}
