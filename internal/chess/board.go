package chess

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Index ranges of the fixed piece array.
const (
	blackPawns   = 0
	whitePawns   = 8
	blackRooks   = 16
	blackKnights = 18
	blackBishops = 20
	whiteRooks   = 22
	whiteKnights = 24
	whiteBishops = 26
	blackQueen   = 28
	blackKing    = 29
	whiteQueen   = 30
	whiteKing    = 31

	NumPieces = 32
)

// Board owns the 32 pieces and the turn/game state machine.
type Board struct {
	pieces  [NumPieces]*Piece
	squares [NumSquares]*Piece

	playerColor   Color
	opponentColor Color
	turn          Color
	moveNumber    int
	state         GameState
	kingStates    [2]KingState
	lastMoved     *Piece

	// attacks[c] is every square c's pieces attack, x-raying the enemy king.
	attacks [2]Bitboard

	timekeeper Timekeeper
	opponent   Opponent
	logger     zerolog.Logger
}

// Option configures a Board
type Option func(*Board)

// WithLogger sets a custom logger
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Board) {
		b.logger = logger
	}
}

// WithTimekeeper connects the clock that is told about turn changes.
func WithTimekeeper(t Timekeeper) Option {
	return func(b *Board) {
		b.timekeeper = t
	}
}

// WithOpponent sets the hook called when the opponent is to move.
func WithOpponent(o Opponent) Option {
	return func(b *Board) {
		b.opponent = o
	}
}

// NewBoard builds the 32 pieces. The game state is None until NewGame.
func NewBoard(opts ...Option) *Board {
	b := &Board{
		playerColor:   White,
		opponentColor: Black,
		turn:          Black,
		state:         StateNone,
		kingStates:    [2]KingState{KingSafe, KingSafe},
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}

	add := func(start int, c Color, k Kind, count int) {
		for i := 0; i < count; i++ {
			b.pieces[start+i] = &Piece{board: b, kind: k, identity: k, color: c, number: i + 1}
		}
	}
	add(blackPawns, Black, Pawn, 8)
	add(whitePawns, White, Pawn, 8)
	add(blackRooks, Black, Rook, 2)
	add(blackKnights, Black, Knight, 2)
	add(blackBishops, Black, Bishop, 2)
	add(whiteRooks, White, Rook, 2)
	add(whiteKnights, White, Knight, 2)
	add(whiteBishops, White, Bishop, 2)
	add(blackQueen, Black, Queen, 1)
	add(blackKing, Black, King, 1)
	add(whiteQueen, White, Queen, 1)
	add(whiteKing, White, King, 1)
	return b
}

func (b *Board) PlayerColor() Color   { return b.playerColor }
func (b *Board) OpponentColor() Color { return b.opponentColor }
func (b *Board) Turn() Color          { return b.turn }
func (b *Board) MoveNumber() int      { return b.moveNumber }
func (b *Board) State() GameState     { return b.state }

func (b *Board) KingState(c Color) KingState { return b.kingStates[c] }

// LastMoved is the piece moved on the preceding turn, or nil.
func (b *Board) LastMoved() *Piece { return b.lastMoved }

// AllPieces returns the pieces in array order, captured ones included.
func (b *Board) AllPieces() []*Piece {
	out := make([]*Piece, NumPieces)
	copy(out, b.pieces[:])
	return out
}

// PieceAt returns the piece on x, y or nil. Panics when x, y are off the board.
func (b *Board) PieceAt(x, y int) *Piece {
	return b.squares[NewSquare(x, y)]
}

func (b *Board) Pawn(c Color, n int) *Piece {
	return b.numbered(c, Pawn, n, blackPawns, whitePawns)
}

func (b *Board) Rook(c Color, n int) *Piece {
	return b.numbered(c, Rook, n, blackRooks, whiteRooks)
}

func (b *Board) Knight(c Color, n int) *Piece {
	return b.numbered(c, Knight, n, blackKnights, whiteKnights)
}

func (b *Board) Bishop(c Color, n int) *Piece {
	return b.numbered(c, Bishop, n, blackBishops, whiteBishops)
}

func (b *Board) Queen(c Color) *Piece {
	if c == White {
		return b.pieces[whiteQueen]
	}
	return b.pieces[blackQueen]
}

func (b *Board) King(c Color) *Piece {
	if c == White {
		return b.pieces[whiteKing]
	}
	return b.pieces[blackKing]
}

// numbered panics when n is outside 1..max for the kind.
func (b *Board) numbered(c Color, k Kind, n, blackStart, whiteStart int) *Piece {
	if n < 1 || n > k.maxNumber() {
		panic(fmt.Sprintf("%s number %d out of range [1,%d]", k, n, k.maxNumber()))
	}
	if c == White {
		return b.pieces[whiteStart+n-1]
	}
	return b.pieces[blackStart+n-1]
}

// byAction finds the piece an action addresses.
func (b *Board) byAction(a Action) *Piece {
	switch a.Kind {
	case Pawn:
		return b.Pawn(a.Color, a.Number)
	case Rook:
		return b.Rook(a.Color, a.Number)
	case Knight:
		return b.Knight(a.Color, a.Number)
	case Bishop:
		return b.Bishop(a.Color, a.Number)
	case Queen:
		return b.Queen(a.Color)
	case King:
		return b.King(a.Color)
	}
	return nil
}

// NewGame sets up a fresh game with the human playing playerColor from rows
// 6 and 7. The game starts Paused with White to move.
func (b *Board) NewGame(playerColor Color) {
	b.playerColor = playerColor
	b.opponentColor = playerColor.Other()
	b.resetBoard()
	b.state = StatePaused
	b.logger.Debug().Str("player", playerColor.String()).Msg("new game")
	b.NextTurn()
}

func (b *Board) resetBoard() {
	b.clear()
	backRank := [8]struct {
		kind Kind
		n    int
	}{{Rook, 1}, {Knight, 1}, {Bishop, 1}, {Queen, 1}, {King, 1}, {Bishop, 2}, {Knight, 2}, {Rook, 2}}

	for _, c := range []Color{White, Black} {
		back, front := 0, 1
		if c == b.playerColor {
			back, front = 7, 6
		}
		for x := 0; x < 8; x++ {
			b.Pawn(c, x+1).SetPosition(x, front)
			slot := backRank[x]
			b.byAction(Action{Color: c, Kind: slot.kind, Number: slot.n}).SetPosition(x, back)
		}
	}
	b.turn = Black
	b.moveNumber = 0
	b.lastMoved = nil
	b.kingStates = [2]KingState{KingSafe, KingSafe}
}

// clear lifts every piece and zeroes its history.
func (b *Board) clear() {
	b.squares = [NumSquares]*Piece{}
	for _, p := range b.pieces {
		p.kind = p.identity
		p.position = 0
		p.moveCount = 0
		p.spacesMoved = 0
		p.totalSpacesMoved = 0
		p.legalMoves = 0
		p.threatLines = nil
		p.enPassant = false
	}
	b.attacks = [2]Bitboard{}
}

func (b *Board) place(p *Piece, sq Square) {
	if other := b.squares[sq]; other != nil && other != p {
		panic(fmt.Sprintf("square (%d, %d) already holds %s", sq.X(), sq.Y(), other))
	}
	b.lift(p)
	p.position = sq.Bitboard()
	b.squares[sq] = p
}

func (b *Board) lift(p *Piece) {
	if sq, ok := p.Square(); ok {
		b.squares[sq] = nil
	}
	p.position = 0
}

func (b *Board) occupied() Bitboard {
	var occ Bitboard
	for _, p := range b.pieces {
		occ |= p.position
	}
	return occ
}

// NextTurn hands the move to the other side, recomputes every legal move and
// the king states, and calls the opponent hook when the opponent is to move
// in a running game.
func (b *Board) NextTurn() {
	b.turn = b.turn.Other()
	if b.turn == White {
		b.moveNumber++
	}
	b.refresh()
	b.wakeOpponent()
}

func (b *Board) wakeOpponent() {
	if b.state == StatePlaying && b.turn == b.opponentColor && b.opponent != nil {
		b.opponent.OpponentTurn(b)
	}
}

// refresh recomputes the position for the side to move without changing turn.
func (b *Board) refresh() {
	for _, p := range b.pieces {
		p.threatLines = p.threatLines[:0]
	}
	b.scanThreats()
	for _, p := range b.pieces {
		p.legalMoves = b.findLegalMoves(p)
	}
	b.CheckKingVsKing()
	b.updateKingStates()
}

func (b *Board) updateKingStates() {
	for _, c := range []Color{White, Black} {
		king := b.King(c)
		checked := false
		if sq, ok := king.Square(); ok {
			checked = b.attacks[c.Other()].Has(sq)
		}
		state := KingSafe
		if checked {
			state = KingChecked
		}
		if c == b.turn && !b.hasMoves(c) {
			state = KingStalemated
			if checked {
				state = KingCheckmated
			}
		}
		b.kingStates[c] = state
	}

	if b.state != StatePlaying {
		return
	}
	switch b.kingStates[b.turn] {
	case KingCheckmated:
		if b.turn == b.playerColor {
			b.finish(StateNanWins)
		} else {
			b.finish(StatePlayerWins)
		}
	case KingStalemated:
		b.finish(StateDraw)
	}
}

func (b *Board) hasMoves(c Color) bool {
	for _, p := range b.pieces {
		if p.color == c && p.legalMoves != 0 {
			return true
		}
	}
	return false
}

func (b *Board) finish(state GameState) {
	wasPlaying := b.state == StatePlaying
	b.state = state
	if wasPlaying && b.timekeeper != nil {
		b.timekeeper.PauseClocks()
	}
	b.logger.Info().
		Str("state", string(state)).
		Int("move", b.moveNumber).
		Msg("game over")
}

// PauseGame stops play and both clocks. No-op unless Playing.
func (b *Board) PauseGame() {
	if b.state != StatePlaying {
		return
	}
	b.state = StatePaused
	if b.timekeeper != nil {
		b.timekeeper.PauseClocks()
	}
}

// ResumeGame restarts play and the clock of the side to move. No-op unless
// Paused.
func (b *Board) ResumeGame() {
	if b.state != StatePaused {
		return
	}
	b.state = StatePlaying
	if b.timekeeper != nil {
		b.timekeeper.ResumeClocks(b.turn)
	}
	b.wakeOpponent()
}

// EndGame declares a draw unless the game is already decided, paused, or was
// never started.
func (b *Board) EndGame() {
	switch b.state {
	case StatePlayerWins, StateNanWins, StatePaused, StateNone:
		return
	}
	b.finish(StateDraw)
}

// Forfeit ends a running game as a loss for side, e.g. on a flag fall.
func (b *Board) Forfeit(side Color) {
	if b.state != StatePlaying {
		return
	}
	if side == b.playerColor {
		b.finish(StateNanWins)
	} else {
		b.finish(StatePlayerWins)
	}
}

// PerformAction passes code to every piece; the addressed one moves if the
// move is legal.
func (b *Board) PerformAction(code ActionCode) bool {
	for _, p := range b.pieces {
		if p.PerformAction(code) {
			return true
		}
	}
	return false
}

// forward is the row step of c's pawns: the human's advance toward row 0.
func (b *Board) forward(c Color) int {
	if c == b.playerColor {
		return -1
	}
	return 1
}

// promotionRow is the far row for c's pawns.
func (b *Board) promotionRow(c Color) int {
	if c == b.playerColor {
		return 0
	}
	return 7
}

// apply performs an already validated move, then hands over the turn.
func (b *Board) apply(p *Piece, dest Square) {
	from, _ := p.Square()
	target := b.squares[dest]
	to := dest

	switch {
	case p.kind == King && target != nil && target.color == p.color:
		// castling: the king's move targets its own rook
		dir := sign(dest.X() - from.X())
		to = NewSquare(from.X()+2*dir, from.Y())
		rookTo := NewSquare(from.X()+dir, from.Y())
		b.lift(target)
		b.lift(p)
		b.place(p, to)
		b.place(target, rookTo)
		target.moveCount++
		target.spacesMoved = chebyshev(dest, rookTo)
		target.totalSpacesMoved += target.spacesMoved
	default:
		if p.kind == Pawn {
			p.enPassant = false
			if target == nil && dest.X() != from.X() {
				target = b.squares[NewSquare(dest.X(), from.Y())]
				p.enPassant = true
			}
		}
		if target != nil {
			b.capture(target)
		}
		b.place(p, dest)
		if p.kind == Pawn && dest.Y() == b.promotionRow(p.color) {
			p.kind = Queen
		}
	}

	p.moveCount++
	p.spacesMoved = chebyshev(from, to)
	p.totalSpacesMoved += p.spacesMoved
	b.lastMoved = p
	b.logger.Debug().
		Str("piece", p.String()).
		Int("from", int(from)).
		Int("to", int(to)).
		Int("move", b.moveNumber).
		Msg("piece moved")
	b.pieceMoved(p)
}

func (b *Board) capture(victim *Piece) {
	b.lift(victim)
	victim.legalMoves = 0
	for _, p := range b.pieces {
		p.removeThreatLines(victim)
	}
}

func (b *Board) pieceMoved(p *Piece) {
	if b.timekeeper != nil {
		b.timekeeper.SwitchTurn(p.color, b.moveNumber)
	}
	b.NextTurn()
}
