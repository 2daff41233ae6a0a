package chess

type step struct{ dx, dy int }

var (
	straight    = []step{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonal    = []step{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	allAround   = []step{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	knightJumps = []step{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
)

// rays returns the slide directions of k, or nil for non-sliding kinds.
func rays(k Kind) []step {
	switch k {
	case Rook:
		return straight
	case Bishop:
		return diagonal
	case Queen:
		return allAround
	}
	return nil
}

// scanThreats builds each side's attack map and records threat lines on both
// kings. It runs before legal moves are generated so that king moves and pin
// resolution see the whole position.
func (b *Board) scanThreats() {
	b.attacks = [2]Bitboard{}
	for _, p := range b.pieces {
		if p.Captured() {
			continue
		}
		b.attacks[p.color] |= b.attackSet(p)
		b.recordThreat(p)
	}
}

// attackSet is every square p attacks, own pieces included. Slides pass
// through the enemy king so the king cannot retreat along the line.
func (b *Board) attackSet(p *Piece) Bitboard {
	sq, _ := p.Square()
	x, y := sq.X(), sq.Y()
	var set Bitboard

	switch p.kind {
	case Pawn:
		fy := y + b.forward(p.color)
		for _, dx := range []int{-1, 1} {
			if InBounds(x+dx, fy) {
				set = set.With(NewSquare(x+dx, fy))
			}
		}
	case Knight:
		set = b.jumps(x, y, knightJumps)
	case King:
		set = b.jumps(x, y, allAround)
	default:
		enemyKing := b.King(p.color.Other())
		for _, d := range rays(p.kind) {
			for cx, cy := x+d.dx, y+d.dy; InBounds(cx, cy); cx, cy = cx+d.dx, cy+d.dy {
				s := NewSquare(cx, cy)
				set = set.With(s)
				if occ := b.squares[s]; occ != nil && occ != enemyKing {
					break
				}
			}
		}
	}
	return set
}

func (b *Board) jumps(x, y int, steps []step) Bitboard {
	var set Bitboard
	for _, d := range steps {
		if InBounds(x+d.dx, y+d.dy) {
			set = set.With(NewSquare(x+d.dx, y+d.dy))
		}
	}
	return set
}

// recordThreat adds a threat line to the enemy king when p attacks it, or
// when a sliding p would attack it but for a single piece in between.
func (b *Board) recordThreat(p *Piece) {
	enemyKing := b.King(p.color.Other())
	kingSq, ok := enemyKing.Square()
	if !ok {
		return
	}
	sq, _ := p.Square()

	switch p.kind {
	case Pawn, Knight:
		if b.attackSet(p).Has(kingSq) {
			enemyKing.addThreatLine(ThreatLine{Attacker: p, Line: p.position})
		}
		return
	case King:
		return
	}

	for _, d := range rays(p.kind) {
		line := p.position
		blockers := 0
		for cx, cy := sq.X()+d.dx, sq.Y()+d.dy; InBounds(cx, cy); cx, cy = cx+d.dx, cy+d.dy {
			s := NewSquare(cx, cy)
			occ := b.squares[s]
			if occ == enemyKing {
				enemyKing.addThreatLine(ThreatLine{Attacker: p, Line: line})
				break
			}
			if occ != nil {
				blockers++
				if blockers > 1 {
					break
				}
			}
			line = line.With(s)
		}
	}
}

// findLegalMoves derives p's legal destinations for the current position.
func (b *Board) findLegalMoves(p *Piece) Bitboard {
	if p.Captured() {
		return 0
	}
	var moves Bitboard
	switch p.kind {
	case Pawn:
		moves = b.pawnMoves(p)
	case Knight:
		sq, _ := p.Square()
		moves = b.captureOrEmpty(p, b.jumps(sq.X(), sq.Y(), knightJumps))
	case King:
		return b.kingMoves(p)
	default:
		moves = b.slideMoves(p)
	}

	king := b.King(p.color)
	if len(king.threatLines) == 0 {
		return moves
	}
	switch pin := b.CheckKing(p); pin {
	case NoThreatLine:
		return moves
	case NoLegalMoves:
		return moves & b.evasionMask(p)
	default:
		return moves & king.threatLines[pin].Line
	}
}

// captureOrEmpty keeps destinations that are empty or hold a capturable
// enemy. The enemy king is never capturable.
func (b *Board) captureOrEmpty(p *Piece, dests Bitboard) Bitboard {
	var out Bitboard
	for _, s := range dests.Squares() {
		if b.enterable(p, s) {
			out = out.With(s)
		}
	}
	return out
}

func (b *Board) enterable(p *Piece, s Square) bool {
	occ := b.squares[s]
	return occ == nil || (occ.color != p.color && occ.kind != King)
}

func (b *Board) slideMoves(p *Piece) Bitboard {
	sq, _ := p.Square()
	var moves Bitboard
	for _, d := range rays(p.kind) {
		for cx, cy := sq.X()+d.dx, sq.Y()+d.dy; InBounds(cx, cy); cx, cy = cx+d.dx, cy+d.dy {
			s := NewSquare(cx, cy)
			if b.enterable(p, s) {
				moves = moves.With(s)
			}
			if b.squares[s] != nil {
				break
			}
		}
	}
	return moves
}

func (b *Board) pawnMoves(p *Piece) Bitboard {
	sq, _ := p.Square()
	x, y := sq.X(), sq.Y()
	dir := b.forward(p.color)
	var moves Bitboard

	if InBounds(x, y+dir) && b.squares[NewSquare(x, y+dir)] == nil {
		moves = moves.With(NewSquare(x, y+dir))
		if p.moveCount == 0 && InBounds(x, y+2*dir) && b.squares[NewSquare(x, y+2*dir)] == nil {
			moves = moves.With(NewSquare(x, y+2*dir))
		}
	}
	for _, dx := range []int{-1, 1} {
		if !InBounds(x+dx, y+dir) {
			continue
		}
		occ := b.squares[NewSquare(x+dx, y+dir)]
		if occ != nil && occ.color != p.color && occ.kind != King {
			moves = moves.With(NewSquare(x+dx, y+dir))
		}
	}
	if dest, _, ok := b.enPassantTarget(p); ok {
		moves = moves.With(dest)
	}
	return moves
}

// enPassantTarget reports the en-passant destination open to pawn p and the
// pawn it would capture.
func (b *Board) enPassantTarget(p *Piece) (Square, *Piece, bool) {
	if p.kind != Pawn {
		return 0, nil, false
	}
	sq, _ := p.Square()
	x, y := sq.X(), sq.Y()
	dir := b.forward(p.color)
	for _, dx := range []int{-1, 1} {
		if !InBounds(x+dx, y+dir) {
			continue
		}
		victim := b.squares[NewSquare(x+dx, y)]
		if victim == nil || victim.color == p.color || !b.passable(victim) {
			continue
		}
		dest := NewSquare(x+dx, y+dir)
		if b.squares[dest] == nil {
			return dest, victim, true
		}
	}
	return 0, nil, false
}

// passable reports whether v can be taken en passant: a pawn that has just
// made its only move, a double step.
func (b *Board) passable(v *Piece) bool {
	return v.kind == Pawn && v.moveCount == 1 && v.totalSpacesMoved == 2 && b.lastMoved == v
}

func (b *Board) kingMoves(p *Piece) Bitboard {
	sq, _ := p.Square()
	enemyAttacks := b.attacks[p.color.Other()]
	var moves Bitboard
	for _, s := range b.jumps(sq.X(), sq.Y(), allAround).Squares() {
		if b.enterable(p, s) && !enemyAttacks.Has(s) {
			moves = moves.With(s)
		}
	}
	return moves | b.castlingMoves(p)
}

// castlingMoves returns the squares of the rooks the king may castle with.
// The king must be unmoved and not in check, the rook unmoved on the same
// row, and every square between them empty and unattacked.
func (b *Board) castlingMoves(king *Piece) Bitboard {
	sq, _ := king.Square()
	enemyAttacks := b.attacks[king.color.Other()]
	if king.moveCount != 0 || enemyAttacks.Has(sq) {
		return 0
	}
	var moves Bitboard
	for n := 1; n <= 2; n++ {
		rook := b.Rook(king.color, n)
		rsq, ok := rook.Square()
		if !ok || rook.moveCount != 0 || rsq.Y() != sq.Y() {
			continue
		}
		dir := sign(rsq.X() - sq.X())
		free := true
		for x := sq.X() + dir; x != rsq.X(); x += dir {
			s := NewSquare(x, sq.Y())
			if b.squares[s] != nil || enemyAttacks.Has(s) {
				free = false
				break
			}
		}
		if free {
			moves = moves.With(rsq)
		}
	}
	return moves
}

// CheckKing resolves p against the threat lines on its own king. An
// unblocked line, or two lines that only p blocks, give NoLegalMoves. A single
// line that only p blocks gives that line's index. Anything else is
// NoThreatLine.
func (b *Board) CheckKing(p *Piece) PinResult {
	king := b.King(p.color)
	occ := b.occupied()
	pinned := NoThreatLine
	for i, t := range king.threatLines {
		blockers := t.blockers(occ)
		switch {
		case blockers == 0:
			return NoLegalMoves
		case blockers == p.position:
			if pinned != NoThreatLine {
				return NoLegalMoves
			}
			pinned = PinResult(i)
		}
	}
	return pinned
}

// evasionMask is where p may go when its king is in check: onto the checking
// line when exactly one line is unblocked and p pins nothing.
func (b *Board) evasionMask(p *Piece) Bitboard {
	king := b.King(p.color)
	occ := b.occupied()
	var open *ThreatLine
	for i, t := range king.threatLines {
		blockers := t.blockers(occ)
		if blockers == p.position {
			return 0
		}
		if blockers == 0 {
			if open != nil {
				return 0
			}
			open = &king.threatLines[i]
		}
	}
	if open == nil {
		return 0
	}
	mask := open.Line
	if dest, victim, ok := b.enPassantTarget(p); ok && victim == open.Attacker {
		mask = mask.With(dest)
	}
	return mask
}

// CheckKingVsKing removes the squares both kings could move to from each.
func (b *Board) CheckKingVsKing() {
	white, black := b.King(White), b.King(Black)
	common := white.legalMoves & black.legalMoves
	white.legalMoves ^= common
	black.legalMoves ^= common
}
