package chess

import "math/bits"

// Square indexes the board row-major: X is the file, Y the row. Row 0 is
// the far side from the human player.
type Square uint8

const NumSquares = 64

// InBounds reports whether x, y address a square.
func InBounds(x, y int) bool {
	return x >= 0 && x < 8 && y >= 0 && y < 8
}

// NewSquare panics if x, y are off the board.
func NewSquare(x, y int) Square {
	if !InBounds(x, y) {
		panic(outOfRange(x, y))
	}
	return Square(x + y*8)
}

func (s Square) X() int { return int(s) % 8 }
func (s Square) Y() int { return int(s) / 8 }

// Bitboard returns the single-bit set for s.
func (s Square) Bitboard() Bitboard { return 1 << s }

// Bitboard is a set of squares, one bit per square.
type Bitboard uint64

func (b Bitboard) Has(s Square) bool          { return b&(1<<s) != 0 }
func (b Bitboard) With(s Square) Bitboard     { return b | 1<<s }
func (b Bitboard) Without(s Square) Bitboard  { return b &^ (1 << s) }
func (b Bitboard) Intersects(o Bitboard) bool { return b&o != 0 }
func (b Bitboard) Empty() bool                { return b == 0 }
func (b Bitboard) Count() int                 { return bits.OnesCount64(uint64(b)) }

// First returns the lowest square in the set.
func (b Bitboard) First() (Square, bool) {
	if b == 0 {
		return 0, false
	}
	return Square(bits.TrailingZeros64(uint64(b))), true
}

// Squares lists the set in ascending order.
func (b Bitboard) Squares() []Square {
	out := make([]Square, 0, b.Count())
	for b != 0 {
		sq := Square(bits.TrailingZeros64(uint64(b)))
		out = append(out, sq)
		b &= b - 1
	}
	return out
}

func chebyshev(a, b Square) int {
	dx := abs(a.X() - b.X())
	dy := abs(a.Y() - b.Y())
	if dx > dy {
		return dx
	}
	return dy
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
