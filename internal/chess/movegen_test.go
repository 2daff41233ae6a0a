package chess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPawnBlocked(t *testing.T) {
	b := setup(t, White, White, func(b *Board) {
		b.King(White).SetPosition(4, 7)
		b.King(Black).SetPosition(0, 0)
		b.Pawn(White, 1).SetPosition(2, 6)
		b.Knight(Black, 1).SetPosition(2, 5)
		b.Pawn(White, 2).SetPosition(5, 6)
		b.Knight(Black, 2).SetPosition(5, 4)
	})

	assertMoves(t, b.Pawn(White, 1), nil)
	assertMoves(t, b.Pawn(White, 2), squares([2]int{5, 5}))
}

func TestPawnNeverCapturesKing(t *testing.T) {
	b := setup(t, White, White, func(b *Board) {
		b.King(White).SetPosition(7, 7)
		b.King(Black).SetPosition(3, 5)
		b.Pawn(White, 1).SetPosition(4, 6)
		b.Pawn(White, 2).SetPosition(0, 6)
		b.Bishop(Black, 1).SetPosition(1, 5)
	})

	// the black king is in the pawn's capture square and is left alone
	assertMoves(t, b.Pawn(White, 1), squares([2]int{4, 5}, [2]int{4, 4}))
	assertMoves(t, b.Pawn(White, 2), squares([2]int{0, 5}, [2]int{0, 4}, [2]int{1, 5}))
}

func TestSlidersStopAtFirstPiece(t *testing.T) {
	b := setup(t, White, White, func(b *Board) {
		b.King(White).SetPosition(7, 7)
		b.King(Black).SetPosition(7, 0)
		b.Rook(White, 1).SetPosition(0, 4)
		b.Pawn(White, 1).SetPosition(0, 6)
		b.Knight(Black, 1).SetPosition(0, 2)
		b.Pawn(Black, 3).SetPosition(3, 4)
	})

	assertMoves(t, b.Rook(White, 1), squares(
		[2]int{0, 5},
		[2]int{0, 3}, [2]int{0, 2},
		[2]int{1, 4}, [2]int{2, 4}, [2]int{3, 4},
	))
}

func TestPinnedPieceMovesAlongLine(t *testing.T) {
	b := setup(t, White, White, func(b *Board) {
		b.King(White).SetPosition(4, 7)
		b.Rook(White, 1).SetPosition(4, 5)
		b.Bishop(White, 1).SetPosition(5, 6)
		b.Rook(Black, 1).SetPosition(4, 0)
		b.Bishop(Black, 1).SetPosition(7, 4)
		b.King(Black).SetPosition(0, 0)
	})

	king := b.King(White)
	require.Equal(t, 2, king.NumThreatLines())
	assert.Equal(t, PinResult(0), b.CheckKing(b.Rook(White, 1)))
	assert.Equal(t, PinResult(1), b.CheckKing(b.Bishop(White, 1)))
	assert.Equal(t, NoThreatLine, b.CheckKing(b.Queen(White)))

	assertMoves(t, b.Rook(White, 1), squares(
		[2]int{4, 0}, [2]int{4, 1}, [2]int{4, 2}, [2]int{4, 3}, [2]int{4, 4},
		[2]int{4, 6},
	))
	assertMoves(t, b.Bishop(White, 1), squares([2]int{6, 5}, [2]int{7, 4}))
	assert.Equal(t, KingSafe, b.KingState(White))

	line := king.ThreatLine(0)
	assert.Equal(t, b.Rook(Black, 1), line.Attacker)
	assert.False(t, line.Line.Has(NewSquare(4, 7)), "king square is excluded")
	assert.True(t, line.Line.Has(NewSquare(4, 0)), "attacker square is included")
}

func TestCheckEvasion(t *testing.T) {
	b := setup(t, White, White, func(b *Board) {
		b.King(White).SetPosition(4, 7)
		b.Knight(White, 1).SetPosition(2, 3)
		b.Bishop(White, 1).SetPosition(0, 7)
		b.Rook(Black, 1).SetPosition(4, 0)
		b.King(Black).SetPosition(0, 0)
	})

	assert.Equal(t, KingChecked, b.KingState(White))
	assert.Equal(t, NoLegalMoves, b.CheckKing(b.Knight(White, 1)))

	// block on the checking file, nothing else
	assertMoves(t, b.Knight(White, 1), squares([2]int{4, 4}, [2]int{4, 2}))
	assertMoves(t, b.Bishop(White, 1), squares([2]int{4, 3}))
	// the king may not step back along the file the rook x-rays
	assertMoves(t, b.King(White), squares([2]int{3, 7}, [2]int{5, 7}, [2]int{3, 6}, [2]int{5, 6}))
}

func TestCaptureCheckingKnight(t *testing.T) {
	b := setup(t, White, White, func(b *Board) {
		b.King(White).SetPosition(4, 7)
		b.Knight(Black, 1).SetPosition(3, 5)
		b.Bishop(White, 1).SetPosition(1, 7)
		b.Rook(White, 1).SetPosition(0, 0)
		b.King(Black).SetPosition(7, 0)
	})

	assert.Equal(t, KingChecked, b.KingState(White))
	assertMoves(t, b.Bishop(White, 1), squares([2]int{3, 5}))
	assertMoves(t, b.Rook(White, 1), nil)
}

func TestDoubleCheckOnlyKingMoves(t *testing.T) {
	b := setup(t, White, White, func(b *Board) {
		b.King(White).SetPosition(4, 7)
		b.Rook(Black, 1).SetPosition(4, 0)
		b.Knight(Black, 1).SetPosition(5, 5)
		b.Queen(White).SetPosition(0, 4)
		b.King(Black).SetPosition(0, 0)
	})

	require.Equal(t, 2, b.King(White).NumThreatLines())
	assertMoves(t, b.Queen(White), nil)
	assert.NotZero(t, b.King(White).LegalMoves())
}

func TestCastling(t *testing.T) {
	place := func(b *Board) {
		b.King(White).SetPosition(4, 7)
		b.Rook(White, 1).SetPosition(0, 7)
		b.Rook(White, 2).SetPosition(7, 7)
		b.King(Black).SetPosition(4, 0)
	}

	t.Run("both sides", func(t *testing.T) {
		b := setup(t, White, White, place)
		king := b.King(White)
		assert.True(t, king.LegalMoves().Has(NewSquare(0, 7)))
		assert.True(t, king.LegalMoves().Has(NewSquare(7, 7)))

		require.True(t, king.Move(7, 7))
		sq, _ := king.Square()
		assert.Equal(t, NewSquare(6, 7), sq)
		sq, _ = b.Rook(White, 2).Square()
		assert.Equal(t, NewSquare(5, 7), sq)
		assert.Equal(t, 2, king.SpacesMoved())
		assert.Equal(t, 1, b.Rook(White, 2).MoveCount())
	})

	t.Run("queen side", func(t *testing.T) {
		b := setup(t, White, White, place)
		require.True(t, b.King(White).Move(0, 7))
		sq, _ := b.King(White).Square()
		assert.Equal(t, NewSquare(2, 7), sq)
		sq, _ = b.Rook(White, 1).Square()
		assert.Equal(t, NewSquare(3, 7), sq)
	})

	t.Run("attacked square", func(t *testing.T) {
		b := setup(t, White, White, func(b *Board) {
			place(b)
			b.Rook(Black, 1).SetPosition(5, 0)
		})
		king := b.King(White)
		assert.True(t, king.LegalMoves().Has(NewSquare(0, 7)))
		assert.False(t, king.LegalMoves().Has(NewSquare(7, 7)))
	})

	t.Run("blocked", func(t *testing.T) {
		b := setup(t, White, White, func(b *Board) {
			place(b)
			b.Knight(White, 1).SetPosition(1, 7)
		})
		assert.False(t, b.King(White).LegalMoves().Has(NewSquare(0, 7)))
		assert.True(t, b.King(White).LegalMoves().Has(NewSquare(7, 7)))
	})

	t.Run("in check", func(t *testing.T) {
		b := setup(t, White, White, func(b *Board) {
			place(b)
			b.Rook(Black, 1).SetPosition(4, 2)
		})
		assert.False(t, b.King(White).LegalMoves().Intersects(squareSet(int(NewSquare(0, 7)), int(NewSquare(7, 7)))))
	})

	t.Run("rook moved", func(t *testing.T) {
		b := setup(t, White, White, place)
		b.Rook(White, 2).moveCount = 1
		b.refresh()
		assert.False(t, b.King(White).LegalMoves().Has(NewSquare(7, 7)))
	})
}

func TestEnPassant(t *testing.T) {
	b := setup(t, White, Black, func(b *Board) {
		b.King(White).SetPosition(4, 7)
		b.King(Black).SetPosition(4, 0)
		b.Pawn(White, 5).SetPosition(4, 3)
		b.Pawn(Black, 4).SetPosition(3, 1)
	})
	b.Pawn(White, 5).moveCount = 2

	require.True(t, b.Pawn(Black, 4).Move(3, 3))
	white := b.Pawn(White, 5)
	assertMoves(t, white, squares([2]int{3, 2}, [2]int{4, 2}))

	require.True(t, white.Move(3, 2))
	assert.True(t, b.Pawn(Black, 4).Captured())
	assert.True(t, white.EnPassant())
	assert.Nil(t, b.PieceAt(3, 3))
}

func TestEnPassantOnlyImmediately(t *testing.T) {
	b := setup(t, White, Black, func(b *Board) {
		b.King(White).SetPosition(7, 7)
		b.King(Black).SetPosition(7, 0)
		b.Pawn(White, 5).SetPosition(4, 3)
		b.Pawn(Black, 4).SetPosition(3, 1)
	})
	b.Pawn(White, 5).moveCount = 2

	require.True(t, b.Pawn(Black, 4).Move(3, 3))
	require.True(t, b.King(White).Move(6, 7))
	require.True(t, b.King(Black).Move(6, 0))
	assertMoves(t, b.Pawn(White, 5), squares([2]int{4, 2}))
}

func TestPromotion(t *testing.T) {
	b := setup(t, White, White, func(b *Board) {
		b.King(White).SetPosition(4, 7)
		b.King(Black).SetPosition(7, 3)
		b.Pawn(White, 1).SetPosition(0, 1)
	})

	p := b.Pawn(White, 1)
	require.True(t, p.Move(0, 0))
	assert.Equal(t, Queen, p.Kind())
	assert.Equal(t, Pawn, p.Identity())
	assert.True(t, p.Promoted())
	assert.Equal(t, p, b.Pawn(White, 1))
	assert.True(t, p.LegalMoves().Has(NewSquare(7, 7)), "moves as a queen")
}

func TestKingsNeverTouch(t *testing.T) {
	b := setup(t, White, White, func(b *Board) {
		b.King(White).SetPosition(4, 4)
		b.King(Black).SetPosition(4, 2)
	})

	white, black := b.King(White).LegalMoves(), b.King(Black).LegalMoves()
	assert.False(t, white.Intersects(black))
	assert.False(t, white.Has(NewSquare(4, 3)))
	assert.False(t, white.Has(NewSquare(3, 3)))
	assert.True(t, white.Has(NewSquare(4, 5)))
}

func TestLegalMovesNeverHitOwnPieces(t *testing.T) {
	b := NewBoard()
	b.NewGame(White)
	b.ResumeGame()
	moves := [][4]int{
		{4, 6, 4, 4}, {4, 1, 4, 3},
		{6, 7, 5, 5}, {1, 0, 2, 2},
		{5, 7, 2, 4}, {5, 0, 2, 3},
	}
	for _, m := range moves {
		p := b.PieceAt(m[0], m[1])
		require.NotNil(t, p)
		require.True(t, p.Move(m[2], m[3]), "%s to (%d, %d)", p, m[2], m[3])

		for _, piece := range b.AllPieces() {
			for _, sq := range piece.LegalMovesAsSquares() {
				occ := b.PieceAt(sq.X(), sq.Y())
				if occ == nil {
					continue
				}
				if piece.Kind() == King && occ.Kind() == Rook && occ.Color() == piece.Color() {
					continue // castling
				}
				assert.NotEqual(t, King, occ.Kind(), "%s may capture a king", piece)
				assert.NotEqual(t, piece.Color(), occ.Color(), "%s may take its own man", piece)
			}
		}
	}
	// after 1.e4 e5 2.Nf3 Nc6 3.Bc4 Bc5 white may castle king side only
	assert.True(t, b.King(White).LegalMoves().Has(NewSquare(7, 7)))
	assert.False(t, b.King(White).LegalMoves().Has(NewSquare(0, 7)))
}
