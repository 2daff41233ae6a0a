package game

import "errors"

var (
	ErrNotPlaying   = errors.New("game is not in progress")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrNoPiece      = errors.New("no piece of yours on that square")
	ErrNotYourPiece = errors.New("piece belongs to the other side")
	ErrIllegalMove  = errors.New("illegal move")
	ErrClosed       = errors.New("session closed")
)
