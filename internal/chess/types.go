package chess

import "fmt"

// Color identifies a side.
type Color uint8

const (
	White Color = iota
	Black
)

// Other returns the opposing color.
func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	color, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = color
	return nil
}

// ParseColor accepts "white" or "black".
func ParseColor(s string) (Color, error) {
	switch s {
	case "white":
		return White, nil
	case "black":
		return Black, nil
	}
	return White, fmt.Errorf("unknown color %q", s)
}

// Kind is the piece tag. Values 1..6 are used on the wire.
type Kind uint8

const (
	NoKind Kind = iota
	Pawn
	Rook
	Knight
	Bishop
	Queen
	King
)

var kindNames = [...]string{"none", "pawn", "rook", "knight", "bishop", "queen", "king"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown piece kind %q", text)
}

// maxNumber is the highest piece number a side owns of the kind.
func (k Kind) maxNumber() int {
	switch k {
	case Pawn:
		return 8
	case Rook, Knight, Bishop:
		return 2
	case Queen, King:
		return 1
	}
	return 0
}

// GameState represents the lifecycle of a game
type GameState string

const (
	StateNone       GameState = "none"
	StatePlaying    GameState = "playing"
	StatePaused     GameState = "paused"
	StatePlayerWins GameState = "player_wins"
	StateNanWins    GameState = "nan_wins"
	StateDraw       GameState = "draw"
)

// Over reports whether the game has a result.
func (s GameState) Over() bool {
	return s == StatePlayerWins || s == StateNanWins || s == StateDraw
}

type KingState string

const (
	KingSafe       KingState = "safe"
	KingChecked    KingState = "checked"
	KingCheckmated KingState = "checkmated"
	KingStalemated KingState = "stalemated"
)

// PinResult is the outcome of CheckKing: NoLegalMoves, NoThreatLine, or the
// index of the single threat line the piece is pinned along.
type PinResult int

const (
	NoLegalMoves PinResult = -2
	NoThreatLine PinResult = -1
)

// Timekeeper is notified by the board when turns change or the game is
// paused. The staged clock implements it.
type Timekeeper interface {
	SwitchTurn(mover Color, moveNumber int)
	PauseClocks()
	ResumeClocks(turn Color)
}

// Opponent is told when it is the opponent's turn to move.
type Opponent interface {
	OpponentTurn(b *Board)
}
