package chess

import "fmt"

// ActionCode is the packed move an opponent agent submits.
//
//	bits 0-5   target square
//	bits 8-10  piece kind (1..6, the kind the piece started as)
//	bits 12-15 piece number
//	bit 16     side, 1 for White
//
// All other bits must be zero.
type ActionCode uint32

const (
	targetMask  = 0x3F
	kindShift   = 8
	kindMask    = 0x7
	numberShift = 12
	numberMask  = 0xF
	sideBit     = 1 << 16

	validBits = targetMask | kindMask<<kindShift | numberMask<<numberShift | sideBit
)

// Action is the decoded form of an ActionCode.
type Action struct {
	Color  Color  `json:"color"`
	Kind   Kind   `json:"kind"`
	Number int    `json:"number"`
	Target Square `json:"target"`
}

func (a Action) validate() error {
	if a.Kind < Pawn || a.Kind > King {
		return fmt.Errorf("%w: kind %d", ErrInvalidAction, a.Kind)
	}
	if a.Number < 1 || a.Number > a.Kind.maxNumber() {
		return fmt.Errorf("%w: %s number %d", ErrInvalidAction, a.Kind, a.Number)
	}
	if a.Target >= NumSquares {
		return fmt.Errorf("%w: square %d", ErrInvalidAction, a.Target)
	}
	return nil
}

// Encode packs the action.
func (a Action) Encode() (ActionCode, error) {
	if err := a.validate(); err != nil {
		return 0, err
	}
	code := ActionCode(a.Target) |
		ActionCode(a.Kind)<<kindShift |
		ActionCode(a.Number)<<numberShift
	if a.Color == White {
		code |= sideBit
	}
	return code, nil
}

// Decode unpacks and validates the code.
func (c ActionCode) Decode() (Action, error) {
	if c&^validBits != 0 {
		return Action{}, fmt.Errorf("%w: stray bits %#x", ErrInvalidAction, uint32(c&^validBits))
	}
	a := Action{
		Color:  Black,
		Kind:   Kind(c >> kindShift & kindMask),
		Number: int(c >> numberShift & numberMask),
		Target: Square(c & targetMask),
	}
	if c&sideBit != 0 {
		a.Color = White
	}
	if err := a.validate(); err != nil {
		return Action{}, err
	}
	return a, nil
}
