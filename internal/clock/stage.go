package clock

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/nanchess/nanchess/internal/chess"
)

const (
	// EndOfGame marks a stage that runs until the game ends.
	EndOfGame = math.MaxInt

	// DefaultTimeLimit is each side's allowance when a stage is built
	// without one.
	DefaultTimeLimit = 2 * time.Hour
)

var (
	ErrNegativeTime  = errors.New("negative time")
	ErrInvalidStage  = errors.New("invalid clock stage")
	ErrUnknownPreset = errors.New("unknown clock preset")
)

// Stage is a span of moves with its own allowance for each side.
type Stage struct {
	MoveStart          int
	MoveEnd            int
	Black              *Stopwatch
	White              *Stopwatch
	Delay              time.Duration
	Increment          time.Duration
	IncrementOnMoveOne bool
}

// NewStage validates the move span and timings and builds both stopwatches
// with limit on them.
func NewStage(start, end int, limit, delay, increment time.Duration, incrementOnMoveOne bool, opts ...StopwatchOption) (*Stage, error) {
	if start < 0 || end < 0 {
		return nil, fmt.Errorf("%w: negative move number", ErrInvalidStage)
	}
	if end <= start {
		return nil, fmt.Errorf("%w: ends at move %d before it starts at %d", ErrInvalidStage, end, start)
	}
	if limit < 0 || delay < 0 || increment < 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStage, ErrNegativeTime)
	}

	black, err := NewStopwatch(chess.Black, limit, opts...)
	if err != nil {
		return nil, err
	}
	white, err := NewStopwatch(chess.White, limit, opts...)
	if err != nil {
		return nil, err
	}
	return &Stage{
		MoveStart:          start,
		MoveEnd:            end,
		Black:              black,
		White:              white,
		Delay:              delay,
		Increment:          increment,
		IncrementOnMoveOne: incrementOnMoveOne,
	}, nil
}

// Clock returns the stopwatch of side c.
func (s *Stage) Clock(c chess.Color) *Stopwatch {
	if c == chess.White {
		return s.White
	}
	return s.Black
}

func (s *Stage) pause() {
	s.Black.Pause()
	s.White.Pause()
}
