package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nanchess/nanchess/internal/chess"
)

// Clock is a staged game clock. It implements chess.Timekeeper.
type Clock struct {
	mu          sync.Mutex
	preset      Preset
	stages      []*Stage
	current     int
	delay       *time.Timer
	delayGen    uint64
	interval    time.Duration
	listeners   []Listener
	onExhausted func()
	logger      zerolog.Logger
}

var _ chess.Timekeeper = (*Clock)(nil)

// Option configures a Clock
type Option func(*Clock)

// WithLogger sets a custom logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Clock) {
		c.logger = logger
	}
}

// WithTickInterval sets the tick interval of every stopwatch the clock
// builds. Zero means ticks are driven by hand.
func WithTickInterval(d time.Duration) Option {
	return func(c *Clock) {
		c.interval = d
	}
}

// WithListener attaches l to every stopwatch the clock builds.
func WithListener(l Listener) Option {
	return func(c *Clock) {
		c.listeners = append(c.listeners, l)
	}
}

// WithExhaustedHook sets the function called when the last stage's move
// span is used up. It runs synchronously inside SwitchTurn, after the
// clock's lock is released.
func WithExhaustedHook(f func()) Option {
	return func(c *Clock) {
		c.onExhausted = f
	}
}

// New returns a clock with no stages, i.e. untimed play.
func New(opts ...Option) *Clock {
	c := &Clock{
		preset:   PresetNone,
		interval: DefaultTickInterval,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Clock) stopwatchOptions() []StopwatchOption {
	return []StopwatchOption{WithInterval(c.interval), WithListeners(c.listeners...)}
}

// NewStage builds a stage whose stopwatches use the clock's interval and
// listeners.
func (c *Clock) NewStage(start, end int, limit, delay, increment time.Duration, incrementOnMoveOne bool) (*Stage, error) {
	return NewStage(start, end, limit, delay, increment, incrementOnMoveOne, c.stopwatchOptions()...)
}

// AddStage appends s. The first stage starts at move 0 and each later one
// starts right after its predecessor ends.
func (c *Clock) AddStage(s *Stage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addStage(s)
}

func (c *Clock) addStage(s *Stage) error {
	if len(c.stages) == 0 {
		if s.MoveStart != 0 {
			return fmt.Errorf("%w: first stage starts at move %d", ErrInvalidStage, s.MoveStart)
		}
	} else {
		prev := c.stages[len(c.stages)-1]
		if prev.MoveEnd == EndOfGame || s.MoveStart != prev.MoveEnd+1 {
			return fmt.Errorf("%w: stage starting at move %d does not follow move %d", ErrInvalidStage, s.MoveStart, prev.MoveEnd)
		}
	}
	c.stages = append(c.stages, s)
	return nil
}

// SetPreset replaces the stages with those of p.
func (c *Clock) SetPreset(p Preset) error {
	def, ok := presets[p]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPreset, p)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.disposeLocked()
	c.stages = nil
	c.current = 0
	c.preset = p
	for _, sd := range def.stages {
		st, err := NewStage(sd.start, sd.end, seconds(sd.limit), seconds(sd.delay), seconds(sd.increment), sd.moveOne, c.stopwatchOptions()...)
		if err != nil {
			return fmt.Errorf("preset %s: %w", p, err)
		}
		if err := c.addStage(st); err != nil {
			return fmt.Errorf("preset %s: %w", p, err)
		}
	}
	c.logger.Debug().Str("preset", string(p)).Int("stages", len(c.stages)).Msg("clock preset set")
	return nil
}

func (c *Clock) Preset() Preset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preset
}

// Timed reports whether the clock has any stage.
func (c *Clock) Timed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.stages) > 0
}

func (c *Clock) Stages() []*Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Stage, len(c.stages))
	copy(out, c.stages)
	return out
}

// CurrentStage is the index of the stage in play. It only moves forward.
func (c *Clock) CurrentStage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Stopwatch returns side's stopwatch in the current stage, or nil when
// untimed.
func (c *Clock) Stopwatch(side chess.Color) *Stopwatch {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.stages) == 0 {
		return nil
	}
	return c.stages[c.current].Clock(side)
}

// SwitchTurn is called after mover completed move moveNumber. It stops the
// mover's stopwatch, moves to the next stage when the span is used up, adds
// the increment and starts the other side after the stage's delay.
func (c *Clock) SwitchTurn(mover chess.Color, moveNumber int) {
	c.mu.Lock()
	if len(c.stages) == 0 {
		c.mu.Unlock()
		return
	}
	c.cancelDelay()
	st := c.stages[c.current]
	st.Clock(mover).Pause()

	next := moveNumber
	if mover == chess.Black {
		next++
	}
	if next > st.MoveEnd {
		if c.current+1 >= len(c.stages) {
			hook := c.onExhausted
			c.mu.Unlock()
			c.logger.Info().Int("move", moveNumber).Msg("clock stages exhausted")
			if hook != nil {
				hook()
			}
			return
		}
		prev := st
		c.current++
		st = c.stages[c.current]
		st.Black.AddTime(prev.Black.Remaining())
		st.White.AddTime(prev.White.Remaining())
		c.logger.Debug().Int("stage", c.current).Int("move", next).Msg("clock stage advanced")
	}

	if moveNumber > 1 || st.IncrementOnMoveOne {
		st.Clock(mover).AddTime(st.Increment)
	}
	c.startDelay(st, mover.Other())
	c.mu.Unlock()
}

// startDelay must be called with c.mu held.
func (c *Clock) startDelay(st *Stage, side chess.Color) {
	watch := st.Clock(side)
	if st.Delay <= 0 {
		watch.Start()
		return
	}
	gen := c.delayGen
	c.delay = time.AfterFunc(st.Delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.delayGen != gen {
			return
		}
		c.delay = nil
		watch.Start()
	})
}

// cancelDelay must be called with c.mu held.
func (c *Clock) cancelDelay() {
	c.delayGen++
	if c.delay != nil {
		c.delay.Stop()
		c.delay = nil
	}
}

// PauseClocks stops both stopwatches and any pending delay.
func (c *Clock) PauseClocks() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.stages) == 0 {
		return
	}
	c.cancelDelay()
	c.stages[c.current].pause()
}

// ResumeClocks restarts the stopwatch of the side to move.
func (c *Clock) ResumeClocks(turn chess.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.stages) == 0 {
		return
	}
	c.cancelDelay()
	c.stages[c.current].Clock(turn).Start()
}

// Reset rebuilds the current preset so every stage has its full time.
func (c *Clock) Reset() error {
	return c.SetPreset(c.Preset())
}

// Stop halts every stopwatch goroutine and pending timer.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disposeLocked()
}

func (c *Clock) disposeLocked() {
	c.cancelDelay()
	for _, st := range c.stages {
		st.pause()
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
