package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/nanchess/nanchess/internal/chess"
)

// DefaultTickInterval is how often a running stopwatch loses one second.
const DefaultTickInterval = time.Second

// Event is delivered to listeners on every stopwatch transition.
type Event struct {
	Side      chess.Color   `json:"side"`
	Remaining time.Duration `json:"remaining"`
}

// Listener receives stopwatch events. Callbacks run outside the stopwatch's
// lock and may come from the ticker goroutine.
type Listener interface {
	StopwatchStarted(Event)
	StopwatchTicked(Event)
	StopwatchPaused(Event)
	StopwatchStopped(Event)
}

// Stopwatch counts one side's time down in whole seconds. Reaching zero stops
// it for good until Reset.
type Stopwatch struct {
	mu        sync.Mutex
	side      chess.Color
	length    time.Duration
	remaining time.Duration
	running   bool
	expired   bool
	interval  time.Duration
	stop      chan struct{}
	listeners []Listener
}

// StopwatchOption configures a Stopwatch
type StopwatchOption func(*Stopwatch)

// WithInterval sets the tick interval. Zero disables the ticker goroutine so
// the owner drives Tick by hand.
func WithInterval(d time.Duration) StopwatchOption {
	return func(s *Stopwatch) {
		s.interval = d
	}
}

// WithListeners registers listeners at construction.
func WithListeners(ls ...Listener) StopwatchOption {
	return func(s *Stopwatch) {
		s.listeners = append(s.listeners, ls...)
	}
}

func NewStopwatch(side chess.Color, length time.Duration, opts ...StopwatchOption) (*Stopwatch, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: time length %s", ErrNegativeTime, length)
	}
	s := &Stopwatch{
		side:      side,
		length:    length,
		remaining: length,
		interval:  DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Stopwatch) AddListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Stopwatch) Side() chess.Color { return s.side }

func (s *Stopwatch) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

func (s *Stopwatch) Length() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.length
}

func (s *Stopwatch) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Expired reports whether the stopwatch ran out of time.
func (s *Stopwatch) Expired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expired
}

// Start resumes counting. It does nothing once expired or while running.
func (s *Stopwatch) Start() {
	s.mu.Lock()
	if s.expired || s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	if s.interval > 0 {
		go s.run(s.stop)
	}
	ev, ls := s.event()
	s.mu.Unlock()

	for _, l := range ls {
		l.StopwatchStarted(ev)
	}
}

// Pause stops counting and keeps the remaining time. Idempotent.
func (s *Stopwatch) Pause() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.halt()
	ev, ls := s.event()
	s.mu.Unlock()

	for _, l := range ls {
		l.StopwatchPaused(ev)
	}
}

// Tick takes one second off a running stopwatch.
func (s *Stopwatch) Tick() {
	s.mu.Lock()
	s.tickLocked()
}

// tickLocked releases s.mu before notifying.
func (s *Stopwatch) tickLocked() {
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.remaining -= time.Second
	expired := s.remaining <= 0
	if expired {
		s.remaining = 0
		s.expired = true
		s.halt()
	}
	ev, ls := s.event()
	s.mu.Unlock()

	for _, l := range ls {
		if expired {
			l.StopwatchStopped(ev)
		} else {
			l.StopwatchTicked(ev)
		}
	}
}

// Reset pauses the stopwatch and restores the full time length.
func (s *Stopwatch) Reset() {
	s.Pause()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remaining = s.length
	s.expired = false
}

// SetTimeLength sets both the length and the remaining time.
func (s *Stopwatch) SetTimeLength(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: time length %s", ErrNegativeTime, d)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.length = d
	s.remaining = d
	return nil
}

// AddTime extends the remaining time; the length becomes the new remaining
// time. Ignored once expired.
func (s *Stopwatch) AddTime(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expired || d <= 0 {
		return
	}
	s.remaining += d
	s.length = s.remaining
}

func (s *Stopwatch) run(stop <-chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.stop != stop {
				// paused and restarted while this tick was pending
				s.mu.Unlock()
				return
			}
			s.tickLocked()
		}
	}
}

// halt must be called with s.mu held.
func (s *Stopwatch) halt() {
	s.running = false
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

func (s *Stopwatch) event() (Event, []Listener) {
	ls := make([]Listener, len(s.listeners))
	copy(ls, s.listeners)
	return Event{Side: s.side, Remaining: s.remaining}, ls
}

// String renders the remaining time as h:mm:ss or m:ss.
func (s *Stopwatch) String() string {
	return FormatRemaining(s.Remaining())
}

// FormatRemaining renders d as h:mm:ss or m:ss.
func FormatRemaining(d time.Duration) string {
	total := int(d / time.Second)
	h, m, sec := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
