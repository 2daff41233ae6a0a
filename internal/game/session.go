// Package game ties a board and its clock into one session that the human
// player, the opponent agent and the clock goroutines share.
package game

import (
	"fmt"
	"sync"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/rs/zerolog"

	"github.com/nanchess/nanchess/internal/chess"
	"github.com/nanchess/nanchess/internal/clock"
)

// EventType represents the kind of session update
type EventType string

const (
	EventBoard EventType = "board"
	EventClock EventType = "clock"
)

// Event is published to observers after every state change.
type Event struct {
	SessionID string          `json:"sessionId"`
	Type      EventType       `json:"type"`
	Board     *chess.Snapshot `json:"board,omitempty"`
	Clock     *ClockEvent     `json:"clock,omitempty"`
}

// ClockEvent is a stopwatch transition.
type ClockEvent struct {
	Kind      string        `json:"kind"`
	Side      chess.Color   `json:"side"`
	Remaining time.Duration `json:"remaining"`
	Display   string        `json:"display"`
}

// Observer receives session events. It must not block and must not call
// back into the session.
type Observer func(Event)

// Agent is told when the opponent is to move. Notify must not block.
type Agent interface {
	Notify(chess.Snapshot)
}

// ClockStatus summarises the clock for renderers.
type ClockStatus struct {
	Preset      clock.Preset `json:"preset"`
	PresetName  string       `json:"presetName"`
	Stage       int          `json:"stage"`
	White       string       `json:"white,omitempty"`
	Black       string       `json:"black,omitempty"`
	WhiteMillis int64        `json:"whiteMillis"`
	BlackMillis int64        `json:"blackMillis"`
}

// Status is a full view of the session.
type Status struct {
	ID    string         `json:"id"`
	Board chess.Snapshot `json:"board"`
	Clock ClockStatus    `json:"clock"`
}

// Session serializes every change to one game: human moves, agent actions,
// pause and resume, and flag falls from the clock goroutines.
type Session struct {
	mu     sync.Mutex
	id     string
	board  *chess.Board
	clock  *clock.Clock
	agent  Agent
	closed bool
	logger zerolog.Logger

	tickInterval time.Duration

	obsMu     sync.RWMutex
	observers []Observer
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets a custom logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithTickInterval sets how often the clocks tick. Zero leaves ticking to
// the caller.
func WithTickInterval(d time.Duration) Option {
	return func(s *Session) {
		s.tickInterval = d
	}
}

// WithID overrides the generated session ID.
func WithID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// New creates a session with no game in progress.
func New(opts ...Option) *Session {
	s := &Session{
		id:           petname.Generate(3, "-"),
		logger:       zerolog.Nop(),
		tickInterval: clock.DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("session", s.id).Logger()

	s.clock = clock.New(
		clock.WithLogger(s.logger),
		clock.WithTickInterval(s.tickInterval),
		clock.WithListener(s),
		clock.WithExhaustedHook(s.clockExhausted),
	)
	s.board = chess.NewBoard(
		chess.WithLogger(s.logger),
		chess.WithTimekeeper(s.clock),
		chess.WithOpponent(s),
	)
	return s
}

func (s *Session) ID() string { return s.id }

// SetAgent installs the opponent agent.
func (s *Session) SetAgent(a Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agent = a
}

// Subscribe registers an observer for every later event.
func (s *Session) Subscribe(o Observer) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, o)
}

// NewGame starts a fresh, paused game with the human on playerColor.
func (s *Session) NewGame(playerColor chess.Color, preset clock.Preset) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if err := s.clock.SetPreset(preset); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to set clock: %w", err)
	}
	s.board.NewGame(playerColor)
	snap := s.board.Snapshot()
	s.mu.Unlock()

	s.logger.Info().
		Str("player", playerColor.String()).
		Str("preset", string(preset)).
		Msg("new game")
	s.publishBoard(snap)
	return nil
}

// Move plays the human's piece on (fromX, fromY) to (toX, toY).
func (s *Session) Move(fromX, fromY, toX, toY int) error {
	if !chess.InBounds(fromX, fromY) || !chess.InBounds(toX, toY) {
		return fmt.Errorf("%w: (%d, %d) to (%d, %d)", chess.ErrOutOfRange, fromX, fromY, toX, toY)
	}

	s.mu.Lock()
	if err := s.ready(s.board.PlayerColor()); err != nil {
		s.mu.Unlock()
		return err
	}
	p := s.board.PieceAt(fromX, fromY)
	if p == nil || p.Color() != s.board.PlayerColor() {
		s.mu.Unlock()
		return ErrNoPiece
	}
	move := s.board.MoveNumber()
	if !p.Move(toX, toY) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s to (%d, %d)", ErrIllegalMove, p, toX, toY)
	}
	snap := s.board.Snapshot()
	s.mu.Unlock()

	s.logger.Info().
		Str("piece", p.String()).
		Int("move", move).
		Msg("player moved")
	s.publishBoard(snap)
	return nil
}

// PerformAction applies an opponent action code.
func (s *Session) PerformAction(code chess.ActionCode) error {
	action, err := code.Decode()
	if err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.ready(s.board.OpponentColor()); err != nil {
		s.mu.Unlock()
		return err
	}
	if action.Color != s.board.OpponentColor() {
		s.mu.Unlock()
		return ErrNotYourPiece
	}
	move := s.board.MoveNumber()
	if !s.board.PerformAction(code) {
		s.mu.Unlock()
		return fmt.Errorf("%w: action %#x", ErrIllegalMove, uint32(code))
	}
	snap := s.board.Snapshot()
	s.mu.Unlock()

	s.logger.Info().
		Str("kind", action.Kind.String()).
		Int("number", action.Number).
		Int("move", move).
		Msg("opponent moved")
	s.publishBoard(snap)
	return nil
}

// ready must be called with s.mu held.
func (s *Session) ready(side chess.Color) error {
	if s.closed {
		return ErrClosed
	}
	if s.board.State() != chess.StatePlaying {
		return ErrNotPlaying
	}
	if s.board.Turn() != side {
		return ErrNotYourTurn
	}
	return nil
}

func (s *Session) Pause() {
	s.mutate(s.board.PauseGame)
}

func (s *Session) Resume() {
	s.mutate(s.board.ResumeGame)
}

// EndGame stops a running game as a draw.
func (s *Session) EndGame() {
	s.mutate(s.board.EndGame)
}

func (s *Session) mutate(f func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	before := s.board.State()
	f()
	after := s.board.State()
	snap := s.board.Snapshot()
	s.mu.Unlock()

	if before != after {
		s.logger.Info().Str("from", string(before)).Str("to", string(after)).Msg("game state changed")
		s.publishBoard(snap)
	}
}

func (s *Session) Snapshot() chess.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Snapshot()
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{ID: s.id, Board: s.board.Snapshot(), Clock: s.clockStatus()}
}

func (s *Session) clockStatus() ClockStatus {
	preset := s.clock.Preset()
	st := ClockStatus{Preset: preset, PresetName: preset.String(), Stage: s.clock.CurrentStage()}
	if w := s.clock.Stopwatch(chess.White); w != nil {
		st.White = w.String()
		st.WhiteMillis = w.Remaining().Milliseconds()
	}
	if b := s.clock.Stopwatch(chess.Black); b != nil {
		st.Black = b.String()
		st.BlackMillis = b.Remaining().Milliseconds()
	}
	return st
}

// Close stops the clocks. The session rejects all later changes.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.clock.Stop()
	s.logger.Debug().Msg("session closed")
}

// OpponentTurn is called by the board with s.mu held.
func (s *Session) OpponentTurn(b *chess.Board) {
	if s.agent != nil {
		s.agent.Notify(b.Snapshot())
	}
}

// clockExhausted runs inside Clock.SwitchTurn, which the board calls while
// s.mu is held.
func (s *Session) clockExhausted() {
	s.board.EndGame()
}

func (s *Session) StopwatchStarted(ev clock.Event) { s.publishClock("started", ev) }
func (s *Session) StopwatchTicked(ev clock.Event)  { s.publishClock("ticked", ev) }
func (s *Session) StopwatchPaused(ev clock.Event)  { s.publishClock("paused", ev) }

// StopwatchStopped is a flag fall: the side whose time ran out loses.
func (s *Session) StopwatchStopped(ev clock.Event) {
	s.publishClock("stopped", ev)

	s.mu.Lock()
	if s.closed || s.board.State() != chess.StatePlaying {
		s.mu.Unlock()
		return
	}
	s.board.Forfeit(ev.Side)
	snap := s.board.Snapshot()
	s.mu.Unlock()

	s.logger.Info().Str("side", ev.Side.String()).Msg("flag fell")
	s.publishBoard(snap)
}

func (s *Session) publishBoard(snap chess.Snapshot) {
	s.publish(Event{SessionID: s.id, Type: EventBoard, Board: &snap})
}

func (s *Session) publishClock(kind string, ev clock.Event) {
	s.publish(Event{SessionID: s.id, Type: EventClock, Clock: &ClockEvent{
		Kind:      kind,
		Side:      ev.Side,
		Remaining: ev.Remaining,
		Display:   clock.FormatRemaining(ev.Remaining),
	}})
}

func (s *Session) publish(ev Event) {
	s.obsMu.RLock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.obsMu.RUnlock()

	for _, o := range observers {
		o(ev)
	}
}
