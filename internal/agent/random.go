// Package agent provides a reference opponent that answers with random legal
// moves through action codes, the same interface an external engine uses.
package agent

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/nanchess/nanchess/internal/chess"
)

// Submitter accepts the agent's moves. *game.Session implements it.
type Submitter interface {
	PerformAction(code chess.ActionCode) error
}

// Random plays a uniformly chosen legal move each turn.
type Random struct {
	sub    Submitter
	rng    *rand.Rand
	think  time.Duration
	notify chan chess.Snapshot
	logger zerolog.Logger
}

// Option configures a Random agent
type Option func(*Random)

// WithSeed makes the agent's choices reproducible.
func WithSeed(seed int64) Option {
	return func(r *Random) {
		r.rng = rand.New(rand.NewSource(seed))
	}
}

// WithThinkTime delays every answer by d.
func WithThinkTime(d time.Duration) Option {
	return func(r *Random) {
		r.think = d
	}
}

// WithLogger sets a custom logger
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Random) {
		r.logger = logger
	}
}

func NewRandom(sub Submitter, opts ...Option) *Random {
	r := &Random{
		sub:    sub,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		notify: make(chan chess.Snapshot, 1),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Notify hands the agent the latest position. Only the newest pending
// position is kept; it never blocks.
func (r *Random) Notify(s chess.Snapshot) {
	for {
		select {
		case r.notify <- s:
			return
		default:
		}
		select {
		case <-r.notify:
		default:
		}
	}
}

// Run answers positions until ctx is cancelled.
func (r *Random) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap := <-r.notify:
			if r.think > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(r.think):
				}
			}
			r.play(snap)
		}
	}
}

func (r *Random) play(snap chess.Snapshot) {
	side := snap.PlayerColor.Other()
	if snap.State != chess.StatePlaying || snap.Turn != side {
		return
	}
	code, ok := r.Choose(snap)
	if !ok {
		r.logger.Debug().Int("move", snap.MoveNumber).Msg("no legal move")
		return
	}
	if err := r.sub.PerformAction(code); err != nil {
		r.logger.Warn().Err(err).Uint32("code", uint32(code)).Msg("action rejected")
	}
}

// Choose picks a random legal move for the side to move.
func (r *Random) Choose(snap chess.Snapshot) (chess.ActionCode, bool) {
	movable := snap.Movable(snap.Turn)
	if len(movable) == 0 {
		return 0, false
	}
	piece := movable[r.rng.Intn(len(movable))]
	target := piece.LegalMoves[r.rng.Intn(len(piece.LegalMoves))]
	code, err := piece.Action(target).Encode()
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to encode action")
		return 0, false
	}
	return code, true
}
