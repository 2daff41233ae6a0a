package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nanchess/nanchess/internal/agent"
	"github.com/nanchess/nanchess/internal/chess"
)

// nanchess-agent plays the opponent for a server running with agent.mode
// remote, choosing random legal moves.
func main() {
	var (
		server string
		token  string
		seed   int64
		think  time.Duration
		debug  bool
	)
	flag.StringVar(&server, "server", "http://localhost:8080", "nanchess server URL")
	flag.StringVar(&token, "token", os.Getenv("NANCHESS_AGENT_TOKEN"), "Agent bearer token")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "Random seed")
	flag.DurationVar(&think, "think", 0, "Pause before each move")
	flag.BoolVar(&debug, "debug", false, "Debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if token == "" {
		log.Fatal().Msg("No token: pass -token or set NANCHESS_AGENT_TOKEN")
	}

	chooser := agent.NewRandom(nil, agent.WithSeed(seed), agent.WithLogger(log.Logger))
	var c agent.Chooser = chooser
	if think > 0 {
		c = slowChooser{chooser, think}
	}
	remote := agent.NewRemote(server, token, c, agent.WithRemoteLogger(log.Logger))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("server", server).Int64("seed", seed).Msg("Agent starting")
	if err := remote.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("Agent stopped")
	}
	log.Info().Msg("Agent exited")
}

type slowChooser struct {
	agent.Chooser
	think time.Duration
}

func (s slowChooser) Choose(snap chess.Snapshot) (chess.ActionCode, bool) {
	time.Sleep(s.think)
	return s.Chooser.Choose(snap)
}
