package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nanchess/nanchess/internal/agent"
	"github.com/nanchess/nanchess/internal/auth"
	"github.com/nanchess/nanchess/internal/chess"
	"github.com/nanchess/nanchess/internal/clock"
	"github.com/nanchess/nanchess/internal/config"
	"github.com/nanchess/nanchess/internal/game"
	"github.com/nanchess/nanchess/internal/notation"
	"github.com/nanchess/nanchess/internal/web"
)

func main() {
	// Parse command line flags
	var showHelp bool
	flag.BoolVar(&showHelp, "help", false, "Show help information")
	flag.BoolVar(&showHelp, "h", false, "Show help information")
	flag.Parse()

	if showHelp {
		showHelpMessage()
		return
	}

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	setupLogging(cfg)

	player, err := chess.ParseColor(cfg.Game.PlayerColor)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid game.player_color")
	}
	preset, err := clock.ParsePreset(cfg.Game.ClockPreset)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid game.clock_preset")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := game.New(
		game.WithLogger(log.Logger),
		game.WithTickInterval(cfg.Game.TickInterval),
	)
	defer session.Close()

	hub := web.NewHub()
	go hub.Run(ctx)
	session.Subscribe(hub.Observe)

	if cfg.Development.PrintBoard {
		session.Subscribe(func(ev game.Event) {
			if ev.Type == game.EventBoard {
				_ = notation.Render(os.Stdout, *ev.Board)
			}
		})
	}

	var signer *auth.Signer
	switch cfg.Agent.Mode {
	case config.AgentBuiltin:
		opts := []agent.Option{
			agent.WithThinkTime(cfg.Agent.ThinkTime),
			agent.WithLogger(log.Logger.With().Str("component", "agent").Logger()),
		}
		if cfg.Agent.Seed != 0 {
			opts = append(opts, agent.WithSeed(cfg.Agent.Seed))
		}
		bot := agent.NewRandom(session, opts...)
		session.SetAgent(bot)
		go func() {
			if err := bot.Run(ctx); err != nil && err != context.Canceled {
				log.Error().Err(err).Msg("Agent stopped")
			}
		}()

	case config.AgentRemote:
		key, err := auth.LoadPrivateKey(cfg.Agent.KeyFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.Agent.KeyFile).Msg("Failed to load agent key")
		}
		signer = auth.NewSigner(key, cfg.Agent.TokenTTL)
		token, err := signer.IssueAgentToken("remote-agent", session.ID())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to issue agent token")
		}
		fmt.Printf("Agent token for session %s:\n%s\n", session.ID(), token)
	}

	if err := session.NewGame(player, preset); err != nil {
		log.Fatal().Err(err).Msg("Failed to start game")
	}

	service := web.NewService(session, signer, cfg, hub)

	// Create server
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      service.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		log.Info().Str("addr", srv.Addr).Str("session", session.ID()).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Development.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Development.Debug {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		return
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func showHelpMessage() {
	fmt.Println(`NaN Chess

DESCRIPTION:
    Plays one game of chess between a human and an opponent agent, with an
    optional staged tournament clock. Serves a JSON API for renderers and
    streams every board and clock change over a WebSocket.

USAGE:
    nanchess [OPTIONS]

OPTIONS:
    -h, --help    Show this help message

CONFIGURATION:
    Read from config.yaml in the current directory or ./config, then from
    NANCHESS_* environment variables (e.g. NANCHESS_SERVER_PORT).

    Example config.yaml:
        server:
          host: localhost
          port: 8080

        game:
          player_color: white      # white or black
          clock_preset: CLK_G5     # see GET /api/presets
          tick_interval: 1s

        agent:
          mode: builtin            # builtin or remote
          seed: 0                  # 0 picks a random seed
          think_time: 500ms
          key_file: agent-key.pem  # remote mode only
          token_ttl: 24h

        development:
          debug: true
          log_level: debug
          print_board: true

API ENDPOINTS:
    GET  /api/health          - Service health check
    GET  /api/presets         - Clock presets
    GET  /api/game            - Board, clock and FEN
    POST /api/game            - Start a new game {color, preset}
    POST /api/game/pause      - Pause the game and clocks
    POST /api/game/resume     - Resume the game
    POST /api/game/end        - End the game as a draw
    POST /api/moves           - Human move {from: "e2", to: "e4"}
    POST /api/actions         - Agent action {code} (remote mode, bearer token)
    GET  /api/spectate        - Summary for spectators
    GET  /ws                  - Live board and clock events

EXAMPLES:
    # Start with default configuration
    nanchess

    # Play black against a 5 minute clock
    NANCHESS_GAME_PLAYER_COLOR=black NANCHESS_GAME_CLOCK_PRESET=CLK_G5 nanchess

    # Make a move
    curl -X POST http://localhost:8080/api/moves \
      -H "Content-Type: application/json" \
      -d '{"from": "e2", "to": "e4"}'

SEE ALSO:
    generate-agent-key(1), config.yaml(5)`)
}
