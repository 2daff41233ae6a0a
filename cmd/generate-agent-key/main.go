package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nanchess/nanchess/internal/auth"
)

func main() {
	var (
		out     string
		agent   string
		session string
		ttl     time.Duration
		force   bool
	)
	flag.StringVar(&out, "out", "agent-key.pem", "Where to write the private key")
	flag.StringVar(&agent, "agent", "", "Also print a token for this agent name")
	flag.StringVar(&session, "session", "", "Bind the printed token to one session ID")
	flag.DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	flag.BoolVar(&force, "force", false, "Overwrite an existing key file")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if _, err := os.Stat(out); err == nil && !force {
		log.Fatal().Str("file", out).Msg("Key file exists, use -force to overwrite")
	}

	// Generate new ECDSA key pair for ES256
	key, err := auth.GenerateES256KeyPair()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate private key")
	}

	pemBytes, err := auth.EncodePrivateKey(key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode private key")
	}
	if err := os.WriteFile(out, pemBytes, 0o600); err != nil {
		log.Fatal().Err(err).Msg("Failed to write private key")
	}

	fmt.Printf("Wrote %s (kid %s)\n", out, auth.KeyID(key))
	fmt.Println("Point agent.key_file (or NANCHESS_AGENT_KEY_FILE) at it and set agent.mode: remote.")

	if agent == "" {
		return
	}
	token, err := auth.NewSigner(key, ttl).IssueAgentToken(agent, session)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to issue token")
	}
	fmt.Println()
	fmt.Println("=== AGENT TOKEN (send as Authorization: Bearer) ===")
	fmt.Println(token)
}
