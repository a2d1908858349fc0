// Command chatter is a terminal chat client that streams replies from a
// chat completion server.
//
// Usage:
//
//	chatter [flags]
//
// Flags:
//
//	-server string    Server base URL (default: CHATTER_SERVER_URL or http://localhost:3000)
//	-sessions string  Path to the sessions file (default: ~/.chatter/sessions.json)
//	-debug            Write debug logs to chatter.log
//	-no-restore       Start without loading persisted sessions
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/tkaczmarek/chatter"
	bt "github.com/tkaczmarek/chatter/bubbletea"
	"github.com/tkaczmarek/chatter/config"
	"github.com/tkaczmarek/chatter/datastream"
	chatterjson "github.com/tkaczmarek/chatter/json"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "chatter: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse flags.
	var (
		serverURL    = flag.String("server", "", "Server base URL (overrides CHATTER_SERVER_URL)")
		sessionsPath = flag.String("sessions", "", "Path to the sessions file")
		debug        = flag.Bool("debug", false, "Write debug logs to chatter.log")
		noRestore    = flag.Bool("no-restore", false, "Start without loading persisted sessions")
	)
	flag.Parse()

	// .env.local wins over .env; both are optional.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}
	if *sessionsPath != "" {
		cfg.SessionsPath = *sessionsPath
	}
	if cfg.SessionsPath == "" {
		cfg.SessionsPath, err = defaultSessionsPath()
		if err != nil {
			return err
		}
	}

	logger := zerolog.Nop()
	if *debug {
		logFile, err := os.OpenFile("chatter.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer logFile.Close()
		logger = zerolog.New(logFile).With().Timestamp().Logger()
	}

	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store := chatter.NewStore()
	if !*noRestore {
		if sessions, activeID, err := chatterjson.Load(cfg.SessionsPath); err == nil {
			store.Restore(sessions, activeID)
		} else if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn().Err(err).Str("path", cfg.SessionsPath).Msg("load sessions")
		}
	}

	provider := datastream.New(cfg.ServerURL)
	engine := chatter.NewEngine(store, provider, chatter.WithLogger(logger))

	tuiModel := bt.New(engine, chatter.DefaultTheme())
	if err := bt.Run(ctx, tuiModel); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}

	// Save sessions on exit.
	if err := chatterjson.Save(cfg.SessionsPath, store.Sessions(), store.ActiveID()); err != nil {
		return fmt.Errorf("save sessions: %w", err)
	}
	return nil
}

func defaultSessionsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".chatter", "sessions.json"), nil
}
