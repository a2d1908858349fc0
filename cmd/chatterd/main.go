// Command chatterd serves the chat completion endpoint consumed by the
// chatter client, relaying conversations to the OpenAI API.
//
// Usage:
//
//	OPENAI_API_KEY=sk-... chatterd
package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/tkaczmarek/chatter/config"
	"github.com/tkaczmarek/chatter/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "chatterd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env.local wins over .env; both are optional.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.OpenAIKey == "" {
		return errors.New("OPENAI_API_KEY is not set")
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	completer := server.NewOpenAICompleter(cfg.OpenAIKey, cfg.OpenAIModel)
	handler := server.NewHandler(logger, completer)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info().Str("port", cfg.Port).Str("model", cfg.OpenAIModel).Msg("starting server")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
