package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/forsa/assistant/assistant"
	"github.com/forsa/assistant/config"
	"github.com/forsa/assistant/embeddings"
	"github.com/forsa/assistant/extract"
	"github.com/forsa/assistant/llm"
	"github.com/forsa/assistant/store"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "chat":
		chatCmd(logger, os.Args[2:])
	case "history":
		historyCmd(logger, os.Args[2:])
	case "initdb":
		initdbCmd(logger, os.Args[2:])
	default:
		logger.Error().Str("command", os.Args[1]).Msg("unknown command")
		printUsage()
		os.Exit(1)
	}
}

func chatCmd(logger zerolog.Logger, args []string) {
	flags := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := flags.String("config", "", "path to config file (optional)")
	roleFlag := flags.String("role", "student", "user role: student or company")
	userFlag := flags.String("user", "", "user id (UUID)")
	message := flags.String("message", "", "message to send")
	if err := flags.Parse(args); err != nil {
		logger.Fatal().Err(err).Msg("parse chat flags")
	}

	role := store.Role(*roleFlag)
	if !role.Valid() {
		logger.Fatal().Str("role", *roleFlag).Msg("role must be student or company")
	}

	userID, err := uuid.Parse(*userFlag)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse user id")
	}

	if strings.TrimSpace(*message) == "" {
		fmt.Print("Enter your message: ")
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			*message = scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			logger.Fatal().Err(err).Msg("read message")
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	pool, err := store.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection")
	}
	defer pool.Close()

	embedder, err := embeddings.NewEmbedder(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("embedder setup")
	}

	llmClient, err := llm.NewClient(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("llm setup")
	}

	db := store.NewPostgres(pool)
	extractor := extract.New(cfg.ResumeDir, cfg.FetchTimeout, logger)
	bot := assistant.New(db, db, extractor, embedder, llmClient, cfg, logger)

	fmt.Println(bot.GetResponse(ctx, *message, role, userID))
}

func historyCmd(logger zerolog.Logger, args []string) {
	flags := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := flags.String("config", "", "path to config file (optional)")
	userFlag := flags.String("user", "", "user id (UUID)")
	limit := flags.Int("limit", 20, "number of turns to show")
	if err := flags.Parse(args); err != nil {
		logger.Fatal().Err(err).Msg("parse history flags")
	}

	userID, err := uuid.Parse(*userFlag)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse user id")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	pool, err := store.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection")
	}
	defer pool.Close()

	turns, err := store.NewPostgres(pool).Recent(ctx, userID, *limit)
	if err != nil {
		logger.Fatal().Err(err).Msg("fetch history")
	}

	for _, turn := range turns {
		fmt.Printf("[%s] %s: %s\n", turn.Timestamp.Format(time.RFC3339), turn.Role, turn.Content)
	}
}

func initdbCmd(logger zerolog.Logger, args []string) {
	flags := flag.NewFlagSet("initdb", flag.ExitOnError)
	configPath := flags.String("config", "", "path to config file (optional)")
	if err := flags.Parse(args); err != nil {
		logger.Fatal().Err(err).Msg("parse initdb flags")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	pool, err := store.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection")
	}
	defer pool.Close()

	if err := store.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("ensure schema")
	}
	logger.Info().Msg("schema ready")
}

func printUsage() {
	fmt.Println("Usage: assistant <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  chat     Ask the assistant a question (-role, -user, -message)")
	fmt.Println("  history  Print a user's stored conversation (-user, -limit)")
	fmt.Println("  initdb   Create the Postgres schema")
}
