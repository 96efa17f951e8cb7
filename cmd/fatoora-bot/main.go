package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/akhalil/fatoora-tracker/internal/bot"
	"github.com/akhalil/fatoora-tracker/internal/invoice"
	"github.com/akhalil/fatoora-tracker/internal/scanning"
	"github.com/akhalil/fatoora-tracker/internal/session"
)

func main() {
	// Local development convenience; a missing .env is fine.
	godotenv.Load()

	fs := ff.NewFlagSet("fatoora-bot")
	var (
		telegramToken = fs.StringLong("telegram-token", "", "Telegram bot token (or set FATOORA_TELEGRAM_TOKEN)")
		geminiKey     = fs.StringLong("gemini-key", "", "Google Gemini API key (or set FATOORA_GEMINI_KEY)")
		geminiModel   = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		dbPath        = fs.StringLong("db", "fatoora.db", "Database file path")
		tolerance     = fs.Float64Long("tolerance", invoice.DefaultTolerance, "Validation tolerance in currency units")
		debug         = fs.BoolLong("debug", "Enable Telegram API debug logging")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("FATOORA"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *telegramToken == "" {
		slog.Error("Telegram token is required. Set --telegram-token flag or FATOORA_TELEGRAM_TOKEN environment variable")
		os.Exit(1)
	}
	if *geminiKey == "" {
		slog.Error("Gemini API key is required. Set --gemini-key flag or FATOORA_GEMINI_KEY environment variable")
		os.Exit(1)
	}

	slog.Info("Initializing database...", "path", *dbPath)
	db, err := invoice.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	slog.Info("Initializing Gemini scanner...", "model", *geminiModel)
	scanner, err := scanning.NewGemini(*geminiKey, *geminiModel)
	if err != nil {
		slog.Error("Failed to initialize Gemini", "error", err)
		os.Exit(1)
	}
	defer scanner.Close()

	api, err := tgbotapi.NewBotAPI(*telegramToken)
	if err != nil {
		slog.Error("Failed to connect to Telegram", "error", err)
		os.Exit(1)
	}
	api.Debug = *debug

	machine := session.NewMachine(session.NewMemoryStore())
	validator := invoice.NewValidator(*tolerance)
	b := bot.New(api, db, scanner, machine, validator)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Bot started", "username", api.Self.UserName)
	if err := b.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("Bot stopped", "error", err)
		os.Exit(1)
	}

	slog.Info("Shutting down...")
}
