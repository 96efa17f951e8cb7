// Package bot maps Telegram events onto the edit session state machine
// and its collaborators: the scanner, the validator, the database, and
// the Excel exporters.
package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/akhalil/fatoora-tracker/internal/invoice"
	"github.com/akhalil/fatoora-tracker/internal/scanning"
	"github.com/akhalil/fatoora-tracker/internal/session"
)

// API is the subset of the Telegram client the bot uses, extracted so
// tests can substitute a recorder.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Report kinds a chat can be prompted to date-filter.
const (
	reportInvoices = "invoices"
	reportItems    = "items"
)

// pendingExports tracks chats that were asked to type a date range for a
// report, keyed by chat with the kind of report they picked.
type pendingExports struct {
	mu    sync.Mutex
	kinds map[int64]string
}

func (p *pendingExports) set(chatID int64, kind string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kinds[chatID] = kind
}

func (p *pendingExports) get(chatID int64) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	kind, ok := p.kinds[chatID]
	return kind, ok
}

func (p *pendingExports) clear(chatID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.kinds, chatID)
}

// Bot wires Telegram updates to the invoice workflow.
type Bot struct {
	api       API
	machine   *session.Machine
	db        invoice.DB
	scanner   scanning.Scanner
	validator *invoice.Validator
	client    *http.Client
	exports   pendingExports
}

// New creates a Bot.
func New(api API, db invoice.DB, scanner scanning.Scanner, machine *session.Machine, validator *invoice.Validator) *Bot {
	return &Bot{
		api:       api,
		machine:   machine,
		db:        db,
		scanner:   scanner,
		validator: validator,
		client:    &http.Client{Timeout: 30 * time.Second},
		exports:   pendingExports{kinds: make(map[int64]string)},
	}
}

// Run processes updates until the context is cancelled. Updates for a
// single chat arrive in order, so each conversation's session sees its
// events one at a time.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	case update.Message == nil:
		// ignore edits, channel posts, etc.
	case update.Message.IsCommand():
		b.handleCommand(update.Message)
	case len(update.Message.Photo) > 0:
		b.handlePhoto(ctx, update.Message)
	case update.Message.Document != nil:
		b.reply(update.Message.Chat.ID, "Unsupported file type. Send a photo of the invoice (JPG or PNG).")
	case update.Message.Text != "":
		b.handleText(update.Message)
	}
}

// reply sends a plain text message, logging rather than propagating send
// failures: a failed reply must not take down the update loop.
func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		slog.Error("Failed to send message", "chat_id", chatID, "error", err)
	}
}

// sendInvoice sends a freshly rendered invoice with the edit menu, the
// display refresh that follows every applied edit.
func (b *Bot) sendInvoice(chatID int64, inv *invoice.Invoice) {
	msg := tgbotapi.NewMessage(chatID, invoice.Render(inv))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.ReplyMarkup = editMenuKeyboard()
	if _, err := b.api.Send(msg); err != nil {
		slog.Error("Failed to send invoice display", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) downloadPhoto(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolving file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building download request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading photo: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading photo body: %w", err)
	}
	return data, nil
}
