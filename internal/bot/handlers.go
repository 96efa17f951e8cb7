package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/akhalil/fatoora-tracker/internal/export"
	"github.com/akhalil/fatoora-tracker/internal/invoice"
	"github.com/akhalil/fatoora-tracker/internal/session"
)

const unknownMessageReply = "I only handle invoice photos.\n\n" +
	"1. Send a photo of an invoice\n" +
	"2. Review the extracted data\n" +
	"3. Edit if needed, then save\n\n" +
	"Use /stats for reports."

func (b *Bot) editMessage(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup, markdown bool) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if markdown {
		edit.ParseMode = tgbotapi.ModeMarkdownV2
	}
	edit.ReplyMarkup = markup
	if _, err := b.api.Send(edit); err != nil {
		slog.Error("Failed to edit message", "chat_id", chatID, "error", err)
	}
}

// handlePhoto downloads the largest rendition of the photo, runs
// extraction and validation, checks for a saved duplicate, and opens the
// edit session. An empty item list from the scanner is a terminal
// extraction failure: no session is created.
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	b.exports.clear(chatID)

	processing, err := b.api.Send(tgbotapi.NewMessage(chatID, "⏳ Analyzing the invoice..."))
	if err != nil {
		slog.Error("Failed to send processing message", "chat_id", chatID, "error", err)
		return
	}

	photo := msg.Photo[len(msg.Photo)-1]
	data, err := b.downloadPhoto(ctx, photo.FileID)
	if err != nil {
		slog.Error("Failed to download photo", "chat_id", chatID, "error", err)
		b.editMessage(chatID, processing.MessageID, "❌ Something went wrong while processing the photo.", nil, false)
		return
	}
	slog.Info("Downloaded photo", "chat_id", chatID, "bytes", len(data))

	inv, err := b.scanner.ExtractInvoice(ctx, data)
	if err != nil {
		slog.Error("Extraction failed", "chat_id", chatID, "error", err)
		b.editMessage(chatID, processing.MessageID, "❌ Something went wrong while processing the photo.", nil, false)
		return
	}
	if len(inv.Items) == 0 {
		b.editMessage(chatID, processing.MessageID, "❌ Could not extract invoice data from the image.", nil, false)
		return
	}

	b.validator.Validate(inv)

	userID := msg.From.ID
	duplicate, err := b.db.IsDuplicate(userID, inv.InvoiceNumber, inv.TaxNumber)
	if err != nil {
		slog.Error("Duplicate check failed", "user_id", userID, "error", err)
		duplicate = false
	}

	b.machine.Begin(chatID, inv, duplicate)

	if duplicate {
		warning := fmt.Sprintf(
			"⚠️ This invoice has been saved before!\n\nInvoice number: %s\n\nProceed anyway?",
			orUnknownPlain(inv.InvoiceNumber),
		)
		kb := duplicateWarningKeyboard()
		b.editMessage(chatID, processing.MessageID, warning, &kb, false)
		return
	}

	kb := confirmationKeyboard()
	b.editMessage(chatID, processing.MessageID, invoice.Render(inv), &kb, true)
}

func orUnknownPlain(s string) string {
	if s == "" {
		return "not specified"
	}
	return s
}

// handleText feeds free text into the state machine. A pending date-range
// prompt takes the text first; with no edit pending either, the text is
// answered with usage help. A rejected value re-prompts without advancing
// the state.
func (b *Bot) handleText(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if kind, ok := b.exports.get(chatID); ok {
		b.handleDateRange(chatID, msg.From.ID, kind, msg.Text)
		return
	}

	res, err := b.machine.Input(chatID, msg.Text)
	switch {
	case errors.Is(err, session.ErrNoSession), errors.Is(err, session.ErrNotEditing):
		b.reply(chatID, unknownMessageReply)
	case errors.Is(err, session.ErrItemIndex):
		b.reply(chatID, "That item no longer exists. Pick an item again.")
	case err != nil:
		slog.Error("Edit input failed", "chat_id", chatID, "error", err)
		b.reply(chatID, "Something went wrong. Try again.")
	case !res.OK:
		b.reply(chatID, "❌ "+res.Reply)
	default:
		b.reply(chatID, "✅ "+res.Reply)
		b.sendInvoice(chatID, res.Invoice)
	}
}

// handleDateRange consumes the typed date range a report prompt is
// waiting on. An unparseable range re-prompts and keeps waiting; a valid
// one clears the prompt and sends the report.
func (b *Bot) handleDateRange(chatID, userID int64, kind, text string) {
	start, end, ok := parseDateRangeArgs(text)
	if !ok {
		b.reply(chatID, "❌ Send the range as:\nYYYY-MM-DD YYYY-MM-DD")
		return
	}
	b.exports.clear(chatID)

	if kind == reportItems {
		b.exportItems(chatID, userID, start, end)
		return
	}
	b.exportInvoices(chatID, userID, start, end)
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID

	// Commands abandon any in-flight edit session or report prompt,
	// matching the bot's one-conversation-one-task model.
	b.exports.clear(chatID)
	switch msg.Command() {
	case "start", "help":
		b.reply(chatID, "\U0001F4F8 Send me a photo of a paper invoice.\n\n"+
			"I will extract the supplier, items, and totals. You can edit any "+
			"field before saving, then export reports with /stats.")
	case "stats":
		b.machine.End(chatID)
		count, err := b.db.CountInvoices(userID)
		if err != nil {
			slog.Error("Failed to count invoices", "user_id", userID, "error", err)
			b.reply(chatID, "Something went wrong.")
			return
		}
		reply := tgbotapi.NewMessage(chatID, fmt.Sprintf("\U0001F4CA Your stats:\n\nSaved invoices: %d\n\nPick a report:", count))
		reply.ReplyMarkup = statsKeyboard()
		if _, err := b.api.Send(reply); err != nil {
			slog.Error("Failed to send stats", "chat_id", chatID, "error", err)
		}
	case "export_invoices":
		b.machine.End(chatID)
		b.exportInvoices(chatID, userID, "", "")
	case "export_invoices_date":
		b.machine.End(chatID)
		start, end, ok := parseDateRangeArgs(msg.CommandArguments())
		if !ok {
			b.reply(chatID, "Usage:\n/export_invoices_date YYYY-MM-DD YYYY-MM-DD")
			return
		}
		b.exportInvoices(chatID, userID, start, end)
	case "export_items":
		b.machine.End(chatID)
		b.exportItems(chatID, userID, "", "")
	case "export_items_date":
		b.machine.End(chatID)
		start, end, ok := parseDateRangeArgs(msg.CommandArguments())
		if !ok {
			b.reply(chatID, "Usage:\n/export_items_date YYYY-MM-DD YYYY-MM-DD")
			return
		}
		b.exportItems(chatID, userID, start, end)
	default:
		b.reply(chatID, unknownMessageReply)
	}
}

func parseDateRangeArgs(args string) (start, end string, ok bool) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return "", "", false
	}
	return fields[0], fields[1], true
}

func (b *Bot) sendWorkbook(chatID int64, name string, data []byte, caption string) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	if _, err := b.api.Send(doc); err != nil {
		slog.Error("Failed to send workbook", "chat_id", chatID, "error", err)
		b.reply(chatID, "Something went wrong while sending the report.")
	}
}

func (b *Bot) exportInvoices(chatID, userID int64, start, end string) {
	invoices, err := b.db.ListInvoices(userID, start, end)
	if err != nil {
		slog.Error("Failed to list invoices", "user_id", userID, "error", err)
		b.reply(chatID, "Something went wrong while building the report.")
		return
	}
	if len(invoices) == 0 {
		if start != "" || end != "" {
			b.reply(chatID, fmt.Sprintf("No invoices between %s and %s.", start, end))
		} else {
			b.reply(chatID, "No saved invoices.")
		}
		return
	}

	data, err := export.InvoicesReport(invoices)
	if err != nil {
		slog.Error("Failed to build invoices report", "user_id", userID, "error", err)
		b.reply(chatID, "Something went wrong while building the report.")
		return
	}

	name := fmt.Sprintf("invoices_report_%s.xlsx", time.Now().Format("20060102_150405"))
	if start != "" || end != "" {
		name = fmt.Sprintf("invoices_%s_to_%s.xlsx", start, end)
	}
	b.sendWorkbook(chatID, name, data, fmt.Sprintf("\U0001F4CA Invoices report\n\nInvoices: %d", len(invoices)))
	slog.Info("Exported invoices", "user_id", userID, "count", len(invoices))
}

func (b *Bot) exportItems(chatID, userID int64, start, end string) {
	items, err := b.db.ListItems(userID, start, end)
	if err != nil {
		slog.Error("Failed to list items", "user_id", userID, "error", err)
		b.reply(chatID, "Something went wrong while building the report.")
		return
	}
	if len(items) == 0 {
		if start != "" || end != "" {
			b.reply(chatID, fmt.Sprintf("No items between %s and %s.", start, end))
		} else {
			b.reply(chatID, "No saved items.")
		}
		return
	}

	data, err := export.ItemsReport(items)
	if err != nil {
		slog.Error("Failed to build items report", "user_id", userID, "error", err)
		b.reply(chatID, "Something went wrong while building the report.")
		return
	}

	name := fmt.Sprintf("items_report_%s.xlsx", time.Now().Format("20060102_150405"))
	if start != "" || end != "" {
		name = fmt.Sprintf("items_%s_to_%s.xlsx", start, end)
	}
	b.sendWorkbook(chatID, name, data, fmt.Sprintf("\U0001F4E6 Items report\n\nItems: %d", len(items)))
	slog.Info("Exported items", "user_id", userID, "count", len(items))
}
