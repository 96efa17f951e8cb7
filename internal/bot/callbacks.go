package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/akhalil/fatoora-tracker/internal/export"
	"github.com/akhalil/fatoora-tracker/internal/invoice"
	"github.com/akhalil/fatoora-tracker/internal/session"
)

// headerFields maps simple edit callbacks to the field they open.
var headerFields = map[string]session.Field{
	"edit_supplier":    session.FieldSupplier,
	"edit_date":        session.FieldDate,
	"edit_invoice_num": session.FieldInvoiceNumber,
	"edit_tax_num":     session.FieldTaxNumber,
	"edit_subtotal":    session.FieldSubtotal,
	"edit_discount":    session.FieldDiscount,
	"edit_tax_rate":    session.FieldTaxRate,
}

// itemFields maps item edit callback prefixes to the field they open; the
// callback data carries the item index after the prefix.
var itemFields = map[string]session.Field{
	"edit_item_name_":  session.FieldItemName,
	"edit_item_qty_":   session.FieldItemQuantity,
	"edit_item_unit_":  session.FieldItemUnit,
	"edit_item_price_": session.FieldItemPrice,
	"edit_item_total_": session.FieldItemTotal,
}

func (b *Bot) ack(cq *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		slog.Error("Failed to answer callback", "error", err)
	}
}

func (b *Bot) alert(cq *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallbackWithAlert(cq.ID, text)); err != nil {
		slog.Error("Failed to answer callback", "error", err)
	}
}

func (b *Bot) swapMarkup(cq *tgbotapi.CallbackQuery, kb tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageReplyMarkup(cq.Message.Chat.ID, cq.Message.MessageID, kb)
	if _, err := b.api.Send(edit); err != nil {
		slog.Error("Failed to swap keyboard", "error", err)
	}
}

func trailingIndex(data string) (int, bool) {
	idx := strings.LastIndex(data, "_")
	if idx < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(data[idx+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

func (b *Bot) handleCallback(cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		b.ack(cq)
		return
	}
	chatID := cq.Message.Chat.ID
	userID := cq.From.ID
	data := cq.Data

	switch {
	case data == "invoice_save":
		b.saveInvoice(cq)

	case data == "invoice_edit":
		b.ack(cq)
		b.swapMarkup(cq, editMenuKeyboard())

	case data == "invoice_cancel":
		b.machine.End(chatID)
		b.ack(cq)
		b.editMessage(chatID, cq.Message.MessageID, "\u274C Invoice cancelled.", nil, false)

	case data == "duplicate_proceed":
		inv, err := b.machine.ConfirmDuplicate(chatID)
		if err != nil {
			b.alert(cq, "No invoice data found.")
			return
		}
		b.ack(cq)
		kb := confirmationKeyboard()
		b.editMessage(chatID, cq.Message.MessageID, invoice.Render(inv), &kb, true)

	case data == "edit_totals":
		b.ack(cq)
		b.swapMarkup(cq, totalsEditKeyboard())

	case data == "back_to_edit":
		b.ack(cq)
		b.swapMarkup(cq, editMenuKeyboard())

	case data == "edit_items":
		sess, ok := b.machine.Session(chatID)
		if !ok || len(sess.Invoice.Items) == 0 {
			b.alert(cq, "No items to edit.")
			return
		}
		b.ack(cq)
		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("\U0001F4E6 Items (%d):\n\nPick the item to edit:", len(sess.Invoice.Items)))
		msg.ReplyMarkup = itemsListKeyboard(len(sess.Invoice.Items))
		if _, err := b.api.Send(msg); err != nil {
			slog.Error("Failed to send items list", "chat_id", chatID, "error", err)
		}

	case data == "export_all_invoices":
		b.ack(cq)
		b.exportInvoices(chatID, userID, "", "")

	case data == "export_all_items":
		b.ack(cq)
		b.exportItems(chatID, userID, "", "")

	case data == "export_invoices_date":
		b.ack(cq)
		b.exports.set(chatID, reportInvoices)
		b.reply(chatID, "\U0001F4C5 Send the date range for the invoices report:\nYYYY-MM-DD YYYY-MM-DD")

	case data == "export_items_date":
		b.ack(cq)
		b.exports.set(chatID, reportItems)
		b.reply(chatID, "\U0001F4C5 Send the date range for the items report:\nYYYY-MM-DD YYYY-MM-DD")

	case strings.HasPrefix(data, "select_item_"):
		b.selectItem(cq)

	case strings.HasPrefix(data, "delete_item_"):
		b.deleteItem(cq)

	default:
		if field, ok := headerFields[data]; ok {
			b.startEdit(cq, field, -1)
			return
		}
		for prefix, field := range itemFields {
			if strings.HasPrefix(data, prefix) {
				index, ok := trailingIndex(data)
				if !ok {
					b.alert(cq, "Invalid item.")
					return
				}
				b.startEdit(cq, field, index)
				return
			}
		}
		b.ack(cq)
	}
}

func (b *Bot) startEdit(cq *tgbotapi.CallbackQuery, field session.Field, index int) {
	chatID := cq.Message.Chat.ID
	prompt, err := b.machine.StartEdit(chatID, field, index)
	switch {
	case errors.Is(err, session.ErrNoSession):
		b.alert(cq, "No invoice data found.")
	case errors.Is(err, session.ErrItemIndex):
		b.alert(cq, "Invalid item.")
	case err != nil:
		slog.Error("Failed to start edit", "chat_id", chatID, "field", field, "error", err)
		b.alert(cq, "Something went wrong.")
	default:
		b.ack(cq)
		b.reply(chatID, "\U0001F4DD "+prompt)
	}
}

func (b *Bot) selectItem(cq *tgbotapi.CallbackQuery) {
	chatID := cq.Message.Chat.ID
	index, ok := trailingIndex(cq.Data)
	if !ok {
		b.alert(cq, "Invalid item.")
		return
	}

	sess, exists := b.machine.Session(chatID)
	if !exists || index < 0 || index >= len(sess.Invoice.Items) {
		b.alert(cq, "Invalid item.")
		return
	}
	b.ack(cq)

	it := sess.Invoice.Items[index]
	text := fmt.Sprintf("\U0001F4E6 Item %d:\n\nName: %s\nQuantity: %g\nUnit: %s\nUnit price: %g\nTotal: %g",
		index+1, it.Name, it.Quantity, it.Unit, it.UnitPrice, it.Total)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = itemEditKeyboard(index)
	if _, err := b.api.Send(msg); err != nil {
		slog.Error("Failed to send item detail", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) deleteItem(cq *tgbotapi.CallbackQuery) {
	chatID := cq.Message.Chat.ID
	index, ok := trailingIndex(cq.Data)
	if !ok {
		b.alert(cq, "Invalid item.")
		return
	}

	name, inv, err := b.machine.DeleteItem(chatID, index)
	switch {
	case errors.Is(err, session.ErrNoSession):
		b.alert(cq, "No invoice data found.")
	case errors.Is(err, session.ErrItemIndex):
		b.alert(cq, "Invalid item.")
	case err != nil:
		slog.Error("Failed to delete item", "chat_id", chatID, "error", err)
		b.alert(cq, "Something went wrong.")
	default:
		b.ack(cq)
		b.reply(chatID, fmt.Sprintf("\u2705 Deleted item: %s", name))
		b.sendInvoice(chatID, inv)
	}
}

// saveInvoice commits the session's invoice, then sends the saved record
// back as a single-invoice spreadsheet. On failure the session is kept so
// the user can retry; only a successful save ends it.
func (b *Bot) saveInvoice(cq *tgbotapi.CallbackQuery) {
	chatID := cq.Message.Chat.ID
	userID := cq.From.ID

	sess, ok := b.machine.Session(chatID)
	if !ok {
		b.alert(cq, "No invoice data found.")
		return
	}

	inv := sess.Invoice
	invoiceID, err := b.db.SaveInvoice(userID, inv)
	if err != nil {
		slog.Error("Failed to save invoice", "user_id", userID, "error", err)
		b.ack(cq)
		b.reply(chatID, "\u274C Failed to save the invoice. Try again.")
		return
	}
	b.machine.End(chatID)
	b.ack(cq)

	b.swapMarkup(cq, tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})

	count, err := b.db.CountInvoices(userID)
	if err != nil {
		slog.Error("Failed to count invoices", "user_id", userID, "error", err)
	}
	b.reply(chatID, fmt.Sprintf("\u2705 Invoice saved!\n\nSaved invoices: %d\n\nUse /stats for reports.", count))

	data, err := export.InvoiceWorkbook(inv)
	if err != nil {
		slog.Error("Failed to build invoice workbook", "invoice_id", invoiceID, "error", err)
	} else {
		b.sendWorkbook(chatID, fmt.Sprintf("invoice_%d.xlsx", invoiceID), data,
			fmt.Sprintf("\U0001F4C4 Invoice %s", orUnknownPlain(inv.InvoiceNumber)))
	}
	slog.Info("Invoice saved", "invoice_id", invoiceID, "user_id", userID)
}
