package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func confirmationKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Save", "invoice_save"),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Edit", "invoice_edit"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "invoice_cancel"),
		),
	)
}

func editMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("\U0001F3E2 Supplier", "edit_supplier"),
			tgbotapi.NewInlineKeyboardButtonData("\U0001F4C5 Date", "edit_date"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("\U0001F4C4 Invoice number", "edit_invoice_num"),
			tgbotapi.NewInlineKeyboardButtonData("\U0001F522 Tax number", "edit_tax_num"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("\U0001F4B0 Totals", "edit_totals"),
			tgbotapi.NewInlineKeyboardButtonData("\U0001F4E6 Items", "edit_items"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Save", "invoice_save"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "invoice_cancel"),
		),
	)
}

func totalsEditKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Subtotal", "edit_subtotal"),
			tgbotapi.NewInlineKeyboardButtonData("Discount", "edit_discount"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Tax rate", "edit_tax_rate"),
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", "back_to_edit"),
		),
	)
}

func itemsListKeyboard(count int) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, count+1)
	for i := 0; i < count; i++ {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("Item %d", i+1),
				fmt.Sprintf("select_item_%d", i),
			),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", "back_to_edit"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func itemEditKeyboard(index int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Name", fmt.Sprintf("edit_item_name_%d", index)),
			tgbotapi.NewInlineKeyboardButtonData("Quantity", fmt.Sprintf("edit_item_qty_%d", index)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Unit", fmt.Sprintf("edit_item_unit_%d", index)),
			tgbotapi.NewInlineKeyboardButtonData("Unit price", fmt.Sprintf("edit_item_price_%d", index)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Item total", fmt.Sprintf("edit_item_total_%d", index)),
			tgbotapi.NewInlineKeyboardButtonData("\U0001F5D1 Delete", fmt.Sprintf("delete_item_%d", index)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", "edit_items"),
		),
	)
}

func duplicateWarningKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Proceed anyway", "duplicate_proceed"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "invoice_cancel"),
		),
	)
}

func statsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("\U0001F4CA All invoices", "export_all_invoices"),
			tgbotapi.NewInlineKeyboardButtonData("\U0001F4E6 All items", "export_all_items"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("\U0001F4C5 Invoices by date", "export_invoices_date"),
			tgbotapi.NewInlineKeyboardButtonData("\U0001F4C5 Items by date", "export_items_date"),
		),
	)
}
