package session

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/akhalil/fatoora-tracker/internal/invoice"
)

// Field identifies an editable invoice field.
type Field string

const (
	FieldSupplier      Field = "supplier"
	FieldDate          Field = "date"
	FieldInvoiceNumber Field = "invoice_number"
	FieldTaxNumber     Field = "tax_number"
	FieldSubtotal      Field = "subtotal"
	FieldDiscount      Field = "discount"
	FieldTaxRate       Field = "tax_rate"
	FieldItemName      Field = "item_name"
	FieldItemQuantity  Field = "item_quantity"
	FieldItemUnit      Field = "item_unit"
	FieldItemPrice     Field = "item_price"
	FieldItemTotal     Field = "item_total"
)

// Missing-context errors. These are reported to the user as inline alerts
// and leave the session intact.
var (
	ErrNoSession  = errors.New("no active invoice session")
	ErrNotEditing = errors.New("no field edit pending")
	ErrItemIndex  = errors.New("item index out of range")
)

// fieldSpec drives the per-field edit behavior: the editing state the
// session enters, how free text is parsed, where the value lands, and
// whether the edit fires recalculation.
type fieldSpec struct {
	state     State
	prompt    string
	reply     string
	numeric   bool
	recalc    bool
	item      bool
	setText   func(inv *invoice.Invoice, idx int, text string)
	setNumber func(inv *invoice.Invoice, idx int, v float64)
}

// The trigger column mirrors the recalculation contract: quantity, price,
// discount, and tax rate recalculate; direct writes to subtotal or an item
// total overwrite verbatim and may leave derived fields stale until the
// next recalculating edit.
var fieldSpecs = map[Field]fieldSpec{
	FieldSupplier: {
		state:   "editing_supplier",
		prompt:  "Enter the new supplier name:",
		reply:   "Supplier name updated",
		setText: func(inv *invoice.Invoice, _ int, text string) { inv.SupplierName = text },
	},
	FieldDate: {
		state:   "editing_date",
		prompt:  "Enter the new date (YYYY-MM-DD):",
		reply:   "Date updated",
		setText: func(inv *invoice.Invoice, _ int, text string) { inv.InvoiceDate = text },
	},
	FieldInvoiceNumber: {
		state:   "editing_invoice_number",
		prompt:  "Enter the new invoice number:",
		reply:   "Invoice number updated",
		setText: func(inv *invoice.Invoice, _ int, text string) { inv.InvoiceNumber = text },
	},
	FieldTaxNumber: {
		state:   "editing_tax_number",
		prompt:  "Enter the new tax number:",
		reply:   "Tax number updated",
		setText: func(inv *invoice.Invoice, _ int, text string) { inv.TaxNumber = text },
	},
	FieldSubtotal: {
		state:     "editing_subtotal",
		prompt:    "Enter the new subtotal:",
		reply:     "Subtotal updated",
		numeric:   true,
		setNumber: func(inv *invoice.Invoice, _ int, v float64) { inv.Subtotal = v },
	},
	FieldDiscount: {
		state:     "editing_discount",
		prompt:    "Enter the new discount:",
		reply:     "Discount updated",
		numeric:   true,
		recalc:    true,
		setNumber: func(inv *invoice.Invoice, _ int, v float64) { inv.Discount = v },
	},
	FieldTaxRate: {
		state:     "editing_tax_rate",
		prompt:    "Enter the new tax rate (e.g. 15 for 15%):",
		reply:     "Tax rate updated",
		numeric:   true,
		recalc:    true,
		setNumber: func(inv *invoice.Invoice, _ int, v float64) { inv.TaxRate = v },
	},
	FieldItemName: {
		state:   "editing_item_name",
		prompt:  "Enter the new item name:",
		reply:   "Item name updated",
		item:    true,
		setText: func(inv *invoice.Invoice, idx int, text string) { inv.Items[idx].Name = text },
	},
	FieldItemQuantity: {
		state:     "editing_item_quantity",
		prompt:    "Enter the new quantity:",
		reply:     "Quantity updated",
		numeric:   true,
		recalc:    true,
		item:      true,
		setNumber: func(inv *invoice.Invoice, idx int, v float64) { inv.Items[idx].Quantity = v },
	},
	FieldItemUnit: {
		state:   "editing_item_unit",
		prompt:  "Enter the new unit:",
		reply:   "Unit updated",
		item:    true,
		setText: func(inv *invoice.Invoice, idx int, text string) { inv.Items[idx].Unit = text },
	},
	FieldItemPrice: {
		state:     "editing_item_price",
		prompt:    "Enter the new unit price:",
		reply:     "Unit price updated",
		numeric:   true,
		recalc:    true,
		item:      true,
		setNumber: func(inv *invoice.Invoice, idx int, v float64) { inv.Items[idx].UnitPrice = v },
	},
	FieldItemTotal: {
		state:     "editing_item_total",
		prompt:    "Enter the new item total:",
		reply:     "Item total updated",
		numeric:   true,
		item:      true,
		setNumber: func(inv *invoice.Invoice, idx int, v float64) { inv.Items[idx].Total = v },
	},
}

// specsByState maps each editing state back to its field spec so free-text
// input can be dispatched from the session's current state.
var specsByState = func() map[State]fieldSpec {
	m := make(map[State]fieldSpec, len(fieldSpecs))
	for _, spec := range fieldSpecs {
		m[spec.state] = spec
	}
	return m
}()

// Result is the outcome of feeding user input to the state machine. A
// rejected input (OK false) is recoverable: the state did not advance and
// the invoice was not touched.
type Result struct {
	OK      bool
	Reply   string
	Invoice *invoice.Invoice
}

// Machine is the edit session state machine. All operations go through the
// injected Store, keyed by chat.
type Machine struct {
	store Store
}

// NewMachine creates a Machine backed by the given session store.
func NewMachine(store Store) *Machine {
	return &Machine{store: store}
}

// Session returns the current session for a chat, if any.
func (m *Machine) Session(chatID int64) (*Session, bool) {
	return m.store.Get(chatID)
}

// Begin takes ownership of a freshly extracted invoice and opens a session
// for the chat, replacing any session already there. The invoice is deep
// copied so no other holder can alias it.
func (m *Machine) Begin(chatID int64, inv *invoice.Invoice, isDuplicate bool) *Session {
	state := StateAwaitingConfirmation
	if isDuplicate {
		state = StateAwaitingDuplicate
	}
	sess := &Session{
		ChatID:      chatID,
		State:       state,
		Invoice:     inv.Clone(),
		ItemIndex:   -1,
		IsDuplicate: isDuplicate,
	}
	m.store.Put(sess)
	return sess
}

// ConfirmDuplicate moves a session past the duplicate warning after the
// user elects to proceed anyway.
func (m *Machine) ConfirmDuplicate(chatID int64) (*invoice.Invoice, error) {
	sess, ok := m.store.Get(chatID)
	if !ok {
		return nil, ErrNoSession
	}
	sess.State = StateAwaitingConfirmation
	m.store.Put(sess)
	return sess.Invoice, nil
}

// StartEdit transitions the session into the field's editing state and
// returns the prompt to show the user. For item fields, itemIndex selects
// the target item and is bounds-checked here.
func (m *Machine) StartEdit(chatID int64, field Field, itemIndex int) (string, error) {
	sess, ok := m.store.Get(chatID)
	if !ok {
		return "", ErrNoSession
	}
	spec, ok := fieldSpecs[field]
	if !ok {
		return "", ErrNotEditing
	}
	if spec.item {
		if itemIndex < 0 || itemIndex >= len(sess.Invoice.Items) {
			return "", ErrItemIndex
		}
		sess.ItemIndex = itemIndex
	}
	sess.State = spec.state
	m.store.Put(sess)
	return spec.prompt, nil
}

// Input applies free text to the pending field edit. Numeric fields parse
// the text as a real number; a parse failure returns a rejected Result and
// leaves the state and invoice untouched, so the same prompt stays
// pending. On success the field is set, recalculation fires per the
// trigger table, and the session returns to awaiting confirmation.
func (m *Machine) Input(chatID int64, text string) (Result, error) {
	sess, ok := m.store.Get(chatID)
	if !ok {
		return Result{}, ErrNoSession
	}
	spec, ok := specsByState[sess.State]
	if !ok {
		return Result{}, ErrNotEditing
	}
	if spec.item && (sess.ItemIndex < 0 || sess.ItemIndex >= len(sess.Invoice.Items)) {
		return Result{}, ErrItemIndex
	}

	if spec.numeric {
		// ParseFloat accepts "inf" and "nan"; those are not values a field
		// can hold, so they fail like any other unparseable input.
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Result{Reply: "Invalid value. Enter a number."}, nil
		}
		spec.setNumber(sess.Invoice, sess.ItemIndex, v)
	} else {
		spec.setText(sess.Invoice, sess.ItemIndex, text)
	}

	if spec.recalc {
		invoice.Recalculate(sess.Invoice)
	}

	sess.State = StateAwaitingConfirmation
	m.store.Put(sess)
	return Result{OK: true, Reply: spec.reply, Invoice: sess.Invoice}, nil
}

// DeleteItem removes the item at index, recalculates the totals, and
// invalidates any pending item edit context since indices have shifted.
// Returns the removed item's name.
func (m *Machine) DeleteItem(chatID int64, index int) (string, *invoice.Invoice, error) {
	sess, ok := m.store.Get(chatID)
	if !ok {
		return "", nil, ErrNoSession
	}
	if index < 0 || index >= len(sess.Invoice.Items) {
		return "", nil, ErrItemIndex
	}

	name := sess.Invoice.Items[index].Name
	sess.Invoice.Items = append(sess.Invoice.Items[:index], sess.Invoice.Items[index+1:]...)
	invoice.Recalculate(sess.Invoice)

	sess.ItemIndex = -1
	sess.State = StateAwaitingConfirmation
	m.store.Put(sess)
	return name, sess.Invoice, nil
}

// End discards the session and its invoice. Used both when a save commits
// (ownership moved to the database) and on cancellation.
func (m *Machine) End(chatID int64) {
	m.store.Clear(chatID)
}
