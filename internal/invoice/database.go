package invoice

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

const (
	invoiceBucketName = "invoices"
	itemBucketName    = "invoice_items"
)

// SavedInvoice is the persisted header row of a saved invoice.
type SavedInvoice struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	SupplierName  string    `json:"supplier_name"`
	TaxNumber     string    `json:"tax_number"`
	InvoiceNumber string    `json:"invoice_number"`
	InvoiceDate   string    `json:"invoice_date"`
	Subtotal      float64   `json:"subtotal"`
	Discount      float64   `json:"discount"`
	TaxRate       float64   `json:"tax_rate"`
	TaxAmount     float64   `json:"tax_amount"`
	TotalAmount   float64   `json:"total_amount"`
	CreatedAt     time.Time `json:"created_at"`
}

// SavedItem is a persisted line item row, denormalized with the invoice
// date so item listings can be filtered without joining headers.
type SavedItem struct {
	ID          int64   `json:"id"`
	InvoiceID   int64   `json:"invoice_id"`
	UserID      int64   `json:"user_id"`
	Name        string  `json:"name"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
	InvoiceDate string  `json:"invoice_date"`
}

// DB defines the interface for invoice persistence. Saved records are
// append-only: edits happen pre-save, in memory.
type DB interface {
	// SaveInvoice commits the invoice header and all item rows atomically
	// and returns the new invoice ID.
	SaveInvoice(userID int64, inv *Invoice) (int64, error)

	// ListInvoices returns a user's saved invoices, optionally bounded by
	// an inclusive invoice-date range (YYYY-MM-DD, empty means unbounded).
	ListInvoices(userID int64, startDate, endDate string) ([]*SavedInvoice, error)

	// ListItems returns a user's saved line items with the same date
	// filtering as ListInvoices.
	ListItems(userID int64, startDate, endDate string) ([]*SavedItem, error)

	// CountInvoices returns the number of invoices saved for a user.
	CountInvoices(userID int64) (int, error)

	// IsDuplicate reports whether an invoice with the same invoice number
	// and tax number is already saved for this user. A blank identifier
	// never matches.
	IsDuplicate(userID int64, invoiceNumber, taxNumber string) (bool, error)

	// Close closes the database.
	Close() error
}

// BoltDB implements DB using BoltDB, with one sub-bucket per user so one
// user's records never mix with another's.
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB opens (or creates) the database at path.
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(invoiceBucketName)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(itemBucketName)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

func userKey(userID int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(userID))
	return key
}

func recordKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}

func userBucket(tx *bbolt.Tx, bucketName string, userID int64, create bool) (*bbolt.Bucket, error) {
	root := tx.Bucket([]byte(bucketName))
	if create {
		return root.CreateBucketIfNotExists(userKey(userID))
	}
	return root.Bucket(userKey(userID)), nil
}

// SaveInvoice writes the header and all item rows in one transaction, so
// a partial save is never observable.
func (b *BoltDB) SaveInvoice(userID int64, inv *Invoice) (int64, error) {
	var invoiceID int64

	err := b.db.Update(func(tx *bbolt.Tx) error {
		invoices, err := userBucket(tx, invoiceBucketName, userID, true)
		if err != nil {
			return fmt.Errorf("creating user invoice bucket: %w", err)
		}
		items, err := userBucket(tx, itemBucketName, userID, true)
		if err != nil {
			return fmt.Errorf("creating user item bucket: %w", err)
		}

		seq, err := invoices.NextSequence()
		if err != nil {
			return fmt.Errorf("allocating invoice id: %w", err)
		}
		invoiceID = int64(seq)

		header := SavedInvoice{
			ID:            invoiceID,
			UserID:        userID,
			SupplierName:  inv.SupplierName,
			TaxNumber:     inv.TaxNumber,
			InvoiceNumber: inv.InvoiceNumber,
			InvoiceDate:   inv.InvoiceDate,
			Subtotal:      inv.Subtotal,
			Discount:      inv.Discount,
			TaxRate:       inv.TaxRate,
			TaxAmount:     inv.TaxAmount,
			TotalAmount:   inv.TotalAmount,
			CreatedAt:     time.Now(),
		}
		data, err := json.Marshal(&header)
		if err != nil {
			return fmt.Errorf("marshaling invoice: %w", err)
		}
		if err := invoices.Put(recordKey(invoiceID), data); err != nil {
			return fmt.Errorf("storing invoice: %w", err)
		}

		for _, it := range inv.Items {
			seq, err := items.NextSequence()
			if err != nil {
				return fmt.Errorf("allocating item id: %w", err)
			}
			row := SavedItem{
				ID:          int64(seq),
				InvoiceID:   invoiceID,
				UserID:      userID,
				Name:        it.Name,
				Quantity:    it.Quantity,
				Unit:        it.Unit,
				UnitPrice:   it.UnitPrice,
				Total:       it.Total,
				InvoiceDate: inv.InvoiceDate,
			}
			data, err := json.Marshal(&row)
			if err != nil {
				return fmt.Errorf("marshaling item: %w", err)
			}
			if err := items.Put(recordKey(row.ID), data); err != nil {
				return fmt.Errorf("storing item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return invoiceID, nil
}

func inDateRange(date, startDate, endDate string) bool {
	if startDate != "" && date < startDate {
		return false
	}
	if endDate != "" && date > endDate {
		return false
	}
	return true
}

// ListInvoices returns saved invoices ordered by invoice date descending,
// then creation time descending.
func (b *BoltDB) ListInvoices(userID int64, startDate, endDate string) ([]*SavedInvoice, error) {
	invoices := make([]*SavedInvoice, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket, _ := userBucket(tx, invoiceBucketName, userID, false)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			var inv SavedInvoice
			if err := json.Unmarshal(v, &inv); err != nil {
				return fmt.Errorf("unmarshaling invoice: %w", err)
			}
			if inDateRange(inv.InvoiceDate, startDate, endDate) {
				invoices = append(invoices, &inv)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(invoices, func(i, j int) bool {
		if invoices[i].InvoiceDate != invoices[j].InvoiceDate {
			return invoices[i].InvoiceDate > invoices[j].InvoiceDate
		}
		return invoices[i].CreatedAt.After(invoices[j].CreatedAt)
	})
	return invoices, nil
}

// ListItems returns saved line items ordered by invoice date descending.
func (b *BoltDB) ListItems(userID int64, startDate, endDate string) ([]*SavedItem, error) {
	items := make([]*SavedItem, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket, _ := userBucket(tx, itemBucketName, userID, false)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			var it SavedItem
			if err := json.Unmarshal(v, &it); err != nil {
				return fmt.Errorf("unmarshaling item: %w", err)
			}
			if inDateRange(it.InvoiceDate, startDate, endDate) {
				items = append(items, &it)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].InvoiceDate != items[j].InvoiceDate {
			return items[i].InvoiceDate > items[j].InvoiceDate
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

// CountInvoices returns the number of invoices saved for a user.
func (b *BoltDB) CountInvoices(userID int64) (int, error) {
	count := 0
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket, _ := userBucket(tx, invoiceBucketName, userID, false)
		if bucket == nil {
			return nil
		}
		count = bucket.Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// IsDuplicate reports whether the (invoice number, tax number) pair is
// already saved for this user. Blank identifiers never produce a match.
func (b *BoltDB) IsDuplicate(userID int64, invoiceNumber, taxNumber string) (bool, error) {
	if invoiceNumber == "" || taxNumber == "" {
		return false, nil
	}

	duplicate := false
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket, _ := userBucket(tx, invoiceBucketName, userID, false)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			var inv SavedInvoice
			if err := json.Unmarshal(v, &inv); err != nil {
				return fmt.Errorf("unmarshaling invoice: %w", err)
			}
			if inv.InvoiceNumber == invoiceNumber && inv.TaxNumber == taxNumber {
				duplicate = true
			}
			return nil
		})
	})
	if err != nil {
		return false, err
	}
	return duplicate, nil
}

// Close closes the database.
func (b *BoltDB) Close() error {
	return b.db.Close()
}
