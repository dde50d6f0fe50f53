package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ISODate is the layout used for every calendar date crossing a boundary.
const ISODate = "2006-01-02"

// MaxEnteredDescriptionLen bounds descriptions typed by a user. Descriptions
// built from scanned receipts are not limited.
const MaxEnteredDescriptionLen = 10000

type (
	// Date is a calendar date with no time-of-day component.
	Date struct {
		time.Time
	}

	LineItem struct {
		Name  string          `json:"name"`
		Price decimal.Decimal `json:"price"`
	}

	Expense struct {
		ID          string          `json:"id"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		Category    Category        `json:"category"`
		Date        Date            `json:"date"`
		Receipt     *string         `json:"receipt"`

		// Optional fields carried over from a scanned receipt.
		StoreName string          `json:"storeName,omitempty"`
		Subtotal  decimal.Decimal `json:"subtotal"`
		Tax       decimal.Decimal `json:"tax"`
		Total     decimal.Decimal `json:"total"`
		Time      string          `json:"time,omitempty"`
		Items     []LineItem      `json:"items,omitempty"`

		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// ExpenseUpdate is a partial update; nil fields are left untouched.
	ExpenseUpdate struct {
		Description *string          `json:"description,omitempty"`
		Category    *Category        `json:"category,omitempty"`
		Date        *Date            `json:"date,omitempty"`
		Amount      *decimal.Decimal `json:"amount,omitempty"`
		Receipt     *string          `json:"receipt,omitempty"`
	}

	// ExpenseDraft is an unpersisted expense candidate produced from receipt text.
	ExpenseDraft struct {
		StoreName   string          `json:"storeName"`
		Items       []LineItem      `json:"items"`
		Subtotal    decimal.Decimal `json:"subtotal"`
		Tax         decimal.Decimal `json:"tax"`
		Total       decimal.Decimal `json:"total"`
		Amount      decimal.Decimal `json:"amount"`
		Date        Date            `json:"date"`
		Time        string          `json:"time"`
		Description string          `json:"description"`
		Category    Category        `json:"category"`
	}

	// StoredDraft is a draft waiting for user review.
	StoredDraft struct {
		ID        string       `json:"id"`
		Draft     ExpenseDraft `json:"draft"`
		Receipt   *string      `json:"receipt"`
		CreatedAt time.Time    `json:"createdAt"`
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrDescriptionTooLong = errors.New("description too long (max 10000 characters)")
	ErrUnknownCategory    = errors.New("unknown category")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses an ISO 8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(ISODate, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(ISODate)
}

// Equal reports whether both dates fall on the same calendar day.
func (d Date) Equal(o Date) bool {
	y1, m1, d1 := d.Date()
	y2, m2, d2 := o.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateEnteredDescription rejects user-entered descriptions longer than
// MaxEnteredDescriptionLen bytes.
func ValidateEnteredDescription(s string) error {
	if len(s) > MaxEnteredDescriptionLen {
		return ErrDescriptionTooLong
	}
	return nil
}

// Apply returns a copy of e with the non-nil fields of u applied.
func (u ExpenseUpdate) Apply(e Expense) Expense {
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.Category != nil {
		e.Category = ParseCategory(string(*u.Category))
	}
	if u.Date != nil {
		e.Date = *u.Date
	}
	if u.Amount != nil {
		e.Amount = *u.Amount
	}
	if u.Receipt != nil {
		if *u.Receipt == "" {
			e.Receipt = nil
		} else {
			ref := *u.Receipt
			e.Receipt = &ref
		}
	}
	return e
}

// IsEmpty reports whether the update changes nothing.
func (u ExpenseUpdate) IsEmpty() bool {
	return u.Description == nil && u.Category == nil && u.Date == nil && u.Amount == nil && u.Receipt == nil
}

// ToExpense turns a reviewed draft into a record ready for the store.
func (d ExpenseDraft) ToExpense(receipt *string) Expense {
	items := make([]LineItem, len(d.Items))
	copy(items, d.Items)
	return Expense{
		Amount:      d.Amount,
		Description: d.Description,
		Category:    ParseCategory(string(d.Category)),
		Date:        d.Date,
		Receipt:     receipt,
		StoreName:   d.StoreName,
		Subtotal:    d.Subtotal,
		Tax:         d.Tax,
		Total:       d.Total,
		Time:        d.Time,
		Items:       items,
	}
}
