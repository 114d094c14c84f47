package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  CategoryType = "Income"
	Expense CategoryType = "Expense"
)

// DayLabelLayout renders a calendar day as "05-Jan". The year is dropped, so
// chart buckets from different years can share a label.
const DayLabelLayout = "02-Jan"

type (
	CategoryType string

	Category struct {
		ID    int64        `json:"id"`
		Title string       `json:"title"`
		Icon  string       `json:"icon"`
		Type  CategoryType `json:"type"`
	}

	// Transaction is a single income or expense entry. Category is nil when the
	// transaction is not attached to any category.
	Transaction struct {
		ID         int64     `json:"id"`
		Amount     int64     `json:"amount"`
		Date       time.Time `json:"date"`
		Note       string    `json:"note,omitempty"`
		CategoryID int64     `json:"categoryId,omitempty"`
		Category   *Category `json:"category,omitempty"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrNoteTooLong     = errors.New("note too long (max 200 characters)")
	ErrUnknownCategory = errors.New("unknown category")
)

// IsKnown reports whether the type is one the dashboard aggregates.
func (ct CategoryType) IsKnown() bool {
	return ct == Income || ct == Expense
}

// Label returns the icon and title joined by a space.
func (c Category) Label() string {
	return c.Icon + " " + c.Title
}

// CategoryType returns the type of the attached category, or false when there is none.
func (t Transaction) CategoryType() (CategoryType, bool) {
	if t.Category == nil {
		return "", false
	}
	return t.Category.Type, true
}

// Day returns the transaction date truncated to midnight.
func (t Transaction) Day() time.Time {
	return Day(t.Date)
}

// Day truncates a time to the calendar day it falls on, keeping its location.
func Day(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
}

// DayLabel formats a date with DayLabelLayout.
func DayLabel(ts time.Time) string {
	return ts.Format(DayLabelLayout)
}

// NewDate creates a UTC date from year, month, day.
func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if len(strings.TrimSpace(t.Note)) > 200 {
		return ErrNoteTooLong
	}
	return nil
}
