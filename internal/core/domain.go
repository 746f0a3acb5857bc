package core

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type (
	// Date is a calendar date serialized as YYYY-MM-DD, the format the
	// ledger tables store.
	Date struct {
		time.Time
	}

	// Category is one row of the reference list that grounds the model's
	// classification. Read-only from this service's point of view.
	Category struct {
		Name  string `json:"category"`
		Group string `json:"group_name"`
	}

	// Expense is one spending record. Insert-only: this service never
	// updates or deletes rows it has written.
	Expense struct {
		ID       string  `json:"id"`
		Date     Date    `json:"date"`
		Item     string  `json:"item"`
		Amount   float64 `json:"amount"`
		Category string  `json:"category"`
		Notes    string  `json:"notes,omitempty"`
		PaidBy   string  `json:"paid_by"`
	}

	// Income is one receipt record. Insert-only as well.
	Income struct {
		ID     string  `json:"id"`
		Date   Date    `json:"date"`
		Source string  `json:"source"`
		Amount float64 `json:"amount"`
		Notes  string  `json:"notes,omitempty"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyItem     = errors.New("empty item")
	ErrEmptySource   = errors.New("empty source")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptyID       = errors.New("empty id")
)

// NewID generates a fresh record identifier. Never reused.
func NewID() string {
	return uuid.NewString()
}

// Today returns the server's current date. Record dates are always the
// date of the request, never a date parsed from the message text.
func Today() Date {
	return Date{Time: time.Now()}
}

func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Label renders the "Name (Group)" form embedded in the prompt.
func (c Category) Label() string {
	if strings.TrimSpace(c.Group) == "" {
		return c.Name
	}
	return c.Name + " (" + c.Group + ")"
}

// Labels renders the full reference list for prompt construction.
func Labels(cats []Category) []string {
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		out = append(out, c.Label())
	}
	return out
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(e.Item) == "" {
		return ErrEmptyItem
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (i Income) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(i.Source) == "" {
		return ErrEmptySource
	}
	if i.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// FormatAmount renders an amount for confirmation messages without a
// trailing fractional part: 150, not 150.00.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
