package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by the budgeting API.
const DateLayout = "2006-01-02"

// CategoryType tells whether a category's transactions count as income or expense.
type CategoryType string

const (
	Income  CategoryType = "income"
	Expense CategoryType = "expense"
)

type (
	Category struct {
		ID   int64        `json:"id"`
		Name string       `json:"name"`
		Type CategoryType `json:"type"`
	}

	// Transaction is the wire shape returned by GET /transactions. The API
	// embeds the category object; older payloads only carry category_id.
	Transaction struct {
		ID         int64     `json:"id"`
		Amount     Amount    `json:"amount"`
		Date       string    `json:"date"`
		Note       *string   `json:"note,omitempty"`
		Category   *Category `json:"category,omitempty"`
		CategoryID *int64    `json:"category_id,omitempty"`
	}

	User struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	}

	TokenResponse struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}

	CategoryTotal struct {
		CategoryID int64        `json:"category_id"`
		Name       string       `json:"name"`
		Type       CategoryType `json:"type"`
		Total      Amount       `json:"total"`
		Count      int          `json:"count"`
	}

	// DashboardSummary is the server-side aggregate from GET /dashboard.
	DashboardSummary struct {
		IncomeTotal  Amount          `json:"income_total"`
		ExpenseTotal Amount          `json:"expense_total"`
		Net          Amount          `json:"net"`
		TxCount      int             `json:"tx_count"`
		ByCategory   []CategoryTotal `json:"by_category"`
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidCategoryType = errors.New("invalid category type")
	ErrEmptyName           = errors.New("empty name")
	ErrEmptyTitle          = errors.New("empty title")
	ErrMissingCategory     = errors.New("missing category")
)

// ParseCategoryType accepts only the two known types.
func ParseCategoryType(s string) (CategoryType, error) {
	switch CategoryType(strings.TrimSpace(strings.ToLower(s))) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	}
	return "", ErrInvalidCategoryType
}

// ResolveCategoryType maps anything that is not "income" to Expense.
func ResolveCategoryType(s CategoryType) CategoryType {
	if s == Income {
		return Income
	}
	return Expense
}

// NoteText returns the note or an empty string.
func (t Transaction) NoteText() string {
	if t.Note == nil {
		return ""
	}
	return *t.Note
}

// ValidateDate checks a YYYY-MM-DD calendar date.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, strings.TrimSpace(s)); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD date at midnight in loc, so that a date never
// shifts to the previous or next day because of the zone offset.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FieldError reports a single invalid form field.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ValidationErrors collects every invalid field of a form.
type ValidationErrors struct {
	Errors []error
}

func (ve *ValidationErrors) Error() string {
	msgs := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

// Add records err for field.
func (ve *ValidationErrors) Add(field string, err error) {
	ve.Errors = append(ve.Errors, &FieldError{Field: field, Err: err})
}

// Err returns nil when nothing was recorded.
func (ve *ValidationErrors) Err() error {
	if len(ve.Errors) == 0 {
		return nil
	}
	return ve
}

// IsValidationError reports whether err carries field validation failures.
func IsValidationError(err error) bool {
	var ve *ValidationErrors
	var fe *FieldError
	return errors.As(err, &ve) || errors.As(err, &fe)
}
