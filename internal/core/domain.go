package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Income  ItemType = "income"
	Expense ItemType = "expense"
)

type (
	// ItemType classifies categories and operations.
	ItemType string

	Date struct {
		time.Time
	}

	BankAccount struct {
		ID      uuid.UUID
		Name    string
		Balance decimal.Decimal
	}

	Category struct {
		ID   uuid.UUID
		Type ItemType
		Name string
	}

	// Operation is a dated income or expense booked against an account.
	// Only CategoryID and Description may change once persisted.
	Operation struct {
		ID            uuid.UUID
		Type          ItemType
		BankAccountID uuid.UUID
		Amount        decimal.Decimal
		Date          Date
		CategoryID    uuid.UUID
		Description   string
	}
)

// Error categories. Specific errors wrap one of these, so callers can
// branch with errors.Is.
var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidMutation = errors.New("invalid mutation")
	ErrTransaction     = errors.New("transaction failed")
)

var (
	ErrEmptyName       = fmt.Errorf("%w: name cannot be empty", ErrValidation)
	ErrNegativeAmount  = fmt.Errorf("%w: amount cannot be negative", ErrValidation)
	ErrEmptyAccountID  = fmt.Errorf("%w: bank account id is empty", ErrValidation)
	ErrEmptyCategoryID = fmt.Errorf("%w: category id is empty", ErrValidation)
	ErrEmptyID         = fmt.Errorf("%w: id is empty", ErrValidation)
	ErrInvalidItemType = fmt.Errorf("%w: invalid item type", ErrValidation)
	ErrZeroDate        = fmt.Errorf("%w: date cannot be zero", ErrValidation)
)

func (t ItemType) Valid() bool {
	return t == Income || t == Expense
}

// Opposite returns the type that reverses t's effect on a balance.
func (t ItemType) Opposite() ItemType {
	if t == Income {
		return Expense
	}
	return Income
}

func (t ItemType) String() string {
	return string(t)
}

// ParseItemType accepts "income" or "expense" in any case.
func ParseItemType(s string) (ItemType, error) {
	t := ItemType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidItemType, s)
	}
	return t, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// TimestampLayout is how stores persist operation dates.
const TimestampLayout = time.RFC3339Nano

// DateLayout is the calendar form dates are read, written and stored in.
const DateLayout = "2006-01-02"

// ParseDate reads a YYYY-MM-DD date as a UTC calendar day.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: invalid date %q", ErrValidation, s)
	}
	return Date{Time: t}, nil
}

// Canonical returns d in UTC exactly as it reads back after being written
// with TimestampLayout.
func (d Date) Canonical() Date {
	t, err := time.Parse(TimestampLayout, d.UTC().Format(TimestampLayout))
	if err != nil {
		return Date{Time: d.UTC()}
	}
	return Date{Time: t}
}

// CanonicalAmount returns d in the coefficient and exponent its string
// form parses to, so 14.90 and 14.9 become the same value.
func CanonicalAmount(d decimal.Decimal) decimal.Decimal {
	c, err := decimal.NewFromString(d.String())
	if err != nil {
		return d
	}
	return c
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// Within reports whether d falls inside [start, end], both ends included.
func (d Date) Within(start, end Date) bool {
	return !d.Before(start.Time) && !d.After(end.Time)
}

func NewBankAccount(name string) (BankAccount, error) {
	a := BankAccount{
		ID:      uuid.New(),
		Name:    strings.TrimSpace(name),
		Balance: CanonicalAmount(decimal.Zero),
	}
	return a, a.Validate()
}

// Canonical returns a with its balance in canonical form.
func (a BankAccount) Canonical() BankAccount {
	a.Balance = CanonicalAmount(a.Balance)
	return a
}

func (a BankAccount) Validate() error {
	if a.ID == uuid.Nil {
		return ErrEmptyID
	}
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// UpdateBalance applies amount to the balance: Income adds, Expense
// subtracts. Balances may go negative. The result is canonical.
func (a *BankAccount) UpdateBalance(amount decimal.Decimal, t ItemType) {
	switch t {
	case Income:
		a.Balance = a.Balance.Add(amount)
	case Expense:
		a.Balance = a.Balance.Sub(amount)
	}
	a.Balance = CanonicalAmount(a.Balance)
}

func (a BankAccount) Accept(v Visitor) {
	v.VisitBankAccount(a)
}

func NewCategory(t ItemType, name string) (Category, error) {
	c := Category{
		ID:   uuid.New(),
		Type: t,
		Name: strings.TrimSpace(name),
	}
	return c, c.Validate()
}

func (c Category) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyID
	}
	if !c.Type.Valid() {
		return ErrInvalidItemType
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (c Category) Accept(v Visitor) {
	v.VisitCategory(c)
}

// NewOperation validates its input before anything can be persisted.
// A zero amount is accepted; a negative one is not. Amount and date are
// stored in canonical form.
func NewOperation(t ItemType, accountID uuid.UUID, amount decimal.Decimal, date Date, categoryID uuid.UUID, description string) (Operation, error) {
	op := Operation{
		ID:            uuid.New(),
		Type:          t,
		BankAccountID: accountID,
		Amount:        CanonicalAmount(amount),
		Date:          date.Canonical(),
		CategoryID:    categoryID,
		Description:   strings.TrimSpace(description),
	}
	return op, op.Validate()
}

// Canonical returns o with amount and date in canonical form.
func (o Operation) Canonical() Operation {
	o.Amount = CanonicalAmount(o.Amount)
	o.Date = o.Date.Canonical()
	return o
}

func (o Operation) Validate() error {
	if o.ID == uuid.Nil {
		return ErrEmptyID
	}
	if !o.Type.Valid() {
		return ErrInvalidItemType
	}
	if o.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if o.BankAccountID == uuid.Nil {
		return ErrEmptyAccountID
	}
	if o.CategoryID == uuid.Nil {
		return ErrEmptyCategoryID
	}
	return o.Date.Validate()
}

// SignedAmount is the operation's contribution to its account balance.
func (o Operation) SignedAmount() decimal.Decimal {
	if o.Type == Expense {
		return o.Amount.Neg()
	}
	return o.Amount
}

// SameBooking reports whether o and other agree on every field that is
// immutable after creation: type, account, amount and date.
func (o Operation) SameBooking(other Operation) bool {
	return o.Type == other.Type &&
		o.BankAccountID == other.BankAccountID &&
		o.Amount.Equal(other.Amount) &&
		o.Date.Equal(other.Date.Time)
}

func (o Operation) Accept(v Visitor) {
	v.VisitOperation(o)
}
