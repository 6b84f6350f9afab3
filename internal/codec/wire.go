package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"inari/internal/core"
)

// Wire structs use pointers so a missing field can be told apart from a zero one.

type periodWire struct {
	Year  *int `json:"year"`
	Month *int `json:"month"`
}

type walletWire struct {
	ID          *string   `json:"id"`
	Name        *string   `json:"name"`
	Currency    *string   `json:"currency"`
	Type        *string   `json:"type"`
	BurdenRatio *float64  `json:"burdenRatio"`
	IsArchived  *bool     `json:"isArchived"`
	OwnerIDs    *[]string `json:"ownerIDs"`
	CreatedAt   *string   `json:"createdAt"`
	ModifiedAt  *string   `json:"modifiedAt"`
}

type categoryWire struct {
	ID         *string `json:"id"`
	WalletID   *string `json:"walletID"`
	Name       *string `json:"name"`
	IconName   *string `json:"iconName"`
	Color      *string `json:"color"`
	IsShared   *bool   `json:"isShared"`
	SortOrder  *int    `json:"sortOrder"`
	ModifiedAt *string `json:"modifiedAt"`
}

type budgetWire struct {
	ID         *string     `json:"id"`
	CategoryID *string     `json:"categoryID"`
	Limit      *float64    `json:"limit"`
	Period     *periodWire `json:"period"`
	ModifiedAt *string     `json:"modifiedAt"`
}

type kindWire struct {
	Type       *string         `json:"type"`
	Properties json.RawMessage `json:"properties,omitempty"`
}

type recurringWire struct {
	Frequency      *string `json:"frequency"`
	EndDate        *string `json:"endDate,omitempty"`
	CustomInterval *int    `json:"customInterval,omitempty"`
}

type spreadOutWire struct {
	TotalAmount  *float64 `json:"totalAmount"`
	Duration     *int     `json:"duration"`
	DurationType *string  `json:"durationType"`
	StartDate    *string  `json:"startDate"`
	EndDate      *string  `json:"endDate"`
}

type expectationWire struct {
	ExpectedAmount *float64 `json:"expectedAmount"`
	ActualAmount   *float64 `json:"actualAmount,omitempty"`
}

type transactionWire struct {
	ID                *string         `json:"id"`
	WalletID          *string         `json:"walletID"`
	Amount            *float64        `json:"amount"`
	Kind              json.RawMessage `json:"kind"`
	CategoryID        *string         `json:"categoryID"`
	Date              *string         `json:"date"`
	Description       *string         `json:"description"`
	IsSharedExpense   *bool           `json:"isSharedExpense"`
	CustomBurdenRatio *float64        `json:"customBurdenRatio,omitempty"`
	ModifiedAt        *string         `json:"modifiedAt"`
}

func ptr[T any](v T) *T { return &v }

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// encoder accumulates the first failure while a wire struct is filled in.
type encoder struct {
	typ string
	err error
}

func (e *encoder) float(field string, d decimal.Decimal) *float64 {
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) || !decimal.NewFromFloat(f).Equal(d) {
		if e.err == nil {
			e.err = &EncodeError{Type: e.typ, Field: field, Err: fmt.Errorf("%w: %s", ErrPrecisionLoss, d)}
		}
		return nil
	}
	return &f
}

// decoder accumulates the first failure while a wire struct is read back.
// Every accessor returns the zero value once an error has been recorded.
type decoder struct {
	typ    string
	prefix string
	err    error
}

func (d *decoder) path(field string) string {
	if d.prefix == "" {
		return field
	}
	return d.prefix + "." + field
}

func (d *decoder) fail(field, value string, err error) {
	if d.err == nil {
		d.err = &DecodeError{Type: d.typ, Field: d.path(field), Value: value, Err: err}
	}
}

func (d *decoder) missing(field string) {
	d.fail(field, "", ErrMissingField)
}

func (d *decoder) str(field string, v *string) string {
	if v == nil {
		d.missing(field)
		return ""
	}
	return *v
}

func (d *decoder) boolean(field string, v *bool) bool {
	if v == nil {
		d.missing(field)
		return false
	}
	return *v
}

func (d *decoder) integer(field string, v *int) int {
	if v == nil {
		d.missing(field)
		return 0
	}
	return *v
}

func (d *decoder) decimal(field string, v *float64) decimal.Decimal {
	if v == nil {
		d.missing(field)
		return decimal.Zero
	}
	return decimal.NewFromFloat(*v)
}

func (d *decoder) optDecimal(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	return ptr(decimal.NewFromFloat(*v))
}

func (d *decoder) id(field string, v *string) uuid.UUID {
	if v == nil {
		d.missing(field)
		return uuid.Nil
	}
	id, err := uuid.Parse(*v)
	if err != nil {
		d.fail(field, *v, fmt.Errorf("%w: %v", ErrInvalidValue, err))
		return uuid.Nil
	}
	return id
}

// entityID reads the identity of a stored entity. The nil UUID is refused
// because the constructors would replace it with a fresh one.
func (d *decoder) entityID(v *string) uuid.UUID {
	id := d.id("id", v)
	if id == uuid.Nil && v != nil && d.err == nil {
		d.fail("id", *v, fmt.Errorf("%w: nil uuid", ErrInvalidValue))
	}
	return id
}

// time reads a required timestamp. The zero instant is refused for the same
// reason as the nil UUID.
func (d *decoder) time(field string, v *string) time.Time {
	if v == nil {
		d.missing(field)
		return time.Time{}
	}
	t := d.parseTime(field, *v)
	if t.IsZero() && d.err == nil {
		d.fail(field, *v, fmt.Errorf("%w: zero time", ErrInvalidValue))
	}
	return t
}

func (d *decoder) optTime(field string, v *string) *time.Time {
	if v == nil {
		return nil
	}
	t := d.parseTime(field, *v)
	return &t
}

func (d *decoder) parseTime(field, s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		d.fail(field, s, fmt.Errorf("%w: %v", ErrInvalidValue, err))
		return time.Time{}
	}
	return t
}

func (d *decoder) currency(field string, v *string) core.CurrencyCode {
	if v == nil {
		d.missing(field)
		return core.CurrencyCode{}
	}
	c, err := core.NewCurrencyCode(*v)
	if err != nil {
		d.fail(field, *v, err)
		return core.CurrencyCode{}
	}
	return c
}

// period decodes a nested BudgetPeriod under field.
func (d *decoder) period(field string, v *periodWire) core.BudgetPeriod {
	if v == nil {
		d.missing(field)
		return core.BudgetPeriod{}
	}
	year := d.integer(field+".year", v.Year)
	month := d.integer(field+".month", v.Month)
	if d.err != nil {
		return core.BudgetPeriod{}
	}
	p, err := core.NewBudgetPeriod(year, month)
	if err != nil {
		d.fail(field+".month", fmt.Sprint(month), err)
	}
	return p
}

// construct wraps a constructor failure so that it points at the field the
// violation names.
func (d *decoder) construct(err error) error {
	if err == nil {
		return nil
	}
	field := ""
	var cv *core.ContractViolation
	if errors.As(err, &cv) {
		field = d.path(cv.Field)
	}
	return &DecodeError{Type: d.typ, Field: field, Err: err}
}

// unmarshal reports syntax and type errors as DecodeErrors for typ.
func unmarshal(typ string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		var ute *json.UnmarshalTypeError
		if errors.As(err, &ute) {
			return &DecodeError{Type: typ, Field: ute.Field, Value: ute.Value, Err: fmt.Errorf("%w: %v", ErrInvalidValue, err)}
		}
		return &DecodeError{Type: typ, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	return nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
