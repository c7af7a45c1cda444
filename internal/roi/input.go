package roi

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Form field names, shared by the HTML form, the JSON API and Calculator.Set.
const (
	FieldWorkingHoursCalls     = "workingHoursCalls"
	FieldAfterHoursCalls       = "afterHoursCalls"
	FieldBookingConversionRate = "bookingConversionRate"
	FieldMissedCallRate        = "missedCallRate"
	FieldAverageOrderValue     = "averageOrderValue"
	FieldCallDurationMinutes   = "callDurationMinutes"
)

const (
	DefaultWorkingHoursCalls     = 30.0
	DefaultAfterHoursCalls       = 2.0
	DefaultBookingConversionRate = 30.0
	DefaultMissedCallRate        = 20.0
	DefaultAverageOrderValue     = 100.0
	DefaultCallDurationMinutes   = 3.0
)

// ErrUnknownField is returned by Calculator.Set for a field name it does not own.
var ErrUnknownField = errors.New("unknown calculator field")

// Fields lists every calculator field in form order.
var Fields = []string{
	FieldWorkingHoursCalls,
	FieldAfterHoursCalls,
	FieldBookingConversionRate,
	FieldMissedCallRate,
	FieldAverageOrderValue,
	FieldCallDurationMinutes,
}

// Input holds raw calculator values exactly as typed into the form.
type Input struct {
	WorkingHoursCalls     string `json:"workingHoursCalls"`
	AfterHoursCalls       string `json:"afterHoursCalls"`
	BookingConversionRate string `json:"bookingConversionRate"`
	MissedCallRate        string `json:"missedCallRate"`
	AverageOrderValue     string `json:"averageOrderValue"`
	CallDurationMinutes   string `json:"callDurationMinutes"`
}

// InputFromValues reads the calculator fields from a parsed form or query string.
// Missing keys stay empty and resolve to their defaults on Normalize.
func InputFromValues(values url.Values) Input {
	return Input{
		WorkingHoursCalls:     values.Get(FieldWorkingHoursCalls),
		AfterHoursCalls:       values.Get(FieldAfterHoursCalls),
		BookingConversionRate: values.Get(FieldBookingConversionRate),
		MissedCallRate:        values.Get(FieldMissedCallRate),
		AverageOrderValue:     values.Get(FieldAverageOrderValue),
		CallDurationMinutes:   values.Get(FieldCallDurationMinutes),
	}
}

// Values encodes the non-empty fields back into a query string.
func (in Input) Values() url.Values {
	values := url.Values{}
	for _, field := range Fields {
		if raw := in.Get(field); raw != "" {
			values.Set(field, raw)
		}
	}
	return values
}

// Get returns the raw value of field, or "" for an unknown field.
func (in Input) Get(field string) string {
	switch field {
	case FieldWorkingHoursCalls:
		return in.WorkingHoursCalls
	case FieldAfterHoursCalls:
		return in.AfterHoursCalls
	case FieldBookingConversionRate:
		return in.BookingConversionRate
	case FieldMissedCallRate:
		return in.MissedCallRate
	case FieldAverageOrderValue:
		return in.AverageOrderValue
	case FieldCallDurationMinutes:
		return in.CallDurationMinutes
	}
	return ""
}

func (in *Input) set(field, raw string) error {
	switch field {
	case FieldWorkingHoursCalls:
		in.WorkingHoursCalls = raw
	case FieldAfterHoursCalls:
		in.AfterHoursCalls = raw
	case FieldBookingConversionRate:
		in.BookingConversionRate = raw
	case FieldMissedCallRate:
		in.MissedCallRate = raw
	case FieldAverageOrderValue:
		in.AverageOrderValue = raw
	case FieldCallDurationMinutes:
		in.CallDurationMinutes = raw
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Normalize resolves every raw field to a finite number. Ranges are not
// enforced: "-10" stays -10 and "150" stays 150.
func (in Input) Normalize() Params {
	return Params{
		WorkingHoursCalls:     ParseNumber(in.WorkingHoursCalls, DefaultWorkingHoursCalls),
		AfterHoursCalls:       ParseNumber(in.AfterHoursCalls, DefaultAfterHoursCalls),
		BookingConversionRate: ParseNumber(in.BookingConversionRate, DefaultBookingConversionRate),
		MissedCallRate:        ParseNumber(in.MissedCallRate, DefaultMissedCallRate),
		AverageOrderValue:     ParseNumber(in.AverageOrderValue, DefaultAverageOrderValue),
		CallDurationMinutes:   ParseNumber(in.CallDurationMinutes, DefaultCallDurationMinutes),
	}
}

// ParseNumber parses raw as a decimal number, returning def when raw is empty,
// not a number, hexadecimal, or not finite.
func ParseNumber(raw string, def float64) float64 {
	raw = strings.TrimSpace(raw)
	if strings.ContainsAny(raw, "xX") {
		return def
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || !isFinite(value) {
		return def
	}
	return value
}

// Calculator owns the input state of a single calculator widget and
// recomputes the full result on demand. It is not safe for concurrent use.
type Calculator struct {
	input       Input
	assumptions Assumptions
}

// NewCalculator returns a Calculator with every field unfilled.
func NewCalculator(a Assumptions) *Calculator {
	return &Calculator{assumptions: a}
}

// Set records the latest raw value of one field.
func (c *Calculator) Set(field, raw string) error {
	return c.input.set(field, raw)
}

// Input returns the current raw values.
func (c *Calculator) Input() Input {
	return c.input
}

// Result recomputes every derived value from the current input.
func (c *Calculator) Result() Result {
	return Estimate(c.input, c.assumptions)
}
