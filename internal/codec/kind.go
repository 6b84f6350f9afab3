package codec

import (
	"encoding/json"
	"fmt"

	"inari/internal/core"
)

// EncodeTransactionKind writes {"type": ..., "properties": {...}}. OneTime has
// no properties.
func EncodeTransactionKind(k core.TransactionKind) ([]byte, error) {
	var props any
	e := &encoder{typ: TypeTransactionKind}
	switch v := k.(type) {
	case core.OneTime:
	case core.RecurringProperties:
		w := recurringWire{Frequency: ptr(string(v.Frequency()))}
		if end, ok := v.EndDate(); ok {
			w.EndDate = ptr(formatTime(end))
		}
		if n, ok := v.CustomInterval(); ok {
			w.CustomInterval = ptr(n)
		}
		props = w
	case core.SpreadOutProperties:
		props = spreadOutWire{
			TotalAmount:  e.float("properties.totalAmount", v.TotalAmount()),
			Duration:     ptr(v.Duration()),
			DurationType: ptr(string(v.DurationType())),
			StartDate:    ptr(formatTime(v.StartDate())),
			EndDate:      ptr(formatTime(v.EndDate())),
		}
	case core.ExpectationProperties:
		w := expectationWire{ExpectedAmount: e.float("properties.expectedAmount", v.ExpectedAmount())}
		if actual, ok := v.ActualAmount(); ok {
			w.ActualAmount = e.float("properties.actualAmount", actual)
		}
		props = w
	case nil:
		return nil, &EncodeError{Type: TypeTransactionKind, Field: "type", Err: ErrMissingField}
	default:
		return nil, &EncodeError{Type: TypeTransactionKind, Field: "type", Err: fmt.Errorf("%w: %T", ErrUnknownKind, k)}
	}
	if e.err != nil {
		return nil, e.err
	}

	wire := kindWire{Type: ptr(k.TypeName())}
	if props != nil {
		raw, err := json.Marshal(props)
		if err != nil {
			return nil, err
		}
		wire.Properties = raw
	}
	return json.Marshal(wire)
}

// DecodeTransactionKind dispatches on the "type" discriminant. An unknown
// discriminant yields a DecodeError wrapping ErrUnknownKind with the value.
func DecodeTransactionKind(data []byte) (core.TransactionKind, error) {
	var w kindWire
	if err := unmarshal(TypeTransactionKind, data, &w); err != nil {
		return nil, err
	}
	if w.Type == nil {
		return nil, &DecodeError{Type: TypeTransactionKind, Field: "type", Err: ErrMissingField}
	}

	switch *w.Type {
	case core.KindOneTime:
		return core.OneTime{}, nil
	case core.KindRecurring:
		var p recurringWire
		if err := properties(w.Properties, &p); err != nil {
			return nil, err
		}
		return decodeRecurring(p)
	case core.KindSpreadOut:
		var p spreadOutWire
		if err := properties(w.Properties, &p); err != nil {
			return nil, err
		}
		return decodeSpreadOut(p)
	case core.KindExpectation:
		var p expectationWire
		if err := properties(w.Properties, &p); err != nil {
			return nil, err
		}
		return decodeExpectation(p)
	}
	return nil, &DecodeError{Type: TypeTransactionKind, Field: "type", Value: *w.Type, Err: ErrUnknownKind}
}

func properties(raw json.RawMessage, v any) error {
	if isAbsent(raw) {
		return &DecodeError{Type: TypeTransactionKind, Field: "properties", Err: ErrMissingField}
	}
	if err := unmarshal(TypeTransactionKind, raw, v); err != nil {
		return nest(TypeTransactionKind, "properties", err)
	}
	return nil
}

func decodeRecurring(w recurringWire) (core.TransactionKind, error) {
	d := &decoder{typ: TypeTransactionKind, prefix: "properties"}
	freq := core.RecurringFrequency(d.str("frequency", w.Frequency))
	end := d.optTime("endDate", w.EndDate)
	if d.err != nil {
		return nil, d.err
	}
	p, err := core.NewRecurringProperties(freq, end, w.CustomInterval)
	if err != nil {
		return nil, d.construct(err)
	}
	return p, nil
}

func decodeSpreadOut(w spreadOutWire) (core.TransactionKind, error) {
	d := &decoder{typ: TypeTransactionKind, prefix: "properties"}
	total := d.decimal("totalAmount", w.TotalAmount)
	duration := d.integer("duration", w.Duration)
	unit := core.SpreadDuration(d.str("durationType", w.DurationType))
	start := d.time("startDate", w.StartDate)
	end := d.time("endDate", w.EndDate)
	if d.err != nil {
		return nil, d.err
	}
	p, err := core.RestoreSpreadOutProperties(total, duration, unit, start, end)
	if err != nil {
		return nil, d.construct(err)
	}
	return p, nil
}

func decodeExpectation(w expectationWire) (core.TransactionKind, error) {
	d := &decoder{typ: TypeTransactionKind, prefix: "properties"}
	expected := d.decimal("expectedAmount", w.ExpectedAmount)
	if d.err != nil {
		return nil, d.err
	}
	return core.NewExpectationProperties(expected, d.optDecimal(w.ActualAmount)), nil
}
