// Package typer coerces raw partition tokens into their most plausible typed
// representation. Inference never fails; unmatched tokens stay strings.
package typer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Kind is the closed set of types a partition value can take.
type Kind int

const (
	String Kind = iota
	Integer
	Float
	Boolean
	Timestamp
	Timedelta
)

var kindNames = [...]string{
	String:    "string",
	Integer:   "integer",
	Float:     "float",
	Boolean:   "boolean",
	Timestamp: "timestamp",
	Timedelta: "timedelta",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown value kind %q", text)
}

// Value is a tagged union over the partition value kinds. Only the field
// selected by Kind is meaningful.
type Value struct {
	Kind     Kind
	Str      string
	Int      int64
	Float    float64
	Bool     bool
	Time     time.Time
	HasZone  bool
	Duration time.Duration
}

func StringValue(s string) Value { return Value{Kind: String, Str: s} }
func IntegerValue(i int64) Value { return Value{Kind: Integer, Int: i} }
func FloatValue(f float64) Value { return Value{Kind: Float, Float: f} }
func BooleanValue(b bool) Value { return Value{Kind: Boolean, Bool: b} }
func TimedeltaValue(d time.Duration) Value { return Value{Kind: Timedelta, Duration: d} }

// TimestampValue records whether the parsed token carried an explicit zone.
// Naive timestamps are held in UTC.
func TimestampValue(t time.Time, hasZone bool) Value {
	return Value{Kind: Timestamp, Time: t, HasZone: hasZone}
}

// Interface returns the Go value held by v.
func (v Value) Interface() any {
	switch v.Kind {
	case Integer:
		return v.Int
	case Float:
		return v.Float
	case Boolean:
		return v.Bool
	case Timestamp:
		return v.Time
	case Timedelta:
		return v.Duration
	default:
		return v.Str
	}
}

// Equal compares by kind and typed value, so "07" and "7" are equal.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case Integer:
		return v.Int == o.Int
	case Float:
		return v.Float == o.Float
	case Boolean:
		return v.Bool == o.Bool
	case Timestamp:
		return v.HasZone == o.HasZone && v.Time.Equal(o.Time)
	case Timedelta:
		return v.Duration == o.Duration
	default:
		return v.Str == o.Str
	}
}

func (v Value) String() string {
	switch v.Kind {
	case Integer:
		return strconv.FormatInt(v.Int, 10)
	case Float:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case Boolean:
		return strconv.FormatBool(v.Bool)
	case Timestamp:
		if v.HasZone {
			return v.Time.Format(time.RFC3339Nano)
		}
		return v.Time.Format("2006-01-02T15:04:05.999999999")
	case Timedelta:
		return v.Duration.String()
	default:
		return v.Str
	}
}

type valueJSON struct {
	Kind  Kind `json:"kind"`
	Value any  `json:"value"`
}

// MarshalJSON encodes timestamps and timedeltas in their string form and the
// other kinds as native JSON values.
func (v Value) MarshalJSON() ([]byte, error) {
	out := valueJSON{Kind: v.Kind, Value: v.Interface()}
	switch v.Kind {
	case Timestamp, Timedelta:
		out.Value = v.String()
	}
	return json.Marshal(out)
}
