package typer

import (
	"fmt"
	"math"
	"time"
)

// Infer runs token through Matchers and returns the first match, or the
// token itself as a String.
func Infer(token string) Value {
	for _, m := range Matchers {
		if v, ok := m.Match(token); ok {
			return v
		}
	}
	return StringValue(token)
}

// InferAny passes already-typed Go values through unchanged and infers
// strings. Anything else is formatted with %v and treated as a string.
func InferAny(v any) Value {
	switch x := v.(type) {
	case Value:
		return x
	case string:
		return Infer(x)
	case []byte:
		return Infer(string(x))
	case bool:
		return BooleanValue(x)
	case int:
		return IntegerValue(int64(x))
	case int8:
		return IntegerValue(int64(x))
	case int16:
		return IntegerValue(int64(x))
	case int32:
		return IntegerValue(int64(x))
	case int64:
		return IntegerValue(x)
	case uint8:
		return IntegerValue(int64(x))
	case uint16:
		return IntegerValue(int64(x))
	case uint32:
		return IntegerValue(int64(x))
	case uint:
		return unsignedValue(uint64(x))
	case uint64:
		return unsignedValue(x)
	case float32:
		return FloatValue(float64(x))
	case float64:
		return FloatValue(x)
	case time.Time:
		return TimestampValue(x, x.Location() != time.UTC)
	case time.Duration:
		return TimedeltaValue(x)
	default:
		return StringValue(fmt.Sprint(v))
	}
}

// unsignedValue keeps integers that fit int64 and widens the rest to Float.
func unsignedValue(u uint64) Value {
	if u <= math.MaxInt64 {
		return IntegerValue(int64(u))
	}
	return FloatValue(float64(u))
}

// GroupByKind partitions values by the kind each resolves to under InferAny,
// preserving input order within each group.
func GroupByKind(values []any) map[Kind][]any {
	groups := make(map[Kind][]any)
	for _, v := range values {
		k := InferAny(v).Kind
		groups[k] = append(groups[k], v)
	}
	return groups
}

// GroupTokens is GroupByKind for raw string tokens.
func GroupTokens(tokens []string) map[Kind][]string {
	groups := make(map[Kind][]string)
	for _, t := range tokens {
		k := Infer(t).Kind
		groups[k] = append(groups[k], t)
	}
	return groups
}
