package typer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Matcher is one rule in the inference chain. Match reports whether the rule
// claims the token; the first claiming rule decides the value.
type Matcher struct {
	Name  string
	Match func(token string) (Value, bool)
}

// Matchers is the inference chain in precedence order.
var Matchers = []Matcher{
	{Name: "sentinel", Match: MatchSentinel},
	{Name: "boolean", Match: MatchBoolean},
	{Name: "integer", Match: MatchInteger},
	{Name: "float", Match: MatchFloat},
	{Name: "timestamp", Match: MatchTimestamp},
	// Tokens shaped like N+M or N-M become durations. Kept for compatibility
	// with existing datasets; remove this entry to drop the behaviour.
	{Name: "timedelta", Match: MatchTimedelta},
}

var sentinels = setOf(
	"", "now", "today", "yesterday", "tomorrow",
	"nan", "nat", "none", "null",
	"inf", "+inf", "-inf", "infinity", "+infinity", "-infinity",
)

func setOf(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

var radixPrefix = regexp.MustCompile(`^[+-]?0[xXoObB]`)

// MatchSentinel claims tokens that must stay verbatim strings even though a
// permissive parser would coerce them: calendar words, NaN and infinity
// spellings and radix-prefixed literals.
func MatchSentinel(token string) (Value, bool) {
	if _, ok := sentinels[strings.ToLower(token)]; ok {
		return StringValue(token), true
	}
	if radixPrefix.MatchString(token) {
		return StringValue(token), true
	}
	return Value{}, false
}

// MatchBoolean accepts the capitalised and lower-case spellings only.
func MatchBoolean(token string) (Value, bool) {
	switch token {
	case "True", "true":
		return BooleanValue(true), true
	case "False", "false":
		return BooleanValue(false), true
	}
	return Value{}, false
}

var integerPattern = regexp.MustCompile(`^[+-]?[0-9]+$`)

// MatchInteger accepts optionally signed decimal digits that fit in int64.
// Leading zeros are insignificant.
func MatchInteger(token string) (Value, bool) {
	if !integerPattern.MatchString(token) {
		return Value{}, false
	}
	i, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return Value{}, false
	}
	return IntegerValue(i), true
}

var floatPattern = regexp.MustCompile(`^[+-]?([0-9]+\.[0-9]*|\.[0-9]+|[0-9]+)([eE][+-]?[0-9]+)?$`)

// MatchFloat accepts decimal literals with a fractional part and/or an
// exponent.
func MatchFloat(token string) (Value, bool) {
	if !floatPattern.MatchString(token) || !strings.ContainsAny(token, ".eE") {
		return Value{}, false
	}
	f, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return Value{}, false
	}
	return FloatValue(f), true
}

type timestampLayout struct {
	layout string
	zoned  bool
}

// Fractional seconds are accepted after the seconds field without being named
// in the layout.
var timestampLayouts = []timestampLayout{
	{"2006-1-2T15:04:05Z07:00", true},
	{"2006-1-2 15:04:05Z07:00", true},
	{"2006-1-2T15:04:05-0700", true},
	{"2006-1-2 15:04:05-0700", true},
	{"2006-1-2 15:04:05 -0700", true},
	{"2006-1-2T15:04Z07:00", true},
	{"2006-1-2 15:04Z07:00", true},
	{"2006-1-2T15:04:05", false},
	{"2006-1-2 15:04:05", false},
	{"2006-1-2T15:04", false},
	{"2006-1-2 15:04", false},
	{"2006-1-2", false},
	{"2006-1", false},
	{"2006", false},
}

// MatchTimestamp accepts year, year-month, date and date-time tokens with an
// optional zone offset. Zone-naive tokens are parsed as UTC.
func MatchTimestamp(token string) (Value, bool) {
	if len(token) < 4 {
		return Value{}, false
	}
	for _, l := range timestampLayouts {
		t, err := time.Parse(l.layout, token)
		if err == nil {
			return TimestampValue(t, l.zoned), true
		}
	}
	return Value{}, false
}

var timedeltaPattern = regexp.MustCompile(`^([0-9]+)([+-])([0-9]+)$`)

// MatchTimedelta accepts N+M and N-M, yielding N±M nanoseconds.
func MatchTimedelta(token string) (Value, bool) {
	m := timedeltaPattern.FindStringSubmatch(token)
	if m == nil {
		return Value{}, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return Value{}, false
	}
	d, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return Value{}, false
	}
	if m[2] == "-" {
		d = -d
	}
	return TimedeltaValue(time.Duration(n + d)), true
}
