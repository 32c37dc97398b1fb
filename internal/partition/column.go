package partition

import (
	"fmt"

	"parquet-dataset/internal/scheme"
	"parquet-dataset/internal/typer"
	"parquet-dataset/internal/utils"
)

// Fallback reasons reported through Options.OnFallback.
const (
	ReasonMixedKinds     = "mixed_kinds"
	ReasonAmbiguousToken = "ambiguous_token"
)

// Column is one partition column: a typed value per data file, in the order
// of the relative paths it was built from.
type Column struct {
	Name   string        `json:"name"`
	Kind   typer.Kind    `json:"kind"`
	Values []typer.Value `json:"values"`
	Raw    []string      `json:"raw"`
}

type Options struct {
	// Infer types partition values; when false every column is a string.
	Infer bool
	// OnFallback is called when a column is downgraded to strings.
	OnFallback func(column, reason string)
}

// BuildColumns extracts and types the partition columns of a dataset.
// A column whose tokens infer to more than one kind, or whose distinct
// tokens collapse to the same typed value ("07" and "7"), becomes a string
// column. A timestamp column that mixes zone-naive and zone-aware values,
// or different UTC offsets, is rejected with INCONSISTENT_PARTITION. Paths
// that do not fit tag are rejected with INVALID_PATH.
func BuildColumns(tag scheme.Tag, rel []string, opts Options) ([]*Column, error) {
	names, rows, err := Extract(tag, rel)
	if err != nil {
		return nil, err
	}
	cols := make([]*Column, len(names))
	for j, name := range names {
		raw := make([]string, len(rows))
		for i, row := range rows {
			raw[i] = row[j]
		}
		col, err := buildColumn(name, raw, opts)
		if err != nil {
			return nil, err
		}
		cols[j] = col
	}
	return cols, nil
}

func buildColumn(name string, raw []string, opts Options) (*Column, error) {
	col := &Column{Name: name, Kind: typer.String, Raw: raw}
	if !opts.Infer {
		col.Values = stringValues(raw)
		return col, nil
	}

	values := make([]typer.Value, len(raw))
	for i, tok := range raw {
		values[i] = typer.Infer(tok)
	}

	reason := ""
	if len(typer.GroupTokens(raw)) > 1 {
		reason = ReasonMixedKinds
	} else if ambiguous(raw, values) {
		reason = ReasonAmbiguousToken
	}
	if reason != "" {
		if opts.OnFallback != nil {
			opts.OnFallback(name, reason)
		}
		col.Values = stringValues(raw)
		return col, nil
	}

	if len(values) > 0 {
		col.Kind = values[0].Kind
	}
	if col.Kind == typer.Timestamp {
		if err := checkZones(name, raw, values); err != nil {
			return nil, err
		}
	}
	col.Values = values
	return col, nil
}

// ambiguous reports whether two different tokens map to the same value.
func ambiguous(raw []string, values []typer.Value) bool {
	seen := make(map[string]string, len(raw))
	for i, v := range values {
		key := v.Kind.String() + ":" + v.String()
		if prev, ok := seen[key]; ok && prev != raw[i] {
			return true
		}
		seen[key] = raw[i]
	}
	return false
}

func checkZones(name string, raw []string, values []typer.Value) error {
	first := values[0]
	_, offset := first.Time.Zone()
	for i, v := range values[1:] {
		if v.HasZone != first.HasZone {
			naive, aware := naiveOf(raw[0], raw[i+1], first.HasZone)
			return utils.NewInconsistentPartitionError(name,
				fmt.Sprintf("%q is zone-naive but %q is zone-aware", naive, aware))
		}
		if _, off := v.Time.Zone(); v.HasZone && off != offset {
			return utils.NewInconsistentPartitionError(name,
				fmt.Sprintf("%q and %q carry different UTC offsets", raw[0], raw[i+1]))
		}
	}
	return nil
}

// naiveOf orders a pair of tokens as (naive, aware).
func naiveOf(a, b string, aHasZone bool) (string, string) {
	if aHasZone {
		return b, a
	}
	return a, b
}

func stringValues(raw []string) []typer.Value {
	out := make([]typer.Value, len(raw))
	for i, s := range raw {
		out[i] = typer.StringValue(s)
	}
	return out
}

// Categories returns the distinct values of the column in first-seen order.
func (c *Column) Categories() []typer.Value {
	var out []typer.Value
	for _, v := range c.Values {
		dup := false
		for _, o := range out {
			if o.Equal(v) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}

// ZoneOffset returns the UTC offset of a zone-aware timestamp column.
func (c *Column) ZoneOffset() (int, bool) {
	if c.Kind != typer.Timestamp || len(c.Values) == 0 || !c.Values[0].HasZone {
		return 0, false
	}
	_, off := c.Values[0].Time.Zone()
	return off, true
}
