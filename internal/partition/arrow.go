package partition

import (
	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"

	"parquet-dataset/internal/typer"
)

// DataType returns the Arrow type of the column. Timestamps and durations
// use nanosecond units; zone-aware timestamps carry their fixed offset.
func (c *Column) DataType() arrow.DataType {
	switch c.Kind {
	case typer.Integer:
		return arrow.PrimitiveTypes.Int64
	case typer.Float:
		return arrow.PrimitiveTypes.Float64
	case typer.Boolean:
		return arrow.FixedWidthTypes.Boolean
	case typer.Timestamp:
		tz := ""
		if len(c.Values) > 0 && c.Values[0].HasZone {
			tz = c.Values[0].Time.Format("-07:00")
		}
		return &arrow.TimestampType{Unit: arrow.Nanosecond, TimeZone: tz}
	case typer.Timedelta:
		return &arrow.DurationType{Unit: arrow.Nanosecond}
	default:
		return arrow.BinaryTypes.String
	}
}

// Field returns the Arrow field describing the column.
func (c *Column) Field() arrow.Field {
	return arrow.Field{Name: c.Name, Type: c.DataType()}
}

// Arrow builds an Arrow array holding the column values. The caller owns
// the result and must Release it.
func (c *Column) Arrow(mem memory.Allocator) arrow.Array {
	switch c.Kind {
	case typer.Integer:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		for _, v := range c.Values {
			b.Append(v.Int)
		}
		return b.NewArray()
	case typer.Float:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		for _, v := range c.Values {
			b.Append(v.Float)
		}
		return b.NewArray()
	case typer.Boolean:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		for _, v := range c.Values {
			b.Append(v.Bool)
		}
		return b.NewArray()
	case typer.Timestamp:
		b := array.NewTimestampBuilder(mem, c.DataType().(*arrow.TimestampType))
		defer b.Release()
		for _, v := range c.Values {
			b.Append(arrow.Timestamp(v.Time.UnixNano()))
		}
		return b.NewArray()
	case typer.Timedelta:
		b := array.NewDurationBuilder(mem, c.DataType().(*arrow.DurationType))
		defer b.Release()
		for _, v := range c.Values {
			b.Append(arrow.Duration(v.Duration))
		}
		return b.NewArray()
	default:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		for _, v := range c.Values {
			b.Append(v.Str)
		}
		return b.NewArray()
	}
}

// Record assembles columns into one Arrow record, one row per data file.
// The caller must Release it.
func Record(mem memory.Allocator, cols []*Column) arrow.Record {
	fields := make([]arrow.Field, len(cols))
	arrays := make([]arrow.Array, len(cols))
	var rows int64
	for i, c := range cols {
		fields[i] = c.Field()
		arrays[i] = c.Arrow(mem)
		rows = int64(arrays[i].Len())
	}
	defer func() {
		for _, a := range arrays {
			a.Release()
		}
	}()
	return array.NewRecord(arrow.NewSchema(fields, nil), arrays, rows)
}
