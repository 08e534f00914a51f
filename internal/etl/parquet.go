package etl

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"time"

	"github.com/BartekS5/ingest/pkg/models"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/deprecated"
	"github.com/parquet-go/parquet-go/format"
)

const parquetReadBatch = 1024

// julianUnixEpoch is the Julian day number of 1970-01-01.
const julianUnixEpoch = 2440588

type valueDecoder func(parquet.Value) any

func readParquet(r io.ReaderAt, size int64) (*models.Table, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, &ParseError{Format: string(FormatParquet), Err: err}
	}

	fields := pf.Root().Columns()
	cols := make([]*models.Column, len(fields))
	decoders := make([]valueDecoder, len(fields))
	byLeaf := make(map[int]int, len(fields))

	for i, f := range fields {
		if !f.Leaf() || f.Repeated() {
			return nil, &ParseError{
				Format: string(FormatParquet),
				Column: f.Name(),
				Err:    errors.New("nested and repeated columns are not supported"),
			}
		}
		typ, dec := columnDecoder(f.Type())
		cols[i] = &models.Column{Name: f.Name(), Type: typ, Values: make([]any, 0, pf.NumRows())}
		decoders[i] = dec
		byLeaf[f.Index()] = i
	}

	buf := make([]parquet.Row, parquetReadBatch)
	for _, rg := range pf.RowGroups() {
		if err := readRowGroup(rg, buf, cols, decoders, byLeaf); err != nil {
			return nil, &ParseError{Format: string(FormatParquet), Err: err}
		}
	}

	t, err := models.NewTable(cols...)
	if err != nil {
		return nil, &ParseError{Format: string(FormatParquet), Err: err}
	}
	return t, nil
}

func readRowGroup(rg parquet.RowGroup, buf []parquet.Row, cols []*models.Column, decoders []valueDecoder, byLeaf map[int]int) error {
	rows := rg.Rows()
	defer rows.Close()

	for {
		n, err := rows.ReadRows(buf)
		for _, row := range buf[:n] {
			for _, v := range row {
				i, ok := byLeaf[v.Column()]
				if !ok {
					return fmt.Errorf("value for unknown column index %d", v.Column())
				}
				if v.IsNull() {
					cols[i].Values = append(cols[i].Values, nil)
					continue
				}
				cols[i].Values = append(cols[i].Values, decoders[i](v))
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// columnDecoder maps a physical type plus its logical annotation onto a
// table column type.
func columnDecoder(t parquet.Type) (models.ColumnType, valueDecoder) {
	lt := t.LogicalType()
	var ct deprecated.ConvertedType = -1
	if c := t.ConvertedType(); c != nil {
		ct = *c
	}

	switch t.Kind() {
	case parquet.Boolean:
		return models.TypeBoolean, func(v parquet.Value) any { return v.Boolean() }

	case parquet.Int32:
		switch {
		case (lt != nil && lt.Date != nil) || ct == deprecated.Date:
			return models.TypeTimestamp, func(v parquet.Value) any {
				return time.Unix(int64(v.Int32())*86400, 0).UTC()
			}
		case lt != nil && lt.Decimal != nil:
			scale := lt.Decimal.Scale
			return models.TypeFloat, func(v parquet.Value) any { return scaleDecimal(float64(v.Int32()), scale) }
		case lt != nil && lt.Integer != nil && !lt.Integer.IsSigned:
			return models.TypeInteger, func(v parquet.Value) any { return int64(uint32(v.Int32())) }
		}
		return models.TypeInteger, func(v parquet.Value) any { return int64(v.Int32()) }

	case parquet.Int64:
		if unit, ok := timestampUnit(lt, ct); ok {
			return models.TypeTimestamp, func(v parquet.Value) any { return timestampFromInt64(v.Int64(), unit) }
		}
		if lt != nil && lt.Decimal != nil {
			scale := lt.Decimal.Scale
			return models.TypeFloat, func(v parquet.Value) any { return scaleDecimal(float64(v.Int64()), scale) }
		}
		return models.TypeInteger, func(v parquet.Value) any { return v.Int64() }

	case parquet.Int96:
		return models.TypeTimestamp, func(v parquet.Value) any { return timestampFromInt96(v.Int96()) }

	case parquet.Float:
		return models.TypeFloat, func(v parquet.Value) any { return float64(v.Float()) }

	case parquet.Double:
		return models.TypeFloat, func(v parquet.Value) any { return v.Double() }

	default:
		if lt != nil && lt.Decimal != nil {
			scale := lt.Decimal.Scale
			return models.TypeFloat, func(v parquet.Value) any { return decimalFromBytes(v.ByteArray(), scale) }
		}
		return models.TypeString, func(v parquet.Value) any { return string(v.ByteArray()) }
	}
}

func timestampUnit(lt *format.LogicalType, ct deprecated.ConvertedType) (time.Duration, bool) {
	if lt != nil && lt.Timestamp != nil {
		switch {
		case lt.Timestamp.Unit.Millis != nil:
			return time.Millisecond, true
		case lt.Timestamp.Unit.Micros != nil:
			return time.Microsecond, true
		default:
			return time.Nanosecond, true
		}
	}
	switch ct {
	case deprecated.TimestampMillis:
		return time.Millisecond, true
	case deprecated.TimestampMicros:
		return time.Microsecond, true
	}
	return 0, false
}

func timestampFromInt64(n int64, unit time.Duration) time.Time {
	switch unit {
	case time.Millisecond:
		return time.UnixMilli(n).UTC()
	case time.Microsecond:
		return time.UnixMicro(n).UTC()
	default:
		return time.Unix(0, n).UTC()
	}
}

// timestampFromInt96 decodes the legacy Impala/Spark layout: nanoseconds of
// the day in the low 8 bytes, Julian day number in the high 4.
func timestampFromInt96(i deprecated.Int96) time.Time {
	nanos := int64(uint64(i[1])<<32 | uint64(i[0]))
	days := int64(i[2]) - julianUnixEpoch
	return time.Unix(days*86400, nanos).UTC()
}

func scaleDecimal(unscaled float64, scale int32) float64 {
	return unscaled / math.Pow10(int(scale))
}

// decimalFromBytes decodes a big-endian two's complement unscaled value.
func decimalFromBytes(b []byte, scale int32) float64 {
	if len(b) == 0 {
		return 0
	}
	n := new(big.Int).SetBytes(b)
	if b[0]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8)))
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	return scaleDecimal(f, scale)
}
