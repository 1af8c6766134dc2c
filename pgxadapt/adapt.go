// Copyright 2026 The pgbind authors
// Licensed under Apache 2.0, see LICENCE file for details.

// Package pgxadapt provides a pgbind.Transformer backed by pgx's type map.
// It resolves parameter type OIDs, encodes values to the text or binary wire
// format, and renders values as SQL literals for client-side binding.
package pgxadapt

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pgbind/pgbind"
)

// Transformer dumps Go values with a pgtype.Map. The zero value is not
// usable; use New or NewWithMap.
type Transformer struct {
	m        *pgtype.Map
	encoding string
}

// New returns a Transformer using the default pgtype map and UTF8 client
// encoding.
func New() *Transformer {
	return NewWithMap(pgtype.NewMap(), "UTF8")
}

// NewWithMap returns a Transformer using a caller-supplied type map, for
// connections with registered custom types, and the given client encoding
// name.
func NewWithMap(m *pgtype.Map, encoding string) *Transformer {
	return &Transformer{m: m, encoding: encoding}
}

// Encoding implements pgbind.Transformer.
func (t *Transformer) Encoding() string {
	return t.encoding
}

// DumpSequence implements pgbind.Transformer. A requested auto format
// resolves to the codec's preferred wire format for the value's type. A nil
// value dumps to a nil entry with the unknown OID and the text format.
func (t *Transformer) DumpSequence(values []any, formats []pgbind.Format) ([][]byte, []uint32, []int16, error) {
	if len(values) != len(formats) {
		return nil, nil, nil, fmt.Errorf("internal error: %d values with %d formats", len(values), len(formats))
	}

	params := make([][]byte, len(values))
	oids := make([]uint32, len(values))
	wire := make([]int16, len(values))
	for i, v := range values {
		if v == nil {
			wire[i] = pgtype.TextFormatCode
			continue
		}
		dt, ok := t.m.TypeForValue(v)
		if !ok {
			return nil, nil, nil, fmt.Errorf("cannot determine the PostgreSQL type of %T", v)
		}
		code := wireFormat(dt, formats[i])
		buf, err := t.m.Encode(dt.OID, code, v, nil)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("cannot dump parameter %d: %w", i, err)
		}
		params[i] = buf
		oids[i] = dt.OID
		wire[i] = code
	}
	return params, oids, wire, nil
}

// wireFormat resolves a requested format against the codec's preference.
func wireFormat(dt *pgtype.Type, f pgbind.Format) int16 {
	switch f {
	case pgbind.FormatText:
		return pgtype.TextFormatCode
	case pgbind.FormatBinary:
		return pgtype.BinaryFormatCode
	}
	return dt.Codec.PreferredFormat()
}

// AsLiteral implements pgbind.Transformer. The common scalar types render
// directly; anything else is encoded to its text wire form with the type map
// and quoted as a string literal.
func (t *Transformer) AsLiteral(v any) ([]byte, error) {
	switch v := v.(type) {
	case nil:
		return []byte("NULL"), nil
	case bool:
		if v {
			return []byte("TRUE"), nil
		}
		return []byte("FALSE"), nil
	case int:
		return strconv.AppendInt(nil, int64(v), 10), nil
	case int16:
		return strconv.AppendInt(nil, int64(v), 10), nil
	case int32:
		return strconv.AppendInt(nil, int64(v), 10), nil
	case int64:
		return strconv.AppendInt(nil, v, 10), nil
	case float32:
		return strconv.AppendFloat(nil, float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.AppendFloat(nil, v, 'f', -1, 64), nil
	case string:
		return quoteString(v), nil
	case []byte:
		return quoteBytes(v), nil
	case time.Time:
		return v.Truncate(time.Microsecond).
			AppendFormat(nil, "'2006-01-02 15:04:05.999999999Z07:00:00'"), nil
	}

	dt, ok := t.m.TypeForValue(v)
	if !ok {
		return nil, fmt.Errorf("cannot render %T as a literal", v)
	}
	buf, err := t.m.Encode(dt.OID, pgtype.TextFormatCode, v, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot render %T as a literal: %w", v, err)
	}
	if buf == nil {
		return []byte("NULL"), nil
	}
	return quoteString(string(buf)), nil
}

// quoteString quotes a string literal, doubling embedded quotes.
func quoteString(s string) []byte {
	dst := make([]byte, 0, len(s)+2)
	dst = append(dst, '\'')
	dst = append(dst, strings.ReplaceAll(s, "'", "''")...)
	return append(dst, '\'')
}

// quoteBytes renders a bytea literal in hex form.
func quoteBytes(buf []byte) []byte {
	dst := make([]byte, 0, 4+hex.EncodedLen(len(buf)))
	dst = append(dst, `'\x`...)
	n := len(dst)
	dst = append(dst, make([]byte, hex.EncodedLen(len(buf)))...)
	hex.Encode(dst[n:], buf)
	return append(dst, '\'')
}
