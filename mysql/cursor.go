// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2013 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/sqlgo/sqlgo"
)

// cursor streams a binary protocol result set one row at a time. Only one
// cursor may be open on a conn at once; opening a second before the first
// is exhausted or Closed fails with sqlgo.ErrBusyCursor.
type cursor struct {
	c       *conn
	columns []column
	cur     *row
	done    bool
	err     error
	closed  bool
	onClose func()
}

func (c *conn) openCursor(stmt *preparedStatement) (*cursor, error) {
	if c.activeCursor {
		return nil, sqlgo.ErrBusyCursor
	}
	c.activeCursor = true
	return &cursor{c: c, columns: stmt.columns}, nil
}

func (cur *cursor) Next(ctx context.Context) bool {
	if cur.done || cur.err != nil {
		return false
	}
	if cur.cur != nil {
		cur.cur.stale = true
	}

	done, watchErr := cur.c.watchCancel(ctx)
	if watchErr != nil {
		cur.err = watchErr
		return false
	}
	r, err := cur.c.readBinaryRow(cur.columns)
	close(done)

	if err != nil {
		if err == errRowsExhausted {
			cur.done = true
			cur.release()
			return false
		}
		cur.err = err
		cur.release()
		return false
	}
	cur.cur = r
	return true
}

func (cur *cursor) Row() sqlgo.Row { return cur.cur }
func (cur *cursor) Err() error     { return cur.err }

func (cur *cursor) Close() error {
	if cur.closed {
		return nil
	}
	cur.closed = true
	if !cur.done {
		// Result set not exhausted: drain it so the connection's protocol
		// position is valid for the next command.
		if err := cur.c.readUntilEOF(); err != nil && cur.err == nil {
			cur.err = err
		}
	}
	cur.release()
	return cur.err
}

func (cur *cursor) release() {
	if cur.c.activeCursor {
		cur.c.activeCursor = false
	}
	if cur.onClose != nil {
		cur.onClose()
		cur.onClose = nil
	}
}

var errRowsExhausted = fmt.Errorf("sqlgo/mysql: result set exhausted")

// readBinaryRow reads and decodes one row of a binary protocol result set.
// http://dev.mysql.com/doc/internals/en/binary-protocol-resultset-row.html
func (c *conn) readBinaryRow(columns []column) (*row, error) {
	data, err := c.readPacket()
	if err != nil {
		return nil, err
	}

	if data[0] != iOK {
		if data[0] == iEOF && len(data) == 5 {
			return nil, errRowsExhausted
		}
		return nil, c.handleErrorPacket(data)
	}

	values := make([]sqlgo.RawValue, len(columns))
	pos := 1 + (len(columns)+7+2)/8
	nullMask := data[1:pos]

	for i, col := range columns {
		if (nullMask[(i+2)/8]>>uint((i+2)%8))&1 == 1 {
			values[i] = sqlgo.RawValue{IsNull: true}
			continue
		}

		switch col.fieldType {
		case fieldTypeNULL:
			values[i] = sqlgo.RawValue{IsNull: true}

		case fieldTypeTiny:
			values[i] = sqlgo.RawValue{Bytes: data[pos : pos+1]}
			pos++

		case fieldTypeShort, fieldTypeYear:
			values[i] = sqlgo.RawValue{Bytes: data[pos : pos+2]}
			pos += 2

		case fieldTypeInt24, fieldTypeLong:
			values[i] = sqlgo.RawValue{Bytes: data[pos : pos+4]}
			pos += 4

		case fieldTypeLongLong:
			values[i] = sqlgo.RawValue{Bytes: data[pos : pos+8]}
			pos += 8

		case fieldTypeFloat:
			values[i] = sqlgo.RawValue{Bytes: data[pos : pos+4]}
			pos += 4

		case fieldTypeDouble:
			values[i] = sqlgo.RawValue{Bytes: data[pos : pos+8]}
			pos += 8

		case fieldTypeDecimal, fieldTypeNewDecimal, fieldTypeVarChar, fieldTypeBit, fieldTypeEnum, fieldTypeSet,
			fieldTypeTinyBLOB, fieldTypeMediumBLOB, fieldTypeLongBLOB, fieldTypeBLOB,
			fieldTypeVarString, fieldTypeString, fieldTypeGeometry, fieldTypeJSON:
			b, isNull, n, err := readLengthEncodedString(data[pos:])
			if err != nil {
				return nil, err
			}
			pos += n
			values[i] = sqlgo.RawValue{Bytes: b, Text: true, IsNull: isNull}

		case fieldTypeDate, fieldTypeNewDate, fieldTypeDateTime, fieldTypeTimestamp:
			num, isNull, n := readLengthEncodedInteger(data[pos:])
			pos += n
			if isNull {
				values[i] = sqlgo.RawValue{IsNull: true}
				continue
			}
			s, err := formatBinaryDateTime(data[pos : pos+int(num)])
			if err != nil {
				return nil, err
			}
			pos += int(num)
			values[i] = sqlgo.RawValue{Bytes: []byte(s), Text: true}

		case fieldTypeTime:
			num, isNull, n := readLengthEncodedInteger(data[pos:])
			pos += n
			if isNull {
				values[i] = sqlgo.RawValue{IsNull: true}
				continue
			}
			s, err := formatBinaryTime(data[pos : pos+int(num)])
			if err != nil {
				return nil, err
			}
			pos += int(num)
			values[i] = sqlgo.RawValue{Bytes: []byte(s), Text: true}

		default:
			return nil, &sqlgo.ProtocolError{Detail: fmt.Sprintf("unknown field type %d", col.fieldType)}
		}
	}

	return &row{columns: columns, values: values}, nil
}

// decodeBuiltin implements the second half of sqlgo.Decode for the MySQL
// family: it interprets a RawValue according to the destination's concrete
// Go type, using raw.Text to tell length-encoded/formatted values from
// fixed-width binary ones.
func decodeBuiltin(raw sqlgo.RawValue, dest any) (handled bool, err error) {
	switch d := dest.(type) {
	case *bool:
		*d = len(raw.Bytes) > 0 && raw.Bytes[0] != 0
		return true, nil
	case *int64:
		*d = decodeSignedInt(raw.Bytes)
		return true, nil
	case *int32:
		*d = int32(decodeSignedInt(raw.Bytes))
		return true, nil
	case *int16:
		*d = int16(decodeSignedInt(raw.Bytes))
		return true, nil
	case *int8:
		*d = int8(decodeSignedInt(raw.Bytes))
		return true, nil
	case *int:
		*d = int(decodeSignedInt(raw.Bytes))
		return true, nil
	case *uint64:
		*d = decodeUnsignedInt(raw.Bytes)
		return true, nil
	case *uint32:
		*d = uint32(decodeUnsignedInt(raw.Bytes))
		return true, nil
	case *uint16:
		*d = uint16(decodeUnsignedInt(raw.Bytes))
		return true, nil
	case *uint8:
		*d = uint8(decodeUnsignedInt(raw.Bytes))
		return true, nil
	case *uint:
		*d = uint(decodeUnsignedInt(raw.Bytes))
		return true, nil
	case *float64:
		if len(raw.Bytes) == 8 {
			*d = math.Float64frombits(binary.LittleEndian.Uint64(raw.Bytes))
		} else if len(raw.Bytes) == 4 {
			*d = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw.Bytes)))
		}
		return true, nil
	case *float32:
		*d = math.Float32frombits(binary.LittleEndian.Uint32(raw.Bytes))
		return true, nil
	case *string:
		*d = string(raw.Bytes)
		return true, nil
	case *[]byte:
		cp := make([]byte, len(raw.Bytes))
		copy(cp, raw.Bytes)
		*d = cp
		return true, nil
	case *time.Time:
		t, err := parseTemporal(string(raw.Bytes), time.UTC)
		if err != nil {
			return true, err
		}
		*d = t
		return true, nil
	}
	return false, nil
}

func decodeSignedInt(b []byte) int64 {
	switch len(b) {
	case 1:
		return int64(int8(b[0]))
	case 2:
		return int64(int16(binary.LittleEndian.Uint16(b)))
	case 4:
		return int64(int32(binary.LittleEndian.Uint32(b)))
	case 8:
		return int64(binary.LittleEndian.Uint64(b))
	}
	return 0
}

func decodeUnsignedInt(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	case 8:
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}
