// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2013 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// writeExecutePacket sends COM_STMT_EXECUTE for stmt with args bound
// positionally, encoding each Go value into the binary protocol's
// type+value pairs.
// http://dev.mysql.com/doc/internals/en/com-stmt-execute.html
func (c *conn) writeExecutePacket(stmt *preparedStatement, args []any) error {
	if len(args) != stmt.numParams {
		return fmt.Errorf("sqlgo/mysql: argument count mismatch (got %d, statement wants %d)", len(args), stmt.numParams)
	}

	c.sequence = 0

	header := make([]byte, 4+1+4+1+4)
	header[4] = comStmtExecute
	binary.LittleEndian.PutUint32(header[5:9], stmt.id)
	header[9] = 0x00 // CURSOR_TYPE_NO_CURSOR
	binary.LittleEndian.PutUint32(header[10:14], 1)

	if len(args) == 0 {
		return c.writePacket(header)
	}

	nullMask := make([]byte, (len(args)+7)/8)
	paramTypes := make([]byte, 2*len(args))
	var paramValues []byte

	for i, arg := range args {
		if arg == nil {
			nullMask[i/8] |= 1 << uint(i%8)
			paramTypes[i*2] = byte(fieldTypeNULL)
			continue
		}

		switch v := arg.(type) {
		case int64:
			paramTypes[i*2] = byte(fieldTypeLongLong)
			paramValues = appendUint64(paramValues, uint64(v))
		case int:
			paramTypes[i*2] = byte(fieldTypeLongLong)
			paramValues = appendUint64(paramValues, uint64(v))
		case int32:
			paramTypes[i*2] = byte(fieldTypeLongLong)
			paramValues = appendUint64(paramValues, uint64(v))
		case int16:
			paramTypes[i*2] = byte(fieldTypeLongLong)
			paramValues = appendUint64(paramValues, uint64(v))
		case int8:
			paramTypes[i*2] = byte(fieldTypeLongLong)
			paramValues = appendUint64(paramValues, uint64(v))
		case uint64:
			paramTypes[i*2] = byte(fieldTypeLongLong)
			paramTypes[i*2+1] = 0x80
			paramValues = appendUint64(paramValues, v)
		case uint:
			paramTypes[i*2] = byte(fieldTypeLongLong)
			paramTypes[i*2+1] = 0x80
			paramValues = appendUint64(paramValues, uint64(v))
		case uint32:
			paramTypes[i*2] = byte(fieldTypeLongLong)
			paramTypes[i*2+1] = 0x80
			paramValues = appendUint64(paramValues, uint64(v))
		case uint16:
			paramTypes[i*2] = byte(fieldTypeLongLong)
			paramTypes[i*2+1] = 0x80
			paramValues = appendUint64(paramValues, uint64(v))
		case uint8:
			paramTypes[i*2] = byte(fieldTypeLongLong)
			paramTypes[i*2+1] = 0x80
			paramValues = appendUint64(paramValues, uint64(v))
		case float64:
			paramTypes[i*2] = byte(fieldTypeDouble)
			paramValues = appendUint64(paramValues, math.Float64bits(v))
		case float32:
			paramTypes[i*2] = byte(fieldTypeFloat)
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
			paramValues = append(paramValues, b[:]...)
		case bool:
			paramTypes[i*2] = byte(fieldTypeTiny)
			if v {
				paramValues = append(paramValues, 1)
			} else {
				paramValues = append(paramValues, 0)
			}
		case []byte:
			paramTypes[i*2] = byte(fieldTypeBLOB)
			paramValues = appendLengthEncodedInteger(paramValues, uint64(len(v)))
			paramValues = append(paramValues, v...)
		case encodedBytes:
			paramTypes[i*2] = byte(fieldTypeBLOB)
			paramValues = appendLengthEncodedInteger(paramValues, uint64(len(v)))
			paramValues = append(paramValues, v...)
		case string:
			paramTypes[i*2] = byte(fieldTypeString)
			paramValues = appendLengthEncodedInteger(paramValues, uint64(len(v)))
			paramValues = append(paramValues, v...)
		case time.Time:
			paramTypes[i*2] = byte(fieldTypeString)
			s := v.Format("2006-01-02 15:04:05.999999")
			paramValues = appendLengthEncodedInteger(paramValues, uint64(len(s)))
			paramValues = append(paramValues, s...)
		default:
			return fmt.Errorf("sqlgo/mysql: cannot encode argument of type %T", v)
		}
	}

	data := make([]byte, 0, len(header)+len(nullMask)+1+len(paramTypes)+len(paramValues))
	data = append(data, header...)
	data = append(data, nullMask...)
	data = append(data, 0x01) // new-params-bound flag
	data = append(data, paramTypes...)
	data = append(data, paramValues...)

	return c.writePacket(data)
}

func appendUint64(b []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(b, tmp[:]...)
}
