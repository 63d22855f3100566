// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2012 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"encoding/binary"

	"github.com/sqlgo/sqlgo"
)

func (c *conn) writeCommandPacket(command byte) error {
	c.sequence = 0
	data := make([]byte, 5)
	data[4] = command
	return c.writePacket(data)
}

func (c *conn) writeCommandPacketStr(command byte, arg string) error {
	c.sequence = 0
	data := make([]byte, 4+1+len(arg))
	data[4] = command
	copy(data[5:], arg)
	return c.writePacket(data)
}

func (c *conn) writeCommandPacketUint32(command byte, arg uint32) error {
	c.sequence = 0
	data := make([]byte, 4+1+4)
	data[4] = command
	data[5] = byte(arg)
	data[6] = byte(arg >> 8)
	data[7] = byte(arg >> 16)
	data[8] = byte(arg >> 24)
	return c.writePacket(data)
}

// okResult is what an OK packet tells the caller about the statement that
// just ran.
type okResult struct {
	affectedRows int64
	lastInsertID int64
	status       statusFlag
}

// readResultOK reads one packet and requires it to be an OK packet.
func (c *conn) readResultOK() (okResult, error) {
	data, err := c.readPacket()
	if err != nil {
		return okResult{}, err
	}
	if data[0] == iOK {
		return c.handleOkPacket(data)
	}
	return okResult{}, c.handleErrorPacket(data)
}

func (c *conn) handleOkPacket(data []byte) (okResult, error) {
	affectedRows, _, n := readLengthEncodedInteger(data[1:])
	insertID, _, m := readLengthEncodedInteger(data[1+n:])
	status := readStatus(data[1+n+m : 1+n+m+2])
	return okResult{affectedRows: int64(affectedRows), lastInsertID: int64(insertID), status: status}, nil
}

func readStatus(b []byte) statusFlag {
	return statusFlag(b[0]) | statusFlag(b[1])<<8
}

// readResultSetHeaderPacket reads the first packet of a COM_QUERY or
// COM_STMT_EXECUTE response: either an OK packet (no result set) or a
// column count, which the caller follows with readColumns.
func (c *conn) readResultSetHeaderPacket() (columnCount int, ok *okResult, err error) {
	data, err := c.readPacket()
	if err != nil {
		return 0, nil, err
	}
	switch data[0] {
	case iOK:
		res, err := c.handleOkPacket(data)
		return 0, &res, err
	case iERR:
		return 0, nil, c.handleErrorPacket(data)
	}
	num, _, _ := readLengthEncodedInteger(data)
	return int(num), nil, nil
}

// column describes one result-set column as reported by the server.
type column struct {
	name      string
	fieldType fieldType
	flags     uint16
	decimals  byte
	length    uint32
}

func (col *column) nullable() bool { return col.flags&1 /* NOT_NULL_FLAG */ == 0 }
func (col *column) unsigned() bool { return col.flags&0x20 != 0 } // UNSIGNED_FLAG

// readColumns reads count column-definition packets followed by an EOF.
// http://dev.mysql.com/doc/internals/en/com-query-response.html#packet-Protocol::ColumnDefinition41
func (c *conn) readColumns(count int) ([]column, error) {
	columns := make([]column, count)
	for i := 0; ; i++ {
		data, err := c.readPacket()
		if err != nil {
			return nil, err
		}

		if data[0] == iEOF && (len(data) == 5 || len(data) == 1) {
			if i == count {
				return columns, nil
			}
			return nil, &sqlgo.ProtocolError{Detail: "column count mismatch"}
		}

		pos, err := skipLengthEncodedString(data) // catalog
		if err != nil {
			return nil, err
		}
		n, err := skipLengthEncodedString(data[pos:]) // schema
		if err != nil {
			return nil, err
		}
		pos += n
		n, err = skipLengthEncodedString(data[pos:]) // table
		if err != nil {
			return nil, err
		}
		pos += n
		n, err = skipLengthEncodedString(data[pos:]) // original table
		if err != nil {
			return nil, err
		}
		pos += n
		name, _, n, err := readLengthEncodedString(data[pos:])
		if err != nil {
			return nil, err
		}
		columns[i].name = string(name)
		pos += n
		n, err = skipLengthEncodedString(data[pos:]) // original name
		if err != nil {
			return nil, err
		}
		pos += n

		pos++     // filler
		pos += 2  // charset

		columns[i].length = binary.LittleEndian.Uint32(data[pos : pos+4])
		pos += 4

		columns[i].fieldType = fieldType(data[pos])
		pos++

		columns[i].flags = binary.LittleEndian.Uint16(data[pos : pos+2])
		pos += 2

		columns[i].decimals = data[pos]
	}
}
