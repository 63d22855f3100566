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
	"fmt"

	"github.com/sqlgo/sqlgo"
)

// MySQLError is a server-reported error: an error number plus optional SQL
// state and message, satisfying sqlgo.DatabaseError.
type MySQLError struct {
	Number  uint16
	State   [5]byte
	Msg     string
}

func (e *MySQLError) Error() string {
	if e.State != ([5]byte{}) {
		return fmt.Sprintf("sqlgo/mysql: error %d (%s): %s", e.Number, e.State, e.Msg)
	}
	return fmt.Sprintf("sqlgo/mysql: error %d: %s", e.Number, e.Msg)
}

// Message implements sqlgo.DatabaseError.
func (e *MySQLError) Message() string { return e.Msg }

// SQLState implements sqlgo.DatabaseError.
func (e *MySQLError) SQLState() string { return string(e.State[:]) }

// Details implements sqlgo.DatabaseError. MySQL's ERR packet carries no
// structured detail/hint/table/column/constraint fields beyond the message
// itself, so every return is empty.
func (e *MySQLError) Details() (detail, hint, table, column, constraint string) {
	return "", "", "", "", ""
}

// readOnlyErrno marks transactions rejected because the server is a
// read-only replica — surfaced distinctly so callers can route around it.
const (
	errnoOptionPreventsStatement    = 1290
	errnoCantExecuteInReadOnlyTrans = 1792
)

// IsReadOnlyError reports whether err is a MySQLError produced by a server
// currently in read-only mode (e.g. an Aurora replica mid-failover).
func IsReadOnlyError(err error) bool {
	me, ok := err.(*MySQLError)
	if !ok {
		return false
	}
	return me.Number == errnoOptionPreventsStatement || me.Number == errnoCantExecuteInReadOnlyTrans
}

// handleErrorPacket decodes an ERR packet into a *MySQLError.
// http://dev.mysql.com/doc/internals/en/packet-ERR_Packet.html
func (c *conn) handleErrorPacket(data []byte) error {
	if data[0] != iERR {
		return &sqlgo.ProtocolError{Detail: "handleErrorPacket called on non-ERR packet"}
	}

	errno := binary.LittleEndian.Uint16(data[1:3])
	me := &MySQLError{Number: errno}

	pos := 3
	if len(data) > 3 && data[3] == 0x23 { // '#'
		copy(me.State[:], data[4:4+5])
		pos = 9
	}
	me.Msg = string(data[pos:])
	return me
}
