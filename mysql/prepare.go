package mysql

import "encoding/binary"

// prepare sends COM_STMT_PREPARE and reads back the statement id, its
// parameter count, and (if it produces a result set) column metadata.
// http://dev.mysql.com/doc/internals/en/com-stmt-prepare.html
func (c *conn) prepare(sql string) (*preparedStatement, error) {
	if err := c.writeCommandPacketStr(comStmtPrepare, sql); err != nil {
		return nil, err
	}

	data, err := c.readPacket()
	if err != nil {
		return nil, err
	}
	if data[0] != iOK {
		return nil, c.handleErrorPacket(data)
	}

	stmt := &preparedStatement{
		id:        binary.LittleEndian.Uint32(data[1:5]),
		numParams: int(binary.LittleEndian.Uint16(data[7:9])),
	}
	columnCount := int(binary.LittleEndian.Uint16(data[5:7]))

	if stmt.numParams > 0 {
		params, err := c.readColumns(stmt.numParams)
		if err != nil {
			return nil, err
		}
		stmt.paramColumns = params
	}
	if columnCount > 0 {
		cols, err := c.readColumns(columnCount)
		if err != nil {
			return nil, err
		}
		stmt.columns = cols
	}

	return stmt, nil
}

// closeStatement sends COM_STMT_CLOSE, which the server does not
// acknowledge.
func (c *conn) closeStatement(stmt *preparedStatement) error {
	return c.writeCommandPacketUint32(comStmtClose, stmt.id)
}

// getOrPrepare returns a cached prepared statement for sql, preparing and
// caching a new one (evicting the LRU victim if necessary) when it misses.
// With statement caching disabled, every call prepares fresh and the
// caller is responsible for closing it once done.
func (c *conn) getOrPrepare(sql string) (stmt *preparedStatement, owned bool, err error) {
	if c.stmtCache == nil {
		stmt, err = c.prepare(sql)
		return stmt, true, err
	}
	if cached, ok := c.stmtCache.get(sql); ok {
		return cached, false, nil
	}
	stmt, err = c.prepare(sql)
	if err != nil {
		return nil, false, err
	}
	if evicted := c.stmtCache.put(sql, stmt); evicted != nil {
		c.closeStatement(evicted)
	}
	return stmt, false, nil
}
