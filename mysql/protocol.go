// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2012 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import "github.com/sqlgo/sqlgo"

// Packet framing: http://dev.mysql.com/doc/internals/en/client-server-protocol.html
//
// Reads and writes here run synchronously on the calling goroutine rather
// than through a dedicated reader/writer pair of background goroutines: a
// Connection is single-owner by contract (exactly one cursor, one caller,
// at a time) so the extra machinery buys nothing, and long-running reads
// are interrupted through a separate cancellation watcher goroutine
// instead (see startWatcher in conn.go).


// readPacket reads one (possibly multi-part) logical packet, validating the
// sequence byte against c.sequence.
func (c *conn) readPacket() ([]byte, error) {
	var prevData []byte
	for {
		header, err := c.readN(4)
		if err != nil {
			c.fatal(err)
			return nil, &sqlgo.ProtocolError{Detail: "reading packet header: " + err.Error()}
		}

		pktLen := int(uint32(header[0]) | uint32(header[1])<<8 | uint32(header[2])<<16)

		if header[3] != c.sequence {
			c.fatal(nil)
			if header[3] > c.sequence {
				return nil, &sqlgo.ProtocolError{Detail: "packet out of sync: server is ahead"}
			}
			return nil, &sqlgo.ProtocolError{Detail: "packet out of sync: server is behind"}
		}
		c.sequence++

		if pktLen == 0 {
			if prevData == nil {
				c.fatal(nil)
				return nil, &sqlgo.ProtocolError{Detail: "zero-length packet with nothing to terminate"}
			}
			return prevData, nil
		}

		body, err := c.readN(pktLen)
		if err != nil {
			c.fatal(err)
			return nil, &sqlgo.ProtocolError{Detail: "reading packet body: " + err.Error()}
		}

		if pktLen < maxPacketSize {
			if prevData == nil {
				return body, nil
			}
			return append(prevData, body...), nil
		}
		prevData = append(prevData, body...)
	}
}

// readN reads exactly n bytes from the underlying net.Conn via the
// connection's grow buffer, resetting it first so successive reads don't
// retain prior packets.
func (c *conn) readN(n int) ([]byte, error) {
	c.rbuf.reset()
	if err := c.rbuf.readN(c.nc, n); err != nil {
		return nil, err
	}
	return c.rbuf.buf, nil
}

// writePacket frames and writes data, where data[:4] is reserved header
// space the caller must have left blank. A payload larger than
// maxPacketSize-1 is split across multiple physical packets per protocol.
func (c *conn) writePacket(data []byte) error {
	pktLen := len(data) - 4
	if pktLen > c.maxAllowedPacket {
		return &sqlgo.ProtocolError{Detail: "packet larger than max_allowed_packet"}
	}

	for {
		var size int
		if pktLen >= maxPacketSize {
			data[0], data[1], data[2] = 0xff, 0xff, 0xff
			size = maxPacketSize
		} else {
			data[0] = byte(pktLen)
			data[1] = byte(pktLen >> 8)
			data[2] = byte(pktLen >> 16)
			size = pktLen
		}
		data[3] = c.sequence

		n, err := c.nc.Write(data[:4+size])
		if err != nil {
			c.fatal(err)
			return &sqlgo.ProtocolError{Detail: "writing packet: " + err.Error()}
		}
		if n != 4+size {
			c.fatal(nil)
			return &sqlgo.ProtocolError{Detail: "short write"}
		}
		c.sequence++

		if size != maxPacketSize {
			return nil
		}
		pktLen -= size
		data = data[size:]
	}
}

// readUntilEOF drains packets up to and including the terminating EOF/OK
// marker, used to discard a result the caller isn't consuming.
func (c *conn) readUntilEOF() error {
	for {
		data, err := c.readPacket()
		if err != nil {
			return err
		}
		switch data[0] {
		case iERR:
			return c.handleErrorPacket(data)
		case iEOF:
			if len(data) == 5 || len(data) == 1 {
				return nil
			}
		}
	}
}
