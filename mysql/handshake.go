// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2012 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"bytes"
	"crypto/tls"
	"encoding/binary"
	"fmt"

	"github.com/sqlgo/sqlgo"
)

// readHandshakePacket parses the server's initial handshake packet,
// returning the auth plugin's nonce and name.
// http://dev.mysql.com/doc/internals/en/connection-phase-packets.html#packet-Protocol::Handshake
func (c *conn) readHandshakePacket() (authData []byte, plugin string, err error) {
	data, err := c.readPacket()
	if err != nil {
		return nil, "", err
	}

	if data[0] == iERR {
		return nil, "", c.handleErrorPacket(data)
	}

	if data[0] < minProtocolVersion {
		return nil, "", fmt.Errorf("sqlgo/mysql: unsupported protocol version %d, need >= %d", data[0], minProtocolVersion)
	}

	// server version [null-terminated string], connection id [4 bytes]
	pos := 1 + bytes.IndexByte(data[1:], 0x00) + 1 + 4

	nonce := data[pos : pos+8]
	pos += 8 + 1 // filler

	c.flags = clientFlag(binary.LittleEndian.Uint16(data[pos : pos+2]))
	if c.flags&clientProtocol41 == 0 {
		return nil, "", &sqlgo.ProtocolError{Detail: "server does not support protocol 4.1"}
	}
	if c.flags&clientSSL == 0 && c.tlsConfig != nil {
		if c.cfg.SSLMode != SSLModePreferred && c.cfg.SSLMode != "" {
			return nil, "", &sqlgo.TLSError{Err: fmt.Errorf("server does not support TLS and ssl-mode=%s requires it", c.cfg.SSLMode)}
		}
		c.logger.Warn("server does not advertise TLS support, falling back to plaintext", "addr", c.cfg.Addr, "ssl_mode", c.cfg.SSLMode)
		c.tlsConfig = nil
	}
	pos += 2

	if len(data) <= pos {
		var b [8]byte
		copy(b[:], nonce)
		return b[:], plugin, nil
	}

	// charset[1] status[2] capability-hi[2] auth-data-len[1] reserved[10]
	pos += 1 + 2 + 2 + 1 + 10

	nonce = append(nonce, data[pos:pos+12]...)
	pos += 13

	if end := bytes.IndexByte(data[pos:], 0x00); end != -1 {
		plugin = string(data[pos : pos+end])
	} else {
		plugin = string(data[pos:])
	}

	var b [20]byte
	copy(b[:], nonce)
	return b[:], plugin, nil
}

// writeHandshakeResponsePacket sends the client's authentication packet,
// upgrading to TLS in place first when requested.
// http://dev.mysql.com/doc/internals/en/connection-phase-packets.html#packet-Protocol::HandshakeResponse
func (c *conn) writeHandshakeResponsePacket(authResp []byte, plugin string) error {
	clientFlags := clientProtocol41 |
		clientSecureConn |
		clientLongPassword |
		clientTransactions |
		clientLocalFiles |
		clientPluginAuth |
		clientMultiResults |
		c.flags&clientLongFlag

	// Always declared: the post-handshake session-init query is a single
	// multi-statement COM_QUERY regardless of cfg.MultiStatements, which
	// only governs whether a caller's own COM_QUERY text may contain more
	// than one statement.
	clientFlags |= clientMultiStatements
	if c.tlsConfig != nil {
		clientFlags |= clientSSL
	}

	var authRespLEIBuf [9]byte
	authRespLEI := appendLengthEncodedInteger(authRespLEIBuf[:0], uint64(len(authResp)))
	if len(authRespLEI) > 1 {
		clientFlags |= clientPluginAuthLenEncClientData
	}

	pktLen := 4 + 4 + 1 + 23 + len(c.cfg.User) + 1 + len(authRespLEI) + len(authResp) + len(plugin) + 1

	if n := len(c.cfg.DBName); n > 0 {
		clientFlags |= clientConnectWithDB
		pktLen += n + 1
	}

	data := make([]byte, pktLen+4)

	data[4] = byte(clientFlags)
	data[5] = byte(clientFlags >> 8)
	data[6] = byte(clientFlags >> 16)
	data[7] = byte(clientFlags >> 24)

	data[8], data[9], data[10], data[11] = 0, 0, 0, 0

	data[12] = defaultCollationID

	pos := 13
	for ; pos < 13+23; pos++ {
		data[pos] = 0
	}

	if c.tlsConfig != nil {
		if err := c.writePacket(data[:(4+4+1+23)+4]); err != nil {
			return err
		}
		tlsConn := tls.Client(c.nc, c.tlsConfig)
		if err := tlsConn.Handshake(); err != nil {
			return &sqlgo.TLSError{Err: err}
		}
		c.nc = tlsConn
	}

	if len(c.cfg.User) > 0 {
		pos += copy(data[pos:], c.cfg.User)
	}
	data[pos] = 0x00
	pos++

	pos += copy(data[pos:], authRespLEI)
	pos += copy(data[pos:], authResp)

	if len(c.cfg.DBName) > 0 {
		pos += copy(data[pos:], c.cfg.DBName)
		data[pos] = 0x00
		pos++
	}

	pos += copy(data[pos:], plugin)
	data[pos] = 0x00
	pos++

	return c.writePacket(data[:pos])
}

// writeAuthSwitchPacket answers an AuthSwitchRequest with a fresh auth
// response computed for the plugin the server asked to switch to.
func (c *conn) writeAuthSwitchPacket(authData []byte) error {
	data := make([]byte, 4+len(authData))
	copy(data[4:], authData)
	return c.writePacket(data)
}

// readAuthResult reads the server's verdict after a handshake response or
// auth-switch response: OK, ERR, AuthMoreData (caching_sha2_password's
// fast/full auth signal), or an AuthSwitchRequest naming another plugin.
func (c *conn) readAuthResult() (data []byte, plugin string, err error) {
	data, err = c.readPacket()
	if err != nil {
		return nil, "", err
	}

	switch data[0] {
	case iOK:
		return nil, "", nil
	case iAuthMoreData:
		return data[1:], "", nil
	case iERR:
		return nil, "", c.handleErrorPacket(data)
	case iEOF:
		if len(data) == 1 {
			// legacy old-password switch with no data; unsupported
			return nil, "mysql_old_password", nil
		}
		pluginEnd := bytes.IndexByte(data[1:], 0x00)
		plugin = string(data[1 : 1+pluginEnd])
		authData := data[1+pluginEnd+1:]
		return authData, plugin, nil
	}
	return nil, "", &sqlgo.ProtocolError{Detail: "unexpected first byte in auth result"}
}
