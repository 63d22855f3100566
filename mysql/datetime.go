// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2013 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"fmt"
	"time"

	"github.com/sqlgo/sqlgo"
)

// formatBinaryDateTime renders the binary protocol's variable-length
// DATE/DATETIME/TIMESTAMP encoding into a textual "YYYY-MM-DD[ HH:MM:SS
// [.ffffff]]" string.
// https://dev.mysql.com/doc/internals/en/binary-protocol-value.html
func formatBinaryDateTime(src []byte) (string, error) {
	switch len(src) {
	case 0:
		return "0000-00-00", nil
	case 4:
		return fmt.Sprintf("%04d-%02d-%02d",
			uint16(src[0])|uint16(src[1])<<8, src[2], src[3]), nil
	case 7:
		return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d",
			uint16(src[0])|uint16(src[1])<<8, src[2], src[3], src[4], src[5], src[6]), nil
	case 11:
		microsecs := uint32(src[7]) | uint32(src[8])<<8 | uint32(src[9])<<16 | uint32(src[10])<<24
		return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d.%06d",
			uint16(src[0])|uint16(src[1])<<8, src[2], src[3], src[4], src[5], src[6], microsecs), nil
	}
	return "", &sqlgo.ProtocolError{Detail: fmt.Sprintf("invalid DATETIME length %d", len(src))}
}

// formatBinaryTime renders the binary protocol's TIME encoding into
// "[-][H]HH:MM:SS[.ffffff]".
func formatBinaryTime(src []byte) (string, error) {
	if len(src) == 0 {
		return "00:00:00", nil
	}
	isNegative := src[0]
	days := uint32(src[1]) | uint32(src[2])<<8 | uint32(src[3])<<16 | uint32(src[4])<<24
	hours := int(src[5]) + int(days)*24
	mins := src[6]
	secs := src[7]

	sign := ""
	if isNegative == 1 {
		sign = "-"
	}

	switch len(src) {
	case 8:
		return fmt.Sprintf("%s%02d:%02d:%02d", sign, hours, mins, secs), nil
	case 12:
		microsecs := uint32(src[8]) | uint32(src[9])<<8 | uint32(src[10])<<16 | uint32(src[11])<<24
		return fmt.Sprintf("%s%02d:%02d:%02d.%06d", sign, hours, mins, secs, microsecs), nil
	}
	return "", &sqlgo.ProtocolError{Detail: fmt.Sprintf("invalid TIME length %d", len(src))}
}

// mysqlDateTimeLayouts are the textual layouts a DATE/DATETIME/TIMESTAMP
// column's formatted bytes can take, tried in order by parseTemporal.
var mysqlDateTimeLayouts = []string{
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTemporal parses the textual representation produced by
// formatBinaryDateTime (or returned verbatim by the text protocol) into a
// time.Time in loc.
func parseTemporal(s string, loc *time.Location) (time.Time, error) {
	if s == "0000-00-00" || s == "0000-00-00 00:00:00" {
		return time.Time{}, nil
	}
	var lastErr error
	for _, layout := range mysqlDateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}
