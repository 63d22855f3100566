// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2013 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import "github.com/sqlgo/sqlgo"

// row is one decoded record from a binary result set. It is reused in
// place by cursor.Next, so a row borrowed from Cursor.Row must be consumed
// before the next Next call, matching sqlgo.Row's staleness contract.
type row struct {
	columns []column
	values  []sqlgo.RawValue
	stale   bool
}

func (r *row) Columns() []string {
	names := make([]string, len(r.columns))
	for i, c := range r.columns {
		names[i] = c.name
	}
	return names
}

func (r *row) Column(index int) (sqlgo.RawValue, error) {
	if r.stale {
		return sqlgo.RawValue{}, sqlgo.ErrRowStale
	}
	if index < 0 || index >= len(r.values) {
		return sqlgo.RawValue{}, &sqlgo.ColumnIndexOutOfBoundsError{Index: index, Len: len(r.values)}
	}
	return r.values[index], nil
}

func (r *row) ColumnByName(name string) (sqlgo.RawValue, error) {
	if r.stale {
		return sqlgo.RawValue{}, sqlgo.ErrRowStale
	}
	for i, c := range r.columns {
		if c.name == name {
			return r.values[i], nil
		}
	}
	return sqlgo.RawValue{}, &sqlgo.ColumnNotFoundError{Name: name}
}

func (r *row) ColumnType(index int) (sqlgo.TypeInfo, error) {
	if index < 0 || index >= len(r.columns) {
		return nil, &sqlgo.ColumnIndexOutOfBoundsError{Index: index, Len: len(r.columns)}
	}
	return typeInfoFor(r.columns[index]), nil
}
