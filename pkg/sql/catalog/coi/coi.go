// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package coi defines the customer/order/item sample group used by tests and
// by the groupflow CLI when no fixture is given.
//
//	customer (cid)                 ordinal 1
//	├── order (cid, oid)           ordinal 2
//	│   └── item (cid, oid, iid)   ordinal 3
//	└── address (cid, aid)         ordinal 4
package coi

import (
	"github.com/cockroachdb/groupflow/pkg/sql/catalog"
	"github.com/cockroachdb/groupflow/pkg/sql/types"
)

// Table ordinals of the group.
const (
	CustomerOrdinal = 1
	OrderOrdinal    = 2
	ItemOrdinal     = 3
	AddressOrdinal  = 4
)

// Defs returns the table definitions of the group.
func Defs() []catalog.TableDef {
	return []catalog.TableDef{
		{
			Name:    "customer",
			Ordinal: CustomerOrdinal,
			Columns: []catalog.Column{
				{Name: "cid", Type: types.Int},
				{Name: "name", Type: types.String},
			},
			PrimaryKey: []string{"cid"},
		},
		{
			Name:    "order",
			Ordinal: OrderOrdinal,
			Parent:  "customer",
			Columns: []catalog.Column{
				{Name: "cid", Type: types.Int},
				{Name: "oid", Type: types.Int},
				{Name: "amount", Type: types.Decimal},
			},
			PrimaryKey: []string{"cid", "oid"},
		},
		{
			Name:    "item",
			Ordinal: ItemOrdinal,
			Parent:  "order",
			Columns: []catalog.Column{
				{Name: "cid", Type: types.Int},
				{Name: "oid", Type: types.Int},
				{Name: "iid", Type: types.Int},
				{Name: "sku", Type: types.String},
			},
			PrimaryKey: []string{"cid", "oid", "iid"},
		},
		{
			Name:    "address",
			Ordinal: AddressOrdinal,
			Parent:  "customer",
			Columns: []catalog.Column{
				{Name: "cid", Type: types.Int},
				{Name: "aid", Type: types.Int},
				{Name: "city", Type: types.String},
				{Name: "primary", Type: types.Bool},
			},
			PrimaryKey: []string{"cid", "aid"},
		},
	}
}

// NewGroup returns a fresh instance of the group.
func NewGroup() *catalog.Group {
	g, err := catalog.NewGroup(1, "coi", Defs()...)
	if err != nil {
		panic(err)
	}
	return g
}
