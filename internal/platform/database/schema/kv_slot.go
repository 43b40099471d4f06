// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema holds table and column names shared by the SQL stores.
package schema

// KVSlotTable represents the 'kv_slot' table
type KVSlotTable struct {
	Table     string
	Name      string
	Value     string
	UpdatedAt string
}

// KVSlot is the schema definition for kv_slot. The same layout is used by the
// SQLite file and the PostgreSQL database.
var KVSlot = KVSlotTable{
	Table:     "kv_slot",
	Name:      "name",
	Value:     "value",
	UpdatedAt: "updated_at",
}

func (t KVSlotTable) Columns() []string {
	return []string{t.Name, t.Value, t.UpdatedAt}
}
