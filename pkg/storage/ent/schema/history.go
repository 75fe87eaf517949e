// Package schema holds the audit log table definitions used by ent's
// migration engine.
package schema

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	// HistoryTableName is the audit log table.
	HistoryTableName = "history"

	ColumnID        = "id"
	ColumnSequence  = "sequence"
	ColumnProcessed = "processed"
	ColumnCreatedAt = "created_at"
)

var (
	// HistoryColumns holds the columns for the "history" table.
	HistoryColumns = []*schema.Column{
		// id is assigned by the database in insertion order
		{Name: ColumnID, Type: field.TypeInt64, Increment: true},

		// sequence is the raw measurement string as received
		{Name: ColumnSequence, Type: field.TypeString, Size: 2147483647},

		// processed holds the segment sums as a JSON array
		{Name: ColumnProcessed, Type: field.TypeJSON},

		{Name: ColumnCreatedAt, Type: field.TypeTime},
	}

	// HistoryTable holds the schema information for the "history" table.
	HistoryTable = &schema.Table{
		Name:       HistoryTableName,
		Columns:    HistoryColumns,
		PrimaryKey: []*schema.Column{HistoryColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "history_created_at",
				Unique:  false,
				Columns: []*schema.Column{HistoryColumns[3]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		HistoryTable,
	}
)
