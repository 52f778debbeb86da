// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package importutil provides shared helpers for bulk writes across all
// metadata backends (sqlite, postgres, mysql).
package importutil

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BatchSize limits the number of rows in a single INSERT to stay within
// database variable limits (e.g. SQLite's SQLITE_MAX_VARIABLE_NUMBER,
// PostgreSQL's 65535 parameter limit).
const BatchSize = 500

// Insert creates rows in batches. An empty slice is a no-op.
func Insert[T any](db *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	if err := db.CreateInBatches(rows, BatchSize).Error; err != nil {
		var zero T
		return fmt.Errorf("insert %T: %w", zero, err)
	}
	return nil
}

// ReplaceAll deletes every row of the table backing T and inserts rows
func ReplaceAll[T any](db *gorm.DB, rows []T) error {
	var zero T
	if err := db.Where("1 = 1").Delete(&zero).Error; err != nil {
		return fmt.Errorf("clear %T: %w", zero, err)
	}
	return Insert(db, rows)
}

// InsertMissing inserts rows, skipping any that collide on the primary key
func InsertMissing[T any](db *gorm.DB, rows []T) error {
	return Insert(db.Clauses(clause.OnConflict{DoNothing: true}), rows)
}

// Upsert inserts rows, overwriting updateColumns of rows that collide on
// keyColumns
func Upsert[T any](
	db *gorm.DB,
	rows []T,
	keyColumns []string,
	updateColumns []string,
) error {
	cols := make([]clause.Column, 0, len(keyColumns))
	for _, c := range keyColumns {
		cols = append(cols, clause.Column{Name: c})
	}
	return Insert(
		db.Clauses(clause.OnConflict{
			Columns:   cols,
			DoUpdates: clause.AssignmentColumns(updateColumns),
		}),
		rows,
	)
}
