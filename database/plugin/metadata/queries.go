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

package metadata

import (
	"errors"
	"fmt"
	"time"

	"github.com/blinklabs-io/parlmembers/database/models"
	"github.com/blinklabs-io/parlmembers/database/plugin/metadata/importutil"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Queries implements the MetadataStore data access on top of gorm. The
// backend plugins embed it once their connection is open.
type Queries struct {
	db *gorm.DB
}

func NewQueries(db *gorm.DB) Queries {
	return Queries{db: db}
}

// DB returns the database handle
func (q Queries) DB() *gorm.DB {
	return q.db
}

// AutoMigrate wraps the gorm AutoMigrate
func (q Queries) AutoMigrate(dst ...any) error {
	return q.db.AutoMigrate(dst...)
}

// Transaction runs fn in a transaction that is rolled back if fn fails
func (q Queries) Transaction(fn func(txn *gorm.DB) error) error {
	return q.db.Transaction(fn)
}

func (q Queries) conn(txn *gorm.DB) *gorm.DB {
	if txn != nil {
		return txn
	}
	return q.db
}

func (q Queries) GetPersonIDMappings(txn *gorm.DB) (map[int]uuid.UUID, error) {
	var rows []models.PersonIDMapping
	if err := q.conn(txn).Find(&rows).Error; err != nil {
		return nil, err
	}
	ret := make(map[int]uuid.UUID, len(rows))
	for _, row := range rows {
		ret[row.IDParliament] = row.ID
	}
	return ret, nil
}

func (q Queries) GetConstituencyIDMappings(
	txn *gorm.DB,
) (map[int]uuid.UUID, error) {
	var rows []models.ConstituencyIDMapping
	if err := q.conn(txn).Find(&rows).Error; err != nil {
		return nil, err
	}
	ret := make(map[int]uuid.UUID, len(rows))
	for _, row := range rows {
		ret[row.IDParliament] = row.ID
	}
	return ret, nil
}

// AddPersonIDMappings stores new mappings. Existing mappings are never
// overwritten.
func (q Queries) AddPersonIDMappings(
	mappings map[int]uuid.UUID,
	txn *gorm.DB,
) error {
	rows := make([]models.PersonIDMapping, 0, len(mappings))
	for idParliament, id := range mappings {
		rows = append(rows, models.PersonIDMapping{IDParliament: idParliament, ID: id})
	}
	return importutil.InsertMissing(q.conn(txn), rows)
}

func (q Queries) AddConstituencyIDMappings(
	mappings map[int]uuid.UUID,
	txn *gorm.DB,
) error {
	rows := make([]models.ConstituencyIDMapping, 0, len(mappings))
	for idParliament, id := range mappings {
		rows = append(
			rows,
			models.ConstituencyIDMapping{IDParliament: idParliament, ID: id},
		)
	}
	return importutil.InsertMissing(q.conn(txn), rows)
}

// ReplaceEntities swaps the contents of all entity tables. Dependent tables
// are cleared first.
func (q Queries) ReplaceEntities(e *models.Entities, txn *gorm.DB) error {
	db := q.conn(txn)
	if err := importutil.ReplaceAll(db, e.Statuses); err != nil {
		return err
	}
	if err := importutil.ReplaceAll(db, e.Characteristics); err != nil {
		return err
	}
	if err := importutil.ReplaceAll(db, e.Representations); err != nil {
		return err
	}
	if err := importutil.ReplaceAll(db, e.People); err != nil {
		return err
	}
	return importutil.ReplaceAll(db, e.Constituencies)
}

func (q Queries) GetPeople(txn *gorm.DB) ([]models.Person, error) {
	var ret []models.Person
	result := q.conn(txn).Order("id_parliament, start_date, name").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (q Queries) GetConstituencies(txn *gorm.DB) ([]models.Constituency, error) {
	var ret []models.Constituency
	result := q.conn(txn).Order("id_parliament").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetStateOfTheParties upserts seat counts keyed on (date, house, party)
func (q Queries) SetStateOfTheParties(
	rows []models.StateOfTheParty,
	txn *gorm.DB,
) error {
	return importutil.Upsert(
		q.conn(txn),
		rows,
		[]string{"state_date", "house", "party_id"},
		[]string{
			"government_type",
			"party_name",
			"party_abbreviation",
			"background_colour",
			"foreground_colour",
			"male",
			"female",
			"non_binary",
			"total",
			"is_lords_main_party",
			"is_lords_spiritual_party",
			"is_independent_party",
		},
	)
}

// GetStateOfTheParties returns the seat counts of a house between two dates
// inclusive
func (q Queries) GetStateOfTheParties(
	house int,
	from time.Time,
	to time.Time,
	txn *gorm.DB,
) ([]models.StateOfTheParty, error) {
	var ret []models.StateOfTheParty
	result := q.conn(txn).
		Where("house = ? AND state_date >= ? AND state_date <= ?", house, from, to).
		Order("state_date, party_id").
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetExtractionRun creates or updates a run record
func (q Queries) SetExtractionRun(run *models.ExtractionRun, txn *gorm.DB) error {
	if run.ID == uuid.Nil {
		return errors.New("extraction run has no id")
	}
	return q.conn(txn).Save(run).Error
}

// GetLatestExtractionRun returns the most recent run with the given status,
// or any status when empty
func (q Queries) GetLatestExtractionRun(
	status string,
	txn *gorm.DB,
) (*models.ExtractionRun, error) {
	var ret models.ExtractionRun
	query := q.conn(txn).Order("run_date DESC, started_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	result := query.First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrExtractionRunNotFound
		}
		return nil, result.Error
	}
	return &ret, nil
}

// AddReviewTask stores a task with its status history, allocations and items
func (q Queries) AddReviewTask(task *models.ReviewTask, txn *gorm.DB) error {
	db := q.conn(txn)
	if err := db.Omit(clause.Associations).Create(task).Error; err != nil {
		return fmt.Errorf("create review task: %w", err)
	}
	if err := importutil.Insert(db, task.Statuses); err != nil {
		return err
	}
	if err := importutil.Insert(db, task.Allocations); err != nil {
		return err
	}
	return importutil.Insert(db, task.Items)
}

func (q Queries) GetReviewTask(
	id uuid.UUID,
	txn *gorm.DB,
) (*models.ReviewTask, error) {
	var ret models.ReviewTask
	result := q.conn(txn).
		Preload("Statuses", func(db *gorm.DB) *gorm.DB {
			return db.Order("at")
		}).
		Preload("Allocations").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("entity, row_key, side")
		}).
		Where("id = ?", id).
		First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrReviewTaskNotFound
		}
		return nil, result.Error
	}
	return &ret, nil
}
