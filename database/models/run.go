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

package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrExtractionRunNotFound = errors.New("extraction run not found")

const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// ExtractionRun records one execution of the extract pipeline
type ExtractionRun struct {
	StartedAt       time.Time
	FinishedAt      *time.Time
	ReviewTaskID    *uuid.UUID `gorm:"type:char(36)"`
	RunDate         string     `gorm:"type:varchar(10);index;not null"`
	Status          string     `gorm:"type:varchar(16);index;not null"`
	Error           string     `gorm:"type:text"`
	Members         int
	People          int
	Representations int
	Characteristics int
	Statuses        int
	Constituencies  int
	ID              uuid.UUID `gorm:"type:char(36);primaryKey"`
}

func (ExtractionRun) TableName() string {
	return "extraction_run"
}

// SetCounts copies the row counts of a completed build onto the run
func (r *ExtractionRun) SetCounts(members int, e *Entities) {
	r.Members = members
	r.People = len(e.People)
	r.Representations = len(e.Representations)
	r.Characteristics = len(e.Characteristics)
	r.Statuses = len(e.Statuses)
	r.Constituencies = len(e.Constituencies)
}
