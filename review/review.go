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

// Package review turns snapshot differences into a review task for a human
// reviewer
package review

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/blinklabs-io/parlmembers/diff"
	"github.com/google/uuid"
)

const (
	TaskType        = "snapshot_review"
	TaskDescription = "Review changes between member snapshots"

	StatusCreated = "created"
	RoleReviewer  = "reviewer"
)

type Task struct {
	CreatedAt   time.Time
	Description string
	Type        string
	Statuses    []TaskStatus
	Allocations []Allocation
	Items       []Item
	ID          uuid.UUID
	RunID       uuid.UUID
}

// TaskStatus is one entry in the status history of a task
type TaskStatus struct {
	At     time.Time
	Status string
	User   string
	ID     uuid.UUID
	TaskID uuid.UUID
}

type Allocation struct {
	Role   string
	User   string
	ID     uuid.UUID
	TaskID uuid.UUID
}

// Item is one tagged row version for review
type Item struct {
	Entity  string
	Key     string
	Status  diff.Status
	Side    diff.Side
	Payload json.RawMessage
	ID      uuid.UUID
	TaskID  uuid.UUID
}

// NewTask creates a task in the created state allocated to a reviewer
func NewTask(runID uuid.UUID, creator, reviewer string, now time.Time) *Task {
	t := &Task{
		ID:          uuid.New(),
		RunID:       runID,
		Type:        TaskType,
		Description: TaskDescription,
		CreatedAt:   now,
	}
	t.Statuses = append(t.Statuses, TaskStatus{
		ID:     uuid.New(),
		TaskID: t.ID,
		Status: StatusCreated,
		User:   creator,
		At:     now,
	})
	t.Allocations = append(t.Allocations, Allocation{
		ID:     uuid.New(),
		TaskID: t.ID,
		Role:   RoleReviewer,
		User:   reviewer,
	})
	return t
}

// AddRows appends one item per tagged row with the row encoded as JSON
func AddRows[K comparable, R any](t *Task, entity string, rows []diff.Row[K, R]) error {
	for _, row := range rows {
		payload, err := json.Marshal(row.Row)
		if err != nil {
			return fmt.Errorf("encode %s row %v: %w", entity, row.Key, err)
		}
		t.Items = append(t.Items, Item{
			ID:      uuid.New(),
			TaskID:  t.ID,
			Entity:  entity,
			Key:     fmt.Sprint(row.Key),
			Status:  row.Status,
			Side:    row.Side,
			Payload: payload,
		})
	}
	return nil
}

// Summary counts items per entity and status
func (t *Task) Summary() map[string]map[diff.Status]int {
	ret := make(map[string]map[diff.Status]int)
	for _, item := range t.Items {
		if ret[item.Entity] == nil {
			ret[item.Entity] = make(map[diff.Status]int)
		}
		ret[item.Entity][item.Status]++
	}
	return ret
}
