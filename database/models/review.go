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

var ErrReviewTaskNotFound = errors.New("review task not found")

type ReviewTask struct {
	CreatedAt   time.Time
	Type        string                 `gorm:"type:varchar(64);not null"`
	Description string                 `gorm:"type:varchar(255)"`
	Statuses    []ReviewTaskStatus     `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	Allocations []ReviewTaskAllocation `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	Items       []ReviewItem           `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	ID          uuid.UUID              `gorm:"type:char(36);primaryKey"`
	RunID       uuid.UUID              `gorm:"type:char(36);index"`
}

func (ReviewTask) TableName() string {
	return "review_task"
}

type ReviewTaskStatus struct {
	At     time.Time
	Status string    `gorm:"type:varchar(32);not null"`
	User   string    `gorm:"column:user_name;type:varchar(255)"`
	ID     uuid.UUID `gorm:"type:char(36);primaryKey"`
	TaskID uuid.UUID `gorm:"type:char(36);index;not null"`
}

func (ReviewTaskStatus) TableName() string {
	return "review_task_status"
}

type ReviewTaskAllocation struct {
	Role   string    `gorm:"type:varchar(32);not null"`
	User   string    `gorm:"column:user_name;type:varchar(255);not null"`
	ID     uuid.UUID `gorm:"type:char(36);primaryKey"`
	TaskID uuid.UUID `gorm:"type:char(36);index;not null"`
}

func (ReviewTaskAllocation) TableName() string {
	return "review_task_allocation"
}

// ReviewItem is one differing row awaiting review. Payload holds the row as
// JSON.
type ReviewItem struct {
	Entity  string    `gorm:"type:varchar(64);index;not null"`
	Key     string    `gorm:"column:row_key;type:varchar(255);not null"`
	Status  string    `gorm:"type:varchar(16);not null"`
	Side    string    `gorm:"type:varchar(8);not null"`
	Payload string    `gorm:"type:text"`
	ID      uuid.UUID `gorm:"type:char(36);primaryKey"`
	TaskID  uuid.UUID `gorm:"type:char(36);index;not null"`
}

func (ReviewItem) TableName() string {
	return "review_item"
}
