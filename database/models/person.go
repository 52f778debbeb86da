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
	"time"

	"github.com/google/uuid"
)

// Person has one row per display name a member has used. The surrogate id
// is shared by every row of the same member.
type Person struct {
	StartDate    *time.Time `gorm:"type:date"`
	EndDate      *time.Time `gorm:"type:date"`
	Gender       *string    `gorm:"type:varchar(1)"`
	Name         string     `gorm:"type:varchar(255);primaryKey"`
	ShortName    string     `gorm:"type:varchar(255)"`
	IDParliament int        `gorm:"index;not null"`
	ID           uuid.UUID  `gorm:"type:char(36);primaryKey"`
}

func (Person) TableName() string {
	return "person"
}
