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

import "github.com/google/uuid"

type Constituency struct {
	Name         string    `gorm:"type:varchar(255);not null"`
	IDParliament int       `gorm:"uniqueIndex;not null"`
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"`
}

func (Constituency) TableName() string {
	return "constituency"
}
