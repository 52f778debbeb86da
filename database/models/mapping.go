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

// PersonIDMapping persists the surrogate id assigned to a member so that it
// survives across extraction runs
type PersonIDMapping struct {
	IDParliament int       `gorm:"primaryKey;autoIncrement:false"`
	ID           uuid.UUID `gorm:"type:char(36);uniqueIndex;not null"`
}

func (PersonIDMapping) TableName() string {
	return "person_id_map"
}

type ConstituencyIDMapping struct {
	IDParliament int       `gorm:"primaryKey;autoIncrement:false"`
	ID           uuid.UUID `gorm:"type:char(36);uniqueIndex;not null"`
}

func (ConstituencyIDMapping) TableName() string {
	return "constituency_id_map"
}
