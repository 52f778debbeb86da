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

type Representation struct {
	StartDate                *time.Time `gorm:"type:date"`
	EndDate                  *time.Time `gorm:"type:date"`
	Type                     *string    `gorm:"type:varchar(255)"`
	ConstituencyID           *uuid.UUID `gorm:"type:char(36);index"`
	ConstituencyIDParliament *int
	House                    string    `gorm:"type:varchar(7);not null"`
	IDParliament             int       `gorm:"index;not null"`
	ID                       uuid.UUID `gorm:"type:char(36);primaryKey"`
	PersonID                 uuid.UUID `gorm:"type:char(36);index;not null"`
}

func (Representation) TableName() string {
	return "representation"
}

// RepresentationCharacteristic is a party affiliation held during part of a
// representation
type RepresentationCharacteristic struct {
	StartDate        *time.Time `gorm:"type:date"`
	EndDate          *time.Time `gorm:"type:date"`
	Party            string     `gorm:"type:varchar(255);not null"`
	ID               uuid.UUID  `gorm:"type:char(36);primaryKey"`
	RepresentationID uuid.UUID  `gorm:"type:char(36);index;not null"`
}

func (RepresentationCharacteristic) TableName() string {
	return "representation_characteristics"
}

type RepresentationStatus struct {
	StartDate        *time.Time `gorm:"type:date"`
	Reason           *string    `gorm:"type:varchar(255)"`
	Status           string     `gorm:"type:varchar(255);not null"`
	ID               uuid.UUID  `gorm:"type:char(36);primaryKey"`
	RepresentationID uuid.UUID  `gorm:"type:char(36);uniqueIndex;not null"`
}

func (RepresentationStatus) TableName() string {
	return "representation_status"
}
