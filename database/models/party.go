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

import "time"

// StateOfTheParty is the seat count of one party in one house on one date
type StateOfTheParty struct {
	Date                  time.Time `gorm:"column:state_date;type:date;primaryKey"`
	GovernmentType        *int
	PartyName             string `gorm:"type:varchar(255)"`
	PartyAbbreviation     string `gorm:"type:varchar(32)"`
	BackgroundColour      string `gorm:"type:varchar(16)"`
	ForegroundColour      string `gorm:"type:varchar(16)"`
	House                 int    `gorm:"primaryKey;autoIncrement:false"`
	PartyID               int    `gorm:"primaryKey;autoIncrement:false"`
	Male                  int
	Female                int
	NonBinary             int
	Total                 int
	IsLordsMainParty      bool
	IsLordsSpiritualParty bool
	IsIndependentParty    bool
}

func (StateOfTheParty) TableName() string {
	return "state_of_the_parties"
}
