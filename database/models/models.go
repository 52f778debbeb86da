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

// MigrateModels contains a list of model objects that should have DB migrations applied
var MigrateModels = []any{
	&Person{},
	&Representation{},
	&RepresentationCharacteristic{},
	&RepresentationStatus{},
	&Constituency{},
	&PersonIDMapping{},
	&ConstituencyIDMapping{},
	&ExtractionRun{},
	&ReviewTask{},
	&ReviewTaskStatus{},
	&ReviewTaskAllocation{},
	&ReviewItem{},
	&StateOfTheParty{},
}

// Entities is the full set of entity tables produced by one extraction run.
// The tables are always replaced together.
type Entities struct {
	People          []Person
	Representations []Representation
	Characteristics []RepresentationCharacteristic
	Statuses        []RepresentationStatus
	Constituencies  []Constituency
}

// Counts returns the number of rows per table name
func (e *Entities) Counts() map[string]int {
	return map[string]int{
		Person{}.TableName():                       len(e.People),
		Representation{}.TableName():               len(e.Representations),
		RepresentationCharacteristic{}.TableName(): len(e.Characteristics),
		RepresentationStatus{}.TableName():         len(e.Statuses),
		Constituency{}.TableName():                 len(e.Constituencies),
	}
}
