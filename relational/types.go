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

// Package relational turns normalized member history into the entity tables
// written to the sink
package relational

import (
	"time"

	"github.com/google/uuid"
)

// House labels used in the representation table
const (
	HouseCommons = "Commons"
	HouseLords   = "Lords"
)

// Person is one human under one collapsed name
type Person struct {
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Gender       *string    `json:"gender"`
	Name         string     `json:"name"`
	ShortName    string     `json:"short_name"`
	IDParliament int        `json:"id_parliament"`
	ID           uuid.UUID  `json:"id"`
}

// Representation is one continuous spell of a person holding a seat
type Representation struct {
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Type         *string    `json:"type"`
	Constituency *uuid.UUID `json:"constituency_id"`
	// ConstituencyIDParliament is the external constituency id, kept for
	// Commons seats and Lords memberships outside the peerage range
	ConstituencyIDParliament *int      `json:"constituency_id_parliament"`
	House                    string    `json:"house"`
	IDParliament             int       `json:"id_parliament"`
	ID                       uuid.UUID `json:"id"`
	PersonID                 uuid.UUID `json:"person_id"`
}

// RepresentationCharacteristic is a party affiliation held during part of a
// representation
type RepresentationCharacteristic struct {
	StartDate        *time.Time `json:"start_date"`
	EndDate          *time.Time `json:"end_date"`
	Party            string     `json:"party"`
	ID               uuid.UUID  `json:"id"`
	RepresentationID uuid.UUID  `json:"representation_id"`
}

// RepresentationStatus is the current status of an open representation
type RepresentationStatus struct {
	StartDate        *time.Time `json:"start_date"`
	Reason           *string    `json:"reason"`
	Status           string     `json:"status"`
	ID               uuid.UUID  `json:"id"`
	RepresentationID uuid.UUID  `json:"representation_id"`
}

// Constituency is a Commons seat
type Constituency struct {
	Name         string    `json:"name"`
	IDParliament int       `json:"id_parliament"`
	ID           uuid.UUID `json:"id"`
}

// Stats counts rows dropped by heuristic filters
type Stats struct {
	PlaceholdersDropped int `json:"placeholders_dropped"`
	DuplicatesDropped   int `json:"duplicates_dropped"`
	StatusesUnattached  int `json:"statuses_unattached"`
}

// Result holds the entity tables of one run
type Result struct {
	People          []Person                       `json:"people"`
	Representations []Representation               `json:"representations"`
	Characteristics []RepresentationCharacteristic `json:"characteristics"`
	Statuses        []RepresentationStatus         `json:"statuses"`
	Constituencies  []Constituency                 `json:"constituencies"`
	Stats           Stats                          `json:"stats"`
}
