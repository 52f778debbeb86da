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

package extract

import (
	"fmt"
	"time"
)

// House is the chamber a membership belongs to
type House int

const (
	HouseCommons House = 1
	HouseLords   House = 2
)

// ParseHouse converts the numeric house code used by the API
func ParseHouse(v int) (House, error) {
	switch House(v) {
	case HouseCommons, HouseLords:
		return House(v), nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidHouse, v)
	}
}

func (h House) String() string {
	switch h {
	case HouseCommons:
		return "Commons"
	case HouseLords:
		return "Lords"
	default:
		return fmt.Sprintf("House(%d)", int(h))
	}
}

// RawMember is one member as returned by the search endpoint. Optional
// upstream fields are pointers and nil when absent.
type RawMember struct {
	House           *House     `json:"house"`
	Party           *string    `json:"party"`
	Constituency    *string    `json:"constituency"`
	ConstituencyID  *int       `json:"constituency_id"`
	Status          *string    `json:"status"`
	StatusReason    *string    `json:"status_reason"`
	StatusStartDate *time.Time `json:"status_start_date"`
	NameDisplayAs   string     `json:"name_display_as"`
	Gender          string     `json:"gender"`
	ID              int        `json:"id"`
	IsCurrent       bool       `json:"is_current"`
	IsMP            bool       `json:"is_mp"`
	IsPeer          bool       `json:"is_peer"`
}

// NameHistoryRecord is one span during which a member used a display name
type NameHistoryRecord struct {
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	NameDisplayAs string     `json:"name_display_as"`
	ID            int        `json:"id"`
}

// PartyHistoryRecord is one span of party affiliation
type PartyHistoryRecord struct {
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Party     string     `json:"party"`
	PartyID   int        `json:"party_id"`
	ID        int        `json:"id"`
}

// HouseMembershipRecord is one seat or peerage held by a member. For Lords
// memberships the constituency fields carry the peerage category.
type HouseMembershipRecord struct {
	StartDate        *time.Time `json:"start_date"`
	EndDate          *time.Time `json:"end_date"`
	ConstituencyName string     `json:"constituency_name"`
	ConstituencyID   int        `json:"constituency_id"`
	House            House      `json:"house"`
	ID               int        `json:"id"`
}

// StateOfTheParty is the seat count of one party in one house on one date
type StateOfTheParty struct {
	Date                  time.Time `json:"date"`
	GovernmentType        *int      `json:"government_type"`
	PartyName             string    `json:"party_name"`
	PartyAbbreviation     string    `json:"party_abbreviation"`
	BackgroundColour      string    `json:"background_colour"`
	ForegroundColour      string    `json:"foreground_colour"`
	House                 House     `json:"house"`
	PartyID               int       `json:"party_id"`
	Male                  int       `json:"male"`
	Female                int       `json:"female"`
	NonBinary             int       `json:"non_binary"`
	Total                 int       `json:"total"`
	IsLordsMainParty      bool      `json:"is_lords_main_party"`
	IsLordsSpiritualParty bool      `json:"is_lords_spiritual_party"`
	IsIndependentParty    bool      `json:"is_independent_party"`
}
