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

package membersapi

// SearchResult is one page returned by GET /api/Members/Search
type SearchResult struct {
	Items        []SearchItem `json:"items"`
	TotalResults int          `json:"totalResults"`
	Skip         int          `json:"skip"`
	Take         int          `json:"take"`
}

// SearchItem wraps a single member in a search result page
type SearchItem struct {
	Value *Member `json:"value"`
}

// Member is the member summary embedded in search results
type Member struct {
	LatestParty           *Party           `json:"latestParty"`
	LatestHouseMembership *HouseMembership `json:"latestHouseMembership"`
	NameListAs            string           `json:"nameListAs"`
	NameDisplayAs         string           `json:"nameDisplayAs"`
	NameFullTitle         string           `json:"nameFullTitle"`
	NameAddressAs         *string          `json:"nameAddressAs"`
	Gender                string           `json:"gender"`
	ID                    int              `json:"id"`
}

// Party describes a political party as returned by several endpoints
type Party struct {
	GovernmentType        *int   `json:"governmentType"`
	Name                  string `json:"name"`
	Abbreviation          string `json:"abbreviation"`
	BackgroundColour      string `json:"backgroundColour"`
	ForegroundColour      string `json:"foregroundColour"`
	ID                    int    `json:"id"`
	IsLordsMainParty      bool   `json:"isLordsMainParty"`
	IsLordsSpiritualParty bool   `json:"isLordsSpiritualParty"`
	IsIndependentParty    bool   `json:"isIndependentParty"`
}

// HouseMembership is a single seat or peerage held by a member
type HouseMembership struct {
	MembershipStartDate *string           `json:"membershipStartDate"`
	MembershipEndDate   *string           `json:"membershipEndDate"`
	MembershipEndReason *string           `json:"membershipEndReason"`
	MembershipStatus    *MembershipStatus `json:"membershipStatus"`
	MembershipFromID    *int              `json:"membershipFromId"`
	MembershipFrom      string            `json:"membershipFrom"`
	House               int               `json:"house"`
}

// MembershipStatus is only present for current members
type MembershipStatus struct {
	StatusNotes       *string `json:"statusNotes"`
	StatusStartDate   *string `json:"statusStartDate"`
	StatusDescription string  `json:"statusDescription"`
	StatusID          int     `json:"statusId"`
	Status            int     `json:"status"`
	StatusIsActive    bool    `json:"statusIsActive"`
}

// HistoryItem wraps one member history in GET /api/Members/History
type HistoryItem struct {
	Value *MemberHistory `json:"value"`
}

// MemberHistory holds the name, party and house membership history of a member
type MemberHistory struct {
	NameHistory            []NameHistory     `json:"nameHistory"`
	PartyHistory           []PartyHistory    `json:"partyHistory"`
	HouseMembershipHistory []HouseMembership `json:"houseMembershipHistory"`
	ID                     int               `json:"id"`
}

type NameHistory struct {
	StartDate     *string `json:"startDate"`
	EndDate       *string `json:"endDate"`
	NameDisplayAs string  `json:"nameDisplayAs"`
	NameListAs    string  `json:"nameListAs"`
	NameFullTitle string  `json:"nameFullTitle"`
}

type PartyHistory struct {
	Party     *Party  `json:"party"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
}

// StateOfThePartiesResult is returned by GET /api/parties/stateOfTheParties/{house}/{date}
type StateOfThePartiesResult struct {
	Items []StateOfThePartiesItem `json:"items"`
}

type StateOfThePartiesItem struct {
	Value *PartySeats `json:"value"`
}

// PartySeats is the seat count of one party on a given date
type PartySeats struct {
	Party     *Party `json:"party"`
	Male      int    `json:"male"`
	Female    int    `json:"female"`
	NonBinary int    `json:"nonBinary"`
	Total     int    `json:"total"`
}
