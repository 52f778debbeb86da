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

// Package extract flattens Members API responses into typed rows. It does
// no business-rule normalization.
package extract

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blinklabs-io/parlmembers/membersapi"
	"github.com/blinklabs-io/parlmembers/reference"
)

var errMissing = errors.New("missing")

var dateLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02",
}

// ParseDate parses an optional API date, truncated to the calendar day. A nil
// or empty value yields nil.
func ParseDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			ret := reference.Day(t)
			return &ret, nil
		}
	}
	return nil, fmt.Errorf("unparseable date %q", v)
}

// Members extracts one row per member from a search result page
func Members(page *membersapi.SearchResult) ([]RawMember, error) {
	if page == nil {
		return nil, nil
	}
	ret := make([]RawMember, 0, len(page.Items))
	for i, item := range page.Items {
		if item.Value == nil {
			return nil, invalid("member", 0, fmt.Sprintf("items[%d].value", i), errMissing)
		}
		m, err := member(item.Value)
		if err != nil {
			return nil, err
		}
		ret = append(ret, m)
	}
	return ret, nil
}

func member(v *membersapi.Member) (RawMember, error) {
	if v.ID <= 0 {
		return RawMember{}, invalid("member", v.ID, "id", errMissing)
	}
	// Anyone not sitting in the Commons counts as a peer
	ret := RawMember{
		ID:            v.ID,
		NameDisplayAs: v.NameDisplayAs,
		Gender:        v.Gender,
		IsPeer:        true,
	}
	if v.LatestParty != nil && v.LatestParty.Name != "" {
		party := v.LatestParty.Name
		ret.Party = &party
	}
	membership := v.LatestHouseMembership
	if membership == nil {
		return ret, nil
	}
	house, err := ParseHouse(membership.House)
	if err != nil {
		return RawMember{}, invalid("member", v.ID, "latestHouseMembership.house", err)
	}
	ret.House = &house
	ret.IsMP = house == HouseCommons
	ret.IsPeer = !ret.IsMP
	if membership.MembershipFrom != "" {
		from := membership.MembershipFrom
		ret.Constituency = &from
	}
	if membership.MembershipFromID != nil {
		fromID := *membership.MembershipFromID
		ret.ConstituencyID = &fromID
	}
	// membershipStatus is only populated for current members
	if status := membership.MembershipStatus; status != nil {
		ret.IsCurrent = true
		desc := status.StatusDescription
		ret.Status = &desc
		ret.StatusReason = status.StatusNotes
		ret.StatusStartDate, err = ParseDate(status.StatusStartDate)
		if err != nil {
			return RawMember{}, invalid("member", v.ID, "membershipStatus.statusStartDate", err)
		}
	}
	return ret, nil
}

// History flattens one member history into name, party and house
// membership rows
func History(
	h *membersapi.MemberHistory,
) ([]NameHistoryRecord, []PartyHistoryRecord, []HouseMembershipRecord, error) {
	if h == nil {
		return nil, nil, nil, nil
	}
	if h.ID <= 0 {
		return nil, nil, nil, invalid("member history", h.ID, "id", errMissing)
	}
	names := make([]NameHistoryRecord, 0, len(h.NameHistory))
	for _, n := range h.NameHistory {
		if strings.TrimSpace(n.NameDisplayAs) == "" {
			return nil, nil, nil, invalid("name history", h.ID, "nameDisplayAs", errMissing)
		}
		start, end, err := span("name history", h.ID, n.StartDate, n.EndDate)
		if err != nil {
			return nil, nil, nil, err
		}
		names = append(names, NameHistoryRecord{
			ID:            h.ID,
			NameDisplayAs: n.NameDisplayAs,
			StartDate:     start,
			EndDate:       end,
		})
	}
	parties := make([]PartyHistoryRecord, 0, len(h.PartyHistory))
	for _, p := range h.PartyHistory {
		if p.Party == nil || p.Party.Name == "" {
			return nil, nil, nil, invalid("party history", h.ID, "party", errMissing)
		}
		start, end, err := span("party history", h.ID, p.StartDate, p.EndDate)
		if err != nil {
			return nil, nil, nil, err
		}
		parties = append(parties, PartyHistoryRecord{
			ID:        h.ID,
			Party:     p.Party.Name,
			PartyID:   p.Party.ID,
			StartDate: start,
			EndDate:   end,
		})
	}
	houses := make([]HouseMembershipRecord, 0, len(h.HouseMembershipHistory))
	for _, m := range h.HouseMembershipHistory {
		house, err := ParseHouse(m.House)
		if err != nil {
			return nil, nil, nil, invalid("house membership", h.ID, "house", err)
		}
		if m.MembershipFromID == nil {
			return nil, nil, nil, invalid("house membership", h.ID, "membershipFromId", errMissing)
		}
		start, end, err := span(
			"house membership",
			h.ID,
			m.MembershipStartDate,
			m.MembershipEndDate,
		)
		if err != nil {
			return nil, nil, nil, err
		}
		houses = append(houses, HouseMembershipRecord{
			ID:               h.ID,
			House:            house,
			ConstituencyID:   *m.MembershipFromID,
			ConstituencyName: m.MembershipFrom,
			StartDate:        start,
			EndDate:          end,
		})
	}
	return names, parties, houses, nil
}

func span(entity string, id int, start, end *string) (*time.Time, *time.Time, error) {
	startDate, err := ParseDate(start)
	if err != nil {
		return nil, nil, invalid(entity, id, "startDate", err)
	}
	endDate, err := ParseDate(end)
	if err != nil {
		return nil, nil, invalid(entity, id, "endDate", err)
	}
	return startDate, endDate, nil
}

// StateOfTheParties extracts one row per party from a state of the parties
// response for the given house and date
func StateOfTheParties(
	res *membersapi.StateOfThePartiesResult,
	date time.Time,
	house House,
) ([]StateOfTheParty, error) {
	if _, err := ParseHouse(int(house)); err != nil {
		return nil, invalid("state of the parties", 0, "house", err)
	}
	if res == nil {
		return nil, nil
	}
	day := reference.Day(date)
	ret := make([]StateOfTheParty, 0, len(res.Items))
	for i, item := range res.Items {
		if item.Value == nil || item.Value.Party == nil {
			return nil, invalid(
				"state of the parties",
				0,
				fmt.Sprintf("items[%d].value.party", i),
				errMissing,
			)
		}
		v := item.Value
		ret = append(ret, StateOfTheParty{
			Date:                  day,
			House:                 house,
			Male:                  v.Male,
			Female:                v.Female,
			NonBinary:             v.NonBinary,
			Total:                 v.Total,
			PartyID:               v.Party.ID,
			PartyName:             v.Party.Name,
			PartyAbbreviation:     v.Party.Abbreviation,
			BackgroundColour:      v.Party.BackgroundColour,
			ForegroundColour:      v.Party.ForegroundColour,
			IsLordsMainParty:      v.Party.IsLordsMainParty,
			IsLordsSpiritualParty: v.Party.IsLordsSpiritualParty,
			GovernmentType:        v.Party.GovernmentType,
			IsIndependentParty:    v.Party.IsIndependentParty,
		})
	}
	return ret, nil
}
