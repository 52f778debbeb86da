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

package extract_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/blinklabs-io/parlmembers/extract"
	"github.com/blinklabs-io/parlmembers/membersapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchPageJSON = `{
  "items": [
    {"value": {
      "id": 172,
      "nameDisplayAs": "Ms Diane Abbott",
      "gender": "F",
      "latestParty": {"id": 8, "name": "Independent"},
      "latestHouseMembership": {
        "membershipFrom": "Hackney North and Stoke Newington",
        "membershipFromId": 3527,
        "house": 1,
        "membershipStartDate": "1987-06-11T00:00:00",
        "membershipStatus": {
          "statusIsActive": true,
          "statusDescription": "Current Member",
          "statusNotes": null,
          "statusStartDate": "2024-07-04T00:00:00"
        }
      }
    }},
    {"value": {
      "id": 3898,
      "nameDisplayAs": "Lord Former",
      "gender": "M",
      "latestParty": null,
      "latestHouseMembership": {
        "membershipFrom": "Life peer",
        "membershipFromId": 2,
        "house": 2,
        "membershipStatus": null
      }
    }},
    {"value": {"id": 5, "nameDisplayAs": "No Membership", "gender": "M"}}
  ],
  "totalResults": 3
}`

func decode[T any](t *testing.T, s string) *T {
	t.Helper()
	var ret T
	require.NoError(t, json.Unmarshal([]byte(s), &ret))
	return &ret
}

func TestMembers(t *testing.T) {
	page := decode[membersapi.SearchResult](t, searchPageJSON)
	members, err := extract.Members(page)
	require.NoError(t, err)
	require.Len(t, members, 3)

	mp := members[0]
	assert.Equal(t, 172, mp.ID)
	assert.True(t, mp.IsMP)
	assert.False(t, mp.IsPeer)
	assert.True(t, mp.IsCurrent)
	require.NotNil(t, mp.Party)
	assert.Equal(t, "Independent", *mp.Party)
	require.NotNil(t, mp.ConstituencyID)
	assert.Equal(t, 3527, *mp.ConstituencyID)
	require.NotNil(t, mp.Status)
	assert.Equal(t, "Current Member", *mp.Status)
	assert.Nil(t, mp.StatusReason)
	require.NotNil(t, mp.StatusStartDate)
	assert.Equal(t, time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC), *mp.StatusStartDate)

	peer := members[1]
	assert.False(t, peer.IsMP)
	assert.True(t, peer.IsPeer)
	assert.False(t, peer.IsCurrent)
	assert.Nil(t, peer.Party, "absent party must be a typed absence")
	assert.Nil(t, peer.Status)

	none := members[2]
	assert.Nil(t, none.House)
	assert.False(t, none.IsMP)
	assert.True(t, none.IsPeer, "without a house membership a member is not an MP")
}

func TestMembersRejectsInvalidHouse(t *testing.T) {
	page := decode[membersapi.SearchResult](t, `{"items":[{"value":{"id":9,"latestHouseMembership":{"house":3}}}]}`)
	_, err := extract.Members(page)
	require.Error(t, err)
	var verr *extract.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 9, verr.ID)
	assert.ErrorIs(t, err, extract.ErrInvalidHouse)
}

func TestMembersRejectsMissingID(t *testing.T) {
	page := decode[membersapi.SearchResult](t, `{"items":[{"value":{"nameDisplayAs":"Nobody"}}]}`)
	_, err := extract.Members(page)
	var verr *extract.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "id", verr.Field)
}

func TestHistory(t *testing.T) {
	history := decode[membersapi.MemberHistory](t, `{
	  "id": 99,
	  "nameHistory": [
	    {"nameDisplayAs": "Mr A Person", "startDate": "2010-05-06T00:00:00", "endDate": null}
	  ],
	  "partyHistory": [
	    {"party": {"id": 4, "name": "X"}, "startDate": "2010-01-01T00:00:00", "endDate": "2015-03-30T00:00:00"}
	  ],
	  "houseMembershipHistory": [
	    {"house": 1, "membershipFrom": "Somewhere", "membershipFromId": 1234,
	     "membershipStartDate": "2010-05-06T00:00:00", "membershipEndDate": "2015-03-30T00:00:00"},
	    {"house": 2, "membershipFrom": "Life peer", "membershipFromId": 2,
	     "membershipStartDate": "2015-10-01T00:00:00", "membershipEndDate": null}
	  ]
	}`)
	names, parties, houses, err := extract.History(history)
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.Nil(t, names[0].EndDate)
	require.Len(t, parties, 1)
	assert.Equal(t, "X", parties[0].Party)
	assert.Equal(t, 4, parties[0].PartyID)
	assert.Equal(t, time.Date(2015, 3, 30, 0, 0, 0, 0, time.UTC), *parties[0].EndDate)
	require.Len(t, houses, 2)
	assert.Equal(t, extract.HouseCommons, houses[0].House)
	assert.Equal(t, extract.HouseLords, houses[1].House)
	assert.Equal(t, 2, houses[1].ConstituencyID)
	assert.Nil(t, houses[1].EndDate)
}

func TestHistoryRejectsBadDate(t *testing.T) {
	history := decode[membersapi.MemberHistory](t, `{"id": 1, "nameHistory": [{"nameDisplayAs": "A", "startDate": "yesterday"}]}`)
	_, _, _, err := extract.History(history)
	var verr *extract.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "startDate", verr.Field)
}

func TestStateOfTheParties(t *testing.T) {
	res := decode[membersapi.StateOfThePartiesResult](t, `{"items":[
	  {"value":{"male":1,"female":2,"nonBinary":0,"total":3,
	    "party":{"id":1,"name":"Conservative","abbreviation":"Con","backgroundColour":"0000ff","isLordsMainParty":true}}}
	]}`)
	when := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
	rows, err := extract.StateOfTheParties(res, when, extract.HouseLords)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.Equal(t, "Con", rows[0].PartyAbbreviation)
	assert.True(t, rows[0].IsLordsMainParty)
	assert.Equal(t, 3, rows[0].Total)

	_, err = extract.StateOfTheParties(res, when, extract.House(7))
	require.ErrorIs(t, err, extract.ErrInvalidHouse)
}

func TestParseDate(t *testing.T) {
	got, err := extract.ParseDate(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
	empty := ""
	got, err = extract.ParseDate(&empty)
	require.NoError(t, err)
	assert.Nil(t, got)
	plain := "2019-12-12"
	got, err = extract.ParseDate(&plain)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2019, 12, 12, 0, 0, 0, 0, time.UTC), *got)
}
