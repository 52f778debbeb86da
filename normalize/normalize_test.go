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

package normalize_test

import (
	"testing"
	"time"

	"github.com/blinklabs-io/parlmembers/extract"
	"github.com/blinklabs-io/parlmembers/normalize"
	"github.com/blinklabs-io/parlmembers/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) *time.Time {
	t, err := time.Parse(reference.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func testReference(t *testing.T, elections ...string) *reference.Data {
	t.Helper()
	spec := reference.DefaultSpec()
	spec.PreElectionPeriodToElectionDate = map[string]string{"2015-03-30": "2015-05-07"}
	if elections != nil {
		spec.ElectionDates = elections
	}
	ref, err := reference.New(spec)
	require.NoError(t, err)
	return ref
}

func TestExampleScenario(t *testing.T) {
	n := normalize.New(testReference(t, "2010-05-06"))
	out := n.Normalize(normalize.Input{
		Parties: []extract.PartyHistoryRecord{
			{ID: 99, Party: "X", StartDate: d("2010-01-01"), EndDate: d("2015-03-30")},
		},
	})
	require.Len(t, out.Parties, 2)
	assert.Equal(t, d("2010-01-01"), out.Parties[0].StartDate)
	assert.Equal(t, d("2010-05-06"), out.Parties[0].EndDate)
	assert.Equal(t, d("2010-05-06"), out.Parties[1].StartDate)
	assert.Equal(t, d("2015-05-07"), out.Parties[1].EndDate)
	for _, p := range out.Parties {
		assert.Equal(t, "X", p.Party)
		assert.Equal(t, 99, p.ID)
		assert.Equal(t, extract.HouseCommons, p.House)
		assert.True(t, p.Split)
	}
	assert.Equal(t, 1, out.SplitSpans)
	assert.Equal(t, 1, out.CorrectedEndDates)
}

func TestEndDateCorrectionIsIdempotent(t *testing.T) {
	n := normalize.New(reference.Default())
	for _, s := range []string{"2015-03-30", "2017-05-03", "2019-11-06", "2024-05-30", "2001-01-01"} {
		once, _ := n.CorrectEndDate(d(s))
		twice, changed := n.CorrectEndDate(once)
		assert.Equal(t, once, twice, s)
		assert.False(t, changed, s)
	}
	got, changed := n.CorrectEndDate(nil)
	assert.Nil(t, got)
	assert.False(t, changed)
}

func TestHouseEndDatesCorrected(t *testing.T) {
	n := normalize.New(reference.Default())
	in := normalize.Input{
		Houses: []extract.HouseMembershipRecord{
			{ID: 1, House: extract.HouseCommons, StartDate: d("2017-06-08"), EndDate: d("2019-11-06")},
		},
	}
	out := n.Normalize(in)
	assert.Equal(t, d("2019-12-12"), out.Houses[0].EndDate)
	// Input is left untouched
	assert.Equal(t, d("2019-11-06"), in.Houses[0].EndDate)
}

func TestSplitCoverage(t *testing.T) {
	ref := reference.Default()
	n := normalize.New(ref)
	spans := []extract.PartyHistoryRecord{
		{ID: 1, Party: "A", StartDate: d("1964-01-01"), EndDate: d("1997-05-01")},
		{ID: 2, Party: "B", StartDate: d("1992-04-09"), EndDate: d("1995-03-01")},
		{ID: 3, Party: "C", StartDate: d("1992-04-09"), EndDate: d("2015-05-07")},
		{ID: 4, Party: "D", StartDate: d("1990-01-01"), EndDate: d("1995-03-01")},
	}
	out, _ := n.SplitPartySpans(spans, nil)
	byID := make(map[int][]normalize.PartySpan)
	for _, p := range out {
		byID[p.ID] = append(byID[p.ID], p)
	}
	for _, orig := range spans {
		subs := byID[orig.ID]
		require.NotEmpty(t, subs)
		assert.Equal(t, *orig.StartDate, *subs[0].StartDate, "first sub-span starts at original start")
		assert.Equal(t, *orig.EndDate, *subs[len(subs)-1].EndDate, "last sub-span ends at original end")
		for i := range subs {
			assert.True(t, subs[i].StartDate.Before(*subs[i].EndDate), "empty sub-span")
			if i > 0 {
				assert.Equal(t, *subs[i-1].EndDate, *subs[i].StartDate, "gap or overlap between sub-spans")
			}
			if i > 0 {
				assert.True(t, ref.IsElectionDate(*subs[i].StartDate))
			}
		}
	}
	// Nine elections from October 1964 to 1992 fall strictly inside
	assert.Len(t, byID[1], 10)
	assert.Len(t, byID[2], 1)
	assert.Len(t, byID[3], 5)
	assert.Len(t, byID[4], 2)
}

func TestSplitSkipsLateOpenAndUnknownSpans(t *testing.T) {
	n := normalize.New(reference.Default())
	spans := []extract.PartyHistoryRecord{
		{ID: 1, Party: "Late", StartDate: d("2010-01-01"), EndDate: d("2017-06-08")},
		{ID: 2, Party: "Open", StartDate: d("1990-01-01")},
		{ID: 3, Party: "NoStart", EndDate: d("2001-01-01")},
	}
	out, count := n.SplitPartySpans(spans, nil)
	assert.Len(t, out, 3)
	assert.Equal(t, 0, count)
	for _, p := range out {
		assert.False(t, p.Split)
	}
}

func TestLordsSpansAreNotSplit(t *testing.T) {
	n := normalize.New(reference.Default())
	houses := []extract.HouseMembershipRecord{
		{ID: 5, House: extract.HouseCommons, StartDate: d("1979-05-03"), EndDate: d("1997-05-01")},
		{ID: 5, House: extract.HouseLords, StartDate: d("1997-10-01"), EndDate: d("2014-01-01")},
		{ID: 5, House: extract.HouseLords, StartDate: d("2000-10-01")},
	}
	spans := []extract.PartyHistoryRecord{
		{ID: 5, Party: "Commons party", StartDate: d("1979-05-03"), EndDate: d("1997-10-01")},
		// Starts exactly on the Lords entry date, which counts as Lords
		{ID: 5, Party: "Lords party", StartDate: d("1997-10-01"), EndDate: d("2014-01-01")},
	}
	out, _ := n.SplitPartySpans(spans, houses)
	var lords, commons []normalize.PartySpan
	for _, p := range out {
		if p.House == extract.HouseLords {
			lords = append(lords, p)
		} else {
			commons = append(commons, p)
		}
	}
	require.Len(t, lords, 1)
	assert.Equal(t, "Lords party", lords[0].Party)
	assert.False(t, lords[0].Split)
	// 1983, 1987, 1992 and 1997 elections fall inside the Commons span
	assert.Len(t, commons, 5)
}

func TestCollapseNamesNullDominance(t *testing.T) {
	out := normalize.CollapseNames([]extract.NameHistoryRecord{
		{ID: 1, NameDisplayAs: "Ms Jane Smith", StartDate: d("2001-06-07"), EndDate: d("2005-05-05")},
		{ID: 1, NameDisplayAs: "Jane Smith", StartDate: d("2005-05-05"), EndDate: nil},
		{ID: 2, NameDisplayAs: "Mr John Doe", StartDate: nil, EndDate: d("2010-01-01")},
		{ID: 2, NameDisplayAs: "John Doe", StartDate: d("1990-01-01"), EndDate: d("2012-01-01")},
		{ID: 3, NameDisplayAs: "Dr Ann Lee", StartDate: d("1990-01-01"), EndDate: d("1995-01-01")},
		{ID: 3, NameDisplayAs: "Ann Lee", StartDate: d("1985-01-01"), EndDate: d("1999-01-01")},
	})
	require.Len(t, out, 3)

	assert.Equal(t, "Jane Smith", out[0].Name)
	assert.Equal(t, d("2001-06-07"), out[0].StartDate)
	assert.Nil(t, out[0].EndDate, "a null end must not be closed by a known end")

	assert.Nil(t, out[1].StartDate, "a null start must not be closed by a known start")
	assert.Equal(t, d("2012-01-01"), out[1].EndDate)

	assert.Equal(t, d("1985-01-01"), out[2].StartDate)
	assert.Equal(t, d("1999-01-01"), out[2].EndDate)
	assert.Equal(t, "Lee", out[2].ShortName)
}

func TestCleanName(t *testing.T) {
	testDefs := []struct {
		in       string
		expected string
	}{
		{"Ms Diane Abbott", "Diane Abbott"},
		{"Sir Keir Starmer", "Keir Starmer"},
		{"Rt Hon. Angela, E. Smith", "Angela E Smith"},
		{"Lord Smith of Finsbury", "Lord Smith of Finsbury"},
		{"The Lord Bishop of London", "Lord Bishop of London"},
		{"  Baroness  Hayman ", "Baroness Hayman"},
	}
	for _, testDef := range testDefs {
		assert.Equal(t, testDef.expected, normalize.CleanName(testDef.in), testDef.in)
	}
}

func TestShortName(t *testing.T) {
	testDefs := []struct {
		in       string
		expected string
	}{
		{"Diane Abbott", "Abbott"},
		{"Lord Smith of Finsbury", "Smith"},
		{"Baroness Smith of Basildon", "Smith"},
		{"Lord Bishop of London", "London"},
		{"Lord Adonis", "Adonis"},
		{"", ""},
	}
	for _, testDef := range testDefs {
		assert.Equal(t, testDef.expected, normalize.ShortName(testDef.in), testDef.in)
	}
}
