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

package relational

import (
	"cmp"
	"slices"
	"sort"
	"time"

	"github.com/blinklabs-io/parlmembers/normalize"
)

// partyIndex holds each person's party spans sorted by start date. Spans
// without a start cannot be placed in time and are left out.
type partyIndex map[int][]normalize.PartySpan

func newPartyIndex(parties []normalize.PartySpan) partyIndex {
	idx := make(partyIndex)
	for _, p := range parties {
		if p.StartDate == nil {
			continue
		}
		idx[p.ID] = append(idx[p.ID], p)
	}
	for _, spans := range idx {
		slices.SortStableFunc(spans, func(a, b normalize.PartySpan) int {
			return a.StartDate.Compare(*b.StartDate)
		})
	}
	return idx
}

// within returns the spans of a person starting in [start, end). A nil end
// is open.
func (idx partyIndex) within(id int, start time.Time, end *time.Time) []normalize.PartySpan {
	spans := idx[id]
	i := sort.Search(len(spans), func(i int) bool {
		return !spans[i].StartDate.Before(start)
	})
	j := i
	for j < len(spans) && (end == nil || spans[j].StartDate.Before(*end)) {
		j++
	}
	return spans[i:j]
}

func (b *Builder) buildCharacteristics(
	reps []Representation,
	parties []normalize.PartySpan,
) ([]RepresentationCharacteristic, error) {
	idx := newPartyIndex(parties)
	var ret []RepresentationCharacteristic
	for _, rep := range reps {
		if rep.StartDate == nil {
			continue
		}
		for _, p := range idx.within(rep.IDParliament, *rep.StartDate, rep.EndDate) {
			c := RepresentationCharacteristic{
				ID:               b.newID(),
				RepresentationID: rep.ID,
				Party:            p.Party,
				StartDate:        p.StartDate,
				EndDate:          minEnd(p.EndDate, rep.EndDate),
			}
			if err := contained(c, rep); err != nil {
				return nil, err
			}
			ret = append(ret, c)
		}
	}
	return ret, nil
}

// minEnd returns the earlier of two end dates where nil is open
func minEnd(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a.Before(*b):
		return a
	default:
		return b
	}
}

func contained(c RepresentationCharacteristic, rep Representation) error {
	ok := c.StartDate != nil && rep.StartDate != nil &&
		!c.StartDate.Before(*rep.StartDate) &&
		compareEnd(c.EndDate, rep.EndDate) <= 0
	if !ok {
		return &ContainmentError{
			RepresentationID: rep.ID,
			Start:            c.StartDate,
			End:              c.EndDate,
		}
	}
	return nil
}

// compareEnd orders end dates with nil as the latest
func compareEnd(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmp.Compare(a.Unix(), b.Unix())
	}
}
