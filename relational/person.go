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
	"time"

	"github.com/blinklabs-io/parlmembers/extract"
	"github.com/blinklabs-io/parlmembers/normalize"
)

// indexMembers maps raw members by external id. Each id must appear once.
func indexMembers(members []extract.RawMember) (map[int]extract.RawMember, error) {
	ret := make(map[int]extract.RawMember, len(members))
	counts := make(map[int]int, len(members))
	for _, m := range members {
		counts[m.ID]++
		if counts[m.ID] > 1 {
			return nil, &CardinalityError{
				Entity: "member",
				Key:    m.ID,
				Count:  counts[m.ID],
			}
		}
		ret[m.ID] = m
	}
	return ret, nil
}

func (b *Builder) buildPeople(
	names []normalize.Name,
	members map[int]extract.RawMember,
) []Person {
	byID := make(map[int][]int)
	for i, n := range names {
		byID[n.ID] = append(byID[n.ID], i)
	}
	ret := make([]Person, 0, len(names))
	for i, n := range names {
		p := Person{
			ID:           b.people.Resolve(n.ID),
			IDParliament: n.ID,
			Name:         n.Name,
			ShortName:    n.ShortName,
		}
		if m, ok := members[n.ID]; ok && m.Gender != "" {
			gender := m.Gender
			p.Gender = &gender
		}
		// A person's dates only bound a name when another name takes over
		// at that date
		siblings := byID[n.ID]
		if n.StartDate != nil && endsAt(names, siblings, i, *n.StartDate) {
			p.StartDate = n.StartDate
		}
		if n.EndDate != nil && startsAt(names, siblings, i, *n.EndDate) {
			p.EndDate = n.EndDate
		}
		ret = append(ret, p)
	}
	return ret
}

// endsAt reports whether a name other than names[self] ends at t
func endsAt(names []normalize.Name, siblings []int, self int, t time.Time) bool {
	for _, i := range siblings {
		if i == self {
			continue
		}
		if n := names[i]; n.EndDate != nil && n.EndDate.Equal(t) {
			return true
		}
	}
	return false
}

func startsAt(names []normalize.Name, siblings []int, self int, t time.Time) bool {
	for _, i := range siblings {
		if i == self {
			continue
		}
		if n := names[i]; n.StartDate != nil && n.StartDate.Equal(t) {
			return true
		}
	}
	return false
}
