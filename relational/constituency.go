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

	"github.com/blinklabs-io/parlmembers/extract"
)

// buildConstituencies emits one row per external constituency id referenced
// by a Commons representation, named after its most recent membership
func (b *Builder) buildConstituencies(
	houses []extract.HouseMembershipRecord,
) []Constituency {
	latest := make(map[int]extract.HouseMembershipRecord)
	for _, h := range houses {
		if h.House != extract.HouseCommons {
			continue
		}
		prev, ok := latest[h.ConstituencyID]
		if !ok || compareStartDate(h.StartDate, prev.StartDate) >= 0 {
			latest[h.ConstituencyID] = h
		}
	}
	ret := make([]Constituency, 0, len(latest))
	for extID, h := range latest {
		ret = append(ret, Constituency{
			ID:           b.constituencies.Resolve(extID),
			IDParliament: extID,
			Name:         h.ConstituencyName,
		})
	}
	slices.SortFunc(ret, func(a, b Constituency) int {
		return cmp.Compare(a.IDParliament, b.IDParliament)
	})
	return ret
}
