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
	"github.com/blinklabs-io/parlmembers/extract"
)

// Heuristic filters for known data-quality problems in the upstream house
// membership history. These are not validation: dropped rows are counted
// and logged, never reported as errors.

// dropPlaceholders removes memberships with neither a start nor an end date
// when the same person has another membership with a known start
func dropPlaceholders(
	houses []extract.HouseMembershipRecord,
) ([]extract.HouseMembershipRecord, int) {
	hasStart := make(map[int]bool)
	for _, h := range houses {
		if h.StartDate != nil {
			hasStart[h.ID] = true
		}
	}
	ret := make([]extract.HouseMembershipRecord, 0, len(houses))
	dropped := 0
	for _, h := range houses {
		if h.StartDate == nil && h.EndDate == nil && hasStart[h.ID] {
			dropped++
			continue
		}
		ret = append(ret, h)
	}
	return ret, dropped
}

type membershipKey struct {
	start            int64
	end              int64
	constituencyName string
	constituencyID   int
	house            extract.House
	id               int
	hasStart         bool
	hasEnd           bool
}

func keyOf(h extract.HouseMembershipRecord) membershipKey {
	k := membershipKey{
		constituencyName: h.ConstituencyName,
		constituencyID:   h.ConstituencyID,
		house:            h.House,
		id:               h.ID,
	}
	if h.StartDate != nil {
		k.start = h.StartDate.Unix()
		k.hasStart = true
	}
	if h.EndDate != nil {
		k.end = h.EndDate.Unix()
		k.hasEnd = true
	}
	return k
}

// dropDuplicates keeps the first of any exactly repeated memberships. The
// upstream data repeats some hereditary peer records.
func dropDuplicates(
	houses []extract.HouseMembershipRecord,
) ([]extract.HouseMembershipRecord, int) {
	seen := make(map[membershipKey]struct{}, len(houses))
	ret := make([]extract.HouseMembershipRecord, 0, len(houses))
	dropped := 0
	for _, h := range houses {
		k := keyOf(h)
		if _, ok := seen[k]; ok {
			dropped++
			continue
		}
		seen[k] = struct{}{}
		ret = append(ret, h)
	}
	return ret, dropped
}
