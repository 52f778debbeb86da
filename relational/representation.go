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
	"strings"

	"github.com/blinklabs-io/parlmembers/extract"
)

func (b *Builder) buildRepresentations(
	houses []extract.HouseMembershipRecord,
) []Representation {
	ret := make([]Representation, 0, len(houses))
	for _, h := range houses {
		rep := Representation{
			ID:           b.newID(),
			PersonID:     b.people.Resolve(h.ID),
			IDParliament: h.ID,
			House:        houseLabel(h.House),
			StartDate:    h.StartDate,
			EndDate:      h.EndDate,
			Type:         b.peerageType(h),
		}
		if b.hasConstituency(h) {
			extID := h.ConstituencyID
			rep.ConstituencyIDParliament = &extID
		}
		// Constituency surrogates are Commons only
		if h.House == extract.HouseCommons {
			constituencyID := b.constituencies.Resolve(h.ConstituencyID)
			rep.Constituency = &constituencyID
		}
		ret = append(ret, rep)
	}
	return ret
}

func houseLabel(h extract.House) string {
	if h == extract.HouseCommons {
		return HouseCommons
	}
	return HouseLords
}

// peerageType returns the peerage category of a Lords membership. Some older
// Commons records carry a constituency id inside the peerage range, so the
// house is checked too.
func (b *Builder) peerageType(h extract.HouseMembershipRecord) *string {
	if renamed, ok := b.ref.RenamePeerageType(h.ConstituencyName); ok {
		return &renamed
	}
	if h.House == extract.HouseLords && h.ConstituencyID <= b.ref.PeerageConstituencyMaxID() {
		ret := capitalize(h.ConstituencyName)
		return &ret
	}
	return nil
}

// hasConstituency reports whether the membership's external constituency id
// is a real seat rather than a peerage pseudo-constituency
func (b *Builder) hasConstituency(h extract.HouseMembershipRecord) bool {
	if h.House == extract.HouseCommons {
		return true
	}
	return h.ConstituencyID > b.ref.PeerageConstituencyMaxID()
}

// capitalize upper-cases the first letter and lower-cases the rest
func capitalize(s string) string {
	if s == "" {
		return s
	}
	lower := []rune(strings.ToLower(s))
	lower[0] = []rune(strings.ToUpper(string(lower[0])))[0]
	return string(lower)
}
