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

func (b *Builder) buildStatuses(
	members []extract.RawMember,
	reps []Representation,
) ([]RepresentationStatus, int, error) {
	statusCount := make(map[int]int)
	for _, m := range members {
		if m.Status == nil {
			continue
		}
		statusCount[m.ID]++
		if statusCount[m.ID] > 1 {
			return nil, 0, &CardinalityError{
				Entity: "representation status",
				Key:    m.ID,
				Count:  statusCount[m.ID],
			}
		}
	}
	open := make(map[int][]Representation)
	for _, rep := range reps {
		if rep.EndDate == nil {
			open[rep.IDParliament] = append(open[rep.IDParliament], rep)
		}
	}
	var ret []RepresentationStatus
	unattached := 0
	for _, m := range members {
		if m.Status == nil {
			continue
		}
		candidates := open[m.ID]
		switch len(candidates) {
		case 0:
			b.logger.Debug(
				"no open representation for member status",
				"id", m.ID,
				"status", *m.Status,
			)
			unattached++
			continue
		case 1:
		default:
			return nil, 0, &CardinalityError{
				Entity: "open representation",
				Key:    m.ID,
				Count:  len(candidates),
			}
		}
		rep := candidates[0]
		start := m.StatusStartDate
		if rep.StartDate != nil && (start == nil || start.Before(*rep.StartDate)) {
			start = rep.StartDate
		}
		ret = append(ret, RepresentationStatus{
			ID:               b.newID(),
			RepresentationID: rep.ID,
			Status:           *m.Status,
			Reason:           m.StatusReason,
			StartDate:        start,
		})
	}
	return ret, unattached, nil
}
