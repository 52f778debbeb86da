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

package normalize

import (
	"slices"
	"time"

	"github.com/blinklabs-io/parlmembers/reference"
)

type interval struct {
	start *time.Time
	end   *time.Time
}

// overlapping returns the pairs of consecutive spans (ordered by start) where
// the first does not end before the second starts. Spans without a start
// are ignored.
func overlapping(spans []interval) [][2]interval {
	sorted := make([]interval, 0, len(spans))
	for _, s := range spans {
		if s.start != nil {
			sorted = append(sorted, s)
		}
	}
	slices.SortFunc(sorted, func(a, b interval) int {
		return a.start.Compare(*b.start)
	})
	var ret [][2]interval
	for i := 1; i < len(sorted); i++ {
		prev := sorted[i-1]
		if prev.end == nil || prev.end.After(*sorted[i].start) {
			ret = append(ret, [2]interval{prev, sorted[i]})
		}
	}
	return ret
}

// checkOverlaps logs spans of the same category that overlap for one member.
// These are data quality problems in the upstream history and are left as-is.
func (n *Normalizer) checkOverlaps(out *Output) {
	names := make(map[int][]interval)
	for _, v := range out.Names {
		names[v.ID] = append(names[v.ID], interval{v.StartDate, v.EndDate})
	}
	type partyKey struct {
		id    int
		house int
	}
	parties := make(map[partyKey][]interval)
	for _, v := range out.Parties {
		k := partyKey{v.ID, int(v.House)}
		parties[k] = append(parties[k], interval{v.StartDate, v.EndDate})
	}
	houses := make(map[int][]interval)
	for _, v := range out.Houses {
		houses[v.ID] = append(houses[v.ID], interval{v.StartDate, v.EndDate})
	}
	for id, spans := range names {
		n.logOverlaps("name history", id, spans)
	}
	for k, spans := range parties {
		n.logOverlaps("party history", k.id, spans)
	}
	for id, spans := range houses {
		n.logOverlaps("house membership", id, spans)
	}
}

func (n *Normalizer) logOverlaps(category string, id int, spans []interval) {
	for _, pair := range overlapping(spans) {
		n.logger.Warn(
			"overlapping "+category+" spans",
			"component", "normalize",
			"id", id,
			"first_start", formatDate(pair[0].start),
			"first_end", formatDate(pair[0].end),
			"second_start", formatDate(pair[1].start),
		)
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(reference.DateLayout)
}
