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

// Package reference holds the literal reference data that the normalizer and
// relational builder depend on: the pre-election period mapping, historical
// general election dates and the peerage type renamings.
package reference

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"time"
)

// DateLayout is the layout used for every date in reference data
const DateLayout = "2006-01-02"

// Spec is the serializable form of the reference data. It is loaded from
// configuration and validated into a Data by New.
type Spec struct {
	PreElectionPeriodToElectionDate map[string]string `yaml:"preElectionPeriodToElectionDate"`
	PeerageTypeRenamings            map[string]string `yaml:"peerageTypeRenamings"`
	SplitCutoff                     string            `yaml:"splitCutoff"`
	ElectionDates                   []string          `yaml:"electionDates"`
	PeerageConstituencyMaxID        int               `yaml:"peerageConstituencyMaxId"`
}

// Data is the validated, immutable reference data. It is built once at
// startup and shared by pointer. None of its methods mutate it.
type Data struct {
	preElection  map[time.Time]time.Time
	electionSet  map[time.Time]struct{}
	renamings    map[string]string
	elections    []time.Time
	splitCutoff  time.Time
	peerageMaxID int
}

// New validates a Spec and returns the corresponding Data
func New(spec Spec) (*Data, error) {
	d := &Data{
		preElection:  make(map[time.Time]time.Time, len(spec.PreElectionPeriodToElectionDate)),
		electionSet:  make(map[time.Time]struct{}, len(spec.ElectionDates)),
		renamings:    make(map[string]string, len(spec.PeerageTypeRenamings)),
		peerageMaxID: spec.PeerageConstituencyMaxID,
	}
	if d.peerageMaxID < 0 {
		return nil, fmt.Errorf(
			"peerage constituency id upper bound must not be negative: %d",
			d.peerageMaxID,
		)
	}
	for from, to := range spec.PreElectionPeriodToElectionDate {
		fromDate, err := parseDate(from)
		if err != nil {
			return nil, fmt.Errorf("pre-election period start: %w", err)
		}
		toDate, err := parseDate(to)
		if err != nil {
			return nil, fmt.Errorf("election date for %s: %w", from, err)
		}
		if !toDate.After(fromDate) {
			return nil, fmt.Errorf(
				"election date %s does not follow pre-election period start %s",
				to,
				from,
			)
		}
		d.preElection[fromDate] = toDate
	}
	// Applying the mapping twice must give the same result as applying it
	// once, so no election date may itself be a pre-election period start
	for from, to := range d.preElection {
		if _, ok := d.preElection[to]; ok {
			return nil, fmt.Errorf(
				"pre-election mapping is not idempotent: %s maps to %s which is also mapped",
				from.Format(DateLayout),
				to.Format(DateLayout),
			)
		}
	}
	for _, e := range spec.ElectionDates {
		tmpDate, err := parseDate(e)
		if err != nil {
			return nil, fmt.Errorf("election date: %w", err)
		}
		if _, ok := d.electionSet[tmpDate]; ok {
			continue
		}
		d.electionSet[tmpDate] = struct{}{}
		d.elections = append(d.elections, tmpDate)
	}
	slices.SortFunc(d.elections, func(a, b time.Time) int { return a.Compare(b) })
	if spec.SplitCutoff == "" {
		return nil, errors.New("split cutoff date not set")
	}
	cutoff, err := parseDate(spec.SplitCutoff)
	if err != nil {
		return nil, fmt.Errorf("split cutoff: %w", err)
	}
	d.splitCutoff = cutoff
	maps.Copy(d.renamings, spec.PeerageTypeRenamings)
	return d, nil
}

// MustNew is like New but panics on invalid reference data
func MustNew(spec Spec) *Data {
	d, err := New(spec)
	if err != nil {
		panic(err)
	}
	return d
}

// Default returns the built-in reference data
func Default() *Data {
	return MustNew(DefaultSpec())
}

// ElectionDateFor returns the election date paired with a pre-election period
// start date, if the given date is one
func (d *Data) ElectionDateFor(t time.Time) (time.Time, bool) {
	ret, ok := d.preElection[Day(t)]
	return ret, ok
}

// Elections returns a copy of the sorted historical general election dates
func (d *Data) Elections() []time.Time {
	return slices.Clone(d.elections)
}

// IsElectionDate reports whether the given day was a general election
func (d *Data) IsElectionDate(t time.Time) bool {
	_, ok := d.electionSet[Day(t)]
	return ok
}

// ElectionsBetween returns the election dates strictly after start and
// strictly before end, in ascending order
func (d *Data) ElectionsBetween(start, end time.Time) []time.Time {
	start = Day(start)
	end = Day(end)
	lo := sort.Search(len(d.elections), func(i int) bool {
		return d.elections[i].After(start)
	})
	var ret []time.Time
	for _, e := range d.elections[lo:] {
		if !e.Before(end) {
			break
		}
		ret = append(ret, e)
	}
	return ret
}

// SplitCutoff is the last end date for which party spans are split per parliament
func (d *Data) SplitCutoff() time.Time {
	return d.splitCutoff
}

// PeerageConstituencyMaxID is the highest external constituency id used by
// the upstream API to encode peerage categories
func (d *Data) PeerageConstituencyMaxID() int {
	return d.peerageMaxID
}

// RenamePeerageType looks up an explicit peerage type override
func (d *Data) RenamePeerageType(name string) (string, bool) {
	ret, ok := d.renamings[name]
	return ret, ok
}

// Day truncates a time to midnight UTC on the same calendar day
func Day(t time.Time) time.Time {
	y, m, dd := t.Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
