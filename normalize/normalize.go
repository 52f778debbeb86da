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

// Package normalize makes API history records temporally consistent. It
// moves end dates from pre-election period starts to election dates, splits
// pre-2015 Commons party spans per parliament and collapses name history.
package normalize

import (
	"cmp"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/blinklabs-io/parlmembers/extract"
	"github.com/blinklabs-io/parlmembers/reference"
)

// Name is a collapsed name history span
type Name struct {
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Name      string     `json:"name"`
	ShortName string     `json:"short_name"`
	ID        int        `json:"id"`
}

// PartySpan is a party history span tagged with the house it was inferred
// to belong to
type PartySpan struct {
	StartDate *time.Time    `json:"start_date"`
	EndDate   *time.Time    `json:"end_date"`
	Party     string        `json:"party"`
	House     extract.House `json:"house"`
	ID        int           `json:"id"`
	// Split is set on spans produced by splitting a longer span at elections
	Split bool `json:"split"`
}

type Input struct {
	Names   []extract.NameHistoryRecord
	Parties []extract.PartyHistoryRecord
	Houses  []extract.HouseMembershipRecord
}

type Output struct {
	Names   []Name
	Parties []PartySpan
	Houses  []extract.HouseMembershipRecord
	// SplitSpans counts the original party spans that were split
	SplitSpans int
	// CorrectedEndDates counts end dates moved to an election date
	CorrectedEndDates int
}

type Normalizer struct {
	ref    *reference.Data
	logger *slog.Logger
}

type NormalizerOptionFunc func(*Normalizer)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) NormalizerOptionFunc {
	return func(n *Normalizer) {
		n.logger = logger
	}
}

// New creates a Normalizer over the given reference data
func New(ref *reference.Data, opts ...NormalizerOptionFunc) *Normalizer {
	n := &Normalizer{ref: ref}
	for _, opt := range opts {
		opt(n)
	}
	if n.ref == nil {
		n.ref = reference.Default()
	}
	if n.logger == nil {
		n.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return n
}

// Normalize runs the end date correction, the party span split and the
// name collapse, in that order. The input is not modified.
func (n *Normalizer) Normalize(in Input) *Output {
	out := &Output{}

	// (a) election boundary end dates
	parties := slices.Clone(in.Parties)
	for i := range parties {
		if corrected, ok := n.CorrectEndDate(parties[i].EndDate); ok {
			parties[i].EndDate = corrected
			out.CorrectedEndDates++
		}
	}
	out.Houses = slices.Clone(in.Houses)
	for i := range out.Houses {
		if corrected, ok := n.CorrectEndDate(out.Houses[i].EndDate); ok {
			out.Houses[i].EndDate = corrected
			out.CorrectedEndDates++
		}
	}

	// (b) party span split
	out.Parties, out.SplitSpans = n.SplitPartySpans(parties, out.Houses)

	// (c) name collapse
	out.Names = CollapseNames(in.Names)

	n.checkOverlaps(out)
	n.logger.Debug(
		"normalized history",
		"component", "normalize",
		"names", len(out.Names),
		"party_spans", len(out.Parties),
		"house_memberships", len(out.Houses),
		"split_spans", out.SplitSpans,
		"corrected_end_dates", out.CorrectedEndDates,
	)
	return out
}

// CorrectEndDate maps an end date that falls on a pre-election period start
// to the paired election date. It reports whether the date changed.
func (n *Normalizer) CorrectEndDate(end *time.Time) (*time.Time, bool) {
	if end == nil {
		return nil, false
	}
	election, ok := n.ref.ElectionDateFor(*end)
	if !ok {
		return end, false
	}
	return &election, true
}

// SplitPartySpans tags each party span with a house and splits Commons spans
// ending on or before the split cutoff at every general election strictly
// inside the span. The sub-spans exactly cover the original [start, end).
//
// The house is inferred by comparing the span start with the member's
// earliest Lords membership start: a span starting on or after that date is
// a Lords span. A span starting exactly on the Lords entry date counts as
// Lords.
func (n *Normalizer) SplitPartySpans(
	parties []extract.PartyHistoryRecord,
	houses []extract.HouseMembershipRecord,
) ([]PartySpan, int) {
	lordsEntry := earliestLordsStart(houses)
	cutoff := n.ref.SplitCutoff()
	ret := make([]PartySpan, 0, len(parties))
	splitCount := 0
	for _, p := range parties {
		span := PartySpan{
			ID:        p.ID,
			Party:     p.Party,
			StartDate: p.StartDate,
			EndDate:   p.EndDate,
			House:     extract.HouseCommons,
		}
		if entry, ok := lordsEntry[p.ID]; ok && p.StartDate != nil &&
			!p.StartDate.Before(entry) {
			span.House = extract.HouseLords
		}
		if span.House != extract.HouseCommons ||
			p.StartDate == nil ||
			p.EndDate == nil ||
			p.EndDate.After(cutoff) {
			ret = append(ret, span)
			continue
		}
		if !p.StartDate.Before(*p.EndDate) {
			n.logger.Warn(
				"party span does not end after it starts, not splitting",
				"component", "normalize",
				"id", p.ID,
				"party", p.Party,
				"start_date", p.StartDate.Format(reference.DateLayout),
				"end_date", p.EndDate.Format(reference.DateLayout),
			)
			ret = append(ret, span)
			continue
		}
		elections := n.ref.ElectionsBetween(*p.StartDate, *p.EndDate)
		if len(elections) == 0 {
			ret = append(ret, span)
			continue
		}
		splitCount++
		boundaries := make([]time.Time, 0, len(elections)+2)
		boundaries = append(boundaries, *p.StartDate)
		boundaries = append(boundaries, elections...)
		boundaries = append(boundaries, *p.EndDate)
		for i := 0; i+1 < len(boundaries); i++ {
			start := boundaries[i]
			end := boundaries[i+1]
			ret = append(ret, PartySpan{
				ID:        p.ID,
				Party:     p.Party,
				House:     extract.HouseCommons,
				StartDate: &start,
				EndDate:   &end,
				Split:     true,
			})
		}
	}
	return ret, splitCount
}

func earliestLordsStart(houses []extract.HouseMembershipRecord) map[int]time.Time {
	ret := make(map[int]time.Time)
	for _, h := range houses {
		if h.House != extract.HouseLords || h.StartDate == nil {
			continue
		}
		if cur, ok := ret[h.ID]; !ok || h.StartDate.Before(cur) {
			ret[h.ID] = *h.StartDate
		}
	}
	return ret
}

type nameKey struct {
	name string
	id   int
}

// CollapseNames groups name history by member and cleaned name. The merged
// start is the earliest start and the merged end the latest end, but a nil
// boundary anywhere in the group makes the merged boundary nil.
func CollapseNames(names []extract.NameHistoryRecord) []Name {
	groups := make(map[nameKey]*Name)
	order := make([]nameKey, 0, len(names))
	startNull := make(map[nameKey]bool)
	endNull := make(map[nameKey]bool)
	for _, rec := range names {
		cleaned := CleanName(rec.NameDisplayAs)
		key := nameKey{id: rec.ID, name: cleaned}
		g, ok := groups[key]
		if !ok {
			g = &Name{
				ID:        rec.ID,
				Name:      cleaned,
				ShortName: ShortName(cleaned),
			}
			groups[key] = g
			order = append(order, key)
		}
		if rec.StartDate == nil {
			startNull[key] = true
		} else if g.StartDate == nil || rec.StartDate.Before(*g.StartDate) {
			tmp := *rec.StartDate
			g.StartDate = &tmp
		}
		if rec.EndDate == nil {
			endNull[key] = true
		} else if g.EndDate == nil || rec.EndDate.After(*g.EndDate) {
			tmp := *rec.EndDate
			g.EndDate = &tmp
		}
	}
	ret := make([]Name, 0, len(order))
	for _, key := range order {
		g := groups[key]
		if startNull[key] {
			g.StartDate = nil
		}
		if endNull[key] {
			g.EndDate = nil
		}
		ret = append(ret, *g)
	}
	slices.SortStableFunc(ret, func(a, b Name) int {
		if c := cmp.Compare(a.ID, b.ID); c != 0 {
			return c
		}
		if c := compareStart(a.StartDate, b.StartDate); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return ret
}

// compareStart orders nil (unknown) starts first
func compareStart(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Compare(*b)
	}
}
