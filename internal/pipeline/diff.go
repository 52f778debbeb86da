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

package pipeline

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/blinklabs-io/parlmembers/database/types"
	"github.com/blinklabs-io/parlmembers/diff"
	"github.com/blinklabs-io/parlmembers/extract"
	"github.com/blinklabs-io/parlmembers/review"
)

// ErrUnknownEntity is returned by Diff for an entity without a snapshot
var ErrUnknownEntity = errors.New("unknown entity")

// ErrNoPreviousRun is returned by Diff when there is no earlier run to
// compare with
var ErrNoPreviousRun = errors.New("no previous run")

// ErrUnknownRun is returned by Diff for a run date without archived snapshots
var ErrUnknownRun = errors.New("unknown run")

// DiffReport is the comparison of one entity between two archived runs
type DiffReport struct {
	Counts      map[diff.Status]int
	Entity      string
	PrevRunDate string
	CurrRunDate string
	Items       []review.Item
}

// DiffEntities lists the entities accepted by Diff
func DiffEntities() []string {
	return []string{
		EntityMembers,
		EntityNameHistories,
		EntityPartyHistories,
		EntityHouseMemberships,
	}
}

// Diff compares an entity between two archived runs. An empty currRunDate
// selects the latest run and an empty prevRunDate the run before it.
func (p *Pipeline) Diff(
	ctx context.Context,
	prevRunDate string,
	currRunDate string,
	entity string,
	opts diff.Options,
) (*DiffReport, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.Diff")
	defer span.End()
	var err error
	if currRunDate == "" {
		currRunDate, err = p.db.LatestRun(ctx)
		if err != nil {
			return nil, err
		}
		if currRunDate == "" {
			return nil, fmt.Errorf("%w: no completed run", ErrNoPreviousRun)
		}
	}
	if prevRunDate == "" {
		prevRunDate, err = p.db.PreviousRun(ctx, currRunDate)
		if err != nil {
			return nil, err
		}
		if prevRunDate == "" {
			return nil, fmt.Errorf("%w before %s", ErrNoPreviousRun, currRunDate)
		}
	}
	for _, runDate := range []string{prevRunDate, currRunDate} {
		files, err := p.db.SnapshotFiles(ctx, runDate)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRun, runDate)
		}
	}
	ret := &DiffReport{
		Entity:      entity,
		PrevRunDate: prevRunDate,
		CurrRunDate: currRunDate,
	}
	// Items are collected on a task that is never stored
	task := &review.Task{}
	switch entity {
	case EntityMembers:
		ret.Counts, err = diffSnapshots(ctx, p, task, ret, types.SnapshotMembers, memberKey, sameJSON[extract.RawMember], opts)
	case EntityNameHistories:
		ret.Counts, err = diffSnapshots(ctx, p, task, ret, types.SnapshotNameHistories, nameHistoryKey, sameJSON[extract.NameHistoryRecord], opts)
	case EntityPartyHistories:
		ret.Counts, err = diffSnapshots(ctx, p, task, ret, types.SnapshotPartyHistories, partyHistoryKey, sameJSON[extract.PartyHistoryRecord], opts)
	case EntityHouseMemberships:
		ret.Counts, err = diffSnapshots(ctx, p, task, ret, types.SnapshotHouseMemberships, houseMembershipKey, sameJSON[extract.HouseMembershipRecord], opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, entity)
	}
	if err != nil {
		return nil, err
	}
	ret.Items = task.Items
	for status, count := range ret.Counts {
		p.metrics.diffRows.WithLabelValues(entity, string(status)).Add(float64(count))
	}
	return ret, nil
}

func diffSnapshots[K cmp.Ordered, R any](
	ctx context.Context,
	p *Pipeline,
	task *review.Task,
	report *DiffReport,
	name string,
	key func(R) K,
	equal func(a, b R) bool,
	opts diff.Options,
) (map[diff.Status]int, error) {
	var prev, curr []R
	if err := p.db.GetSnapshot(ctx, report.PrevRunDate, name, &prev); err != nil {
		return nil, err
	}
	if err := p.db.GetSnapshot(ctx, report.CurrRunDate, name, &curr); err != nil {
		return nil, err
	}
	prev = dedupe(prev, key)
	curr = dedupe(curr, key)
	res, err := diff.Compare(prev, curr, key, equal, opts)
	if err != nil {
		return nil, fmt.Errorf("compare %s: %w", report.Entity, err)
	}
	if err := review.AddRows(task, report.Entity, res.Rows()); err != nil {
		return nil, err
	}
	return res.Counts(), nil
}

// dedupe drops rows whose key repeats. Raw history holds exact duplicates
// for some hereditary peers.
func dedupe[K cmp.Ordered, R any](rows []R, key func(R) K) []R {
	ret := slices.Clone(rows)
	slices.SortStableFunc(ret, func(a, b R) int {
		return cmp.Compare(key(a), key(b))
	})
	return slices.CompactFunc(ret, func(a, b R) bool {
		return key(a) == key(b)
	})
}
