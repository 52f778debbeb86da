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
	"time"

	"github.com/blinklabs-io/parlmembers/database"
	"github.com/blinklabs-io/parlmembers/database/models"
	"github.com/blinklabs-io/parlmembers/database/types"
	"github.com/blinklabs-io/parlmembers/diff"
	"github.com/blinklabs-io/parlmembers/event"
	"github.com/blinklabs-io/parlmembers/extract"
	"github.com/blinklabs-io/parlmembers/identity"
	"github.com/blinklabs-io/parlmembers/membersapi"
	"github.com/blinklabs-io/parlmembers/normalize"
	"github.com/blinklabs-io/parlmembers/relational"
	"github.com/blinklabs-io/parlmembers/review"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Entity names used in review items and diff metrics
const (
	EntityMembers          = "members"
	EntityPeople           = "person"
	EntityConstituencies   = "constituency"
	EntityNameHistories    = "name_history"
	EntityPartyHistories   = "party_history"
	EntityHouseMemberships = "house_membership_history"
)

// ExtractResult summarizes a successful extraction run
type ExtractResult struct {
	ReviewTaskID *uuid.UUID
	Diffs        map[string]map[diff.Status]int
	Tables       map[string]int
	RunDate      string
	Stats        relational.Stats
	Members      int
	SkippedIDs   int
	RunID        uuid.UUID
}

type history struct {
	names   []extract.NameHistoryRecord
	parties []extract.PartyHistoryRecord
	houses  []extract.HouseMembershipRecord
	skipped int
}

// Extract runs a full extraction: fetch every member and their history,
// archive the raw rows, build the entity tables and replace them in the
// metadata store. A failed run is recorded as failed and leaves the entity
// tables untouched.
func (p *Pipeline) Extract(ctx context.Context) (*ExtractResult, error) {
	start := p.now()
	runDate, err := p.cfg.ResolveRunDate(start)
	if err != nil {
		return nil, err
	}
	ctx, span := p.tracer.Start(
		ctx,
		"pipeline.Extract",
		trace.WithAttributes(attribute.String("run_date", runDate)),
	)
	defer span.End()
	run, err := p.db.BeginRun(runDate, start)
	if err != nil {
		return nil, err
	}
	p.logger.Info(
		"starting extraction run",
		"component", "pipeline",
		"run_id", run.ID.String(),
		"run_date", runDate,
	)
	p.publish(event.RunStartedEventType, event.RunStartedEvent{
		RunID:     run.ID,
		RunDate:   runDate,
		StartedAt: start,
	})
	ret, err := p.extract(ctx, run)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if failErr := p.db.FailRun(run, err, p.now()); failErr != nil {
			p.logger.Error(
				"failed to record run failure",
				"component", "pipeline",
				"error", failErr,
			)
		}
		p.publish(event.RunFailedEventType, event.RunFailedEvent{
			RunID:   run.ID,
			RunDate: runDate,
			Err:     err,
		})
		return nil, err
	}
	duration := p.now().Sub(start)
	p.metrics.runDuration.Set(duration.Seconds())
	if err := p.pushMetrics(ctx); err != nil {
		p.logger.Warn("failed to push metrics", "component", "pipeline", "error", err)
	}
	p.logger.Info(
		"finished extraction run",
		"component", "pipeline",
		"run_id", run.ID.String(),
		"members", ret.Members,
		"duration", duration.String(),
	)
	p.publish(event.RunCompletedEventType, event.RunCompletedEvent{
		RunID:        ret.RunID,
		RunDate:      ret.RunDate,
		Members:      ret.Members,
		Tables:       ret.Tables,
		ReviewTaskID: ret.ReviewTaskID,
	})
	return ret, nil
}

func (p *Pipeline) extract(
	ctx context.Context,
	run *models.ExtractionRun,
) (*ExtractResult, error) {
	members, err := p.fetchMembers(ctx)
	if err != nil {
		return nil, err
	}
	hist, err := p.fetchHistories(ctx, members)
	if err != nil {
		return nil, err
	}
	p.metrics.recordsExtracted.WithLabelValues("member").Add(float64(len(members)))
	p.metrics.recordsExtracted.WithLabelValues("name_history").Add(float64(len(hist.names)))
	p.metrics.recordsExtracted.WithLabelValues("party_history").Add(float64(len(hist.parties)))
	p.metrics.recordsExtracted.WithLabelValues("house_membership_history").Add(float64(len(hist.houses)))

	if err := p.archive(ctx, run.RunDate, members, hist); err != nil {
		return nil, err
	}

	norm := normalize.New(p.ref, normalize.WithLogger(p.logger)).Normalize(
		normalize.Input{
			Names:   hist.names,
			Parties: hist.parties,
			Houses:  hist.houses,
		},
	)
	p.metrics.partySpansSplit.Add(float64(norm.SplitSpans))

	priorPeople, err := p.db.Metadata().GetPersonIDMappings(nil)
	if err != nil {
		return nil, fmt.Errorf("load person id mappings: %w", err)
	}
	priorConstituencies, err := p.db.Metadata().GetConstituencyIDMappings(nil)
	if err != nil {
		return nil, fmt.Errorf("load constituency id mappings: %w", err)
	}
	people := identity.NewResolver(identity.KindPerson, priorPeople)
	constituencies := identity.NewResolver(identity.KindConstituency, priorConstituencies)
	if people.ColdStart() {
		p.logger.Info(
			"no stored person ids, minting all",
			"component", "pipeline",
		)
	}
	_, span := p.tracer.Start(ctx, "relational.Build")
	res, err := relational.NewBuilder(
		p.ref,
		relational.WithLogger(p.logger),
		relational.WithPersonResolver(people),
		relational.WithConstituencyResolver(constituencies),
	).Build(members, norm)
	span.End()
	if err != nil {
		return nil, fmt.Errorf("build entity tables: %w", err)
	}
	p.metrics.heuristicDropped.WithLabelValues("placeholder").Add(float64(res.Stats.PlaceholdersDropped))
	p.metrics.heuristicDropped.WithLabelValues("duplicate").Add(float64(res.Stats.DuplicatesDropped))

	task, diffs, err := p.reviewChanges(ctx, run, members, res)
	if err != nil {
		return nil, err
	}

	entities := database.EntitiesFromResult(res)
	w := &database.RunWrite{
		Run:                run,
		Entities:           entities,
		NewPersonIDs:       people.Minted(),
		NewConstituencyIDs: constituencies.Minted(),
		MembersExtracted:   len(members),
	}
	if task != nil {
		w.ReviewTask = database.ReviewTaskModel(task)
	}
	if err := p.db.WriteRun(ctx, w, p.now()); err != nil {
		var runErr database.LatestRunError
		if !errors.As(err, &runErr) {
			return nil, fmt.Errorf("write run: %w", err)
		}
		// The tables are committed; the next open reports the mismatch
		p.logger.Warn(
			"run committed but the archive latest run was not updated",
			"component", "pipeline",
			"run_id", run.ID.String(),
			"error", err,
		)
	}
	tables := entities.Counts()
	for table, count := range tables {
		p.metrics.rowsWritten.WithLabelValues(table).Add(float64(count))
	}
	if task != nil {
		p.publish(event.ReviewTaskCreatedEventType, event.ReviewTaskCreatedEvent{
			TaskID:  task.ID,
			RunDate: run.RunDate,
			Items:   len(task.Items),
		})
	}
	if task != nil && p.notifier != nil {
		// The run is committed, so a failed notification is not a failed run
		if err := p.notifier.Notify(ctx, task); err != nil {
			p.logger.Error(
				"failed to notify reviewers",
				"component", "pipeline",
				"task_id", task.ID.String(),
				"error", err,
			)
		}
	}
	return &ExtractResult{
		RunID:        run.ID,
		RunDate:      run.RunDate,
		Members:      len(members),
		SkippedIDs:   hist.skipped,
		Stats:        res.Stats,
		Tables:       tables,
		Diffs:        diffs,
		ReviewTaskID: run.ReviewTaskID,
	}, nil
}

// fetchMembers searches both houses for current and former members. A
// member found in both houses keeps the first row seen.
func (p *Pipeline) fetchMembers(ctx context.Context) ([]extract.RawMember, error) {
	ctx, span := p.tracer.Start(ctx, "membersapi.SearchAllMembers")
	defer span.End()
	seen := make(map[int]struct{})
	var ret []extract.RawMember
	for _, house := range []int{membersapi.HouseCommons, membersapi.HouseLords} {
		pages, err := p.client.SearchAllMembers(ctx, house, nil)
		if err != nil {
			return nil, fmt.Errorf("search members: %w", err)
		}
		for _, page := range pages {
			rows, err := extract.Members(page)
			if err != nil {
				return nil, err
			}
			for _, row := range rows {
				if _, ok := seen[row.ID]; ok {
					continue
				}
				seen[row.ID] = struct{}{}
				ret = append(ret, row)
			}
		}
	}
	slices.SortFunc(ret, func(a, b extract.RawMember) int {
		return cmp.Compare(a.ID, b.ID)
	})
	span.SetAttributes(attribute.Int("members", len(ret)))
	return ret, nil
}

// fetchHistories fetches the history of each member serially. Members
// without history data are logged and skipped.
func (p *Pipeline) fetchHistories(
	ctx context.Context,
	members []extract.RawMember,
) (*history, error) {
	ctx, span := p.tracer.Start(ctx, "membersapi.MemberHistory")
	defer span.End()
	ret := &history{}
	for _, m := range members {
		h, err := p.client.MemberHistory(ctx, m.ID)
		if err != nil {
			if errors.Is(err, membersapi.ErrNoData) {
				p.logger.Warn(
					"no history for member, skipping",
					"component", "pipeline",
					"id", m.ID,
					"error", err,
				)
				ret.skipped++
				continue
			}
			return nil, err
		}
		names, parties, houses, err := extract.History(h)
		if err != nil {
			return nil, err
		}
		ret.names = append(ret.names, names...)
		ret.parties = append(ret.parties, parties...)
		ret.houses = append(ret.houses, houses...)
	}
	return ret, nil
}

func (p *Pipeline) archive(
	ctx context.Context,
	runDate string,
	members []extract.RawMember,
	hist *history,
) error {
	ctx, span := p.tracer.Start(ctx, "database.PutSnapshot")
	defer span.End()
	snapshots := []struct {
		name string
		rows any
	}{
		{types.SnapshotMembers, members},
		{types.SnapshotNameHistories, hist.names},
		{types.SnapshotPartyHistories, hist.parties},
		{types.SnapshotHouseMemberships, hist.houses},
	}
	for _, s := range snapshots {
		if err := p.db.PutSnapshot(ctx, runDate, s.name, s.rows); err != nil {
			return err
		}
	}
	return nil
}

// reviewChanges compares the members with the previous archived run and the
// built people and constituencies with the stored tables. A review task is
// returned when anything changed.
func (p *Pipeline) reviewChanges(
	ctx context.Context,
	run *models.ExtractionRun,
	members []extract.RawMember,
	res *relational.Result,
) (*review.Task, map[string]map[diff.Status]int, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.reviewChanges")
	defer span.End()
	opts := diff.Options{IncludeUnchanged: p.cfg.Review.IncludeUnchanged}
	task := review.NewTask(run.ID, p.cfg.Review.Creator, p.cfg.Review.Reviewer, p.now())
	diffs := make(map[string]map[diff.Status]int)
	changed := false

	prevRunDate, err := p.db.PreviousRun(ctx, run.RunDate)
	if err != nil {
		return nil, nil, fmt.Errorf("find previous run: %w", err)
	}
	if prevRunDate != "" {
		var prevMembers []extract.RawMember
		if err := p.db.GetSnapshot(ctx, prevRunDate, types.SnapshotMembers, &prevMembers); err != nil {
			return nil, nil, err
		}
		memberDiff, err := diff.Compare(prevMembers, members, memberKey, sameJSON[extract.RawMember], opts)
		if err != nil {
			return nil, nil, fmt.Errorf("compare members with %s: %w", prevRunDate, err)
		}
		changed = p.addDiff(task, diffs, EntityMembers, memberDiff.Counts(), memberDiff.Empty()) || changed
		if err := review.AddRows(task, EntityMembers, memberDiff.Rows()); err != nil {
			return nil, nil, err
		}
	}

	storedPeople, err := p.db.Metadata().GetPeople(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("load stored people: %w", err)
	}
	// The first load has nothing to review against
	if len(storedPeople) > 0 {
		peopleDiff, err := diff.Compare(
			database.PeopleFromModels(storedPeople),
			res.People,
			personKeyOf,
			samePerson,
			opts,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("compare people: %w", err)
		}
		changed = p.addDiff(task, diffs, EntityPeople, peopleDiff.Counts(), peopleDiff.Empty()) || changed
		if err := review.AddRows(task, EntityPeople, peopleDiff.Rows()); err != nil {
			return nil, nil, err
		}
	}

	storedConstituencies, err := p.db.Metadata().GetConstituencies(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("load stored constituencies: %w", err)
	}
	if len(storedConstituencies) > 0 {
		constituencyDiff, err := diff.Compare(
			database.ConstituenciesFromModels(storedConstituencies),
			res.Constituencies,
			constituencyKey,
			sameConstituency,
			opts,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("compare constituencies: %w", err)
		}
		changed = p.addDiff(task, diffs, EntityConstituencies, constituencyDiff.Counts(), constituencyDiff.Empty()) || changed
		if err := review.AddRows(task, EntityConstituencies, constituencyDiff.Rows()); err != nil {
			return nil, nil, err
		}
	}
	if !changed {
		return nil, diffs, nil
	}
	return task, diffs, nil
}

// addDiff records diff counts and reports whether the entity changed
func (p *Pipeline) addDiff(
	task *review.Task,
	diffs map[string]map[diff.Status]int,
	entity string,
	counts map[diff.Status]int,
	empty bool,
) bool {
	diffs[entity] = counts
	for status, count := range counts {
		p.metrics.diffRows.WithLabelValues(entity, string(status)).Add(float64(count))
	}
	p.logger.Info(
		"compared snapshots",
		"component", "pipeline",
		"entity", entity,
		"task_id", task.ID.String(),
		"added", counts[diff.StatusAdded],
		"removed", counts[diff.StatusRemoved],
		"changed", counts[diff.StatusChanged],
	)
	return !empty
}

func timeEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func stringEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
