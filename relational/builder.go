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
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/blinklabs-io/parlmembers/extract"
	"github.com/blinklabs-io/parlmembers/identity"
	"github.com/blinklabs-io/parlmembers/normalize"
	"github.com/blinklabs-io/parlmembers/reference"
	"github.com/google/uuid"
)

type Builder struct {
	ref            *reference.Data
	logger         *slog.Logger
	people         *identity.Resolver
	constituencies *identity.Resolver
	newID          func() uuid.UUID
}

type BuilderOptionFunc func(*Builder)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) BuilderOptionFunc {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithPersonResolver specifies the resolver for person surrogate ids
func WithPersonResolver(r *identity.Resolver) BuilderOptionFunc {
	return func(b *Builder) {
		b.people = r
	}
}

// WithConstituencyResolver specifies the resolver for constituency surrogate
// ids
func WithConstituencyResolver(r *identity.Resolver) BuilderOptionFunc {
	return func(b *Builder) {
		b.constituencies = r
	}
}

// WithIDGenerator overrides the generator for per-run row ids
func WithIDGenerator(gen func() uuid.UUID) BuilderOptionFunc {
	return func(b *Builder) {
		b.newID = gen
	}
}

// NewBuilder creates a Builder. Without explicit resolvers the builder mints
// every surrogate id, as on a first run.
func NewBuilder(ref *reference.Data, opts ...BuilderOptionFunc) *Builder {
	b := &Builder{
		ref:   ref,
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if b.people == nil {
		b.people = identity.NewResolver(identity.KindPerson, nil)
	}
	if b.constituencies == nil {
		b.constituencies = identity.NewResolver(identity.KindConstituency, nil)
	}
	return b
}

func (b *Builder) People() *identity.Resolver {
	return b.people
}

func (b *Builder) Constituencies() *identity.Resolver {
	return b.constituencies
}

// Build assembles the entity tables from the raw members and their
// normalized history
func (b *Builder) Build(
	members []extract.RawMember,
	norm *normalize.Output,
) (*Result, error) {
	memberIdx, err := indexMembers(members)
	if err != nil {
		return nil, err
	}
	ret := &Result{}

	houses, placeholders := dropPlaceholders(norm.Houses)
	houses, duplicates := dropDuplicates(houses)
	ret.Stats.PlaceholdersDropped = placeholders
	ret.Stats.DuplicatesDropped = duplicates
	if placeholders > 0 || duplicates > 0 {
		b.logger.Info(
			"dropped house memberships",
			"placeholders", placeholders,
			"duplicates", duplicates,
		)
	}
	slices.SortStableFunc(houses, func(x, y extract.HouseMembershipRecord) int {
		if c := cmp.Compare(x.ID, y.ID); c != 0 {
			return c
		}
		return compareStartDate(x.StartDate, y.StartDate)
	})

	ret.People = b.buildPeople(norm.Names, memberIdx)
	slices.SortStableFunc(ret.People, func(x, y Person) int {
		if c := cmp.Compare(x.IDParliament, y.IDParliament); c != 0 {
			return c
		}
		if c := compareStartDate(x.StartDate, y.StartDate); c != 0 {
			return c
		}
		return strings.Compare(x.Name, y.Name)
	})

	ret.Representations = b.buildRepresentations(houses)
	ret.Characteristics, err = b.buildCharacteristics(
		ret.Representations,
		norm.Parties,
	)
	if err != nil {
		return nil, err
	}
	ret.Statuses, ret.Stats.StatusesUnattached, err = b.buildStatuses(
		members,
		ret.Representations,
	)
	if err != nil {
		return nil, err
	}
	ret.Constituencies = b.buildConstituencies(houses)

	b.logger.Debug(
		"built relational tables",
		"people", len(ret.People),
		"representations", len(ret.Representations),
		"characteristics", len(ret.Characteristics),
		"statuses", len(ret.Statuses),
		"constituencies", len(ret.Constituencies),
	)
	return ret, nil
}

// compareStartDate orders start dates with nil as the earliest
func compareStartDate(a, b *time.Time) int {
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
