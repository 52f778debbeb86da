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

// Package diff compares two snapshots of the same entity table
package diff

import (
	"fmt"
)

// Status classifies a logical row across two snapshots
type Status string

const (
	StatusUnchanged Status = "unchanged"
	StatusAdded     Status = "added"
	StatusRemoved   Status = "removed"
	StatusChanged   Status = "changed"
)

// Side tags which snapshot a row version came from
type Side string

const (
	SidePrev Side = "prev"
	SideCurr Side = "curr"
	SideBoth Side = "both"
)

type Options struct {
	// IncludeUnchanged keeps unchanged rows in the result
	IncludeUnchanged bool
}

// Change holds both versions of a row whose key matched but whose content
// differs
type Change[R any] struct {
	Prev R
	Curr R
}

type Result[K comparable, R any] struct {
	Added     []R
	Removed   []R
	Changed   []Change[R]
	Unchanged []R
	key       func(R) K
}

// Row is one tagged row version
type Row[K comparable, R any] struct {
	Key    K
	Status Status
	Side   Side
	Row    R
}

// DuplicateKeyError reports a natural key that appears more than once in a
// snapshot
type DuplicateKeyError struct {
	Key  any
	Side Side
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %v in %s snapshot", e.Key, e.Side)
}

// Compare matches rows of two snapshots by key and classifies each. Keys
// must be unique within each snapshot.
func Compare[K comparable, R any](
	prev []R,
	curr []R,
	key func(R) K,
	equal func(a, b R) bool,
	opts Options,
) (*Result[K, R], error) {
	prevIdx, err := index(prev, key, SidePrev)
	if err != nil {
		return nil, err
	}
	currIdx, err := index(curr, key, SideCurr)
	if err != nil {
		return nil, err
	}
	ret := &Result[K, R]{key: key}
	for _, p := range prev {
		c, ok := currIdx[key(p)]
		switch {
		case !ok:
			ret.Removed = append(ret.Removed, p)
		case !equal(p, c):
			ret.Changed = append(ret.Changed, Change[R]{Prev: p, Curr: c})
		case opts.IncludeUnchanged:
			ret.Unchanged = append(ret.Unchanged, c)
		}
	}
	for _, c := range curr {
		if _, ok := prevIdx[key(c)]; !ok {
			ret.Added = append(ret.Added, c)
		}
	}
	return ret, nil
}

func index[K comparable, R any](rows []R, key func(R) K, side Side) (map[K]R, error) {
	ret := make(map[K]R, len(rows))
	for _, r := range rows {
		k := key(r)
		if _, ok := ret[k]; ok {
			return nil, &DuplicateKeyError{Key: k, Side: side}
		}
		ret[k] = r
	}
	return ret, nil
}

// Empty reports whether the snapshots differ in no row
func (r *Result[K, R]) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Changed) == 0
}

// Counts returns the number of logical rows per status
func (r *Result[K, R]) Counts() map[Status]int {
	return map[Status]int{
		StatusAdded:     len(r.Added),
		StatusRemoved:   len(r.Removed),
		StatusChanged:   len(r.Changed),
		StatusUnchanged: len(r.Unchanged),
	}
}

// Rows flattens the result into tagged rows: removed, then added, then each
// changed row as its prev and curr versions, then unchanged
func (r *Result[K, R]) Rows() []Row[K, R] {
	ret := make(
		[]Row[K, R],
		0,
		len(r.Removed)+len(r.Added)+2*len(r.Changed)+len(r.Unchanged),
	)
	for _, row := range r.Removed {
		ret = append(ret, Row[K, R]{Key: r.key(row), Status: StatusRemoved, Side: SidePrev, Row: row})
	}
	for _, row := range r.Added {
		ret = append(ret, Row[K, R]{Key: r.key(row), Status: StatusAdded, Side: SideCurr, Row: row})
	}
	for _, c := range r.Changed {
		ret = append(
			ret,
			Row[K, R]{Key: r.key(c.Prev), Status: StatusChanged, Side: SidePrev, Row: c.Prev},
			Row[K, R]{Key: r.key(c.Curr), Status: StatusChanged, Side: SideCurr, Row: c.Curr},
		)
	}
	for _, row := range r.Unchanged {
		ret = append(ret, Row[K, R]{Key: r.key(row), Status: StatusUnchanged, Side: SideBoth, Row: row})
	}
	return ret
}
