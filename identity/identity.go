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

// Package identity assigns stable surrogate ids to external ids, reusing ids
// from earlier runs where a mapping exists
package identity

import (
	"maps"

	"github.com/google/uuid"
)

// Kind names the entity a Resolver assigns ids for
type Kind string

const (
	KindPerson       Kind = "person"
	KindConstituency Kind = "constituency"
)

// Resolver maps external ids to surrogate ids. A prior mapping is consulted
// first and one new id is minted per distinct unseen external id.
type Resolver struct {
	kind   Kind
	prior  map[int]uuid.UUID
	minted map[int]uuid.UUID
	newID  func() uuid.UUID
}

type ResolverOptionFunc func(*Resolver)

// WithGenerator overrides the surrogate id generator
func WithGenerator(gen func() uuid.UUID) ResolverOptionFunc {
	return func(r *Resolver) {
		r.newID = gen
	}
}

// NewResolver creates a Resolver. A nil or empty prior mapping means a cold
// start where every id is minted.
func NewResolver(
	kind Kind,
	prior map[int]uuid.UUID,
	opts ...ResolverOptionFunc,
) *Resolver {
	r := &Resolver{
		kind:   kind,
		prior:  maps.Clone(prior),
		minted: make(map[int]uuid.UUID),
		newID:  uuid.New,
	}
	if r.prior == nil {
		r.prior = make(map[int]uuid.UUID)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) Kind() Kind {
	return r.kind
}

// ColdStart reports whether the resolver started without any prior mapping
func (r *Resolver) ColdStart() bool {
	return len(r.prior) == 0
}

// Resolve returns the surrogate id for an external id, minting one the
// first time an unknown external id is seen
func (r *Resolver) Resolve(externalID int) uuid.UUID {
	if id, ok := r.prior[externalID]; ok {
		return id
	}
	if id, ok := r.minted[externalID]; ok {
		return id
	}
	id := r.newID()
	r.minted[externalID] = id
	return id
}

// Minted returns the ids minted by this resolver, for persisting
func (r *Resolver) Minted() map[int]uuid.UUID {
	return maps.Clone(r.minted)
}

// Mapping returns the full mapping known to the resolver
func (r *Resolver) Mapping() map[int]uuid.UUID {
	ret := maps.Clone(r.prior)
	maps.Copy(ret, r.minted)
	return ret
}
