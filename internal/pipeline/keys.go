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
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/blinklabs-io/parlmembers/extract"
	"github.com/blinklabs-io/parlmembers/reference"
	"github.com/blinklabs-io/parlmembers/relational"
)

// personKey identifies a person row across runs. The surrogate id is not
// part of it so that a re-minted id shows up as a change.
type personKey struct {
	Name         string
	IDParliament int
}

func (k personKey) String() string {
	return fmt.Sprintf("%d/%s", k.IDParliament, k.Name)
}

func memberKey(m extract.RawMember) int {
	return m.ID
}

func personKeyOf(p relational.Person) personKey {
	return personKey{IDParliament: p.IDParliament, Name: p.Name}
}

func samePerson(a, b relational.Person) bool {
	return a.ID == b.ID &&
		a.ShortName == b.ShortName &&
		stringEqual(a.Gender, b.Gender) &&
		timeEqual(a.StartDate, b.StartDate) &&
		timeEqual(a.EndDate, b.EndDate)
}

func constituencyKey(c relational.Constituency) int {
	return c.IDParliament
}

func sameConstituency(a, b relational.Constituency) bool {
	return a.ID == b.ID && a.Name == b.Name
}

// sameJSON compares two rows by their archived form
func sameJSON[T any](a, b T) bool {
	x, err := json.Marshal(a)
	if err != nil {
		return false
	}
	y, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(x, y)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(reference.DateLayout)
}

// History rows have no natural key narrower than the whole record, so an
// edited span shows up as one row removed and one added
func nameHistoryKey(r extract.NameHistoryRecord) string {
	return fmt.Sprintf(
		"%d/%s/%s/%s",
		r.ID,
		r.NameDisplayAs,
		formatDate(r.StartDate),
		formatDate(r.EndDate),
	)
}

func partyHistoryKey(r extract.PartyHistoryRecord) string {
	return fmt.Sprintf(
		"%d/%d/%s/%s",
		r.ID,
		r.PartyID,
		formatDate(r.StartDate),
		formatDate(r.EndDate),
	)
}

func houseMembershipKey(r extract.HouseMembershipRecord) string {
	return fmt.Sprintf(
		"%d/%d/%d/%s/%s/%s",
		r.ID,
		r.House,
		r.ConstituencyID,
		r.ConstituencyName,
		formatDate(r.StartDate),
		formatDate(r.EndDate),
	)
}
