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
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CardinalityError reports a key that matched more rows than the join
// allows
type CardinalityError struct {
	Entity string
	Key    int
	Count  int
}

func (e *CardinalityError) Error() string {
	return fmt.Sprintf(
		"%s: expected at most one row for id %d, found %d",
		e.Entity,
		e.Key,
		e.Count,
	)
}

// ContainmentError reports a characteristic that falls outside its
// representation
type ContainmentError struct {
	RepresentationID uuid.UUID
	Start            *time.Time
	End              *time.Time
}

func (e *ContainmentError) Error() string {
	return fmt.Sprintf(
		"characteristic %s to %s is not contained in representation %s",
		formatDate(e.Start),
		formatDate(e.End),
		e.RepresentationID,
	)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "null"
	}
	return t.Format(time.DateOnly)
}
