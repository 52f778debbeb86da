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

package diff_test

import (
	"testing"

	"github.com/blinklabs-io/parlmembers/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type member struct {
	ID    int
	Party string
}

func byID(m member) int { return m.ID }

func sameMember(a, b member) bool { return a == b }

func TestCompareClassifiesEveryRow(t *testing.T) {
	prev := []member{{1, "Labour"}, {2, "Labour"}, {3, "Green"}}
	curr := []member{{2, "Independent"}, {3, "Green"}, {4, "Reform"}}

	res, err := diff.Compare(prev, curr, byID, sameMember, diff.Options{IncludeUnchanged: true})
	require.NoError(t, err)
	assert.Equal(t, []member{{1, "Labour"}}, res.Removed)
	assert.Equal(t, []member{{4, "Reform"}}, res.Added)
	assert.Equal(t, []diff.Change[member]{{Prev: member{2, "Labour"}, Curr: member{2, "Independent"}}}, res.Changed)
	assert.Equal(t, []member{{3, "Green"}}, res.Unchanged)
	assert.False(t, res.Empty())

	rows := res.Rows()
	require.Len(t, rows, 5)
	assert.Equal(t, diff.StatusRemoved, rows[0].Status)
	assert.Equal(t, diff.SidePrev, rows[0].Side)
	assert.Equal(t, 4, rows[1].Key)
	assert.Equal(t, diff.SideCurr, rows[1].Side)
	assert.Equal(t, diff.SidePrev, rows[2].Side)
	assert.Equal(t, "Labour", rows[2].Row.Party)
	assert.Equal(t, diff.SideCurr, rows[3].Side)
	assert.Equal(t, "Independent", rows[3].Row.Party)
	assert.Equal(t, diff.StatusUnchanged, rows[4].Status)
}

func TestCompareOmitsUnchangedByDefault(t *testing.T) {
	prev := []member{{1, "Labour"}, {2, "Green"}}
	res, err := diff.Compare(prev, prev, byID, sameMember, diff.Options{})
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Empty(t, res.Unchanged)
	assert.Empty(t, res.Rows())
	assert.Equal(t, 0, res.Counts()[diff.StatusUnchanged])
}

func TestCompareDuplicateKey(t *testing.T) {
	dup := []member{{1, "Labour"}, {1, "Green"}}
	for _, tc := range []struct {
		prev, curr []member
		side       diff.Side
	}{
		{dup, nil, diff.SidePrev},
		{nil, dup, diff.SideCurr},
	} {
		_, err := diff.Compare(tc.prev, tc.curr, byID, sameMember, diff.Options{})
		var dupErr *diff.DuplicateKeyError
		require.ErrorAs(t, err, &dupErr)
		assert.Equal(t, tc.side, dupErr.Side)
		assert.Equal(t, 1, dupErr.Key)
	}
}

func TestCompareEmptySnapshots(t *testing.T) {
	curr := []member{{1, "Labour"}}
	res, err := diff.Compare(nil, curr, byID, sameMember, diff.Options{})
	require.NoError(t, err)
	assert.Equal(t, curr, res.Added)
	assert.Equal(t, map[diff.Status]int{
		diff.StatusAdded:     1,
		diff.StatusRemoved:   0,
		diff.StatusChanged:   0,
		diff.StatusUnchanged: 0,
	}, res.Counts())
}
