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

package reference_test

import (
	"testing"
	"time"

	"github.com/blinklabs-io/parlmembers/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(reference.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDefaultIsValid(t *testing.T) {
	d, err := reference.New(reference.DefaultSpec())
	require.NoError(t, err)
	assert.Equal(t, date("2015-05-07"), d.SplitCutoff())
	assert.Equal(t, 10, d.PeerageConstituencyMaxID())
	assert.True(t, d.IsElectionDate(date("1997-05-01")))
	assert.False(t, d.IsElectionDate(date("1997-05-02")))
	elections := d.Elections()
	for i := 1; i < len(elections); i++ {
		assert.True(t, elections[i-1].Before(elections[i]), "elections not sorted")
	}
}

func TestElectionDateFor(t *testing.T) {
	d := reference.Default()
	got, ok := d.ElectionDateFor(date("2019-11-06"))
	require.True(t, ok)
	assert.Equal(t, date("2019-12-12"), got)
	// Time of day is ignored
	got, ok = d.ElectionDateFor(date("2019-11-06").Add(13 * time.Hour))
	require.True(t, ok)
	assert.Equal(t, date("2019-12-12"), got)
	_, ok = d.ElectionDateFor(date("2019-12-12"))
	assert.False(t, ok)
}

func TestElectionsBetweenIsExclusive(t *testing.T) {
	d := reference.Default()
	got := d.ElectionsBetween(date("1992-04-09"), date("2005-05-05"))
	assert.Equal(
		t,
		[]time.Time{date("1997-05-01"), date("2001-06-07")},
		got,
	)
	assert.Empty(t, d.ElectionsBetween(date("2010-05-06"), date("2010-05-07")))
}

func TestRejectsNonIdempotentMapping(t *testing.T) {
	spec := reference.DefaultSpec()
	spec.PreElectionPeriodToElectionDate = map[string]string{
		"2015-03-30": "2015-05-07",
		"2015-05-07": "2015-06-01",
	}
	_, err := reference.New(spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not idempotent")
}

func TestRejectsBadDates(t *testing.T) {
	spec := reference.DefaultSpec()
	spec.ElectionDates = append(spec.ElectionDates, "not-a-date")
	_, err := reference.New(spec)
	require.Error(t, err)

	spec = reference.DefaultSpec()
	spec.PreElectionPeriodToElectionDate = map[string]string{"2015-05-07": "2015-03-30"}
	_, err = reference.New(spec)
	require.Error(t, err)

	spec = reference.DefaultSpec()
	spec.SplitCutoff = ""
	_, err = reference.New(spec)
	require.Error(t, err)
}

func TestSpecCopyIsIndependent(t *testing.T) {
	spec := reference.DefaultSpec()
	d := reference.MustNew(spec)
	spec.PeerageTypeRenamings["Life peer"] = "Changed"
	got, ok := d.RenamePeerageType("Life peer")
	require.True(t, ok)
	assert.Equal(t, "Life", got)
}
