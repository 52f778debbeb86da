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

package types_test

import (
	"testing"

	"github.com/blinklabs-io/parlmembers/database/types"
	"github.com/stretchr/testify/assert"
)

func TestSnapshotKeyRoundTrip(t *testing.T) {
	key := types.SnapshotKey("2026-10-16", types.SnapshotMembers)
	assert.Equal(t, "snapshots/2026-10-16/members.json", key)
	runDate, name, ok := types.ParseSnapshotKey(key)
	assert.True(t, ok)
	assert.Equal(t, "2026-10-16", runDate)
	assert.Equal(t, types.SnapshotMembers, name)
}

func TestParseSnapshotKeyRejectsOtherKeys(t *testing.T) {
	for _, key := range []string{
		types.LatestRunKey,
		"snapshots/",
		"snapshots/2026-10-16",
		"snapshots//members.json",
		"snapshots/2026-10-16/members.csv",
	} {
		_, _, ok := types.ParseSnapshotKey(key)
		assert.False(t, ok, key)
	}
}
