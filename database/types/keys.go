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

package types

import (
	"fmt"
	"strings"
)

const (
	SnapshotKeyPrefix = "snapshots/"
	// LatestRunKey holds the run date of the last archived run
	LatestRunKey = "latest_run"
)

// Snapshot file names within a run
const (
	SnapshotMembers           = "members"
	SnapshotNameHistories     = "name_histories"
	SnapshotPartyHistories    = "party_histories"
	SnapshotHouseMemberships  = "house_membership_histories"
	SnapshotStateOfTheParties = "state_of_the_parties"
)

// SnapshotKey returns the blob key of one snapshot file of a run
func SnapshotKey(runDate string, name string) string {
	return fmt.Sprintf("%s%s/%s.json", SnapshotKeyPrefix, runDate, name)
}

// SnapshotRunPrefix returns the key prefix of all files of a run
func SnapshotRunPrefix(runDate string) string {
	return SnapshotKeyPrefix + runDate + "/"
}

// ParseSnapshotKey splits a snapshot key into its run date and file name
func ParseSnapshotKey(key string) (string, string, bool) {
	rest, ok := strings.CutPrefix(key, SnapshotKeyPrefix)
	if !ok {
		return "", "", false
	}
	runDate, file, ok := strings.Cut(rest, "/")
	if !ok || runDate == "" {
		return "", "", false
	}
	name, ok := strings.CutSuffix(file, ".json")
	if !ok || name == "" {
		return "", "", false
	}
	return runDate, name, true
}
