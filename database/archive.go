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

package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/blinklabs-io/parlmembers/database/sops"
	"github.com/blinklabs-io/parlmembers/database/types"
)

// PutSnapshot archives v as JSON under the run date
func (d *Database) PutSnapshot(
	ctx context.Context,
	runDate string,
	name string,
	v any,
) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", name, err)
	}
	if d.encryptSnapshots {
		data, err = sops.Encrypt(data)
		if err != nil {
			return fmt.Errorf("encrypt snapshot %s: %w", name, err)
		}
	}
	key := types.SnapshotKey(runDate, name)
	if err := d.blob.Put(ctx, key, data); err != nil {
		return fmt.Errorf("archive snapshot %s: %w", key, err)
	}
	d.logger.Debug(
		"archived snapshot",
		"component", "database",
		"key", key,
		"bytes", len(data),
	)
	return nil
}

// GetSnapshot decodes an archived snapshot into v. Encrypted snapshots are
// decrypted regardless of the current encryption setting.
func (d *Database) GetSnapshot(
	ctx context.Context,
	runDate string,
	name string,
	v any,
) error {
	key := types.SnapshotKey(runDate, name)
	data, err := d.blob.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read snapshot %s: %w", key, err)
	}
	if sops.IsEncrypted(data) {
		data, err = sops.Decrypt(data)
		if err != nil {
			return fmt.Errorf("decrypt snapshot %s: %w", key, err)
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return nil
}

// SnapshotRuns returns the run dates with archived snapshots, oldest first
func (d *Database) SnapshotRuns(ctx context.Context) ([]string, error) {
	keys, err := d.blob.List(ctx, types.SnapshotKeyPrefix)
	if err != nil {
		return nil, err
	}
	var ret []string
	for _, key := range keys {
		runDate, _, ok := types.ParseSnapshotKey(key)
		if !ok {
			continue
		}
		if len(ret) == 0 || ret[len(ret)-1] != runDate {
			ret = append(ret, runDate)
		}
	}
	// Run dates are ISO dates, so the key order is chronological
	slices.Sort(ret)
	return slices.Compact(ret), nil
}

// SnapshotFiles returns the names of the files archived for a run, sorted
func (d *Database) SnapshotFiles(ctx context.Context, runDate string) ([]string, error) {
	keys, err := d.blob.List(ctx, types.SnapshotRunPrefix(runDate))
	if err != nil {
		return nil, err
	}
	ret := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, name, ok := types.ParseSnapshotKey(key); ok {
			ret = append(ret, name)
		}
	}
	slices.Sort(ret)
	return ret, nil
}

// PreviousRun returns the latest archived run date strictly before runDate,
// or "" if there is none
func (d *Database) PreviousRun(ctx context.Context, runDate string) (string, error) {
	runs, err := d.SnapshotRuns(ctx)
	if err != nil {
		return "", err
	}
	for i := len(runs) - 1; i >= 0; i-- {
		if strings.Compare(runs[i], runDate) < 0 {
			return runs[i], nil
		}
	}
	return "", nil
}

// LatestRun returns the run date recorded by the last completed run, or ""
// if no run has completed
func (d *Database) LatestRun(ctx context.Context) (string, error) {
	data, err := d.blob.Get(ctx, types.LatestRunKey)
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

// SetLatestRun records the run date of a completed run
func (d *Database) SetLatestRun(ctx context.Context, runDate string) error {
	return d.blob.Put(ctx, types.LatestRunKey, []byte(runDate))
}
