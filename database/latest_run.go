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
	"errors"
	"fmt"

	"github.com/blinklabs-io/parlmembers/database/models"
)

// LatestRunError reports that the archive and the relational sink disagree
// on the last completed run
type LatestRunError struct {
	// Err is the archive write failure, if that caused the mismatch
	Err             error
	MetadataRunDate string
	BlobRunDate     string
}

func (e LatestRunError) Error() string {
	msg := fmt.Sprintf(
		"latest run mismatch: %q (metadata) != %q (blob)",
		e.MetadataRunDate,
		e.BlobRunDate,
	)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e LatestRunError) Unwrap() error {
	return e.Err
}

func (d *Database) checkLatestRun() error {
	run, err := d.metadata.GetLatestExtractionRun(models.RunStatusSucceeded, nil)
	if err != nil {
		// No completed run in the database
		if errors.Is(err, models.ErrExtractionRunNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get latest run from metadata: %w", err)
	}
	blobRunDate, err := d.LatestRun(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get latest run from blob: %w", err)
	}
	if blobRunDate != run.RunDate {
		return LatestRunError{
			MetadataRunDate: run.RunDate,
			BlobRunDate:     blobRunDate,
		}
	}
	return nil
}
