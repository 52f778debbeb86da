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
	"time"

	"github.com/blinklabs-io/parlmembers/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RunWrite is everything persisted at the end of a successful run
type RunWrite struct {
	Run                *models.ExtractionRun
	Entities           *models.Entities
	ReviewTask         *models.ReviewTask
	NewPersonIDs       map[int]uuid.UUID
	NewConstituencyIDs map[int]uuid.UUID
	MembersExtracted   int
}

// BeginRun records a new running extraction run
func (d *Database) BeginRun(runDate string, startedAt time.Time) (*models.ExtractionRun, error) {
	run := &models.ExtractionRun{
		ID:        uuid.New(),
		RunDate:   runDate,
		StartedAt: startedAt,
		Status:    models.RunStatusRunning,
	}
	if err := d.metadata.SetExtractionRun(run, nil); err != nil {
		return nil, fmt.Errorf("record run start: %w", err)
	}
	return run, nil
}

// FailRun marks a run as failed with the error that aborted it
func (d *Database) FailRun(run *models.ExtractionRun, runErr error, finishedAt time.Time) error {
	run.Status = models.RunStatusFailed
	run.FinishedAt = &finishedAt
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if err := d.metadata.SetExtractionRun(run, nil); err != nil {
		return fmt.Errorf("record run failure: %w", err)
	}
	return nil
}

// WriteRun replaces the entity tables and records the run in a single
// transaction. The archive latest run marker is only moved after commit; if
// that fails the run stays committed and a LatestRunError is returned.
func (d *Database) WriteRun(ctx context.Context, w *RunWrite, finishedAt time.Time) error {
	if w == nil || w.Run == nil || w.Entities == nil {
		return errors.New("incomplete run write")
	}
	// The run is only updated once the transaction commits, so a rolled back
	// write leaves it as it was for FailRun
	run := *w.Run
	err := d.metadata.Transaction(func(txn *gorm.DB) error {
		txn = txn.WithContext(ctx)
		if err := d.metadata.ReplaceEntities(w.Entities, txn); err != nil {
			return fmt.Errorf("replace entities: %w", err)
		}
		if err := d.metadata.AddPersonIDMappings(w.NewPersonIDs, txn); err != nil {
			return fmt.Errorf("add person id mappings: %w", err)
		}
		if err := d.metadata.AddConstituencyIDMappings(w.NewConstituencyIDs, txn); err != nil {
			return fmt.Errorf("add constituency id mappings: %w", err)
		}
		if w.ReviewTask != nil {
			if err := d.metadata.AddReviewTask(w.ReviewTask, txn); err != nil {
				return fmt.Errorf("add review task: %w", err)
			}
			taskID := w.ReviewTask.ID
			run.ReviewTaskID = &taskID
		}
		run.SetCounts(w.MembersExtracted, w.Entities)
		run.Status = models.RunStatusSucceeded
		run.FinishedAt = &finishedAt
		run.Error = ""
		return d.metadata.SetExtractionRun(&run, txn)
	})
	if err != nil {
		return err
	}
	*w.Run = run
	if err := d.SetLatestRun(ctx, run.RunDate); err != nil {
		prev, _ := d.LatestRun(ctx)
		return LatestRunError{
			MetadataRunDate: run.RunDate,
			BlobRunDate:     prev,
			Err:             err,
		}
	}
	d.logger.Info(
		"run written",
		"component", "database",
		"run_id", w.Run.ID.String(),
		"run_date", w.Run.RunDate,
		"people", w.Run.People,
		"representations", w.Run.Representations,
	)
	return nil
}

// SaveStateOfTheParties upserts party seat counts
func (d *Database) SaveStateOfTheParties(
	ctx context.Context,
	rows []models.StateOfTheParty,
) error {
	return d.metadata.Transaction(func(txn *gorm.DB) error {
		return d.metadata.SetStateOfTheParties(rows, txn.WithContext(ctx))
	})
}
