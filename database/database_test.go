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

package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blinklabs-io/parlmembers/database"
	"github.com/blinklabs-io/parlmembers/database/models"
	"github.com/blinklabs-io/parlmembers/database/plugin/blob"
	"github.com/blinklabs-io/parlmembers/database/plugin/blob/badger"
	"github.com/blinklabs-io/parlmembers/database/plugin/metadata"
	"github.com/blinklabs-io/parlmembers/database/plugin/metadata/sqlite"
	"github.com/blinklabs-io/parlmembers/database/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newStores(t *testing.T) (*badger.BlobStoreBadger, *sqlite.MetadataStoreSqlite) {
	t.Helper()
	blobDb := badger.New()
	require.NoError(t, blobDb.Start())
	metadataDb, err := sqlite.New("", nil, nil)
	require.NoError(t, err)
	return blobDb, metadataDb
}

func newTestDB(t *testing.T) *database.Database {
	t.Helper()
	blobDb, metadataDb := newStores(t)
	db, err := database.NewWithStores(&database.Config{}, blobDb, metadataDb)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testEntities() *models.Entities {
	personID := uuid.New()
	repID := uuid.New()
	constituencyID := uuid.New()
	constituencyIDParliament := 4001
	start := time.Date(2019, 12, 12, 0, 0, 0, 0, time.UTC)
	return &models.Entities{
		People: []models.Person{
			{ID: personID, IDParliament: 172, Name: "Diane Abbott", ShortName: "Abbott"},
		},
		Representations: []models.Representation{
			{
				ID:                       repID,
				IDParliament:             172,
				PersonID:                 personID,
				House:                    "Commons",
				ConstituencyID:           &constituencyID,
				ConstituencyIDParliament: &constituencyIDParliament,
				StartDate:                &start,
			},
		},
		Characteristics: []models.RepresentationCharacteristic{
			{ID: uuid.New(), RepresentationID: repID, Party: "Labour", StartDate: &start},
		},
		Statuses: []models.RepresentationStatus{
			{ID: uuid.New(), RepresentationID: repID, Status: "Active", StartDate: &start},
		},
		Constituencies: []models.Constituency{
			{ID: constituencyID, IDParliament: constituencyIDParliament, Name: "Hackney North and Stoke Newington"},
		},
	}
}

func TestNewDefaultsInMemory(t *testing.T) {
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	defer db.Close()
	assert.NotNil(t, db.Blob())
	assert.NotNil(t, db.Metadata())
	assert.NotNil(t, db.Logger())
	assert.Empty(t, db.DataDir())
}

func TestNewWithStoresRequiresStores(t *testing.T) {
	_, err := database.NewWithStores(nil, nil, nil)
	require.ErrorIs(t, err, database.ErrNoStoreAvailable)
}

func TestSnapshots(t *testing.T) {
	db := newTestDB(t)
	ctx := t.Context()
	type row struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	for _, runDate := range []string{"2024-07-05", "2024-01-10", "2024-03-01"} {
		require.NoError(
			t,
			db.PutSnapshot(ctx, runDate, types.SnapshotMembers, []row{{ID: 1, Name: runDate}}),
		)
		require.NoError(
			t,
			db.PutSnapshot(ctx, runDate, types.SnapshotNameHistories, []row{}),
		)
	}
	var got []row
	require.NoError(t, db.GetSnapshot(ctx, "2024-03-01", types.SnapshotMembers, &got))
	assert.Equal(t, []row{{ID: 1, Name: "2024-03-01"}}, got)

	runs, err := db.SnapshotRuns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-10", "2024-03-01", "2024-07-05"}, runs)

	files, err := db.SnapshotFiles(ctx, "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, []string{types.SnapshotMembers, types.SnapshotNameHistories}, files)
	files, err = db.SnapshotFiles(ctx, "2024-03")
	require.NoError(t, err)
	assert.Empty(t, files)

	prev, err := db.PreviousRun(ctx, "2024-07-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", prev)
	prev, err = db.PreviousRun(ctx, "2024-01-10")
	require.NoError(t, err)
	assert.Empty(t, prev)

	err = db.GetSnapshot(ctx, "2023-01-01", types.SnapshotMembers, &got)
	require.ErrorIs(t, err, database.ErrBlobKeyNotFound)
}

func TestWriteRun(t *testing.T) {
	db := newTestDB(t)
	ctx := t.Context()
	started := time.Date(2024, 7, 5, 6, 0, 0, 0, time.UTC)
	run, err := db.BeginRun("2024-07-05", started)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusRunning, run.Status)

	latest, err := db.LatestRun(ctx)
	require.NoError(t, err)
	assert.Empty(t, latest)

	entities := testEntities()
	task := &models.ReviewTask{
		ID:        uuid.New(),
		RunID:     run.ID,
		Type:      "snapshot_review",
		CreatedAt: started,
	}
	task.Items = []models.ReviewItem{
		{ID: uuid.New(), TaskID: task.ID, Entity: "person", Key: "172", Status: "added", Side: "curr"},
	}
	w := &database.RunWrite{
		Run:                run,
		Entities:           entities,
		ReviewTask:         task,
		NewPersonIDs:       map[int]uuid.UUID{172: entities.People[0].ID},
		NewConstituencyIDs: map[int]uuid.UUID{4001: entities.Constituencies[0].ID},
		MembersExtracted:   1,
	}
	require.NoError(t, db.WriteRun(ctx, w, started.Add(time.Minute)))

	stored, err := db.Metadata().GetLatestExtractionRun(models.RunStatusSucceeded, nil)
	require.NoError(t, err)
	assert.Equal(t, run.ID, stored.ID)
	assert.Equal(t, 1, stored.People)
	assert.Equal(t, 1, stored.Constituencies)
	require.NotNil(t, stored.ReviewTaskID)
	assert.Equal(t, task.ID, *stored.ReviewTaskID)

	mappings, err := db.Metadata().GetPersonIDMappings(nil)
	require.NoError(t, err)
	assert.Equal(t, entities.People[0].ID, mappings[172])

	gotTask, err := db.Metadata().GetReviewTask(task.ID, nil)
	require.NoError(t, err)
	assert.Len(t, gotTask.Items, 1)

	latest, err = db.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-07-05", latest)

	people, err := db.Metadata().GetPeople(nil)
	require.NoError(t, err)
	assert.Equal(
		t,
		database.PeopleFromModels(entities.People),
		database.PeopleFromModels(people),
	)
}

func TestWriteRunRollback(t *testing.T) {
	db := newTestDB(t)
	ctx := t.Context()
	run, err := db.BeginRun("2024-07-05", time.Now())
	require.NoError(t, err)
	entities := testEntities()
	// Duplicate primary key fails the insert
	entities.People = append(entities.People, entities.People[0])
	w := &database.RunWrite{
		Run:          run,
		Entities:     entities,
		NewPersonIDs: map[int]uuid.UUID{172: entities.People[0].ID},
	}
	require.Error(t, db.WriteRun(ctx, w, time.Now()))
	require.NoError(t, db.FailRun(run, errors.New("boom"), time.Now()))

	_, err = db.Metadata().GetLatestExtractionRun(models.RunStatusSucceeded, nil)
	require.ErrorIs(t, err, models.ErrExtractionRunNotFound)
	failed, err := db.Metadata().GetLatestExtractionRun(models.RunStatusFailed, nil)
	require.NoError(t, err)
	assert.Equal(t, "boom", failed.Error)

	mappings, err := db.Metadata().GetPersonIDMappings(nil)
	require.NoError(t, err)
	assert.Empty(t, mappings)
	latest, err := db.LatestRun(ctx)
	require.NoError(t, err)
	assert.Empty(t, latest)
}

// readOnlyMarkerStore refuses writes to the latest run marker
type readOnlyMarkerStore struct {
	blob.BlobStore
}

func (s readOnlyMarkerStore) Put(ctx context.Context, key string, value []byte) error {
	if key == types.LatestRunKey {
		return types.ErrReadOnlyStore
	}
	return s.BlobStore.Put(ctx, key, value)
}

// failingRunStore fails to record a run inside a transaction
type failingRunStore struct {
	metadata.MetadataStore
}

func (s failingRunStore) SetExtractionRun(run *models.ExtractionRun, txn *gorm.DB) error {
	if txn != nil {
		return errors.New("run table locked")
	}
	return s.MetadataStore.SetExtractionRun(run, txn)
}

func TestWriteRunLatestRunFailureKeepsCommit(t *testing.T) {
	blobDb, metadataDb := newStores(t)
	db, err := database.NewWithStores(&database.Config{}, readOnlyMarkerStore{blobDb}, metadataDb)
	require.NoError(t, err)
	defer db.Close()
	run, err := db.BeginRun("2024-07-05", time.Now())
	require.NoError(t, err)
	w := &database.RunWrite{Run: run, Entities: testEntities(), MembersExtracted: 1}
	err = db.WriteRun(t.Context(), w, time.Now())
	var mismatch database.LatestRunError
	require.ErrorAs(t, err, &mismatch)
	require.ErrorIs(t, err, types.ErrReadOnlyStore)
	assert.Equal(t, "2024-07-05", mismatch.MetadataRunDate)
	assert.Empty(t, mismatch.BlobRunDate)
	assert.Equal(t, models.RunStatusSucceeded, run.Status)

	stored, err := db.Metadata().GetLatestExtractionRun(models.RunStatusSucceeded, nil)
	require.NoError(t, err)
	assert.Equal(t, run.ID, stored.ID)
}

func TestWriteRunRollbackLeavesRunUntouched(t *testing.T) {
	blobDb, metadataDb := newStores(t)
	db, err := database.NewWithStores(&database.Config{}, blobDb, failingRunStore{metadataDb})
	require.NoError(t, err)
	defer db.Close()
	run, err := db.BeginRun("2024-07-05", time.Now())
	require.NoError(t, err)
	task := &models.ReviewTask{ID: uuid.New(), RunID: run.ID, Type: "snapshot_review", CreatedAt: time.Now()}
	w := &database.RunWrite{Run: run, Entities: testEntities(), ReviewTask: task}
	require.ErrorContains(t, db.WriteRun(t.Context(), w, time.Now()), "run table locked")
	assert.Nil(t, run.ReviewTaskID)
	assert.Equal(t, models.RunStatusRunning, run.Status)
	assert.Zero(t, run.People)

	require.NoError(t, db.FailRun(run, errors.New("boom"), time.Now()))
	failed, err := db.Metadata().GetLatestExtractionRun(models.RunStatusFailed, nil)
	require.NoError(t, err)
	assert.Nil(t, failed.ReviewTaskID)
	_, err = db.Metadata().GetReviewTask(task.ID, nil)
	require.ErrorIs(t, err, models.ErrReviewTaskNotFound)
}

func TestLatestRunMismatch(t *testing.T) {
	blobDb, metadataDb := newStores(t)
	finished := time.Now()
	require.NoError(t, metadataDb.SetExtractionRun(&models.ExtractionRun{
		ID:         uuid.New(),
		RunDate:    "2024-07-05",
		StartedAt:  finished,
		FinishedAt: &finished,
		Status:     models.RunStatusSucceeded,
	}, nil))
	db, err := database.NewWithStores(&database.Config{}, blobDb, metadataDb)
	require.Error(t, err)
	require.NotNil(t, db)
	defer db.Close()
	var mismatch database.LatestRunError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "2024-07-05", mismatch.MetadataRunDate)
	assert.Empty(t, mismatch.BlobRunDate)

	// The returned database remains usable for recovery
	require.NoError(t, db.SetLatestRun(t.Context(), "2024-07-05"))
	latest, err := db.LatestRun(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "2024-07-05", latest)
}

func TestSaveStateOfTheParties(t *testing.T) {
	db := newTestDB(t)
	date := time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC)
	rows := []models.StateOfTheParty{
		{Date: date, House: 1, PartyID: 15, PartyName: "Labour", Total: 411},
	}
	require.NoError(t, db.SaveStateOfTheParties(t.Context(), rows))
	rows[0].Total = 412
	require.NoError(t, db.SaveStateOfTheParties(t.Context(), rows))
	got, err := db.Metadata().GetStateOfTheParties(1, date, date, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 412, got[0].Total)
}
