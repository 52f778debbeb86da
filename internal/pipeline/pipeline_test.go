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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blinklabs-io/parlmembers/database"
	"github.com/blinklabs-io/parlmembers/database/models"
	"github.com/blinklabs-io/parlmembers/database/plugin/blob"
	"github.com/blinklabs-io/parlmembers/database/plugin/blob/badger"
	"github.com/blinklabs-io/parlmembers/database/plugin/metadata/sqlite"
	"github.com/blinklabs-io/parlmembers/database/types"
	"github.com/blinklabs-io/parlmembers/diff"
	"github.com/blinklabs-io/parlmembers/event"
	"github.com/blinklabs-io/parlmembers/extract"
	"github.com/blinklabs-io/parlmembers/internal/config"
	"github.com/blinklabs-io/parlmembers/membersapi"
	"github.com/blinklabs-io/parlmembers/review"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

// fakeAPI serves a small, mutable parliament
type fakeAPI struct {
	mu        sync.Mutex
	members   map[int][]membersapi.Member
	histories map[int]membersapi.MemberHistory
	parties   map[string][]membersapi.PartySeats
}

func newFakeAPI() *fakeAPI {
	labour := &membersapi.Party{ID: 15, Name: "Labour", Abbreviation: "Lab"}
	return &fakeAPI{
		members: map[int][]membersapi.Member{
			membersapi.HouseCommons: {
				{
					ID:            172,
					NameDisplayAs: "Ms Diane Abbott",
					Gender:        "F",
					LatestParty:   labour,
					LatestHouseMembership: &membersapi.HouseMembership{
						House:               membersapi.HouseCommons,
						MembershipFrom:      "Hackney North and Stoke Newington",
						MembershipFromID:    intPtr(4001),
						MembershipStartDate: strPtr("1987-06-11T00:00:00"),
						MembershipStatus: &membersapi.MembershipStatus{
							StatusDescription: "Active",
							StatusIsActive:    true,
							StatusStartDate:   strPtr("2024-07-04T00:00:00"),
						},
					},
				},
				{
					ID:            500,
					NameDisplayAs: "Mr Former Member",
					Gender:        "M",
					LatestHouseMembership: &membersapi.HouseMembership{
						House:            membersapi.HouseCommons,
						MembershipFrom:   "Nowhere",
						MembershipFromID: intPtr(4999),
					},
				},
			},
			membersapi.HouseLords: {
				{
					ID:            3898,
					NameDisplayAs: "Lord Smith of Leigh",
					Gender:        "M",
					LatestParty:   labour,
					LatestHouseMembership: &membersapi.HouseMembership{
						House:               membersapi.HouseLords,
						MembershipFrom:      "Life peer",
						MembershipFromID:    intPtr(3),
						MembershipStartDate: strPtr("1999-07-29T00:00:00"),
						MembershipStatus: &membersapi.MembershipStatus{
							StatusDescription: "Active",
							StatusIsActive:    true,
						},
					},
				},
			},
		},
		histories: map[int]membersapi.MemberHistory{
			172: {
				ID: 172,
				NameHistory: []membersapi.NameHistory{
					{NameDisplayAs: "Ms Diane Abbott", StartDate: strPtr("1987-06-11T00:00:00")},
				},
				PartyHistory: []membersapi.PartyHistory{
					{Party: labour, StartDate: strPtr("1987-06-11T00:00:00")},
				},
				HouseMembershipHistory: []membersapi.HouseMembership{
					{
						House:               membersapi.HouseCommons,
						MembershipFrom:      "Hackney North and Stoke Newington",
						MembershipFromID:    intPtr(4001),
						MembershipStartDate: strPtr("1987-06-11T00:00:00"),
					},
				},
			},
			3898: {
				ID: 3898,
				NameHistory: []membersapi.NameHistory{
					{NameDisplayAs: "Lord Smith of Leigh", StartDate: strPtr("1999-07-29T00:00:00")},
				},
				PartyHistory: []membersapi.PartyHistory{
					{Party: labour, StartDate: strPtr("1999-07-29T00:00:00")},
				},
				HouseMembershipHistory: []membersapi.HouseMembership{
					{
						House:               membersapi.HouseLords,
						MembershipFrom:      "Life peer",
						MembershipFromID:    intPtr(3),
						MembershipStartDate: strPtr("1999-07-29T00:00:00"),
					},
				},
			},
			// 500 has no history and is skipped
		},
		parties: map[string][]membersapi.PartySeats{
			"1/2024-07-04": {
				{Party: labour, Male: 220, Female: 190, Total: 410},
				{Party: &membersapi.Party{ID: 4, Name: "Conservative"}, Male: 90, Female: 31, Total: 121},
			},
			"1/2024-07-06": {
				{Party: labour, Male: 220, Female: 191, Total: 411},
			},
		},
	}
}

func (f *fakeAPI) addLordsMember(m membersapi.Member, h membersapi.MemberHistory) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[membersapi.HouseLords] = append(f.members[membersapi.HouseLords], m)
	f.histories[m.ID] = h
}

func (f *fakeAPI) setLordsParty(id int, party *membersapi.Party) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.members[membersapi.HouseLords] {
		if f.members[membersapi.HouseLords][i].ID == id {
			f.members[membersapi.HouseLords][i].LatestParty = party
		}
	}
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := r.URL.Query()
	switch {
	case r.URL.Path == "/api/Members/Search":
		house, _ := strconv.Atoi(q.Get("House"))
		skip, _ := strconv.Atoi(q.Get("skip"))
		take, _ := strconv.Atoi(q.Get("take"))
		all := f.members[house]
		res := membersapi.SearchResult{TotalResults: len(all), Skip: skip, Take: take}
		for i := skip; i < len(all) && i < skip+take; i++ {
			m := all[i]
			res.Items = append(res.Items, membersapi.SearchItem{Value: &m})
		}
		writeJSON(w, res)
	case r.URL.Path == "/api/Members/History":
		id, _ := strconv.Atoi(q.Get("ids"))
		h, ok := f.histories[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, []membersapi.HistoryItem{{Value: &h}})
	case strings.HasPrefix(r.URL.Path, "/api/parties/stateOfTheParties/"):
		key := strings.TrimPrefix(r.URL.Path, "/api/parties/stateOfTheParties/")
		seats, ok := f.parties[key]
		if !ok {
			http.NotFound(w, r)
			return
		}
		var res membersapi.StateOfThePartiesResult
		for i := range seats {
			res.Items = append(res.Items, membersapi.StateOfThePartiesItem{Value: &seats[i]})
		}
		writeJSON(w, res)
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type fakeNotifier struct {
	tasks []*review.Task
}

func (n *fakeNotifier) Notify(_ context.Context, task *review.Task) error {
	n.tasks = append(n.tasks, task)
	return nil
}

func (n *fakeNotifier) Close() {}

type testEnv struct {
	api      *fakeAPI
	cfg      *config.Config
	db       *database.Database
	notifier *fakeNotifier
	registry *prometheus.Registry
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	api := newFakeAPI()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)
	cfg := config.Default()
	cfg.API.BaseURL = server.URL
	cfg.API.RetryMax = 1
	cfg.API.BackoffFactor = time.Millisecond
	cfg.Review.Reviewer = "reviewer@example.com"
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &testEnv{
		api:      api,
		cfg:      cfg,
		db:       db,
		notifier: &fakeNotifier{},
		registry: prometheus.NewRegistry(),
		now:      time.Date(2024, 7, 1, 6, 0, 0, 0, time.UTC),
	}
}

func (e *testEnv) pipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := New(
		e.cfg,
		WithDatabase(e.db),
		WithNotifier(e.notifier),
		WithPromRegistry(e.registry),
		WithClock(func() time.Time { return e.now }),
	)
	require.NoError(t, err)
	return p
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestNewRejectsInvalidReference(t *testing.T) {
	cfg := config.Default()
	cfg.Reference.SplitCutoff = ""
	_, err := New(cfg)
	require.ErrorContains(t, err, "invalid reference data")
}

func TestExtractColdThenWarm(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	env.cfg.RunDate = "2024-07-01"
	p := env.pipeline(t)
	_, completedCh := p.EventBus().Subscribe(event.RunCompletedEventType)
	_, taskCh := p.EventBus().Subscribe(event.ReviewTaskCreatedEventType)
	first, err := p.Extract(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-07-01", first.RunDate)
	assert.Equal(t, 3, first.Members)
	assert.Equal(t, 1, first.SkippedIDs)
	assert.Nil(t, first.ReviewTaskID)
	assert.Equal(t, 2, first.Tables[models.Person{}.TableName()])
	assert.Equal(t, 2, first.Tables[models.Representation{}.TableName()])
	assert.Equal(t, 2, first.Tables[models.RepresentationCharacteristic{}.TableName()])
	assert.Equal(t, 2, first.Tables[models.RepresentationStatus{}.TableName()])
	// The life peerage is not a constituency
	assert.Equal(t, 1, first.Tables[models.Constituency{}.TableName()])
	assert.Empty(t, env.notifier.tasks)
	assert.InDelta(t, 3, testutil.ToFloat64(p.metrics.recordsExtracted.WithLabelValues("member")), 0)

	firstPeople, err := env.db.Metadata().GetPeople(nil)
	require.NoError(t, err)
	firstIDs := make(map[int]string)
	for _, person := range firstPeople {
		firstIDs[person.IDParliament] = person.ID.String()
	}
	mappings, err := env.db.Metadata().GetPersonIDMappings(nil)
	require.NoError(t, err)
	assert.Len(t, mappings, 2)

	// A party change and a new peer on the next day
	env.api.setLordsParty(3898, &membersapi.Party{ID: 6, Name: "Crossbench"})
	env.api.addLordsMember(
		membersapi.Member{
			ID:            999,
			NameDisplayAs: "Lord Newcomer",
			Gender:        "M",
			LatestHouseMembership: &membersapi.HouseMembership{
				House:               membersapi.HouseLords,
				MembershipFrom:      "Hereditary",
				MembershipFromID:    intPtr(5),
				MembershipStartDate: strPtr("2024-07-02T00:00:00"),
			},
		},
		membersapi.MemberHistory{
			ID: 999,
			NameHistory: []membersapi.NameHistory{
				{NameDisplayAs: "Lord Newcomer", StartDate: strPtr("2024-07-02T00:00:00")},
			},
			HouseMembershipHistory: []membersapi.HouseMembership{
				{
					House:               membersapi.HouseLords,
					MembershipFrom:      "Hereditary",
					MembershipFromID:    intPtr(5),
					MembershipStartDate: strPtr("2024-07-02T00:00:00"),
				},
			},
		},
	)
	env.cfg.RunDate = "2024-07-02"
	env.now = env.now.AddDate(0, 0, 1)
	second, err := p.Extract(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, second.Members)
	require.NotNil(t, second.ReviewTaskID)
	assert.Equal(t, 1, second.Diffs[EntityMembers][diff.StatusChanged])
	assert.Equal(t, 1, second.Diffs[EntityMembers][diff.StatusAdded])
	assert.Equal(t, 1, second.Diffs[EntityPeople][diff.StatusAdded])
	assert.Equal(t, 0, second.Diffs[EntityPeople][diff.StatusChanged])

	// Stored ids survive the second run
	secondPeople, err := env.db.Metadata().GetPeople(nil)
	require.NoError(t, err)
	assert.Len(t, secondPeople, 3)
	for _, person := range secondPeople {
		if id, ok := firstIDs[person.IDParliament]; ok {
			assert.Equal(t, id, person.ID.String())
		}
	}

	task, err := env.db.Metadata().GetReviewTask(*second.ReviewTaskID, nil)
	require.NoError(t, err)
	// Changed members give a prev and a curr item
	assert.Len(t, task.Items, 4)
	require.Len(t, task.Statuses, 1)
	assert.Equal(t, review.StatusCreated, task.Statuses[0].Status)
	require.Len(t, task.Allocations, 1)
	assert.Equal(t, "reviewer@example.com", task.Allocations[0].User)
	require.Len(t, env.notifier.tasks, 1)
	assert.Equal(t, *second.ReviewTaskID, env.notifier.tasks[0].ID)

	latest, err := env.db.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-07-02", latest)

	require.Len(t, completedCh, 2)
	for _, runDate := range []string{"2024-07-01", "2024-07-02"} {
		evt := <-completedCh
		completed, ok := evt.Data.(event.RunCompletedEvent)
		require.True(t, ok)
		assert.Equal(t, runDate, completed.RunDate)
	}
	require.Len(t, taskCh, 1)
	created := (<-taskCh).Data.(event.ReviewTaskCreatedEvent)
	assert.Equal(t, *second.ReviewTaskID, created.TaskID)
	assert.Equal(t, 4, created.Items)

	report, err := p.Diff(ctx, "", "", EntityMembers, diff.Options{})
	require.NoError(t, err)
	assert.Equal(t, "2024-07-01", report.PrevRunDate)
	assert.Equal(t, "2024-07-02", report.CurrRunDate)
	assert.Equal(t, 1, report.Counts[diff.StatusChanged])
	assert.Equal(t, 1, report.Counts[diff.StatusAdded])
	assert.Len(t, report.Items, 3)

	report, err = p.Diff(ctx, "", "", EntityHouseMemberships, diff.Options{IncludeUnchanged: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Counts[diff.StatusAdded])
	assert.Equal(t, 2, report.Counts[diff.StatusUnchanged])

	_, err = p.Diff(ctx, "", "", "votes", diff.Options{})
	require.ErrorIs(t, err, ErrUnknownEntity)
	_, err = p.Diff(ctx, "", "2024-07-01", EntityMembers, diff.Options{})
	require.ErrorIs(t, err, ErrNoPreviousRun)
	_, err = p.Diff(ctx, "2023-12-31", "2024-07-02", EntityMembers, diff.Options{})
	require.ErrorIs(t, err, ErrUnknownRun)
}

func TestExtractFailureRecordsRun(t *testing.T) {
	env := newTestEnv(t)
	env.api.histories[172] = membersapi.MemberHistory{
		ID: 172,
		NameHistory: []membersapi.NameHistory{
			{NameDisplayAs: "Ms Diane Abbott", StartDate: strPtr("not a date")},
		},
	}
	env.cfg.RunDate = "2024-07-01"
	p := env.pipeline(t)
	_, failedCh := p.EventBus().Subscribe(event.RunFailedEventType)
	_, err := p.Extract(t.Context())
	var validationErr *extract.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, failedCh, 1)
	failed := (<-failedCh).Data.(event.RunFailedEvent)
	require.ErrorAs(t, failed.Err, &validationErr)

	run, err := env.db.Metadata().GetLatestExtractionRun("", nil)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, run.Status)
	assert.NotEmpty(t, run.Error)
	people, err := env.db.Metadata().GetPeople(nil)
	require.NoError(t, err)
	assert.Empty(t, people)
	latest, err := env.db.LatestRun(t.Context())
	require.NoError(t, err)
	assert.Empty(t, latest)
}

// markerlessBlob archives snapshots but refuses the latest run marker
type markerlessBlob struct {
	blob.BlobStore
}

func (b markerlessBlob) Put(ctx context.Context, key string, value []byte) error {
	if key == types.LatestRunKey {
		return types.ErrBlobStoreUnavailable
	}
	return b.BlobStore.Put(ctx, key, value)
}

func TestExtractKeepsRunWhenLatestRunMarkerFails(t *testing.T) {
	env := newTestEnv(t)
	blobDb := badger.New()
	require.NoError(t, blobDb.Start())
	metadataDb, err := sqlite.New("", nil, nil)
	require.NoError(t, err)
	env.db, err = database.NewWithStores(&database.Config{}, markerlessBlob{blobDb}, metadataDb)
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.db.Close() })
	env.cfg.RunDate = "2024-07-01"
	p := env.pipeline(t)
	_, failedCh := p.EventBus().Subscribe(event.RunFailedEventType)

	res, err := p.Extract(t.Context())
	require.NoError(t, err)
	assert.Empty(t, failedCh)

	run, err := env.db.Metadata().GetLatestExtractionRun("", nil)
	require.NoError(t, err)
	assert.Equal(t, res.RunID, run.ID)
	assert.Equal(t, models.RunStatusSucceeded, run.Status)
	people, err := env.db.Metadata().GetPeople(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, people)
}

func TestParties(t *testing.T) {
	env := newTestEnv(t)
	var pushes atomic.Int32
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/metrics/job/parlmembers") {
			pushes.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(gateway.Close)
	env.cfg.Metrics.PushgatewayURL = gateway.URL
	p := env.pipeline(t)

	from := time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 6, 0, 0, 0, 0, time.UTC)
	count, err := p.Parties(t.Context(), extract.HouseCommons, from, to)
	require.NoError(t, err)
	// 2024-07-05 has no data
	assert.Equal(t, 3, count)
	assert.Equal(t, int32(1), pushes.Load())

	rows, err := env.db.Metadata().GetStateOfTheParties(1, from, to, nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 4, rows[0].PartyID)
	assert.Equal(t, 15, rows[1].PartyID)
	assert.Equal(t, 410, rows[1].Total)
	assert.Equal(t, 411, rows[2].Total)

	_, err = p.Parties(t.Context(), extract.House(3), from, to)
	require.ErrorIs(t, err, extract.ErrInvalidHouse)
	_, err = p.Parties(t.Context(), extract.HouseLords, to, from)
	require.Error(t, err)
}

func TestSetupTracing(t *testing.T) {
	shutdown, err := SetupTracing(t.Context(), config.TracingConfig{})
	require.NoError(t, err)
	require.NoError(t, shutdown(t.Context()))

	shutdown, err = SetupTracing(t.Context(), config.TracingConfig{Exporter: "stdout"})
	require.NoError(t, err)
	require.NoError(t, shutdown(t.Context()))

	_, err = SetupTracing(t.Context(), config.TracingConfig{Exporter: "zipkin"})
	require.Error(t, err)
}

func TestDedupe(t *testing.T) {
	rows := []extract.NameHistoryRecord{
		{ID: 2, NameDisplayAs: "B"},
		{ID: 1, NameDisplayAs: "A"},
		{ID: 2, NameDisplayAs: "B"},
	}
	got := dedupe(rows, nameHistoryKey)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
}
