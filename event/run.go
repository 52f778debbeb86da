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

package event

import (
	"time"

	"github.com/google/uuid"
)

const (
	RunStartedEventType            = EventType("run.started")
	RunCompletedEventType          = EventType("run.completed")
	RunFailedEventType             = EventType("run.failed")
	ReviewTaskCreatedEventType     = EventType("review.task_created")
	StateOfThePartyLoadedEventType = EventType("parties.loaded")
)

// RunStartedEvent is published when an extraction run has been recorded
type RunStartedEvent struct {
	StartedAt time.Time
	RunDate   string
	RunID     uuid.UUID
}

// RunCompletedEvent is published after the tables of a run have been committed
type RunCompletedEvent struct {
	Tables       map[string]int
	ReviewTaskID *uuid.UUID
	RunDate      string
	Members      int
	RunID        uuid.UUID
}

// RunFailedEvent is published when a run is recorded as failed
type RunFailedEvent struct {
	Err     error
	RunDate string
	RunID   uuid.UUID
}

// ReviewTaskCreatedEvent is published for each stored review task
type ReviewTaskCreatedEvent struct {
	RunDate string
	Items   int
	TaskID  uuid.UUID
}

// StateOfThePartyLoadedEvent is published after a parties load
type StateOfThePartyLoadedEvent struct {
	From  time.Time
	To    time.Time
	House int
	Rows  int
}
