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

package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/parlmembers/diff"
	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Notifier announces a new review task
type Notifier interface {
	Notify(ctx context.Context, task *Task) error
	Close()
}

// Notification is the message published for a review task
type Notification struct {
	CreatedAt time.Time                      `json:"created_at"`
	Summary   map[string]map[diff.Status]int `json:"summary"`
	Reviewer  string                         `json:"reviewer,omitempty"`
	Items     int                            `json:"items"`
	TaskID    uuid.UUID                      `json:"task_id"`
	RunID     uuid.UUID                      `json:"run_id"`
}

func NewNotification(task *Task) Notification {
	n := Notification{
		TaskID:    task.ID,
		RunID:     task.RunID,
		CreatedAt: task.CreatedAt,
		Items:     len(task.Items),
		Summary:   task.Summary(),
	}
	for _, a := range task.Allocations {
		if a.Role == RoleReviewer {
			n.Reviewer = a.User
			break
		}
	}
	return n
}

// KafkaNotifier publishes review notifications to a Kafka topic keyed by
// task id
type KafkaNotifier struct {
	client *kgo.Client
	logger *slog.Logger
	topic  string
}

type KafkaNotifierOptionFunc func(*KafkaNotifier)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) KafkaNotifierOptionFunc {
	return func(k *KafkaNotifier) {
		k.logger = logger
	}
}

func NewKafkaNotifier(
	brokers []string,
	topic string,
	opts ...KafkaNotifierOptionFunc,
) (*KafkaNotifier, error) {
	if len(brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}
	if topic == "" {
		return nil, errors.New("no kafka topic configured")
	}
	k := &KafkaNotifier{
		topic: topic,
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.logger == nil {
		k.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ClientID("parlmembers"),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	k.client = client
	return k, nil
}

func (k *KafkaNotifier) Notify(ctx context.Context, task *Task) error {
	value, err := json.Marshal(NewNotification(task))
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	record := &kgo.Record{
		Key:   []byte(task.ID.String()),
		Value: value,
	}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("publish review task %s: %w", task.ID, err)
	}
	k.logger.Info(
		"published review task",
		"task_id", task.ID.String(),
		"topic", k.topic,
		"items", len(task.Items),
	)
	return nil
}

func (k *KafkaNotifier) Close() {
	k.client.Close()
}
