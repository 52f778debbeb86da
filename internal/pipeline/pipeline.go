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

// Package pipeline wires the extraction, normalization, relational build
// and review steps into the runs exposed by the CLI.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/parlmembers/database"
	"github.com/blinklabs-io/parlmembers/event"
	"github.com/blinklabs-io/parlmembers/internal/config"
	"github.com/blinklabs-io/parlmembers/internal/version"
	"github.com/blinklabs-io/parlmembers/membersapi"
	"github.com/blinklabs-io/parlmembers/reference"
	"github.com/blinklabs-io/parlmembers/review"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type Pipeline struct {
	cfg          *config.Config
	logger       *slog.Logger
	promRegistry prometheus.Registerer
	promGatherer prometheus.Gatherer
	metrics      pipelineMetrics
	eventBus     *event.EventBus
	db           *database.Database
	client       *membersapi.Client
	notifier     review.Notifier
	ref          *reference.Data
	tracer       trace.Tracer
	now          func() time.Time
	ownsDb       bool
	ownsEventBus bool
}

type PipelineOptionFunc func(*Pipeline)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) PipelineOptionFunc {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithPromRegistry specifies the registry for metrics. Metrics are pushed
// to the configured Pushgateway from this registry.
func WithPromRegistry(registry *prometheus.Registry) PipelineOptionFunc {
	return func(p *Pipeline) {
		if registry == nil {
			return
		}
		p.promRegistry = registry
		p.promGatherer = registry
	}
}

// WithEventBus specifies the bus that run events are published on
func WithEventBus(eventBus *event.EventBus) PipelineOptionFunc {
	return func(p *Pipeline) {
		p.eventBus = eventBus
	}
}

// WithDatabase uses an already opened database instead of opening one from
// the config
func WithDatabase(db *database.Database) PipelineOptionFunc {
	return func(p *Pipeline) {
		p.db = db
	}
}

// WithClient uses the given Members API client
func WithClient(client *membersapi.Client) PipelineOptionFunc {
	return func(p *Pipeline) {
		p.client = client
	}
}

// WithNotifier specifies where new review tasks are announced
func WithNotifier(notifier review.Notifier) PipelineOptionFunc {
	return func(p *Pipeline) {
		p.notifier = notifier
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) PipelineOptionFunc {
	return func(p *Pipeline) {
		p.now = now
	}
}

// New validates the config and sets up the database, API client and
// notifier that were not given as options
func New(cfg *config.Config, opts ...PipelineOptionFunc) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("no config provided")
	}
	p := &Pipeline{
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		p.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	p.metrics.init(p.promRegistry)
	if p.eventBus == nil {
		p.eventBus = event.NewEventBus(p.promRegistry, p.logger)
		p.ownsEventBus = true
	}
	p.tracer = otel.Tracer(tracerName)
	ref, err := cfg.ReferenceData()
	if err != nil {
		return nil, err
	}
	p.ref = ref
	if p.db == nil {
		if err := p.openDatabase(); err != nil {
			return nil, err
		}
	}
	if p.client == nil {
		userAgent := cfg.API.UserAgent
		if userAgent == "" || userAgent == membersapi.DefaultUserAgent {
			userAgent = version.UserAgent()
		}
		p.client = membersapi.NewClient(
			cfg.API.BaseURL,
			membersapi.WithLogger(p.logger),
			membersapi.WithPromRegistry(p.promRegistry),
			membersapi.WithHeaders(cfg.API.Headers),
			membersapi.WithUserAgent(userAgent),
			membersapi.WithRetryMax(cfg.API.RetryMax),
			membersapi.WithBackoffFactor(cfg.API.BackoffFactor),
			membersapi.WithTimeout(cfg.API.Timeout),
		)
	}
	if p.notifier == nil && len(cfg.Review.KafkaBrokers) > 0 {
		notifier, err := review.NewKafkaNotifier(
			cfg.Review.KafkaBrokers,
			cfg.Review.KafkaTopic,
			review.WithLogger(p.logger),
		)
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("failed to create review notifier: %w", err)
		}
		p.notifier = notifier
	}
	return p, nil
}

func (p *Pipeline) openDatabase() error {
	db, err := database.New(&database.Config{
		Logger:           p.logger,
		PromRegistry:     p.promRegistry,
		BlobPlugin:       p.cfg.BlobPlugin,
		MetadataPlugin:   p.cfg.MetadataPlugin,
		DataDir:          p.cfg.DataDir,
		EncryptSnapshots: p.cfg.EncryptSnapshots,
	})
	if db == nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	p.db = db
	p.ownsDb = true
	if err != nil {
		var runErr database.LatestRunError
		if !errors.As(err, &runErr) {
			_ = db.Close()
			return fmt.Errorf("failed to open database: %w", err)
		}
		// The next successful run writes both stores again
		p.logger.Warn(
			"snapshot archive and entity tables disagree on the latest run",
			"component", "pipeline",
			"error", err,
		)
	}
	return nil
}

// Database returns the database used by the pipeline
func (p *Pipeline) Database() *database.Database {
	return p.db
}

// EventBus returns the bus that run events are published on
func (p *Pipeline) EventBus() *event.EventBus {
	return p.eventBus
}

func (p *Pipeline) publish(eventType event.EventType, data any) {
	p.eventBus.Publish(eventType, event.NewEvent(eventType, data))
}

// Close releases the API client, notifier and any database or event bus
// created by New
func (p *Pipeline) Close() error {
	if p.ownsEventBus {
		p.eventBus.Stop()
	}
	if p.client != nil {
		p.client.Close()
	}
	if p.notifier != nil {
		p.notifier.Close()
	}
	if p.ownsDb && p.db != nil {
		return p.db.Close()
	}
	return nil
}
