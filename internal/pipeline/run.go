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
	"fmt"
	"log/slog"
	"time"

	"github.com/blinklabs-io/parlmembers/diff"
	"github.com/blinklabs-io/parlmembers/extract"
	"github.com/blinklabs-io/parlmembers/internal/config"
	"github.com/prometheus/client_golang/prometheus"
)

// withPipeline sets up tracing, metrics and a pipeline for a single command
func withPipeline(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	fn func(*Pipeline) error,
) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "pipeline")
	shutdownTracing, err := SetupTracing(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("failed to flush traces", "component", "pipeline", "error", err)
		}
	}()
	p, err := New(
		cfg,
		WithLogger(logger),
		WithPromRegistry(prometheus.NewRegistry()),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			logger.Error("failed to close pipeline", "component", "pipeline", "error", err)
		}
	}()
	return fn(p)
}

// Extract performs one extraction run with the given config
func Extract(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (*ExtractResult, error) {
	var ret *ExtractResult
	err := withPipeline(ctx, cfg, logger, func(p *Pipeline) error {
		var err error
		ret, err = p.Extract(ctx)
		return err
	})
	return ret, err
}

// Parties loads the state of the parties of a house over a date range
func Parties(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	house extract.House,
	from time.Time,
	to time.Time,
) (int, error) {
	var ret int
	err := withPipeline(ctx, cfg, logger, func(p *Pipeline) error {
		var err error
		ret, err = p.Parties(ctx, house, from, to)
		return err
	})
	return ret, err
}

// Diff compares one entity between two archived runs
func Diff(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	prevRunDate string,
	currRunDate string,
	entity string,
	opts diff.Options,
) (*DiffReport, error) {
	var ret *DiffReport
	err := withPipeline(ctx, cfg, logger, func(p *Pipeline) error {
		var err error
		ret, err = p.Diff(ctx, prevRunDate, currRunDate, entity, opts)
		return err
	})
	return ret, err
}

// RunSummary lists archived runs and the last extraction run
type RunSummary struct {
	LatestRun    string
	SnapshotRuns []string
}

// Runs reports the archived snapshot runs
func Runs(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (*RunSummary, error) {
	ret := &RunSummary{}
	err := withPipeline(ctx, cfg, logger, func(p *Pipeline) error {
		var err error
		ret.SnapshotRuns, err = p.Database().SnapshotRuns(ctx)
		if err != nil {
			return err
		}
		ret.LatestRun, err = p.Database().LatestRun(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}
