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
	"errors"
	"fmt"
	"time"

	"github.com/blinklabs-io/parlmembers/database"
	"github.com/blinklabs-io/parlmembers/event"
	"github.com/blinklabs-io/parlmembers/extract"
	"github.com/blinklabs-io/parlmembers/membersapi"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Parties fetches the state of the parties of a house for each day between
// from and to inclusive and upserts it. Days without data are skipped. It
// returns the number of rows written.
func (p *Pipeline) Parties(
	ctx context.Context,
	house extract.House,
	from time.Time,
	to time.Time,
) (int, error) {
	if _, err := extract.ParseHouse(int(house)); err != nil {
		return 0, err
	}
	if to.Before(from) {
		return 0, fmt.Errorf(
			"end date %s is before start date %s",
			to.Format(time.DateOnly),
			from.Format(time.DateOnly),
		)
	}
	ctx, span := p.tracer.Start(
		ctx,
		"pipeline.Parties",
		trace.WithAttributes(
			attribute.String("house", house.String()),
			attribute.String("from", from.Format(time.DateOnly)),
			attribute.String("to", to.Format(time.DateOnly)),
		),
	)
	defer span.End()
	start := p.now()
	var rows []extract.StateOfTheParty
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		res, err := p.client.StateOfTheParties(ctx, int(house), day)
		if err != nil {
			if errors.Is(err, membersapi.ErrNoData) {
				p.logger.Warn(
					"no state of the parties data, skipping",
					"component", "pipeline",
					"house", house.String(),
					"date", day.Format(time.DateOnly),
				)
				continue
			}
			return 0, err
		}
		dayRows, err := extract.StateOfTheParties(res, day, house)
		if err != nil {
			return 0, err
		}
		rows = append(rows, dayRows...)
	}
	p.metrics.recordsExtracted.WithLabelValues("state_of_the_party").Add(float64(len(rows)))
	if err := p.db.SaveStateOfTheParties(ctx, database.StateOfThePartyModels(rows)); err != nil {
		return 0, fmt.Errorf("save state of the parties: %w", err)
	}
	p.metrics.rowsWritten.WithLabelValues("state_of_the_parties").Add(float64(len(rows)))
	p.metrics.runDuration.Set(p.now().Sub(start).Seconds())
	if err := p.pushMetrics(ctx); err != nil {
		p.logger.Warn("failed to push metrics", "component", "pipeline", "error", err)
	}
	p.logger.Info(
		"saved state of the parties",
		"component", "pipeline",
		"house", house.String(),
		"rows", len(rows),
	)
	p.publish(event.StateOfThePartyLoadedEventType, event.StateOfThePartyLoadedEvent{
		House: int(house),
		From:  from,
		To:    to,
		Rows:  len(rows),
	})
	return len(rows), nil
}
