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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/blinklabs-io/parlmembers/diff"
	"github.com/blinklabs-io/parlmembers/internal/config"
	"github.com/blinklabs-io/parlmembers/internal/pipeline"
	"github.com/spf13/cobra"
)

var diffFlags = struct {
	prev             string
	curr             string
	entity           string
	includeUnchanged bool
}{}

func diffRun(ctx context.Context, _ []string, cfg *config.Config) {
	logger := commonRun()
	ctx, stop := signalContext(ctx)
	defer stop()
	report, err := pipeline.Diff(
		ctx,
		cfg,
		logger,
		diffFlags.prev,
		diffFlags.curr,
		diffFlags.entity,
		diff.Options{IncludeUnchanged: diffFlags.includeUnchanged},
	)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	if err := writeJSON(report); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func diffCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare an entity between two archived runs",
		Run:   configCommand(diffRun),
	}
	cmd.Flags().
		StringVar(&diffFlags.prev, "prev", "", "previous run date, defaults to the run before --curr")
	cmd.Flags().
		StringVar(&diffFlags.curr, "curr", "", "current run date, defaults to the latest run")
	cmd.Flags().
		StringVar(
			&diffFlags.entity,
			"entity",
			pipeline.EntityMembers,
			fmt.Sprintf("entity to compare (%s)", strings.Join(pipeline.DiffEntities(), ", ")),
		)
	cmd.Flags().
		BoolVar(&diffFlags.includeUnchanged, "include-unchanged", false, "include unchanged rows in the report")
	return cmd
}
