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
	"encoding/json"
	"log/slog"
	"os"

	"github.com/blinklabs-io/parlmembers/internal/config"
	"github.com/blinklabs-io/parlmembers/internal/pipeline"
	"github.com/spf13/cobra"
)

var extractFlags = struct {
	runDate string
}{}

func extractRun(ctx context.Context, _ []string, cfg *config.Config) {
	logger := commonRun()
	if extractFlags.runDate != "" {
		cfg.RunDate = extractFlags.runDate
		if err := cfg.Validate(); err != nil {
			slog.Error(err.Error())
			os.Exit(1)
		}
	}
	ctx, stop := signalContext(ctx)
	defer stop()
	res, err := pipeline.Extract(ctx, cfg, logger)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	if err := writeJSON(res); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func extractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Fetch members and histories, archive them and rebuild the relational tables",
		Run:   configCommand(extractRun),
	}
	cmd.Flags().
		StringVar(&extractFlags.runDate, "run-date", "", "run date (YYYY-MM-DD) for the snapshot, defaults to today")
	return cmd
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
