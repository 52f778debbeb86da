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
	"time"

	"github.com/blinklabs-io/parlmembers/extract"
	"github.com/blinklabs-io/parlmembers/internal/config"
	"github.com/blinklabs-io/parlmembers/internal/pipeline"
	"github.com/spf13/cobra"
)

var partiesFlags = struct {
	from  string
	to    string
	house int
}{}

func partiesRun(ctx context.Context, _ []string, cfg *config.Config) {
	logger := commonRun()
	house, err := extract.ParseHouse(partiesFlags.house)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	from, err := time.Parse(time.DateOnly, partiesFlags.from)
	if err != nil {
		slog.Error(fmt.Sprintf("invalid --from date: %s", err))
		os.Exit(1)
	}
	to := from
	if partiesFlags.to != "" {
		to, err = time.Parse(time.DateOnly, partiesFlags.to)
		if err != nil {
			slog.Error(fmt.Sprintf("invalid --to date: %s", err))
			os.Exit(1)
		}
	}
	ctx, stop := signalContext(ctx)
	defer stop()
	count, err := pipeline.Parties(ctx, cfg, logger, house, from, to)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	logger.Info(
		fmt.Sprintf("loaded %d state of the party rows", count),
		"component", programName,
	)
}

func partiesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parties",
		Short: "Load the state of the parties for a house over a date range",
		Run:   configCommand(partiesRun),
	}
	cmd.Flags().
		IntVar(&partiesFlags.house, "house", int(extract.HouseCommons), "house (1 = Commons, 2 = Lords)")
	cmd.Flags().
		StringVar(&partiesFlags.from, "from", time.Now().Format(time.DateOnly), "first date (YYYY-MM-DD)")
	cmd.Flags().
		StringVar(&partiesFlags.to, "to", "", "last date (YYYY-MM-DD), defaults to --from")
	return cmd
}
