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

	"github.com/blinklabs-io/parlmembers/database/plugin"
	"github.com/blinklabs-io/parlmembers/internal/config"
	"github.com/blinklabs-io/parlmembers/internal/pipeline"
	"github.com/spf13/cobra"
)

func listAllPlugins() string {
	var buf strings.Builder
	buf.WriteString("Available plugins:\n")
	for _, pluginType := range []plugin.PluginType{
		plugin.PluginTypeBlob,
		plugin.PluginTypeMetadata,
	} {
		fmt.Fprintf(&buf, "\n%s storage plugins:\n", plugin.PluginTypeName(pluginType))
		for _, p := range plugin.GetPlugins(pluginType) {
			fmt.Fprintf(&buf, "  %s: %s\n", p.Name, p.Description)
		}
	}
	return buf.String()
}

func listRunsRun(ctx context.Context, _ []string, cfg *config.Config) {
	logger := commonRun()
	ctx, stop := signalContext(ctx)
	defer stop()
	runs, err := pipeline.Runs(ctx, cfg, logger)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	for _, runDate := range runs.SnapshotRuns {
		marker := ""
		if runDate == runs.LatestRun {
			marker = " (latest)"
		}
		fmt.Printf("%s%s\n", runDate, marker)
	}
}

func listCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all available plugins",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print(listAllPlugins())
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "runs",
		Short: "List archived extraction runs",
		Run:   configCommand(listRunsRun),
	})
	return cmd
}
