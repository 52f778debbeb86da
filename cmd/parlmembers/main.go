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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/blinklabs-io/parlmembers/database/plugin"
	"github.com/blinklabs-io/parlmembers/internal/config"
	"github.com/blinklabs-io/parlmembers/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

const (
	programName = "parlmembers"
)

func slogPrintf(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...),
		"component", programName,
	)
}

var (
	globalFlags = struct {
		debug bool
	}{}
	configFile string
)

func commonRun() *slog.Logger {
	logLevel := slog.LevelInfo
	addSource := false
	if globalFlags.debug {
		logLevel = slog.LevelDebug
		addSource = true
	}
	// Logs go to stderr so command output on stdout stays parseable
	logger := slog.New(
		slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			AddSource: addSource,
			Level:     logLevel,
		}),
	)
	slog.SetDefault(logger)
	_, err := maxprocs.Set(maxprocs.Logger(slogPrintf))
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	logger.Info(
		"version: "+version.GetVersionString(),
		"component", programName,
	)
	return logger
}

// signalContext cancels on SIGINT or SIGTERM
func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}

// configCommand wraps a command run func with config lookup from the context
func configCommand(
	run func(context.Context, []string, *config.Config),
) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		cfg := config.FromContext(cmd.Context())
		if cfg == nil {
			slog.Error("no config found in context")
			os.Exit(1)
		}
		run(cmd.Context(), args, cfg)
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:          programName,
		Short:        "Extract UK Parliament member data into relational tables",
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "path to config file")
	rootCmd.PersistentFlags().
		StringP("blob", "b", config.DefaultBlobPlugin, "blob store plugin to use, 'list' to show available")
	rootCmd.PersistentFlags().
		StringP("metadata", "m", config.DefaultMetadataPlugin, "metadata store plugin to use, 'list' to show available")

	if err := plugin.PopulateCmdlineOptions(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Error adding plugin flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		blobPlugin, _ := cmd.Root().PersistentFlags().GetString("blob")
		metadataPlugin, _ := cmd.Root().PersistentFlags().GetString("metadata")

		// Handle plugin listing before config loading
		for _, c := range []*config.Config{
			{BlobPlugin: blobPlugin},
			{MetadataPlugin: metadataPlugin},
		} {
			if err := c.ListPlugins(os.Stdout); err != nil &&
				!errors.Is(err, config.ErrPluginListRequested) {
				return err
			}
		}
		if blobPlugin == "list" || metadataPlugin == "list" {
			os.Exit(0)
		}

		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Override config with command line flags
		if blobPlugin != config.DefaultBlobPlugin {
			cfg.BlobPlugin = blobPlugin
		}
		if metadataPlugin != config.DefaultMetadataPlugin {
			cfg.MetadataPlugin = metadataPlugin
		}

		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	}

	// Subcommands
	rootCmd.AddCommand(extractCommand())
	rootCmd.AddCommand(partiesCommand())
	rootCmd.AddCommand(diffCommand())
	rootCmd.AddCommand(listCommand())
	rootCmd.AddCommand(versionCommand())

	if err := rootCmd.Execute(); err != nil {
		// cobra has already displayed the error
		os.Exit(1)
	}
}
