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
	"log/slog"
	"os"

	"github.com/blinklabs-io/numbat/internal/config"
	"github.com/blinklabs-io/numbat/internal/node"
	"github.com/spf13/cobra"
)

func serveRun(cmd *cobra.Command, _ []string, cfg *config.Config) {
	applyServeFlags(cmd, cfg)
	logger := commonRun()

	// Run node
	if err := node.Run(cfg, logger); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// applyServeFlags overrides config values with flags given explicitly
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Lookup("dev") == nil {
		return
	}
	if flags.Changed("dev") {
		cfg.DevMode, _ = flags.GetBool("dev")
	}
	if flags.Changed("genesis") {
		cfg.GenesisFile, _ = flags.GetString("genesis")
	}
	if flags.Changed("data-dir") {
		cfg.DatabasePath, _ = flags.GetString("data-dir")
	}
	if flags.Changed("api-port") {
		cfg.ApiPort, _ = flags.GetUint("api-port")
	}
}

func serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run as a node",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				slog.Error("no config found in context")
				os.Exit(1)
			}
			serveRun(cmd, args, cfg)
		},
	}
	cmd.Flags().Bool("dev", false, "enable development endpoints")
	cmd.Flags().String("genesis", "", "path to genesis file (default is the built-in devnet)")
	cmd.Flags().String("data-dir", "", "database directory, empty for in-memory")
	cmd.Flags().Uint("api-port", 0, "REST API port, 0 to disable")
	return cmd
}
