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
	"fmt"
	"log/slog"
	"os"

	"github.com/blinklabs-io/numbat/config/genesis"
	"github.com/spf13/cobra"
)

func genesisCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genesis",
		Short: "Inspect genesis files",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "devnet",
			Short: "Print the built-in devnet genesis",
			Run: func(cmd *cobra.Command, args []string) {
				g, err := genesis.Devnet()
				if err != nil {
					slog.Error(err.Error())
					os.Exit(1)
				}
				fmt.Print(string(g.Raw()))
			},
		},
		&cobra.Command{
			Use:   "check <file>",
			Short: "Validate a genesis file and print its hash",
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				g, err := genesis.NewGenesisFromFile(args[0])
				if err != nil {
					slog.Error(err.Error())
					os.Exit(1)
				}
				fmt.Printf("network: %s\nhash: %s\n", g.Network, g.Hash().Hex())
			},
		},
	)
	return cmd
}
