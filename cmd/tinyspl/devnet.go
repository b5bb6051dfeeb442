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

	"github.com/spf13/cobra"
	"github.com/tiny-spl/tinyspl/internal/config"
	"github.com/tiny-spl/tinyspl/internal/devnet"
)

func devnetCommand() *cobra.Command {
	var amount uint64
	var dataDir string
	cmd := &cobra.Command{
		Use:   "devnet",
		Short: "Run create-mint, mint, split, combine and transfer against an in-process tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				slog.Error("no config found in context")
				os.Exit(1)
			}
			logger := commonRun()
			report, err := devnet.Run(
				cmd.Context(),
				devnet.Config{
					Logger:            logger,
					DataDir:           dataDir,
					MintAmount:        amount,
					TreeMaxDepth:      cfg.TreeMaxDepth,
					TreeMaxBufferSize: cfg.TreeMaxBufferSize,
				},
			)
			if err != nil {
				return fmt.Errorf("devnet run failed: %w", err)
			}
			return printJSON(report)
		},
	}
	cmd.Flags().
		Uint64Var(&amount, "amount", devnet.DefaultMintAmount, "amount to mint")
	cmd.Flags().
		StringVar(&dataDir, "data-dir", "", "database directory, in-memory when empty")
	return cmd
}
