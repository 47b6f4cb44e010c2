// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for Keysafe.
//
// Usage:
//
//	go run . [flags]
//	./keysafe [flags]
//
// This launches the Keysafe CLI. See --help for options.
package main

import (
	"os"

	"github.com/toeirei/keysafe/internal/logging"
	"github.com/toeirei/keysafe/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		logging.Errorf("%v", err)
		os.Exit(cli.ExitCode(err))
	}
}
