// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the command-line interface for Keysafe using Cobra.
// It wires configuration, logging and localization, opens the vault and
// delegates every operation to internal/core. CLI code stays thin.
package cli
