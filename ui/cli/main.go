// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the root command, configuration loading and build version
// reporting. The subcommands live in the other files of this package.

package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toeirei/keysafe/buildvars"
	"github.com/toeirei/keysafe/internal/config"
	"github.com/toeirei/keysafe/internal/core"
	"github.com/toeirei/keysafe/internal/db"
	"github.com/toeirei/keysafe/internal/i18n"
	"github.com/toeirei/keysafe/internal/logging"
)

var version = "dev"   // set by the linker
var gitCommit = "dev" // short commit SHA, set at build time
var buildDate = ""    // RFC3339, set at build time

// Exit codes returned by ExitCode.
const (
	ExitOK         = 0
	ExitError      = 1
	ExitTerminated = 2
)

// app carries the state shared by the commands of one root command.
type app struct {
	cfgFile     string
	verbose     int
	showVersion bool
	cfg         config.Config
}

// Execute runs the CLI. The caller maps the error with ExitCode.
func Execute() error {
	return NewRootCmd().Execute()
}

// ExitCode maps an Execute error to the process exit status. A terminated
// authentication session exits with ExitTerminated.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, core.ErrSessionTerminated):
		return ExitTerminated
	default:
		return ExitError
	}
}

func (a *app) setupDefaultServices(cmd *cobra.Command, _ []string) error {
	logging.SetDebug(a.verbose > 1)
	logging.SetVerbose(a.verbose == 1)
	db.SetDebug(a.verbose > 1)

	explicitPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	a.cfg, err = config.LoadConfig[config.Config](cmd, config.Defaults(), explicitPath)
	if errors.As(err, &viper.ConfigFileNotFoundError{}) {
		// First run: persist the defaults so the user has a file to edit.
		if explicitPath == nil && os.Getenv("KEYSAFE_NO_WRITE_CONFIG") == "" {
			if writeErr := config.WriteConfigFile(&a.cfg, false); writeErr != nil {
				logging.Warnf("could not write default config file: %v", writeErr)
			} else {
				logging.Infof("wrote default config to user config path")
			}
		}
	} else if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	a.cfg.Normalize()
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	i18n.Init(a.cfg.Language)
	logging.Debugf("config: database.type=%s language=%s prompt.style=%s", a.cfg.Database.Type, a.cfg.Language, a.cfg.Prompt.Style)
	return nil
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// NewRootCmd builds a fresh command tree. Tests create one per case.
func NewRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "keysafe",
		Short: "Keysafe is a local secrets vault.",
		Long: `Keysafe keeps credentials (title, username, password, URL, notes) in a
tree of folders inside a local database, behind a single master password.

The first command that opens the vault asks you to choose the master
password. Every later session must enter it; three wrong attempts end the
session.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.showVersion {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), compositeVersion())
				os.Exit(0)
			}
			return a.setupDefaultServices(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	d := config.Defaults()
	cmd.PersistentFlags().CountVarP(&a.verbose, "verbose", "v", "Verbose logging (-vv for debug)")
	cmd.PersistentFlags().BoolVarP(&a.showVersion, "version", "V", false, "Print version and exit")
	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file")
	cmd.PersistentFlags().String("database.type", d["database.type"].(string), "Database type (sqlite, postgres, mysql)")
	cmd.PersistentFlags().String("database.dsn", d["database.dsn"].(string), "Database connection string (DSN)")
	cmd.PersistentFlags().String("language", d["language"].(string), `Language ("en", "ja")`)
	cmd.PersistentFlags().String("prompt.style", d["prompt.style"].(string), `Prompt style ("tui", "plain")`)

	cmd.AddCommand(
		a.newInitCmd(),
		a.newPasswdCmd(),
		a.newFolderCmd(),
		a.newItemCmd(),
		a.newGenerateCmd(),
		a.newStrengthCmd(),
		a.newBackupCmd(),
		a.newRestoreCmd(),
		a.newExportKdbxCmd(),
		a.newMaintenanceCmd(),
		newVersionCmd(),
	)
	return cmd
}

func compositeVersion() string {
	v, c, d := resolveBuildVersion(nil)
	out := v
	if c != "" && c != "dev" {
		out += " (" + c + ")"
	}
	if d != "" {
		out += " built: " + d
	}
	return out
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		// The version never needs configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "version: %s\n", v)
			_, _ = fmt.Fprintf(out, "commit: %s\n", c)
			if d != "" {
				_, _ = fmt.Fprintf(out, "built: %s\n", d)
			}
		},
	}
}

// resolveBuildVersion computes the best-available version, commit and build
// date. A nil info reads the running binary's build info.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault(version)
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	if info == nil {
		if local, ok := debug.ReadBuildInfo(); ok {
			info = local
		}
	}

	if info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		if resolvedVersion == "dev" || resolvedVersion == "(devel)" {
			for _, dep := range info.Deps {
				if dep.Path == "github.com/toeirei/keysafe" && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	if resolvedVersion == "dev" && gitCommit != "dev" && gitCommit != "" {
		resolvedVersion = gitCommit
	}
	return resolvedVersion, strings.TrimSpace(resolvedCommit), resolvedDate
}
