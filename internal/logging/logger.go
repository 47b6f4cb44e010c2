// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package logging

import (
	"fmt"
	"io"
	"os"

	clog "github.com/charmbracelet/log"
)

// L is the package-level logger. Output goes to stderr so that command
// output on stdout stays scriptable.
var L = clog.NewWithOptions(os.Stderr, clog.Options{
	Level:  clog.WarnLevel,
	Prefix: "keysafe",
})

// SetDebug lowers the level to debug when enabled and restores the default
// warn level otherwise.
func SetDebug(enabled bool) {
	if enabled {
		L.SetLevel(clog.DebugLevel)
		L.SetReportTimestamp(true)
		return
	}
	L.SetLevel(clog.WarnLevel)
}

// SetVerbose shows info messages without enabling debug output.
func SetVerbose(enabled bool) {
	if enabled && L.GetLevel() > clog.InfoLevel {
		L.SetLevel(clog.InfoLevel)
	}
}

// SetOutput redirects the logger, mainly for tests.
func SetOutput(w io.Writer) {
	L.SetOutput(w)
}

// Debugf logs a debug-level formatted message.
func Debugf(format string, v ...interface{}) {
	L.Debug(fmt.Sprintf(format, v...))
}

// Infof logs an info-level formatted message.
func Infof(format string, v ...interface{}) {
	L.Info(fmt.Sprintf(format, v...))
}

// Warnf logs a warning-level formatted message.
func Warnf(format string, v ...interface{}) {
	L.Warn(fmt.Sprintf(format, v...))
}

// Errorf logs an error-level formatted message.
func Errorf(format string, v ...interface{}) {
	L.Error(fmt.Sprintf(format, v...))
}
