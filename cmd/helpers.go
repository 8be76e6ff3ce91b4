package cmd

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/webpilot/internal/errors"
	"github.com/user/webpilot/internal/logging"
	"github.com/user/webpilot/internal/tui"
)

// InitLogger creates a configured logger for CLI commands.
// It encapsulates the common logger initialization pattern:
//   - Calculates logDir based on workPath (.webpilot/logs or workPath/.webpilot/logs)
//   - Enables console output only in verbose mode, where the progress UI is off
//   - Enables caller information in debug mode
//
// Returns the configured logger and any error during initialization.
// The caller is responsible for calling logger.Sync() when done.
func InitLogger(workPath string, debug bool, verbose bool) (*logging.Logger, error) {
	logDir := filepath.Join(".webpilot", "logs")
	if workPath != "." && workPath != "" {
		logDir = filepath.Join(workPath, ".webpilot", "logs")
	}

	logCfg := &logging.Config{
		LogDir:         logDir,
		FileLevel:      logging.LevelFromString("info"),
		ConsoleLevel:   logging.LevelFromString("debug"),
		EnableCaller:   debug,
		ConsoleEnabled: verbose,
	}

	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger, nil
}

// appError is satisfied by every error built on the application base
// type, including the taxonomy types that embed it. A direct type
// assertion would miss the embedding types, so callers go through this
// interface instead.
type appError interface {
	GetUserMessage() string
	GetExitCode() errors.ExitCode
}

// HandleCommandError encapsulates the shared error handling pattern in
// CLI commands. Application errors render their user message with
// context and suggestions; anything else propagates for the generic
// Error: line. Returns the original error unchanged so callers can
// chain: return HandleCommandError(...).
func HandleCommandError(err error, progress *tui.SimpleProgress, showProgress bool) error {
	if err == nil {
		return nil
	}

	var app appError
	if stderrors.As(err, &app) {
		if showProgress && progress != nil {
			progress.Error(app.GetUserMessage())
			progress.Failed(nil)
		} else {
			fmt.Fprintf(os.Stderr, "%s\n", app.GetUserMessage())
		}
		return err
	}

	if showProgress && progress != nil {
		progress.Failed(err)
	}
	return err
}

// exitCode maps an error to the process exit code. Application errors
// carry their own code; everything else exits 1.
func exitCode(err error) int {
	var app appError
	if stderrors.As(err, &app) {
		return app.GetExitCode().Int()
	}
	return errors.ExitGeneralError.Int()
}
