// Package handlers implements the operations behind the CLI commands:
// running scenario suites, preflight checks, and routing decisions.
// Handlers take decoded config structs, do the work, and return typed
// reports; presentation and exit codes stay in cmd.
package handlers

import (
	"path/filepath"

	"github.com/user/webpilot/internal/config"
	"github.com/user/webpilot/internal/logging"
)

// BaseHandler carries the dependencies every handler needs
type BaseHandler struct {
	Config config.BaseConfig
	Logger *logging.Logger
}

// NewBaseHandler creates a base handler with the given config and logger
func NewBaseHandler(cfg config.BaseConfig, logger *logging.Logger) *BaseHandler {
	return &BaseHandler{
		Config: cfg,
		Logger: logger,
	}
}

// resolvePath anchors a relative path at the handler's work path.
// Absolute paths and the empty string pass through unchanged.
func (h *BaseHandler) resolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(h.Config.WorkPath, path)
}
