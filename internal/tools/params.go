package tools

import (
	"fmt"
	"strconv"
	"time"

	apperrors "github.com/user/webpilot/internal/errors"
)

// stringParam extracts a required string parameter. A wrong type is an
// invalid argument, which retrying cannot fix.
func stringParam(params map[string]interface{}, name string) (string, error) {
	raw, ok := params[name]
	if !ok {
		return "", apperrors.NewTerminalError(apperrors.ReasonInvalidArgument,
			fmt.Sprintf("parameter '%s' is required", name))
	}

	s, ok := raw.(string)
	if !ok {
		return "", apperrors.NewTerminalError(apperrors.ReasonInvalidArgument,
			fmt.Sprintf("parameter '%s' must be a string", name))
	}
	return s, nil
}

// intParam extracts an optional integer parameter, tolerating the
// float64 and string encodings JSON and YAML decoders produce
func intParam(params map[string]interface{}, name string, fallback int) int {
	raw, ok := params[name]
	if !ok {
		return fallback
	}

	switch v := raw.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// durationMsParam extracts an optional duration parameter expressed in
// milliseconds
func durationMsParam(params map[string]interface{}, name string, fallback time.Duration) time.Duration {
	ms := intParam(params, name, int(fallback/time.Millisecond))
	if ms < 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
