// Package logging wires a single hclog.Logger through every lal component,
// following the same pattern as the teacher's internal/config.ParseAndValidate:
// -v/-vv/-vvv flags and an environment variable both tune the level, with the
// flag taking precedence.
package logging

import (
	"os"

	"github.com/google/uuid"
	hclog "github.com/hashicorp/go-hclog"
)

// EnvLogLevel is the environment variable lal reads for its default log level.
const EnvLogLevel = "LAL_LOG_LEVEL"

// New builds the root logger. verbosity is the count of -v flags seen (0-3).
func New(verbosity int) hclog.Logger {
	level := hclog.Warn
	if v := os.Getenv(EnvLogLevel); v != "" {
		if parsed := hclog.LevelFromString(v); parsed != hclog.NoLevel {
			level = parsed
		}
	}
	switch {
	case verbosity >= 3:
		level = hclog.Trace
	case verbosity == 2:
		level = hclog.Debug
	case verbosity == 1:
		level = hclog.Info
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:            "lal",
		Level:           level,
		Output:          os.Stderr,
		IncludeLocation: false,
	})
	return logger.With("invocation", newInvocationID())
}

// newInvocationID returns a short id used to correlate the log lines of a
// single lal invocation, mirroring the teacher's per-run chrometracing span id.
func newInvocationID() string {
	return uuid.New().String()[:8]
}

// InvocationID recovers the id stamped by New from any logger derived from
// it (via With/Named), for call sites that need to embed it outside a log
// line, e.g. DockerRun's print-only comment.
func InvocationID(logger hclog.Logger) string {
	args := logger.ImpliedArgs()
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok && key == "invocation" {
			if id, ok := args[i+1].(string); ok {
				return id
			}
		}
	}
	return ""
}
