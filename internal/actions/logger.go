package actions

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Running reports whether the process runs inside a GitHub Actions job.
func Running() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

// NewLogger returns a logger that prints log levels as workflow commands
// (::debug::, ::warning::, ::error::) when githubActions is set. GitHub only
// shows debug messages when step debugging is enabled, so the level is
// always debug in that mode. Otherwise it is a plain console logger.
func NewLogger(w io.Writer, level zerolog.Level, githubActions bool) zerolog.Logger {
	if githubActions {
		writer := zerolog.ConsoleWriter{
			Out:         w,
			NoColor:     true,
			PartsOrder:  []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
			FormatLevel: formatWorkflowCommand,
		}

		return zerolog.New(writer).Level(zerolog.DebugLevel)
	}

	writer := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func formatWorkflowCommand(i interface{}) string {
	level, _ := i.(string)
	switch level {
	case zerolog.LevelTraceValue, zerolog.LevelDebugValue:
		return "::debug::"
	case zerolog.LevelWarnValue:
		return "::warning::"
	case zerolog.LevelErrorValue, zerolog.LevelFatalValue, zerolog.LevelPanicValue:
		return "::error::"
	default:
		return ""
	}
}
