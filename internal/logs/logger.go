package logs

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.LevelFieldName = "severity"
	zerolog.MessageFieldName = "message"
	logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// LogJSON émet une ligne de log JSON structurée sur stdout.
// level : "DEBUG", "INFO", "WARN", "ERROR" & "FATAL"
func LogJSON(level, message string, fields map[string]interface{}) {
	var event *zerolog.Event
	switch level {
	case "DEBUG":
		event = logger.Debug()
	case "WARN":
		event = logger.Warn()
	case "ERROR":
		event = logger.Error()
	case "FATAL":
		event = logger.WithLevel(zerolog.FatalLevel)
	default:
		event = logger.Info()
	}
	event.Fields(fields).Msg(message)
}
