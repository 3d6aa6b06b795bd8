package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// TraceLevel sits one step below Debug. Every project notification is
// logged at this level.
const TraceLevel = zapcore.Level(-2)

// LevelNames lists the accepted --log-level and logging.level values.
var LevelNames = []string{"trace", "debug", "info", "warn", "error"}

// LevelFromString parses a level name, ignoring case and surrounding space.
// Unknown names return InfoLevel and an error.
func LevelFromString(level string) (zapcore.Level, error) {
	name := strings.ToLower(strings.TrimSpace(level))
	if name == "trace" {
		return TraceLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("unknown level %q (want one of %s)", level, strings.Join(LevelNames, ", "))
	}
	return l, nil
}
