package logger

import (
	"log/slog"
	"os"
)

// New returns the application logger. JSON output so log aggregation stays
// structured; handlers attach request-scoped attributes themselves.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
