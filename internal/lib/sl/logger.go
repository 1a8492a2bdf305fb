package sl

import (
	"io"
	"log/slog"
)

// New создаёт логгер для окружения env: текстовый с уровнем Debug для local и dev,
// JSON с уровнем Info для prod и неизвестных окружений.
func New(env string, w io.Writer) *slog.Logger {
	switch env {
	case "local", "dev":
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}
