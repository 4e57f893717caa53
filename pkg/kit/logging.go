package kit

import (
	"os"

	"go.uber.org/zap"
)

func NewLogger(service string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.InitialFields = map[string]any{"service": service}

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if parsed, err := zap.ParseAtomicLevel(lvl); err == nil {
			cfg.Level = parsed
		}
	}

	l, _ := cfg.Build()
	return l
}
