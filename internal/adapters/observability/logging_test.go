package observability_test

import (
	"testing"

	"github.com/rs/zerolog"

	"villa_rates/internal/adapters/observability"
)

func TestNewLoggerLevel(t *testing.T) {
	if l := observability.NewLogger("prod", "warn"); l.GetLevel() != zerolog.WarnLevel {
		t.Fatalf("level: %v", l.GetLevel())
	}
	if l := observability.NewLogger("dev", "nonsense"); l.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("level: %v", l.GetLevel())
	}
}
