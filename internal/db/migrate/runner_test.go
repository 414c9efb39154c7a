package migrate

import (
	"strings"
	"testing"
)

func TestRunEmptyDSN(t *testing.T) {
	err := Run("", "up")
	if err == nil {
		t.Fatal("Run with empty DSN should return error")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("error should mention DATABASE_URL, got %q", err.Error())
	}
}

func TestRunInvalidDirection(t *testing.T) {
	for _, direction := range []string{"", "sideways", "UP", "Down"} {
		t.Run(direction, func(t *testing.T) {
			if err := Run("postgres://localhost/test", direction); err == nil {
				t.Errorf("Run with direction %q should return error", direction)
			}
		})
	}
}

func TestRunInvalidDSN(t *testing.T) {
	if err := Run("not-a-dsn", "up"); err == nil {
		t.Error("Run with malformed DSN should return error")
	}
}
