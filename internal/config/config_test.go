package config

import (
	"testing"
	"time"
)

func TestGetDurationRequiresUnit(t *testing.T) {
	// A bare number must not be silently scaled; the default wins.
	t.Setenv("SLOT_WIDTH", "30")
	if got := getDuration("SLOT_WIDTH", 30*time.Minute); got != 30*time.Minute {
		t.Fatalf("bare number accepted as %s", got)
	}

	t.Setenv("SLOT_WIDTH", "45m")
	if got := getDuration("SLOT_WIDTH", 30*time.Minute); got != 45*time.Minute {
		t.Fatalf("suffixed duration = %s, want 45m", got)
	}

	t.Setenv("SLOT_WIDTH", "")
	if got := getDuration("SLOT_WIDTH", 30*time.Minute); got != 30*time.Minute {
		t.Fatalf("unset variable = %s, want the default", got)
	}
}
