package cli

import (
	"os"
	"testing"

	"github.com/ardnew/nml/log"
)

func TestScanBool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		flag     string
		value    string
		assigned bool
		want     bool
		wantOK   bool
	}{
		{"bare", "--log-pretty", "", false, true, true},
		{"negated", "--no-log-pretty", "", false, false, true},
		{"assigned_false", "--log-pretty", "false", true, false, true},
		{"negated_assigned_false", "--no-log-pretty", "false", true, true, true},
		{"invalid", "--log-pretty", "maybe", true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := scanBool(tt.flag, tt.value, tt.assigned)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("scanBool(%q, %q, %v) = %v, %v, want %v, %v",
					tt.flag, tt.value, tt.assigned, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLogConfig_Scan(t *testing.T) {
	cfg := logConfig{Level: "info", Format: "text", Pretty: true}

	cfg.scan([]string{
		"fmt", "--log-level", "debug", "--no-log-pretty",
		"--log-caller=true", "--", "--log-level=error",
	})

	if cfg.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Level)
	}

	if cfg.Pretty {
		t.Error("Pretty = true, want false")
	}

	if !cfg.Caller {
		t.Error("Caller = false, want true")
	}

	// scan configures the shared default logger.
	log.Config(log.WithDefaults(os.Stderr))
}
