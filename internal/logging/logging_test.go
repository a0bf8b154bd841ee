package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func init() {
	color.NoColor = true
}

func TestWriterLevels(t *testing.T) {
	tests := []struct {
		name     string
		level    Level
		wantInfo bool
		wantWarn bool
	}{
		{"info shows both", LevelInfo, true, true},
		{"warn hides info", LevelWarn, false, true},
		{"silent hides both", LevelSilent, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := New(&buf, tt.level)
			w.Info("added %d records", 3)
			w.Warn("nothing to do for %s", "tags")

			out := buf.String()
			if got := strings.Contains(out, "added 3 records"); got != tt.wantInfo {
				t.Errorf("info present = %v, expected %v (output %q)", got, tt.wantInfo, out)
			}
			if got := strings.Contains(out, "nothing to do for tags"); got != tt.wantWarn {
				t.Errorf("warn present = %v, expected %v (output %q)", got, tt.wantWarn, out)
			}
		})
	}
}

func TestWriterPrefixesLevel(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, LevelInfo)
	w.Warn("skipped")

	if got := buf.String(); got != "warn skipped\n" {
		t.Errorf("expected %q, got %q", "warn skipped\n", got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"":        LevelInfo,
		"info":    LevelInfo,
		"WARN":    LevelWarn,
		"warning": LevelWarn,
		"silent":  LevelSilent,
		"bogus":   LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, expected %v", in, got, want)
		}
	}
}
