package settings

import (
	"strings"
	"testing"

	"github.com/lherron/fixq/internal/domain"
)

func TestDefaultsParse(t *testing.T) {
	defaults, err := Defaults()
	if err != nil {
		t.Fatalf("Defaults failed: %v", err)
	}
	if len(defaults) == 0 {
		t.Fatal("expected embedded defaults")
	}

	for i := 1; i < len(defaults); i++ {
		prev, cur := defaults[i-1], defaults[i]
		if prev.Type > cur.Type || (prev.Type == cur.Type && prev.Key >= cur.Key) {
			t.Errorf("defaults out of order at %d: %s/%s before %s/%s", i, prev.Type, prev.Key, cur.Type, cur.Key)
		}
	}
}

func TestLookupKnownKeys(t *testing.T) {
	tests := []struct {
		key string
		typ domain.SettingType
	}{
		{domain.SettingGhostFoot, domain.SettingTypeBlog},
		{domain.SettingIsPrivate, domain.SettingTypePrivate},
		{domain.SettingPassword, domain.SettingTypePrivate},
		{domain.SettingDatabaseVersion, domain.SettingTypeCore},
	}
	for _, tt := range tests {
		d, ok := Lookup(tt.key)
		if !ok {
			t.Errorf("expected default for %q", tt.key)
			continue
		}
		if d.Type != tt.typ {
			t.Errorf("expected %q to have type %q, got %q", tt.key, tt.typ, d.Type)
		}
	}

	if _, ok := Lookup("doesNotExist"); ok {
		t.Error("expected unknown key to be absent")
	}
}

func TestParseRejectsDuplicates(t *testing.T) {
	_, err := parse([]byte("blog:\n  title: a\ncore:\n  title: b\n"))
	if err == nil || !strings.Contains(err.Error(), "declared under both") {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
}

func TestParseRejectsUnknownType(t *testing.T) {
	if _, err := parse([]byte("weird:\n  title: a\n")); err == nil {
		t.Fatal("expected error for unknown setting type")
	}
}
