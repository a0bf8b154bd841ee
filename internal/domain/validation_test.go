package domain

import "testing"

func TestValidateSettingType(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		wantErr bool
	}{
		{name: "private", typ: "private", wantErr: false},
		{name: "blog", typ: "blog", wantErr: false},
		{name: "core", typ: "core", wantErr: false},
		{name: "empty", typ: "", wantErr: true},
		{name: "uppercase", typ: "PRIVATE", wantErr: true},
		{name: "unknown", typ: "secret", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSettingType(tt.typ)
			if tt.wantErr && err == nil {
				t.Error("ValidateSettingType() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateSettingType() unexpected error: %v", err)
			}
		})
	}
}

func TestValidateClientStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		wantErr bool
	}{
		{name: "enabled", status: "enabled", wantErr: false},
		{name: "development", status: "development", wantErr: false},
		{name: "disabled", status: "disabled", wantErr: false},
		{name: "empty", status: "", wantErr: true},
		{name: "mixed case", status: "Enabled", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateClientStatus(tt.status)
			if tt.wantErr && err == nil {
				t.Error("ValidateClientStatus() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateClientStatus() unexpected error: %v", err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail(OwnerEmail); err != nil {
		t.Errorf("expected owner email to be valid, got %v", err)
	}
	for _, bad := range []string{"", "ghost", "Ghost <ghost@ghost.org>"} {
		if err := ValidateEmail(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestIsValidClientSecret(t *testing.T) {
	if IsValidClientSecret(ClientPlaceholderSecret) {
		t.Error("placeholder secret should not be valid")
	}
	if IsValidClientSecret("") {
		t.Error("empty secret should not be valid")
	}
	if !IsValidClientSecret("abc") {
		t.Error("expected abc to be a valid secret")
	}
}

func TestNewClientSecret(t *testing.T) {
	a := NewClientSecret()
	b := NewClientSecret()
	if len(a) != 12 {
		t.Errorf("expected 12 character secret, got %q", a)
	}
	if a == b {
		t.Errorf("expected distinct secrets, got %q twice", a)
	}
	if !IsValidClientSecret(a) {
		t.Errorf("generated secret %q should be valid", a)
	}
}
