package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// chdir switches into dir for the rest of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldCwd, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(oldCwd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
}

func TestFindEnvLocal(t *testing.T) {
	tmpDir := t.TempDir()
	childDir := filepath.Join(tmpDir, "parent", "child")
	if err := os.MkdirAll(childDir, 0755); err != nil {
		t.Fatal(err)
	}
	envPath := filepath.Join(tmpDir, ".env.local")
	if err := os.WriteFile(envPath, []byte("TEST=grandparent"), 0644); err != nil {
		t.Fatal(err)
	}

	chdir(t, childDir)
	result := findEnvLocal()
	// Resolve symlinks for comparison (macOS /var -> /private/var)
	expectedResolved, _ := filepath.EvalSymlinks(envPath)
	resultResolved, _ := filepath.EvalSymlinks(result)
	if resultResolved != expectedResolved {
		t.Errorf("expected %s, got %s", expectedResolved, resultResolved)
	}

	closer := filepath.Join(childDir, ".env.local")
	if err := os.WriteFile(closer, []byte("TEST=child"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := findEnvLocal(); filepath.Base(filepath.Dir(got)) != "child" {
		t.Errorf("expected closest .env.local to win, got %s", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	chdir(t, t.TempDir())

	cfg, err := load(filepath.Join(home, "missing.yaml"), home)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.LogLevel != "info" || cfg.Output != "table" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	want := filepath.Join(home, ".local", "share", "fixq", "fixq.db")
	if cfg.DBPath != want {
		t.Errorf("expected %s, got %s", want, cfg.DBPath)
	}
	if cfg.PrivacyRestricted() {
		t.Error("expected no privacy restriction by default")
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	home := t.TempDir()
	chdir(t, t.TempDir())
	yamlPath := filepath.Join(home, "config.yaml")
	doc := `
db_path: /srv/fixq/yaml.db
log_level: warn
notify_urls: [http://yaml.example.com]
otel_endpoint: http://collector.example.com:4318
privacy:
  useGoogleFonts: true
`
	if err := os.WriteFile(yamlPath, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := load(yamlPath, home)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.DBPath != "/srv/fixq/yaml.db" || cfg.LogLevel != "warn" || cfg.OTelEndpoint != "http://collector.example.com:4318" {
		t.Errorf("expected yaml values, got %+v", cfg)
	}
	if cfg.PrivacyRestricted() {
		t.Error("expected enabled toggle not to restrict")
	}

	t.Setenv("FIXQ_DB_PATH", "/srv/fixq/env.db")
	t.Setenv("FIXQ_NOTIFY_URLS", "http://a.example.com,http://b.example.com")
	t.Setenv("FIXQ_PRIVACY_DISABLE", "useGravatar")
	cfg, err = load(yamlPath, home)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.DBPath != "/srv/fixq/env.db" {
		t.Errorf("expected env db path, got %s", cfg.DBPath)
	}
	if !reflect.DeepEqual(cfg.NotifyURLs, []string{"http://a.example.com", "http://b.example.com"}) {
		t.Errorf("unexpected notify urls %v", cfg.NotifyURLs)
	}
	if !cfg.PrivacyRestricted() {
		t.Error("expected disabled toggle to restrict")
	}
	if got := cfg.DisabledPrivacyToggles(); !reflect.DeepEqual(got, []string{"useGravatar"}) {
		t.Errorf("unexpected disabled toggles %v", got)
	}
}

func TestLoadDBPathFile(t *testing.T) {
	home := t.TempDir()
	chdir(t, t.TempDir())
	secret := filepath.Join(home, "db_path")
	if err := os.WriteFile(secret, []byte("/run/fixq.db\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FIXQ_DB_PATH_FILE", secret)

	cfg, err := load(filepath.Join(home, "missing.yaml"), home)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.DBPath != "/run/fixq.db" {
		t.Errorf("expected path from file, got %q", cfg.DBPath)
	}
}
