package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitlens.toml")
	content := `
[blame]
ignoreWhitespace = true

[advanced.caching]
enabled = false

[advanced.blame]
delayAfterEdit = 2000
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}

	if got := values[SettingBlameIgnoreWhitespace]; got != true {
		t.Errorf("%s = %v, want true", SettingBlameIgnoreWhitespace, got)
	}
	if got := values[SettingCachingEnabled]; got != false {
		t.Errorf("%s = %v, want false", SettingCachingEnabled, got)
	}
	if got := values[SettingBlameDelayAfterEdit]; got != int64(2000) {
		t.Errorf("%s = %v, want 2000", SettingBlameDelayAfterEdit, got)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for malformed file")
	}
}

func TestLoadFile_IntoStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitlens.toml")
	if err := os.WriteFile(path, []byte("[advanced.blame]\ndelayAfterEdit = 250\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}

	s := NewStore()
	s.Load(values, true)

	if got := s.Int(SettingBlameDelayAfterEdit); got != 250 {
		t.Errorf("Int(%s) = %d, want 250", SettingBlameDelayAfterEdit, got)
	}
	// Settings absent from the file keep their defaults.
	if !s.Bool(SettingCachingEnabled) {
		t.Error("expected caching default to survive a partial file load")
	}
}
