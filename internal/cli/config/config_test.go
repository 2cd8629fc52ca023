package config

import (
	"os"
	"path/filepath"
	"testing"
)

func useTempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestPath(t *testing.T) {
	dir := useTempConfigDir(t)

	path, err := Path()
	if err != nil {
		t.Fatalf("Path() returned error: %v", err)
	}
	if filepath.Base(path) != fileName {
		t.Errorf("expected filename %s, got %s", fileName, filepath.Base(path))
	}
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		t.Fatalf("UserConfigDir() returned error: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(userConfigDir, dirName) {
		t.Errorf("expected config under %s, got %s", dir, path)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	useTempConfigDir(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.ServerURL != DefaultURL {
		t.Errorf("expected default URL, got %s", cfg.ServerURL)
	}
	if cfg.HasToken() {
		t.Error("expected no token")
	}
}

func TestSaveLoadClear(t *testing.T) {
	useTempConfigDir(t)

	want := &Config{ServerURL: "https://split.example.com", Token: "access", RefreshToken: "refresh"}
	if err := Save(want); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	p, _ := Path()
	info, err := os.Stat(p)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if info.Mode().Perm() != filePerms {
		t.Errorf("expected permissions %o, got %o", filePerms, info.Mode().Perm())
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if *got != *want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	if err := Clear(); err != nil {
		t.Fatalf("Clear() returned error: %v", err)
	}
	if err := Clear(); err != nil {
		t.Fatalf("second Clear() should be a no-op, got %v", err)
	}
}

func TestLoad_EmptyServerURLFallsBack(t *testing.T) {
	useTempConfigDir(t)

	if err := Save(&Config{Token: "t"}); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.ServerURL != DefaultURL {
		t.Errorf("expected default URL, got %s", cfg.ServerURL)
	}
}

func TestSetTokens(t *testing.T) {
	cfg := &Config{Token: "old", RefreshToken: "old-refresh"}

	cfg.SetTokens("new", "")
	if cfg.Token != "new" || cfg.RefreshToken != "old-refresh" {
		t.Errorf("expected refresh token kept, got %+v", cfg)
	}

	cfg.SetTokens("newer", "new-refresh")
	if cfg.Token != "newer" || cfg.RefreshToken != "new-refresh" {
		t.Errorf("expected both tokens replaced, got %+v", cfg)
	}
}

func TestSave_LeavesNoTempFile(t *testing.T) {
	useTempConfigDir(t)

	if err := Save(&Config{ServerURL: DefaultURL, Token: "a"}); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}
	if err := Save(&Config{ServerURL: DefaultURL, Token: "b"}); err != nil {
		t.Fatalf("second Save() returned error: %v", err)
	}

	p, _ := Path()
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("expected temp file to be gone, stat err = %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Token != "b" {
		t.Errorf("expected latest token, got %q", cfg.Token)
	}
}
