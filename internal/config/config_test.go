package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.TopCountries != 15 || c.ListenAddr != ":8080" || c.LogLevel != "info" || c.ChartWidth != 800 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.ViewsDir != filepath.Join(home, ".socialpulse") {
		t.Fatalf("views_dir = %q", c.ViewsDir)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("top_countries: 7\nlisten_addr: 127.0.0.1:9090\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SOCIALPULSE_TOP_COUNTRIES", "3")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.TopCountries != 3 {
		t.Fatalf("env did not override file: %d", c.TopCountries)
	}
	if c.ListenAddr != "127.0.0.1:9090" {
		t.Fatalf("file value lost: %q", c.ListenAddr)
	}
}

func TestSaveAndReload(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	c := Default()
	c.ViewsDir = t.TempDir()
	if err := c.Set("dataset_path", "/data/students.csv"); err != nil {
		t.Fatal(err)
	}
	if err := c.Set("chart_height", "640"); err != nil {
		t.Fatal(err)
	}
	if err := c.Set("delimiter", "tab"); err != nil {
		t.Fatal(err)
	}
	if err := Save(c, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.DatasetPath != "/data/students.csv" || back.ChartHeight != 640 || back.DelimiterRune() != '\t' {
		t.Fatalf("reloaded = %+v", back)
	}
	if v, _ := back.Get("chart_height"); v != "640" {
		t.Fatalf("Get chart_height = %q", v)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"log_level":   "verbose",
		"gin_mode":    "prod",
		"chart_width": "10",
		"listen_addr": "nope",
		"delimiter":   ";;",
	}
	for key, val := range cases {
		c := Default()
		if err := c.Set(key, val); err != nil {
			t.Fatalf("Set(%s): %v", key, err)
		}
		err := c.Validate()
		if err == nil {
			t.Fatalf("%s=%q should fail validation", key, val)
		}
		if !strings.Contains(err.Error(), "invalid config") {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := Default().Set("nope", "1"); err == nil {
		t.Fatalf("expected unknown key error")
	}
	if err := Default().Set("top_countries", "many"); err == nil {
		t.Fatalf("expected int parse error")
	}
}

func TestParseDelimiter(t *testing.T) {
	cases := map[string]rune{"": 0, ",": ',', ";": ';', "tab": '\t', `\t`: '\t', "|": '|'}
	for in, want := range cases {
		got, err := ParseDelimiter(in)
		if err != nil || got != want {
			t.Fatalf("ParseDelimiter(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseDelimiter(`"`); err == nil {
		t.Fatalf("quote must be rejected")
	}
}
