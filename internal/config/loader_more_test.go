package config

import (
	"testing"
)

func TestLoad_NonexistentFile(t *testing.T) {
	if _, err := Load("/definitely/not/a/real/file-12345.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "bad.yaml", "region: x\n: broken\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected YAML unmarshal error")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "bad.json", `{ "region": "x", "endpoint_name": }`)
	if _, err := Load(p); err == nil {
		t.Fatalf("expected JSON unmarshal error")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "bad.toml", "region=x\nendpoint_name\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected TOML unmarshal error")
	}
}

func TestLoad_DotenvBadNumber(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, ".env", "COPIES=two\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected parse error for non-numeric COPIES")
	}
}

func TestLoad_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	writeTempFile(t, home, "endpoint.yaml", "region: eu-west-1\n")

	cfg, err := Load("~/endpoint.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Region != "eu-west-1" {
		t.Fatalf("region = %q", cfg.Region)
	}
}

func TestLoad_DirectoryRejected(t *testing.T) {
	d := t.TempDir()
	if _, err := Load(d + "/"); err == nil {
		t.Fatalf("expected error for directory path")
	}
}
