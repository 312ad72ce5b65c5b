package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "region: eu-central-1\nendpoint_name: ep1\ncopies: 2\ntemperature: 0.5\ncors_origins: [\"*\"]\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Region != "eu-central-1" || cfg.EndpointName != "ep1" || cfg.Copies != 2 || cfg.SamplingTemperature() != 0.5 || len(cfg.CORSOrigins) != 1 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"region":"us-east-1","endpoint_name":"ep2","gpus":4,"role_arn":"arn:aws:iam::1:role/x"}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Region != "us-east-1" || cfg.EndpointName != "ep2" || cfg.GPUs != 4 || cfg.RoleARN != "arn:aws:iam::1:role/x" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "region=\"us-west-2\"\nendpoint_name=\"ep3\"\nmax_new_tokens=64\ntop_p=0.8\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Region != "us-west-2" || cfg.EndpointName != "ep3" || cfg.MaxNewTokens != 64 || cfg.SamplingTopP() != 0.8 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadDotenv(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, ".env", "AWS_REGION=eu-west-1\nSAGEMAKER_ENDPOINT_INFERENCE=twin\nCOPIES=3\nTEMPERATURE_INFERENCE=0.2\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Region != "eu-west-1" || cfg.EndpointName != "twin" || cfg.Copies != 3 || cfg.SamplingTemperature() != 0.2 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}
