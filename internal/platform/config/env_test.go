package config

import "testing"

type envTestConfig struct {
	Addr   string `env:"CONFIG_TEST_ADDR" envDefault:":8080"`
	DBPath string `env:"CONFIG_TEST_DB_PATH"`
}

func TestParseEnvReadsValues(t *testing.T) {
	t.Setenv("CONFIG_TEST_ADDR", ":9090")
	t.Setenv("CONFIG_TEST_DB_PATH", "/tmp/landgiver.db")

	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("addr = %q, want %q", cfg.Addr, ":9090")
	}
	if cfg.DBPath != "/tmp/landgiver.db" {
		t.Fatalf("db path = %q, want %q", cfg.DBPath, "/tmp/landgiver.db")
	}
}

func TestParseEnvAppliesDefaults(t *testing.T) {
	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("addr = %q, want default %q", cfg.Addr, ":8080")
	}
}
