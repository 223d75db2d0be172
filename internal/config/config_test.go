package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"mgsim/internal/game"
)

func TestLoadAPIFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MGSIM_SEED", "42")
	t.Setenv("MGSIM_LOG_LEVEL", "LOUD")

	cfg, err := LoadAPIFromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("addr got=%q want=:9090", cfg.Addr)
	}
	if cfg.Seed == nil || *cfg.Seed != 42 {
		t.Fatalf("seed=%v", cfg.Seed)
	}
	if cfg.LogLevel != "info" || cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("level=%q timeout=%s", cfg.LogLevel, cfg.ShutdownTimeout)
	}

	t.Setenv("MGSIM_SEED", "abc")
	if _, err := LoadAPIFromEnv(); err == nil {
		t.Fatalf("expected bad seed to fail")
	}
}

func TestLoadAPIFromEnvAddrFallback(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MGSIM_API_ADDR", "127.0.0.1:7000")
	t.Setenv("MGSIM_SEED", "")

	cfg, err := LoadAPIFromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != "127.0.0.1:7000" || cfg.Seed != nil {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestLoadCLIFromEnv(t *testing.T) {
	t.Setenv("MG_API_BASE_URL", "http://example.test/ ")
	if got := LoadCLIFromEnv().APIBaseURL; got != "http://example.test" {
		t.Fatalf("got=%q", got)
	}
}

func TestLoadRulesMissingFileUsesDefaults(t *testing.T) {
	rules, err := LoadRules(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(game.DefaultRules(), rules); diff != "" {
		t.Fatalf("rules differ (-want +got):\n%s", diff)
	}
}

func TestLoadRulesOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	body := "base_wage:\n  5: 30\nchips:\n  express: 50\ntax:\n  equity_threshold: 400\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := game.DefaultRules()
	want.BaseWage[5] = 30
	want.Chips.Express = 50
	want.Tax.EquityThreshold = 400
	if diff := cmp.Diff(want, rules); diff != "" {
		t.Fatalf("rules differ (-want +got):\n%s", diff)
	}
}

func TestLoadRulesRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("chips:\n  express: 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadRules(path); err == nil {
		t.Fatalf("expected express below normal to fail")
	}
}

func TestSaveRulesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "rules.yaml")
	want := game.DefaultRules()
	want.Prices.Hire = 7
	if err := SaveRules(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadRules(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Prices.Hire != 7 {
		t.Fatalf("hire got=%d want=7", got.Prices.Hire)
	}
}
