package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jose-valero/warhorn-bot/internal/infra/config"
	"github.com/jose-valero/warhorn-bot/internal/infra/storage"
)

func TestRootFlagDefaults(t *testing.T) {
	cmd := newRootCmd()
	tests := map[string]string{
		"config":  "warbot.yaml",
		"db":      "warbot.db",
		"store":   "file",
		"dry-run": "true",
		"debug":   "false",
		"once":    "false",
	}
	for name, want := range tests {
		fl := cmd.Flags().Lookup(name)
		if fl == nil {
			t.Errorf("flag --%s missing", name)
			continue
		}
		if fl.DefValue != want {
			t.Errorf("--%s default = %q, want %q", name, fl.DefValue, want)
		}
	}
}

func TestRootCmdLeavesErrorPrintingToMain(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "--once"})

	err := cmd.Execute()
	var le *config.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("cobra printed the error itself:\n%s", out.String())
	}
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()
	f := &flags{store: "file", db: filepath.Join(dir, "warbot.db"), dryRun: true}
	s, closeFn, err := openStore(context.Background(), f, config.Config{}, testLogger())
	if err != nil {
		t.Fatalf("openStore failed: %v", err)
	}
	defer closeFn()
	if s == nil {
		t.Fatal("expected a store")
	}

	if err := os.WriteFile(f.db+".saving", nil, 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err = openStore(context.Background(), f, config.Config{}, testLogger())
	var ce *storage.ConflictError
	if !errors.As(err, &ce) {
		t.Errorf("expected ConflictError, got %v", err)
	}

	if _, _, err := openStore(context.Background(), &flags{store: "postgres"}, config.Config{}, testLogger()); err == nil {
		t.Error("postgres without DATABASE_URL should fail")
	}
	if _, _, err := openStore(context.Background(), &flags{store: "redis"}, config.Config{}, testLogger()); err == nil {
		t.Error("unknown store should fail")
	}
}

func TestRunOnceDryRun(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "warbot.yaml")
	// apunta a un puerto cerrado: la pasada falla con ServerError y se sigue
	body := "venue:\n  - slug: test-event\n    channel: [{guild_id: 1, channel_id: 2}]\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WARHORN_URL", "http://127.0.0.1:1/graphql")
	f := &flags{config: cfgPath, db: filepath.Join(dir, "warbot.db"), store: "file", dryRun: true, once: true}
	if err := run(context.Background(), f); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if _, err := os.Stat(f.db); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("dry-run must not write the snapshot, stat err = %v", err)
	}
}

func testLogger() zerolog.Logger { return zerolog.Nop() }
