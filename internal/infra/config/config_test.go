package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jose-valero/warhorn-bot/internal/domain"
)

const sampleConfig = `
token: file-token
poll_interval: 90.5
venue:
  - name: Test Venue
    slug: test-event
    venue_embed: |
      **Test Venue** — [map](https://example.com/map)
    channel:
      - guild_id: 8675
        channel_id: 309
      - guild_id: "8675"
        channel_id: "310"
      - guild_id: 8675
        channel_id: 309
  - name: Other
    slug: other-event
    venue_embed: Other venue
    channel:
      - guild_id: 1
        channel_id: 2
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "warbot.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "")
	t.Setenv("WARHORN_URL", "http://localhost:9999/graphql")

	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DiscordToken != "file-token" {
		t.Errorf("DiscordToken = %q", cfg.DiscordToken)
	}
	if cfg.PollInterval != 90*time.Second+500*time.Millisecond {
		t.Errorf("PollInterval = %s", cfg.PollInterval)
	}
	if cfg.WarhornURL != "http://localhost:9999/graphql" {
		t.Errorf("WarhornURL = %q", cfg.WarhornURL)
	}
	if len(cfg.Venues) != 2 {
		t.Fatalf("expected 2 venues, got %d", len(cfg.Venues))
	}
	// el orden del archivo se respeta
	if cfg.Venues[0].Slug != "test-event" || cfg.Venues[1].Slug != "other-event" {
		t.Errorf("venue order = %s, %s", cfg.Venues[0].Slug, cfg.Venues[1].Slug)
	}
	v := cfg.Venues[0]
	if !strings.HasPrefix(v.Template, "**Test Venue**") {
		t.Errorf("Template = %q", v.Template)
	}
	want := []domain.Channel{{GuildID: 8675, ChannelID: 309}, {GuildID: 8675, ChannelID: 310}}
	if len(v.Channels) != len(want) {
		t.Fatalf("channels = %v, want %v", v.Channels, want)
	}
	for i := range want {
		if v.Channels[i] != want[i] {
			t.Errorf("channel[%d] = %v, want %v", i, v.Channels[i], want[i])
		}
	}
}

func TestLoad_EnvOverridesToken(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "env-token")
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DiscordToken != "env-token" {
		t.Errorf("DiscordToken = %q", cfg.DiscordToken)
	}
	if err := cfg.RequireToken(); err != nil {
		t.Errorf("RequireToken: %v", err)
	}
}

func TestLoad_DefaultInterval(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
venue:
  - slug: a
    channel:
      - {guild_id: 1, channel_id: 2}
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PollInterval != defaultPollInterval {
		t.Errorf("PollInterval = %s", cfg.PollInterval)
	}
}

func TestLoad_ZeroIntervalIsHonoured(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
poll_interval: 0
venue:
  - slug: a
    channel:
      - {guild_id: 1, channel_id: 2}
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PollInterval != 0 {
		t.Errorf("PollInterval = %s, want 0", cfg.PollInterval)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not yaml", "venue: [unterminated"},
		{"unknown field", "tokne: x\nvenue: []"},
		{"no venues", "token: x"},
		{"missing slug", "venue:\n  - name: x\n    channel:\n      - {guild_id: 1, channel_id: 2}"},
		{"duplicate slug", "venue:\n  - slug: a\n    channel: [{guild_id: 1, channel_id: 2}]\n  - slug: a\n    channel: [{guild_id: 1, channel_id: 3}]"},
		{"no channels", "venue:\n  - slug: a"},
		{"bad id", "venue:\n  - slug: a\n    channel: [{guild_id: abc, channel_id: 2}]"},
		{"missing channel id", "venue:\n  - slug: a\n    channel: [{guild_id: 1}]"},
		{"negative interval", "poll_interval: -1\nvenue:\n  - slug: a\n    channel: [{guild_id: 1, channel_id: 2}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.body)
			_, err := Load(path)
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("expected LoadError, got %v", err)
			}
			if le.Path != path {
				t.Errorf("Path = %q", le.Path)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	var le *LoadError
	if !errors.As(err, &le) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected LoadError wrapping ErrNotExist, got %v", err)
	}
}

func TestRequireToken(t *testing.T) {
	if err := (Config{}).RequireToken(); err == nil {
		t.Error("expected error for empty token")
	}
}
