package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jose-valero/warhorn-bot/internal/domain"
)

const defaultPollInterval = 300 * time.Second

type Config struct {
	DiscordToken string
	PollInterval time.Duration
	Venues       []domain.Venue

	// opcionales, desde env
	WarhornURL   string
	WarhornToken string
	DatabaseURL  string
	HTTPAddr     string
}

// LoadError: la configuración no se pudo leer o no es válida. Es fatal.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("could not load configuration from %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

type fileConfig struct {
	Token        string        `yaml:"token"`
	PollInterval *float64      `yaml:"poll_interval"` // segundos; 0 = sin pausa
	Venue        []venueConfig `yaml:"venue"`
}

type venueConfig struct {
	Name       string          `yaml:"name"`
	Slug       string          `yaml:"slug"`
	VenueEmbed string          `yaml:"venue_embed"`
	Channel    []channelConfig `yaml:"channel"`
}

type channelConfig struct {
	GuildID   snowflake `yaml:"guild_id"`
	ChannelID snowflake `yaml:"channel_id"`
}

// snowflake acepta IDs de Discord como número o como string en el YAML.
type snowflake int64

func (s *snowflake) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a discord id", n.Line)
	}
	v, err := strconv.ParseInt(strings.TrimSpace(n.Value), 10, 64)
	if err != nil || v <= 0 {
		return fmt.Errorf("line %d: invalid discord id %q", n.Line, n.Value)
	}
	*s = snowflake(v)
	return nil
}

// Load lee el YAML de path y aplica overrides de entorno
// (DISCORD_BOT_TOKEN, WARHORN_URL, WARHORN_TOKEN, DATABASE_URL, HTTP_ADDR).
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &LoadError{Path: path, Err: err}
	}
	cfg, err := parse(data)
	if err != nil {
		return Config{}, &LoadError{Path: path, Err: err}
	}
	return cfg, nil
}

func parse(data []byte) (Config, error) {
	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return Config{}, err
	}

	cfg := Config{
		DiscordToken: fc.Token,
		WarhornURL:   os.Getenv("WARHORN_URL"),
		WarhornToken: os.Getenv("WARHORN_TOKEN"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		HTTPAddr:     os.Getenv("HTTP_ADDR"),
	}
	if tok := os.Getenv("DISCORD_BOT_TOKEN"); tok != "" {
		cfg.DiscordToken = tok
	}

	switch {
	case fc.PollInterval == nil:
		cfg.PollInterval = defaultPollInterval
	case *fc.PollInterval < 0:
		return Config{}, fmt.Errorf("poll_interval must not be negative, got %v", *fc.PollInterval)
	default:
		cfg.PollInterval = time.Duration(*fc.PollInterval * float64(time.Second))
	}

	if len(fc.Venue) == 0 {
		return Config{}, errors.New("no venues configured")
	}
	slugs := map[string]bool{}
	for i, vc := range fc.Venue {
		slug := strings.TrimSpace(vc.Slug)
		if slug == "" {
			return Config{}, fmt.Errorf("venue[%d]: slug is required", i)
		}
		if slugs[slug] {
			return Config{}, fmt.Errorf("venue[%d]: duplicate slug %q", i, slug)
		}
		slugs[slug] = true
		if len(vc.Channel) == 0 {
			return Config{}, fmt.Errorf("venue %q: no channels", slug)
		}

		v := domain.Venue{Name: vc.Name, Slug: slug, Template: vc.VenueEmbed}
		seen := map[domain.Channel]bool{}
		for _, cc := range vc.Channel {
			ch := domain.Channel{GuildID: int64(cc.GuildID), ChannelID: int64(cc.ChannelID)}
			if ch.GuildID == 0 || ch.ChannelID == 0 {
				return Config{}, fmt.Errorf("venue %q: guild_id and channel_id are required", slug)
			}
			if seen[ch] {
				continue
			}
			seen[ch] = true
			v.Channels = append(v.Channels, ch)
		}
		cfg.Venues = append(cfg.Venues, v)
	}
	return cfg, nil
}

// RequireToken: el token sólo hace falta si se va a publicar de verdad.
func (c Config) RequireToken() error {
	if strings.TrimSpace(c.DiscordToken) == "" {
		return errors.New("discord token missing: set token in the config or DISCORD_BOT_TOKEN")
	}
	return nil
}
