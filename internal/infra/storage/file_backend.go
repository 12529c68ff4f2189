package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const savingSuffix = ".saving"

// ConflictError: quedó un "<path>.saving" de un save interrumpido. No se
// arranca hasta que un operador lo revise.
type ConflictError struct {
	TempPath string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("temp DB file %q already exists, manually recover or delete", e.TempPath)
}

// FileBackend guarda el snapshot como YAML legible. Cada save escribe
// "<path>.saving" y lo renombra sobre path.
type FileBackend struct {
	path    string
	tmpPath string
	log     zerolog.Logger
}

type feedRecord struct {
	Venue     string            `yaml:"venue"`
	GuildID   int64             `yaml:"guild_id"`
	ChannelID int64             `yaml:"channel_id"`
	Sessions  map[string]string `yaml:"sessions"`
}

// NewFileBackend falla con *ConflictError si existe el temporal de un save
// previo; el error también queda logueado a nivel fatal.
func NewFileBackend(path string, log zerolog.Logger) (*FileBackend, error) {
	b := &FileBackend{path: path, tmpPath: path + savingSuffix, log: log}
	if _, err := os.Stat(b.tmpPath); err == nil {
		cerr := &ConflictError{TempPath: b.tmpPath}
		log.WithLevel(zerolog.FatalLevel).Str("tmp", b.tmpPath).Msg(cerr.Error())
		return nil, cerr
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", b.tmpPath, err)
	}
	return b, nil
}

func (b *FileBackend) Path() string { return b.path }

func (b *FileBackend) Load(_ context.Context) (Snapshot, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		b.log.Warn().Str("path", b.path).Msg("DB file does not exist")
		return Snapshot{}, nil
	}
	if err != nil {
		return nil, err
	}
	var records []feedRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", b.path, err)
	}
	snap := make(Snapshot, len(records))
	for _, r := range records {
		key := FeedKey{VenueSlug: r.Venue, GuildID: r.GuildID, ChannelID: r.ChannelID}
		sessions, ok := snap[key]
		if !ok {
			sessions = map[string]string{}
			snap[key] = sessions
		}
		for uuid, name := range r.Sessions {
			sessions[uuid] = name
		}
	}
	return snap, nil
}

func (b *FileBackend) Save(_ context.Context, snap Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	b.log.Debug().Str("path", b.path).Msg("saving DB")

	f, err := os.OpenFile(b.tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(b.tmpPath, b.path); err != nil {
		return err
	}
	return syncDir(filepath.Dir(b.path))
}

// syncDir hace durable el rename en el directorio padre.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", dir, err)
	}
	return nil
}

// encodeSnapshot ordena los feeds para que el archivo sea estable entre saves.
func encodeSnapshot(snap Snapshot) ([]byte, error) {
	records := make([]feedRecord, 0, len(snap))
	for key, sessions := range snap {
		records = append(records, feedRecord{
			Venue:     key.VenueSlug,
			GuildID:   key.GuildID,
			ChannelID: key.ChannelID,
			Sessions:  sessions,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Venue != b.Venue {
			return a.Venue < b.Venue
		}
		if a.GuildID != b.GuildID {
			return a.GuildID < b.GuildID
		}
		return a.ChannelID < b.ChannelID
	})

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
