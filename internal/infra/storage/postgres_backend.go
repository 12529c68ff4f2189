package storage

import (
	"context"
	"database/sql"
	"fmt"

	pq "github.com/lib/pq"
)

// PostgresBackend guarda el store en la tabla announcements. El save corre en
// una sola transacción, así que nunca queda a medias.
type PostgresBackend struct{ db *sql.DB }

func NewPostgresBackend(db *sql.DB) *PostgresBackend { return &PostgresBackend{db: db} }

func (b *PostgresBackend) Load(ctx context.Context) (Snapshot, error) {
	rows, err := b.db.QueryContext(ctx, `
SELECT venue_slug, guild_id, channel_id, session_uuid, session_name
FROM announcements
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snap := Snapshot{}
	for rows.Next() {
		var key FeedKey
		var uuid, name string
		if err := rows.Scan(&key.VenueSlug, &key.GuildID, &key.ChannelID, &uuid, &name); err != nil {
			return nil, err
		}
		sessions, ok := snap[key]
		if !ok {
			sessions = map[string]string{}
			snap[key] = sessions
		}
		sessions[uuid] = name
	}
	return snap, rows.Err()
}

// Save inserta todo el snapshot; las filas existentes se ignoran (el store
// sólo crece).
func (b *PostgresBackend) Save(ctx context.Context, snap Snapshot) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for key, sessions := range snap {
		uuids := make([]string, 0, len(sessions))
		names := make([]string, 0, len(sessions))
		for uuid, name := range sessions {
			uuids = append(uuids, uuid)
			names = append(names, name)
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO announcements (venue_slug, guild_id, channel_id, session_uuid, session_name)
SELECT $1, $2, $3, t.uuid, t.name
FROM unnest($4::text[], $5::text[]) AS t(uuid, name)
ON CONFLICT (venue_slug, guild_id, channel_id, session_uuid) DO NOTHING
`, key.VenueSlug, key.GuildID, key.ChannelID, pq.Array(uuids), pq.Array(names)); err != nil {
			return fmt.Errorf("save feed %s/%d/%d: %w", key.VenueSlug, key.GuildID, key.ChannelID, err)
		}
	}
	return tx.Commit()
}
