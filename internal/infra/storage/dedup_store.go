package storage

import (
	"context"

	"github.com/rs/zerolog"
)

// FeedKey identifica un destino de anuncios: venue + canal de Discord.
type FeedKey struct {
	VenueSlug string
	GuildID   int64
	ChannelID int64
}

// Snapshot es el contenido completo del store: FeedKey -> uuid -> nombre.
// El nombre sólo sirve para depurar el archivo a mano.
type Snapshot map[FeedKey]map[string]string

// Backend persiste snapshots completos. Save debe ser atómico: un proceso
// posterior nunca puede leer un snapshot a medio escribir.
type Backend interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// DedupStore recuerda qué sesiones ya se anunciaron en cada canal. Es de un
// solo escritor: lo usa el loop de polling de forma secuencial.
type DedupStore struct {
	backend Backend
	dryRun  bool
	log     zerolog.Logger

	feeds Snapshot
	dirty bool
}

func NewDedupStore(b Backend, dryRun bool, log zerolog.Logger) *DedupStore {
	return &DedupStore{backend: b, dryRun: dryRun, log: log, feeds: Snapshot{}}
}

// Len devuelve la cantidad de pares (feed, uuid) registrados.
func (s *DedupStore) Len() int {
	n := 0
	for _, sessions := range s.feeds {
		n += len(sessions)
	}
	return n
}

func (s *DedupStore) Dirty() bool { return s.dirty }

// RegisterIfNew devuelve true (y marca el store como sucio) sólo la primera
// vez que ve esta combinación de venue, canal y uuid.
func (s *DedupStore) RegisterIfNew(slug string, guildID, channelID int64, uuid, name string) bool {
	key := FeedKey{VenueSlug: slug, GuildID: guildID, ChannelID: channelID}
	sessions, ok := s.feeds[key]
	if !ok {
		sessions = map[string]string{}
		s.feeds[key] = sessions
	}
	if _, seen := sessions[uuid]; seen {
		return false
	}
	sessions[uuid] = name
	s.dirty = true
	s.log.Info().Str("name", name).Str("uuid", uuid).Int64("channel", channelID).Msg("new entry")
	return true
}

// Load mezcla el snapshot persistido con lo que ya hay en memoria. Se puede
// llamar más de una vez.
func (s *DedupStore) Load(ctx context.Context) error {
	snap, err := s.backend.Load(ctx)
	if err != nil {
		return err
	}
	for key, sessions := range snap {
		dst, ok := s.feeds[key]
		if !ok {
			dst = make(map[string]string, len(sessions))
			s.feeds[key] = dst
		}
		for uuid, name := range sessions {
			dst[uuid] = name
		}
	}
	s.dirty = false
	return nil
}

// Save persiste el store si hubo cambios. En dry-run no escribe nada pero
// igual limpia el flag.
func (s *DedupStore) Save(ctx context.Context) error {
	if !s.dirty {
		return nil
	}
	if s.dryRun {
		s.log.Info().Msg("dry-run, faking save of dedup store")
		s.dirty = false
		return nil
	}
	if err := s.backend.Save(ctx, s.feeds); err != nil {
		return err
	}
	s.dirty = false
	return nil
}
