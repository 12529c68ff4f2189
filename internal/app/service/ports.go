package service

import (
	"context"
	"iter"
	"time"

	"github.com/jose-valero/warhorn-bot/internal/domain"
)

// Lo implementa internal/adapters/warhorn.Client
type GameSource interface {
	FetchGames(ctx context.Context, slug string, startsAfter time.Time) iter.Seq2[domain.Game, error]
}

// Lo implementa internal/infra/storage.DedupStore
type DedupStore interface {
	RegisterIfNew(slug string, guildID, channelID int64, uuid, name string) bool
	Load(ctx context.Context) error
	Save(ctx context.Context) error
}

// Lo implementa internal/adapters/discord.Announcer
type Announcer interface {
	Announce(ctx context.Context, ch domain.Channel, venue domain.Venue, game domain.Game) error
}
