package discord

import (
	"context"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/jose-valero/warhorn-bot/internal/domain"
)

// Purple
const embedColor = 0x71368a

// Sender es lo único que el loop necesita de la sesión de Discord.
// *discordgo.Session lo implementa.
type Sender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Announcer struct {
	send    Sender
	dryRun  bool
	limiter *channelLimiter
	log     zerolog.Logger
}

// NewAnnouncer: send puede ser nil en dry-run.
func NewAnnouncer(send Sender, dryRun bool, log zerolog.Logger) *Announcer {
	return &Announcer{
		send:    send,
		dryRun:  dryRun,
		limiter: newChannelLimiter(time.Second, 5),
		log:     log,
	}
}

// BuildEmbed arma el anuncio de una sesión.
func BuildEmbed(venue domain.Venue, game domain.Game) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       game.Name,
		Description: venue.Template,
		Color:       embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Game Time", Value: game.TimeRange(), Inline: false},
			{Name: "Sign up", Value: game.URL, Inline: false},
		},
	}
}

// Announce publica el embed en el canal. Los errores de Discord se devuelven
// tal cual; el loop decide qué hacer.
func (a *Announcer) Announce(ctx context.Context, ch domain.Channel, venue domain.Venue, game domain.Game) error {
	a.log.Info().
		Int64("guild", ch.GuildID).
		Int64("channel", ch.ChannelID).
		Str("game", game.Name).
		Msg("sending notice")
	embed := BuildEmbed(venue, game)
	if a.dryRun {
		a.log.Info().Interface("embed", embed).Msg("dry-run, notification")
		return nil
	}

	if err := a.limiter.Wait(ctx, ch.ChannelID); err != nil {
		return err
	}
	defer step(a.log, "send embed")()
	_, err := a.send.ChannelMessageSendEmbed(strconv.FormatInt(ch.ChannelID, 10), embed, discordgo.WithContext(ctx))
	return err
}
