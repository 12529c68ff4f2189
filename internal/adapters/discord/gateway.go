package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// NewSession crea la sesión REST. El token puede venir con o sin "Bot ".
func NewSession(token string) (*discordgo.Session, error) {
	auth := strings.TrimSpace(token)
	if !strings.HasPrefix(strings.ToLower(auth), "bot ") {
		auth = "Bot " + auth
	}
	return discordgo.New(auth)
}

// OpenGateway conecta el websocket. Sólo pedimos el intent de guilds: el bot
// no lee mensajes ni comandos, sólo publica.
func OpenGateway(token string, log zerolog.Logger) (*discordgo.Session, error) {
	s, err := NewSession(token)
	if err != nil {
		return nil, err
	}
	s.Identify.Intents = discordgo.IntentsGuilds
	s.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("gateway ready")
	})
	if err := s.Open(); err != nil {
		return nil, err
	}
	return s, nil
}
