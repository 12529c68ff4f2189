package domain

import (
	"fmt"
	"time"
)

// Warhorn session statuses.
const (
	StatusPublished = "PUBLISHED"
	StatusDraft     = "DRAFT"
	StatusCanceled  = "CANCELED"
)

// Game es una sesión publicada en Warhorn. Se construye una vez (ver
// warhorn.ParseGame) y no se modifica.
type Game struct {
	UUID   string
	Name   string
	URL    string
	Status string
	Starts time.Time
	Ends   time.Time
}

// TimeRange formatea el horario como "2:00PM - 8:00PM PST Dec 24, 2021".
func (g Game) TimeRange() string {
	return g.Starts.Format("3:04PM") + " - " + g.Ends.Format("3:04PM MST Jan 02, 2006")
}

func (g Game) String() string {
	return fmt.Sprintf("Game(%q, %s, %s, uuid: %s)", g.Name, g.TimeRange(), g.Status, g.UUID)
}

// Channel identifica un canal de Discord destino.
type Channel struct {
	GuildID   int64
	ChannelID int64
}

// Venue es un feed de Warhorn (slug) con sus canales de anuncio.
type Venue struct {
	Name     string
	Slug     string // https://warhorn.net/events/SLUG
	Template string // markdown del embed
	Channels []Channel
}
