package warhorn

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"time"

	"github.com/jose-valero/warhorn-bot/internal/domain"
)

const sessionsQuery = `{
  eventSessions(
      events: [%s],
      startsAfter: %s) {
    nodes {
      status
      scenario {
        name
      }
      scenarioOffering {
        customName
      }
      signupUrl
      uuid
      slot {
        timezone
        startsAt
        endsAt
      }
    }
  }
}`

var knownStatuses = map[string]bool{
	domain.StatusPublished: true,
	domain.StatusDraft:     true,
	domain.StatusCanceled:  true,
}

// gqlString escapa s como literal string de GraphQL (compatible con JSON).
func gqlString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func buildSessionsQuery(slug string, startsAfter time.Time) string {
	return fmt.Sprintf(sessionsQuery, gqlString(slug), gqlString(startsAfter.Format(time.RFC3339)))
}

// FetchGames consulta las sesiones del evento slug que empiezan después de
// startsAfter (cero = ahora) y produce sólo las PUBLISHED. La consulta se hace
// al empezar a iterar. Cualquier error se entrega una sola vez y termina la
// secuencia; un ValidationError aborta el resto del fetch.
func (c *Client) FetchGames(ctx context.Context, slug string, startsAfter time.Time) iter.Seq2[domain.Game, error] {
	return func(yield func(domain.Game, error) bool) {
		after := startsAfter
		if after.IsZero() {
			after = c.now()
		}
		data, err := c.doQuery(ctx, buildSessionsQuery(slug, after))
		if err != nil {
			yield(domain.Game{}, err)
			return
		}
		for _, session := range data.Path("eventSessions", "nodes").List() {
			status := session.Path("status").String()
			if !knownStatuses[status] {
				c.log.Warn().Str("slug", slug).Str("session", session.Raw()).Msg("unexpected session status")
			}
			if status != domain.StatusPublished {
				continue
			}
			g, err := ParseGame(session)
			if err != nil {
				yield(domain.Game{}, err)
				return
			}
			if !yield(g, nil) {
				return
			}
		}
	}
}
