package warhorn

import (
	"time"
	_ "time/tzdata"

	"github.com/jose-valero/warhorn-bot/internal/domain"
)

const defaultTimezone = "US/Pacific"

// Valores que indican un campo ausente aunque vengan como string.
var absentTokens = map[string]bool{"": true, "None": true, "missing": true}

// Layouts aceptados para startsAt/endsAt sin zona.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseGame construye un domain.Game desde un nodo de sesión.
func ParseGame(session Node) (domain.Game, error) {
	name := session.Path("scenarioOffering", "customName").String()
	if name == "" {
		name = session.Path("scenario", "name").String()
	}
	g := domain.Game{
		UUID:   session.Path("uuid").String(),
		Name:   name,
		URL:    session.Path("signupUrl").String(),
		Status: session.Path("status").String(),
	}
	starts := session.Path("slot", "startsAt").String()
	ends := session.Path("slot", "endsAt").String()
	tzName := session.Path("slot", "timezone").String()
	if tzName == "" {
		tzName = defaultTimezone
	}

	for _, s := range []string{g.UUID, g.Name, g.Status, g.URL, starts, ends, tzName} {
		if absentTokens[s] {
			return domain.Game{}, &ValidationError{Reason: "missing key values", Node: session}
		}
	}

	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return domain.Game{}, &ValidationError{Reason: "unknown timezone " + tzName, Node: session}
	}
	if g.Starts, err = parseTimestamp(starts, loc); err != nil {
		return domain.Game{}, &ValidationError{Reason: "bad startsAt: " + err.Error(), Node: session}
	}
	if g.Ends, err = parseTimestamp(ends, loc); err != nil {
		return domain.Game{}, &ValidationError{Reason: "bad endsAt: " + err.Error(), Node: session}
	}
	return g, nil
}

// parseTimestamp: con offset explícito se convierte a loc; sin offset se
// interpreta como hora local de loc.
func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}
	var lastErr error
	for _, layout := range localLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
