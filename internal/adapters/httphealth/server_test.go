package httphealth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jose-valero/warhorn-bot/internal/app/service"
)

func TestHealth(t *testing.T) {
	now := time.Date(2021, 12, 25, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		status service.Status
		code   int
	}{
		{"no pass yet", service.Status{}, http.StatusServiceUnavailable},
		{"healthy", service.Status{Passes: 3, LastPassAt: now.Add(-time.Minute), Announced: 2}, http.StatusOK},
		{"upstream outage is still healthy", service.Status{Passes: 1, LastPassAt: now, LastError: "warhorn server status 502"}, http.StatusOK},
		{"stale", service.Status{Passes: 3, LastPassAt: now.Add(-time.Hour)}, http.StatusServiceUnavailable},
		{"save failing", service.Status{Passes: 3, LastPassAt: now, SaveError: "disk full"}, http.StatusServiceUnavailable},
		{"every venue failing", service.Status{Passes: 3, LastPassAt: now, VenueErrors: 2, LastVenueError: "b: missing key values"}, http.StatusServiceUnavailable},
		{"some venues failing", service.Status{Passes: 3, LastPassAt: now, VenuesPolled: 1, VenueErrors: 1, LastVenueError: "b: missing key values"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := tt.status
			s := New(func() service.Status { return st }, 10*time.Minute, zerolog.Nop())
			s.now = func() time.Time { return now }

			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			if rec.Code != tt.code {
				t.Errorf("code = %d, want %d", rec.Code, tt.code)
			}
			var body struct {
				OK     bool `json:"ok"`
				Passes int  `json:"passes"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("bad body %q: %v", rec.Body.String(), err)
			}
			if body.OK != (tt.code == http.StatusOK) || body.Passes != st.Passes {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestHealthMethod(t *testing.T) {
	s := New(func() service.Status { return service.Status{} }, 0, zerolog.Nop())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("code = %d", rec.Code)
	}
}
