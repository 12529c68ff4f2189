package service

import (
	"sync"
	"time"
)

// Status es lo que expone /healthz.
type Status struct {
	Passes         int       `json:"passes"`
	LastPassAt     time.Time `json:"last_pass_at"`
	LastAnnounced  int       `json:"last_announced"`
	Announced      int       `json:"announced_total"`
	LastError      string    `json:"last_error,omitempty"`
	SaveError      string    `json:"save_error,omitempty"`
	VenuesPolled   int       `json:"venues_polled"`
	VenueErrors    int       `json:"venue_errors"`
	LastVenueError string    `json:"last_venue_error,omitempty"`
}

// El loop escribe, el servidor HTTP lee desde otra goroutine.
type statusTracker struct {
	mu sync.Mutex
	st Status
}

func (t *statusTracker) record(at time.Time, res PassResult, saveErr error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.st.Passes++
	t.st.LastPassAt = at
	t.st.LastAnnounced = res.Announced
	t.st.Announced += res.Announced
	t.st.LastError = ""
	if res.Err != nil {
		t.st.LastError = res.Err.Error()
	}
	t.st.VenuesPolled = res.VenuesPolled
	t.st.VenueErrors = res.VenueErrors
	t.st.LastVenueError = ""
	if res.VenueErr != nil {
		t.st.LastVenueError = res.VenueErr.Error()
	}
	t.st.SaveError = ""
	if saveErr != nil {
		t.st.SaveError = saveErr.Error()
	}
}

func (t *statusTracker) snapshot() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st
}
