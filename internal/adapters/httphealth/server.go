package httphealth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/jose-valero/warhorn-bot/internal/app/service"
)

// StatusFunc lo provee service.PollService.Status.
type StatusFunc func() service.Status

type Server struct {
	status StatusFunc
	// una pasada más vieja que esto se reporta como 503
	staleAfter time.Duration
	mux        *http.ServeMux
	log        zerolog.Logger
	now        func() time.Time
}

func New(status StatusFunc, staleAfter time.Duration, log zerolog.Logger) *Server {
	s := &Server{status: status, staleAfter: staleAfter, mux: http.NewServeMux(), log: log, now: time.Now}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
}

func (s *Server) Handler() http.Handler { return s.mux }

type healthResponse struct {
	OK bool `json:"ok"`
	service.Status
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	st := s.status()
	ok := st.Passes > 0 && st.SaveError == ""
	// todos los venues intentados fallaron
	if st.VenueErrors > 0 && st.VenuesPolled == 0 {
		ok = false
	}
	if ok && s.staleAfter > 0 && s.now().Sub(st.LastPassAt) > s.staleAfter {
		ok = false
	}

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(healthResponse{OK: ok, Status: st})
}

// Start bloquea hasta que ctx se cancele.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()
	s.log.Info().Str("addr", addr).Msg("🌐 HTTP listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
