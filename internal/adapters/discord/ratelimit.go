package discord

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// channelLimiter: un token bucket por canal para no pegarle al rate limit de
// Discord cuando un venue publica muchas sesiones juntas.
type channelLimiter struct {
	mu    sync.Mutex
	per   map[int64]*rate.Limiter
	every time.Duration
	burst int
}

func newChannelLimiter(every time.Duration, burst int) *channelLimiter {
	return &channelLimiter{per: map[int64]*rate.Limiter{}, every: every, burst: burst}
}

func (l *channelLimiter) Wait(ctx context.Context, channelID int64) error {
	l.mu.Lock()
	lim, ok := l.per[channelID]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.every), l.burst)
		l.per[channelID] = lim
	}
	l.mu.Unlock()
	return lim.Wait(ctx)
}
