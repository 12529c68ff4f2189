package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jose-valero/warhorn-bot/internal/adapters/warhorn"
	"github.com/jose-valero/warhorn-bot/internal/domain"
)

// tope para la espera del limiter más el envío de un anuncio
const announceTimeout = 30 * time.Second

// PassResult resume una pasada del loop.
type PassResult struct {
	VenuesPolled int
	VenueErrors  int
	Announced    int
	// Err: error transitorio que cortó la pasada (ServerError o ctx).
	Err          error
	// VenueErr: último error de un venue que se salteó.
	VenueErr     error
}

type PollService struct {
	src      GameSource
	store    DedupStore
	ann      Announcer
	venues   []domain.Venue
	interval time.Duration
	log      zerolog.Logger

	status *statusTracker
}

func NewPollService(src GameSource, store DedupStore, ann Announcer, venues []domain.Venue, interval time.Duration, log zerolog.Logger) *PollService {
	return &PollService{
		src:      src,
		store:    store,
		ann:      ann,
		venues:   venues,
		interval: interval,
		log:      log,
		status:   &statusTracker{},
	}
}

// Run carga el store y repite pasadas hasta que se cancele ctx (o una sola
// vez si once). Una pasada nunca se superpone con el save de la anterior.
func (p *PollService) Run(ctx context.Context, once bool) error {
	if err := p.store.Load(ctx); err != nil {
		return fmt.Errorf("load dedup store: %w", err)
	}
	p.log.Info().Int("venues", len(p.venues)).Dur("interval", p.interval).Msg("starting warhorn polling")

	for {
		p.log.Info().Msg("polling for new games")
		p.runPassAndSave(ctx)
		if once {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// RunOnce: load + una pasada + save. Lo usa el runner de Lambda.
func (p *PollService) RunOnce(ctx context.Context) (PassResult, error) {
	if err := p.store.Load(ctx); err != nil {
		return PassResult{}, fmt.Errorf("load dedup store: %w", err)
	}
	res, saveErr := p.runPassAndSave(ctx)
	if saveErr != nil {
		return res, fmt.Errorf("save dedup store: %w", saveErr)
	}
	return res, nil
}

func (p *PollService) Status() Status { return p.status.snapshot() }

// runPassAndSave persiste aunque ctx se haya cancelado a mitad de la pasada:
// el archivo se escribe completo o no se escribe. Si el save falla el store
// sigue sucio y se reintenta en la próxima pasada.
func (p *PollService) runPassAndSave(ctx context.Context) (PassResult, error) {
	res := p.RunPass(ctx)
	saveErr := p.store.Save(context.WithoutCancel(ctx))
	if saveErr != nil {
		p.log.Error().Err(saveErr).Msg("saving dedup store failed, will retry next pass")
	}
	p.status.record(time.Now(), res, saveErr)
	return res, saveErr
}

// RunPass recorre los venues en orden. Un ServerError corta el resto de la
// pasada; cualquier otro error de un venue se loguea y se sigue con el
// siguiente.
func (p *PollService) RunPass(ctx context.Context) PassResult {
	var res PassResult
	for _, v := range p.venues {
		if err := ctx.Err(); err != nil {
			res.Err = err
			break
		}
		p.log.Info().Str("slug", v.Slug).Msg("polling venue")
		n, err := p.pollVenue(ctx, v)
		res.Announced += n
		if err == nil {
			res.VenuesPolled++
			continue
		}

		var se *warhorn.ServerError
		if errors.As(err, &se) {
			p.log.Error().Err(err).Str("slug", v.Slug).Msg("error getting games, try again later")
			res.Err = err
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			res.Err = ctxErr
			break
		}

		res.VenueErrors++
		res.VenueErr = fmt.Errorf("%s: %w", v.Slug, err)
		ev := p.log.Error().Err(err).Str("slug", v.Slug)
		var ve *warhorn.ValidationError
		if errors.As(err, &ve) {
			ev = ev.Str("node", ve.Node.Raw())
		}
		ev.Msg("skipping venue for this pass")
	}
	return res
}

func (p *PollService) pollVenue(ctx context.Context, v domain.Venue) (int, error) {
	announced := 0
	for game, err := range p.src.FetchGames(ctx, v.Slug, time.Time{}) {
		if err != nil {
			return announced, err
		}
		for _, ch := range v.Channels {
			if err := ctx.Err(); err != nil {
				return announced, err
			}
			if !p.store.RegisterIfNew(v.Slug, ch.GuildID, ch.ChannelID, game.UUID, game.Name) {
				continue
			}
			if err := p.announce(ctx, ch, v, game); err != nil {
				return announced, fmt.Errorf("announce %q to %d/%d: %w", game.Name, ch.GuildID, ch.ChannelID, err)
			}
			announced++
		}
	}
	return announced, nil
}

// announce corre desacoplado de la cancelación de ctx: la sesión ya quedó
// registrada y se va a persistir, así que tiene que salir.
func (p *PollService) announce(ctx context.Context, ch domain.Channel, v domain.Venue, game domain.Game) error {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), announceTimeout)
	defer cancel()
	return p.ann.Announce(sendCtx, ch, v, game)
}
