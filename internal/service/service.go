package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mssola/useragent"
	"github.com/rs/zerolog"

	"shortener/internal/cache"
	"shortener/internal/idgen"
	"shortener/internal/repo"
	"shortener/pkg/bounded"
)

const (
	DefaultOperationTimeout  = 1000 * time.Millisecond
	DefaultStatisticsTimeout = 1000 * time.Millisecond
	DefaultMaxCreateAttempts = 3
)

type Service interface {
	Redirect(ctx context.Context, id string, visit Visit) (Link, error)
	CreateLink(ctx context.Context, targetURL string) (Link, error)
	UpdateLink(ctx context.Context, id, targetURL string) (Link, error)
	LinkStatistics(ctx context.Context, id string) ([]CounterLinkStatistics, error)
	Health(ctx context.Context) error
}

type Options struct {
	OperationTimeout  time.Duration
	StatisticsTimeout time.Duration
	MaxCreateAttempts int
}

func (o Options) withDefaults() Options {
	if o.OperationTimeout <= 0 {
		o.OperationTimeout = DefaultOperationTimeout
	}
	if o.StatisticsTimeout <= 0 {
		o.StatisticsTimeout = DefaultStatisticsTimeout
	}
	if o.MaxCreateAttempts <= 0 {
		o.MaxCreateAttempts = DefaultMaxCreateAttempts
	}
	return o
}

type service struct {
	repo  repo.Repository
	ids   idgen.Generator
	cache cache.LinkCache
	log   *zerolog.Logger
	opts  Options
}

// NewService wires the link service. linkCache may be nil.
func NewService(repository repo.Repository, ids idgen.Generator, linkCache cache.LinkCache, logger *zerolog.Logger, opts Options) Service {
	return &service{
		repo:  repository,
		ids:   ids,
		cache: linkCache,
		log:   logger,
		opts:  opts.withDefaults(),
	}
}

func (s *service) Redirect(ctx context.Context, id string, visit Visit) (Link, error) {
	target, err := s.lookupTarget(ctx, id)
	if err != nil {
		return Link{}, err
	}

	s.log.Debug().Msgf("Redirecting link id %s to %s", id, target)

	stat := repo.StatisticEntity{
		LinkID:    id,
		Referer:   visit.Referer,
		UserAgent: visit.UserAgent,
	}
	// the click is recorded even if the client goes away mid-request
	recordCtx := context.WithoutCancel(ctx)
	saved := bounded.BestEffort(recordCtx, s.log, s.opts.StatisticsTimeout, "Saving new link click", func(ctx context.Context) error {
		return s.repo.CreateStatistic(ctx, stat)
	})
	if saved {
		s.logClick(id, visit)
	}

	return Link{ID: id, TargetURL: target}, nil
}

func (s *service) lookupTarget(ctx context.Context, id string) (string, error) {
	if s.cache != nil {
		target, found, err := s.cache.Get(ctx, id)
		if err != nil {
			s.log.Warn().Err(err).Msgf("Failed to read link %s from cache", id)
		} else if found {
			return target, nil
		}
	}

	entity, err := s.repo.GetLink(ctx, id)
	if err != nil {
		return "", err
	}
	if entity == nil {
		return "", ErrLinkNotFound
	}

	s.fillCache(ctx, entity.ID, entity.TargetURL)
	return entity.TargetURL, nil
}

func (s *service) logClick(id string, visit Visit) {
	ev := s.log.Debug()
	if !ev.Enabled() {
		return
	}

	ev = ev.Str("link_id", id).
		Str("referer", visit.Referer.String).
		Str("user_agent", visit.UserAgent.String)
	if visit.UserAgent.String != "" {
		ua := useragent.New(visit.UserAgent.String)
		browser, _ := ua.Browser()
		ev = ev.Str("browser", browser).
			Str("os", ua.OS()).
			Bool("mobile", ua.Mobile()).
			Bool("bot", ua.Bot())
	}
	ev.Msg("Persisted new link click")
}

func (s *service) CreateLink(ctx context.Context, targetURL string) (Link, error) {
	target, err := NormalizeTargetURL(targetURL)
	if err != nil {
		return Link{}, err
	}

	var created repo.LinkEntity
	for attempt := 1; ; attempt++ {
		id, err := s.ids.Generate()
		if err != nil {
			return Link{}, fmt.Errorf("failed to generate link id: %w", err)
		}

		created, err = bounded.Run(ctx, s.opts.OperationTimeout, func(ctx context.Context) (repo.LinkEntity, error) {
			return s.repo.CreateLink(ctx, repo.LinkEntity{ID: id, TargetURL: target})
		})
		if err == nil {
			break
		}
		if !repo.IsUniqueViolation(err) || attempt >= s.opts.MaxCreateAttempts {
			return Link{}, err
		}
		s.log.Warn().Msgf("Generated link id %s already exists, retrying (attempt %d/%d)", id, attempt, s.opts.MaxCreateAttempts)
	}

	s.log.Debug().Msgf("Created new link with id %s targeting %s", created.ID, created.TargetURL)
	s.cacheLink(ctx, created.ID, created.TargetURL)

	return toServiceLink(created), nil
}

func (s *service) UpdateLink(ctx context.Context, id, targetURL string) (Link, error) {
	target, err := NormalizeTargetURL(targetURL)
	if err != nil {
		return Link{}, err
	}

	updated, err := bounded.Run(ctx, s.opts.OperationTimeout, func(ctx context.Context) (repo.LinkEntity, error) {
		return s.repo.UpdateLink(ctx, repo.LinkEntity{ID: id, TargetURL: target})
	})
	if err != nil {
		return Link{}, err
	}

	s.log.Debug().Msgf("Updated link with id %s, now targeting %s", id, updated.TargetURL)
	s.cacheLink(ctx, updated.ID, updated.TargetURL)

	return toServiceLink(updated), nil
}

func (s *service) LinkStatistics(ctx context.Context, id string) ([]CounterLinkStatistics, error) {
	stats, err := bounded.Run(ctx, s.opts.OperationTimeout, func(ctx context.Context) ([]repo.CounterStatistic, error) {
		return s.repo.GetLinkStatistics(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().Msgf("Statistics for link with id %s requested", id)

	return toServiceStatistics(stats), nil
}

func (s *service) Health(ctx context.Context) error {
	return bounded.Exec(ctx, s.opts.OperationTimeout, s.repo.Ping)
}

func (s *service) cacheLink(ctx context.Context, id, target string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, id, target); err != nil {
		s.log.Warn().Err(err).Msgf("Failed to cache link %s", id)
	}
}

// fillCache stores a looked up target unless a newer entry got there first.
func (s *service) fillCache(ctx context.Context, id, target string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Add(ctx, id, target); err != nil {
		s.log.Warn().Err(err).Msgf("Failed to cache link %s", id)
	}
}
