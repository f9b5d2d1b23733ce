package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/couchcryptid/weather-dashboard-service/internal/observability"
)

// IPLocator finds the approximate location of the server's public address.
type IPLocator interface {
	Locate(ctx context.Context) (domain.GeocodingResult, error)
}

// BundlePublisher forwards freshly built bundles to downstream consumers.
type BundlePublisher interface {
	Publish(ctx context.Context, sessionID, label string, bundle domain.Bundle) error
}

// InsightKind selects a long-form generated text.
type InsightKind string

const (
	InsightReview     InsightKind = "review"
	InsightPrediction InsightKind = "prediction"
)

var ErrUnknownInsight = errors.New("unknown insight kind")

// DefaultPublishTimeout bounds one background publish when Deps leaves it unset.
const DefaultPublishTimeout = 10 * time.Second

// Deps are the collaborators of a Service. Locator and Publisher are optional.
type Deps struct {
	Store          *SessionStore
	Resolver       *Resolver
	Fetcher        *Fetcher
	Insights       *InsightProvider
	Locator        IPLocator
	Publisher      BundlePublisher
	PublishTimeout time.Duration
	Metrics        *observability.Metrics
	Logger         *slog.Logger
}

// Service implements every dashboard interaction on top of a session.
// A failed resolve or fetch never modifies the stored session.
type Service struct {
	store     *SessionStore
	resolver  *Resolver
	fetcher   *Fetcher
	insights  *InsightProvider
	locator   IPLocator
	publisher BundlePublisher
	metrics   *observability.Metrics
	logger    *slog.Logger

	publishTimeout time.Duration
	publishing     sync.WaitGroup

	uvJitter func() int
}

func NewService(d Deps) *Service {
	publishTimeout := d.PublishTimeout
	if publishTimeout <= 0 {
		publishTimeout = DefaultPublishTimeout
	}
	return &Service{
		store:     d.Store,
		resolver:  d.Resolver,
		fetcher:   d.Fetcher,
		insights:  d.Insights,
		locator:   d.Locator,
		publisher: d.Publisher,
		metrics:   d.Metrics,
		logger:    d.Logger,

		publishTimeout: publishTimeout,
		uvJitter:       func() int { return rand.IntN(4) },
	}
}

// CreateSession starts a session at the default location without data.
func (s *Service) CreateSession() Session {
	sess := s.store.Create()
	s.metrics.ActiveSessions.Set(float64(s.store.Len()))
	return sess
}

func (s *Service) Session(id string) (Session, error) {
	return s.store.Get(id)
}

// SetLocation resolves query, fetches its weather in the session unit and
// stores both. ErrNotFound and ErrFetchFailed leave the session as it was.
func (s *Service) SetLocation(ctx context.Context, id, query string) (Session, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return Session{}, err
	}
	loc, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return sess, err
	}
	return s.moveTo(ctx, sess, loc, false)
}

// LocateByIP points the session at the server's IP-derived location.
func (s *Service) LocateByIP(ctx context.Context, id string) (Session, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return Session{}, err
	}
	if s.locator == nil {
		return sess, fmt.Errorf("%w: ip location is disabled", ErrNotFound)
	}
	loc, err := s.locator.Locate(ctx)
	if err != nil {
		s.logger.Warn("ip location failed", "session", id, "error", err)
		return sess, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return s.moveTo(ctx, sess, loc, true)
}

// LoadFavorite geocodes the favorite at index i and fetches its weather.
func (s *Service) LoadFavorite(ctx context.Context, id string, i int) (Session, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return Session{}, err
	}
	label, err := sess.Favorite(i)
	if err != nil {
		return sess, err
	}
	loc, err := s.resolver.Resolve(ctx, label)
	if err != nil {
		return sess, err
	}
	// Keep the saved label so the favorites list and header agree.
	loc.Label = label
	return s.moveTo(ctx, sess, loc, false)
}

func (s *Service) moveTo(ctx context.Context, sess Session, loc domain.GeocodingResult, ipLocated bool) (Session, error) {
	bundle, err := s.fetcher.Fetch(ctx, loc.Coordinate, sess.Unit)
	if err != nil {
		return sess, err
	}
	next, err := s.store.Update(sess.ID, func(cur Session) (Session, error) {
		return cur.WithLocation(loc, bundle, ipLocated), nil
	})
	if err != nil {
		return sess, err
	}
	s.publish(ctx, next)
	return next, nil
}

// Refresh re-fetches the session's current location.
func (s *Service) Refresh(ctx context.Context, id string) (Session, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return Session{}, err
	}
	return s.refetch(ctx, sess, sess.Unit)
}

// SetUnit switches the display unit and re-fetches. The unit is kept even
// when the fetch fails; the previous bundle then still carries its own unit.
func (s *Service) SetUnit(ctx context.Context, id string, unit domain.Unit) (Session, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return Session{}, err
	}
	next, err := s.refetch(ctx, sess, unit)
	if err != nil {
		stored, uerr := s.store.Update(id, func(cur Session) (Session, error) {
			cur.Unit = unit
			cur.UpdatedAt = domain.Now()
			return cur, nil
		})
		if uerr != nil {
			return sess, uerr
		}
		return stored, err
	}
	return next, nil
}

// refetch fetches sess's coordinate in unit and stores the bundle unless the
// session moved elsewhere in the meantime.
func (s *Service) refetch(ctx context.Context, sess Session, unit domain.Unit) (Session, error) {
	bundle, err := s.fetcher.Fetch(ctx, sess.Coordinate, unit)
	if err != nil {
		return sess, err
	}
	applied := false
	next, err := s.store.Update(sess.ID, func(cur Session) (Session, error) {
		if cur.Coordinate != sess.Coordinate {
			return cur, nil
		}
		applied = true
		return cur.WithBundle(bundle), nil
	})
	if err != nil {
		return sess, err
	}
	if applied {
		s.publish(ctx, next)
	}
	return next, nil
}

// AddFavorite saves the session's current label; repeats are ignored.
func (s *Service) AddFavorite(id string) (Session, error) {
	return s.store.Update(id, func(cur Session) (Session, error) {
		return cur.AddFavorite(cur.Label), nil
	})
}

// RemoveFavorite deletes the favorite at index i.
func (s *Service) RemoveFavorite(id string, i int) (Session, error) {
	return s.store.Update(id, func(cur Session) (Session, error) {
		return cur.RemoveFavorite(i)
	})
}

// Assistant returns the mood response for the session's current bundle.
func (s *Service) Assistant(ctx context.Context, id string) (Assistant, error) {
	sess, err := s.withBundle(id)
	if err != nil {
		return Assistant{}, err
	}
	return s.insights.Assist(ctx, sess.Bundle.Current, sess.Bundle.Unit, sess.Label), nil
}

// Insight returns a generated review or seven-day prediction.
func (s *Service) Insight(ctx context.Context, id string, kind InsightKind) (string, error) {
	sess, err := s.withBundle(id)
	if err != nil {
		return "", err
	}
	cur := sess.Bundle.Current
	tempC := domain.ToCelsius(cur.Temp, sess.Bundle.Unit)

	var prompt string
	switch kind {
	case InsightReview:
		prompt = ReviewPrompt(sess.Label, cur.Condition.Description, tempC)
	case InsightPrediction:
		prompt = PredictionPrompt(sess.Label, cur.Condition.Description, tempC)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownInsight, kind)
	}
	return s.insights.Insight(ctx, prompt), nil
}

// TrendReport bundles the forecast trend with the simulated indicators.
type TrendReport struct {
	Trend       *domain.Trend         `json:"trend,omitempty"`
	UVIndex     int                   `json:"uv_index"`
	UVLevel     string                `json:"uv_level"`
	Pollen      domain.PollenEstimate `json:"pollen"`
	PollenLevel string                `json:"pollen_level"`
	Notice      string                `json:"notice"`
}

// Trends summarizes the session's forecast. Trend is nil without a forecast.
func (s *Service) Trends(id string) (TrendReport, error) {
	sess, err := s.withBundle(id)
	if err != nil {
		return TrendReport{}, err
	}
	b := sess.Bundle
	uv := domain.EstimateUVIndex(domain.ToCelsius(b.Current.Temp, b.Unit), s.uvJitter())

	report := TrendReport{
		UVIndex:     uv,
		UVLevel:     domain.UVLevel(uv),
		Pollen:      b.Pollen,
		PollenLevel: domain.PollenLevel(b.Pollen.Overall),
		Notice:      domain.SimulatedNotice,
	}
	if trend, ok := domain.SummarizeTrend(b.Current.Temp, b.Forecast); ok {
		report.Trend = &trend
	}
	return report, nil
}

// RefreshAll re-fetches every session that already has data, giving each
// session its own perSession budget. Canceling ctx stops the run between
// sessions. Failures keep the previous bundle.
func (s *Service) RefreshAll(ctx context.Context, perSession time.Duration) (refreshed, failed int) {
	for _, sess := range s.store.WithBundles() {
		if ctx.Err() != nil {
			break
		}
		sctx, cancel := context.WithTimeout(ctx, perSession)
		_, err := s.refetch(sctx, sess, sess.Unit)
		cancel()
		if err != nil {
			failed++
			s.metrics.RefreshRuns.WithLabelValues("failed").Inc()
			s.logger.Warn("session refresh failed", "session", sess.ID, "location", sess.Label, "error", err)
			continue
		}
		refreshed++
		s.metrics.RefreshRuns.WithLabelValues("ok").Inc()
	}
	s.metrics.ActiveSessions.Set(float64(s.store.Len()))
	return refreshed, failed
}

func (s *Service) withBundle(id string) (Session, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return Session{}, err
	}
	if sess.Bundle == nil {
		return sess, ErrNoBundle
	}
	return sess, nil
}

// publish hands the session's bundle to the publisher in the background.
// The publish outlives the caller's context but not publishTimeout.
func (s *Service) publish(ctx context.Context, sess Session) {
	if s.publisher == nil || sess.Bundle == nil {
		return
	}
	id, label, bundle := sess.ID, sess.Label, *sess.Bundle

	s.publishing.Add(1)
	go func() {
		defer s.publishing.Done()
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
		defer cancel()

		if err := s.publisher.Publish(pctx, id, label, bundle); err != nil {
			s.metrics.BundlesPublished.WithLabelValues("error").Inc()
			s.logger.Error("bundle publish failed", "session", id, "error", err)
			return
		}
		s.metrics.BundlesPublished.WithLabelValues("success").Inc()
	}()
}

// WaitForPublishes blocks until every background publish has finished.
func (s *Service) WaitForPublishes() {
	s.publishing.Wait()
}
