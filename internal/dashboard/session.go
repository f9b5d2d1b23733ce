package dashboard

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/couchcryptid/weather-dashboard-service/internal/lru"
)

// Defaults for a new session.
var (
	DefaultCoordinate = domain.Coordinate{Lat: 40.7128, Lon: -74.0060}
	DefaultLabel      = "New York, US"
	DefaultUnit       = domain.UnitMetric
)

// Session is the per-user dashboard context. Values are replaced wholesale;
// callers never mutate a stored session in place.
type Session struct {
	ID         string            `json:"id"`
	Coordinate domain.Coordinate `json:"coordinate"`
	Label      string            `json:"label"`
	Unit       domain.Unit       `json:"unit"`
	Favorites  []string          `json:"favorites"`
	Bundle     *domain.Bundle    `json:"bundle,omitempty"`
	IPLocated  bool              `json:"ip_located"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Clone returns a copy that shares no mutable state with s. Bundles are
// immutable once stored so the pointer is shared.
func (s Session) Clone() Session {
	s.Favorites = slices.Clone(s.Favorites)
	if s.Favorites == nil {
		s.Favorites = []string{}
	}
	return s
}

// WithLocation returns a copy pointed at a new place with a fresh bundle.
func (s Session) WithLocation(loc domain.GeocodingResult, bundle domain.Bundle, ipLocated bool) Session {
	next := s.Clone()
	next.Coordinate = loc.Coordinate
	next.Label = loc.Label
	next.Bundle = &bundle
	next.IPLocated = ipLocated
	next.UpdatedAt = domain.Now()
	return next
}

// WithBundle returns a copy holding bundle, with the unit it was fetched in.
func (s Session) WithBundle(bundle domain.Bundle) Session {
	next := s.Clone()
	next.Bundle = &bundle
	next.Unit = bundle.Unit
	next.UpdatedAt = domain.Now()
	return next
}

// AddFavorite returns a copy with label appended unless it is already present.
func (s Session) AddFavorite(label string) Session {
	next := s.Clone()
	if label == "" || slices.Contains(next.Favorites, label) {
		return next
	}
	next.Favorites = append(next.Favorites, label)
	next.UpdatedAt = domain.Now()
	return next
}

// RemoveFavorite returns a copy without the favorite at index i; later
// entries shift down by one.
func (s Session) RemoveFavorite(i int) (Session, error) {
	if i < 0 || i >= len(s.Favorites) {
		return s, fmt.Errorf("%w: %d (have %d)", ErrFavoriteIndex, i, len(s.Favorites))
	}
	next := s.Clone()
	next.Favorites = slices.Delete(next.Favorites, i, i+1)
	next.UpdatedAt = domain.Now()
	return next, nil
}

// Favorite returns the label at index i.
func (s Session) Favorite(i int) (string, error) {
	if i < 0 || i >= len(s.Favorites) {
		return "", fmt.Errorf("%w: %d (have %d)", ErrFavoriteIndex, i, len(s.Favorites))
	}
	return s.Favorites[i], nil
}

// SessionStore is a bounded LRU of sessions keyed by ID. It stores and
// hands out clones only.
type SessionStore struct {
	sessions *lru.Cache[string, Session]
}

// NewSessionStore creates a store that keeps at most maxEntries sessions.
func NewSessionStore(maxEntries int) *SessionStore {
	return &SessionStore{sessions: lru.New[string, Session](maxEntries)}
}

// Create stores and returns a new session with default location and unit.
func (c *SessionStore) Create() Session {
	s := Session{
		ID:         uuid.NewString(),
		Coordinate: DefaultCoordinate,
		Label:      DefaultLabel,
		Unit:       DefaultUnit,
		Favorites:  []string{},
		UpdatedAt:  domain.Now(),
	}
	c.Put(s)
	return s
}

// Get returns a copy of the session with id.
func (c *SessionStore) Get(id string) (Session, error) {
	s, ok := c.sessions.Get(id)
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s.Clone(), nil
}

// Update replaces the session with id by fn's result. fn receives a copy
// and runs under the store lock, so it must not call back into the store.
// When fn fails the stored session is left as it was.
func (c *SessionStore) Update(id string, fn func(Session) (Session, error)) (Session, error) {
	stored, ok, err := c.sessions.Update(id, func(cur Session) (Session, error) {
		next, err := fn(cur.Clone())
		if err != nil {
			return cur, err
		}
		next.ID = id
		return next.Clone(), nil
	})
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return stored.Clone(), err
}

// Put replaces the stored session with s.
func (c *SessionStore) Put(s Session) {
	c.sessions.Put(s.ID, s.Clone())
}

// Len reports the number of stored sessions.
func (c *SessionStore) Len() int {
	return c.sessions.Len()
}

// WithBundles returns copies of every session that already holds a bundle,
// without changing recency.
func (c *SessionStore) WithBundles() []Session {
	var out []Session
	c.sessions.Each(func(_ string, s Session) {
		if s.Bundle != nil {
			out = append(out, s.Clone())
		}
	})
	return out
}
