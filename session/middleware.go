package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CookieName carries the opaque session id.
const CookieName = "globetrail.sid"

const contextKey = "session"

// Manager ties the Store to gin requests and the session cookie.
type Manager struct {
	store  Store
	ttl    time.Duration
	secure bool
	log    *zap.Logger
}

func NewManager(store Store, ttl time.Duration, secure bool, log *zap.Logger) *Manager {
	return &Manager{store: store, ttl: ttl, secure: secure, log: log}
}

// Load attaches the caller's session, if any, and renews the cookie.
// Requests without a valid session pass through unchanged.
func (m *Manager) Load() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(CookieName)
		if err != nil || id == "" {
			c.Next()
			return
		}

		s, err := m.store.Get(c.Request.Context(), id)
		switch {
		case errors.Is(err, ErrNoSession):
			m.clearCookie(c)
		case err != nil:
			m.log.Error("❌ session lookup failed", zap.Error(err))
		default:
			c.Set(contextKey, s)
			m.setCookie(c, s.ID)
		}
		c.Next()
	}
}

// Require rejects requests that carry no session.
func Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := FromContext(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "authentication required",
			})
			return
		}
		c.Next()
	}
}

// FromContext returns the session Load attached.
func FromContext(c *gin.Context) (*Session, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*Session)
	return s, ok && s != nil
}

// Start creates a session for the user and sets the cookie. A session the
// request already carried is destroyed first.
func (m *Manager) Start(c *gin.Context, userID, email, name string) (*Session, error) {
	if prev, ok := FromContext(c); ok {
		if err := m.store.Delete(c.Request.Context(), prev.ID); err != nil {
			return nil, err
		}
	}
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Email:     email,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.store.Create(c.Request.Context(), s); err != nil {
		return nil, err
	}
	c.Set(contextKey, s)
	m.setCookie(c, s.ID)
	return s, nil
}

// End destroys the current session, if any, and clears the cookie.
func (m *Manager) End(c *gin.Context) error {
	m.clearCookie(c)
	s, ok := FromContext(c)
	if !ok {
		return nil
	}
	return m.store.Delete(c.Request.Context(), s.ID)
}

func (m *Manager) setCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, id, int(m.ttl.Seconds()), "/", "", m.secure, true)
}

func (m *Manager) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", m.secure, true)
}
