package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/lecturealert/internal/app/models"
	"github.com/yigit/lecturealert/internal/app/models/dto"
	"github.com/yigit/lecturealert/internal/app/session"
)

// SessionCookieName holds the opaque browser session id
const SessionCookieName = "lecturealert_session"

const (
	providerKey  = "sessionProvider"
	identityKey  = "identity"
	readyTimeout = 5 * time.Second
)

// SessionMiddleware binds every request to the Provider of its browser session
type SessionMiddleware struct {
	manager      *session.Manager
	cookieSecure bool
	cookieMaxAge time.Duration
}

// NewSessionMiddleware creates a new SessionMiddleware
func NewSessionMiddleware(manager *session.Manager, cookieSecure bool, cookieMaxAge time.Duration) *SessionMiddleware {
	return &SessionMiddleware{
		manager:      manager,
		cookieSecure: cookieSecure,
		cookieMaxAge: cookieMaxAge,
	}
}

// Attach resolves the session cookie (issuing one when missing or malformed)
// and waits for the provider to leave the loading state. A provider that
// signed in during the request is registered once the handler returns.
func (m *SessionMiddleware) Attach() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookieName)
		issued := err != nil || uuid.Validate(sessionID) != nil
		if issued {
			sessionID = uuid.NewString()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookieName, sessionID, int(m.cookieMaxAge.Seconds()), "/", "", m.cookieSecure, true)

		var provider *session.Provider
		if issued {
			provider = m.manager.Anonymous(sessionID)
		} else {
			provider = m.manager.Get(c.Request.Context(), sessionID)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()
		if err := provider.WaitReady(ctx); err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeBackendUnavailable, "Session is still loading")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Set(providerKey, provider)
		if identity, _ := provider.Identity(); identity != nil {
			c.Set(identityKey, identity)
		}
		c.Next()

		if provider.Current().Status == session.StatusAuthenticated {
			m.manager.Adopt(provider)
		}
	}
}

// IdentityRequired rejects requests without a signed-in user
func (m *SessionMiddleware) IdentityRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IdentityFrom(c) == nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}
		c.Next()
	}
}

// ProviderFrom returns the provider bound by Attach
func ProviderFrom(c *gin.Context) *session.Provider {
	v, ok := c.Get(providerKey)
	if !ok {
		return nil
	}
	p, _ := v.(*session.Provider)
	return p
}

// IdentityFrom returns the identity captured by Attach, nil when signed out
func IdentityFrom(c *gin.Context) *models.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*models.Identity)
	return identity
}
