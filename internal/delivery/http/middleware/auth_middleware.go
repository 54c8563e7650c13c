package middleware

import (
	"net/http"
	"strings"

	"safeguard/config"
	deliverycontext "safeguard/internal/delivery/context"
	domainerrors "safeguard/internal/domain/errors"
	"safeguard/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// accessTokenQueryParam carries the token for WebSocket upgrades, which cannot set headers.
const accessTokenQueryParam = "access_token"

// AuthMiddleware verifies the session token of every request in the group.
type AuthMiddleware struct {
	verifier   service.TokenVerifier
	cookieName string
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(verifier service.TokenVerifier, cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, cookieName: cfg.Auth.CookieName}
}

// Authenticate resolves the caller from a Bearer header, the session cookie,
// or for WebSocket upgrades the access_token query parameter.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := m.extractToken(c.Request())
		if !ok {
			return domainerrors.ErrUnauthorized
		}

		identity, err := m.verifier.Verify(token)
		if err != nil {
			return domainerrors.ErrUnauthorized
		}

		deliverycontext.SetIdentity(c, identity)

		return next(c)
	}
}

func (m *AuthMiddleware) extractToken(r *http.Request) (string, bool) {
	if header := r.Header.Get(echo.HeaderAuthorization); header != "" {
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			return "", false
		}

		return token, true
	}

	if m.cookieName != "" {
		if cookie, err := r.Cookie(m.cookieName); err == nil && cookie.Value != "" {
			return cookie.Value, true
		}
	}

	if strings.EqualFold(r.Header.Get(echo.HeaderUpgrade), "websocket") {
		if token := r.URL.Query().Get(accessTokenQueryParam); token != "" {
			return token, true
		}
	}

	return "", false
}
