package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vibe-gaming/passwordless/internal/domain"
	"github.com/vibe-gaming/passwordless/internal/service"
)

const (
	authorizationHeader = "Authorization"
	identityCtx         = "identity"
	sessionCtx          = "session"
)

var errNoSessionToken = errors.New("no session token")

// sessionMiddleware accepts the token from a Bearer header or, failing that,
// from the session cookie.
func (h *Handler) sessionMiddleware(c *gin.Context) {
	token, err := h.sessionToken(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, SessionNotFoundCode)
		return
	}

	identity, session, err := h.services.Sessions.ValidateSession(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrSessionExpired) || errors.Is(err, service.ErrSessionInvalid) {
			h.clearSessionCookie(c)
		}
		serviceErrorResponse(c, err)
		return
	}

	c.Set(identityCtx, identity)
	c.Set(sessionCtx, session)
	c.Next()
}

func (h *Handler) sessionToken(c *gin.Context) (string, error) {
	if header := c.GetHeader(authorizationHeader); header != "" {
		headerParts := strings.Split(header, " ")
		if len(headerParts) != 2 || headerParts[0] != "Bearer" || headerParts[1] == "" {
			return "", errors.New("invalid auth header")
		}

		return headerParts[1], nil
	}

	token, err := c.Cookie(h.config.Auth.Cookie.Name)
	if err != nil || token == "" {
		return "", errNoSessionToken
	}

	return token, nil
}

func getIdentity(c *gin.Context) (*domain.Identity, *service.Session, bool) {
	identity, ok := c.Get(identityCtx)
	if !ok {
		return nil, nil, false
	}
	session, ok := c.Get(sessionCtx)
	if !ok {
		return nil, nil, false
	}

	i, ok := identity.(*domain.Identity)
	if !ok {
		return nil, nil, false
	}
	s, ok := session.(*service.Session)
	if !ok {
		return nil, nil, false
	}

	return i, s, true
}

func (h *Handler) setSessionCookie(c *gin.Context, session *service.Session) {
	maxAge := int(session.ExpiresAt.Sub(session.IssuedAt).Seconds())
	cookie := h.config.Auth.Cookie

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookie.Name, session.Token, maxAge, "/", cookie.Domain, cookie.Secure, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	cookie := h.config.Auth.Cookie

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookie.Name, "", -1, "/", cookie.Domain, cookie.Secure, true)
}

func clientInfo(c *gin.Context) domain.ClientInfo {
	return domain.ClientInfo{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}
