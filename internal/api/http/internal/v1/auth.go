package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vibe-gaming/passwordless/internal/domain"
	"github.com/vibe-gaming/passwordless/internal/service"
	"github.com/vibe-gaming/passwordless/pkg/limiter"
)

func (h *Handler) initAuthRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")

	issue := auth.Group("", limiter.LimitByIP(h.issueWindow))
	issue.POST("/code", h.requestCode)
	issue.POST("/magic-link", h.requestMagicLink)

	auth.POST("/code/verify", h.verifyCode)
	auth.GET("/magic-link/verify", h.verifyMagicLink)
	auth.POST("/profile", h.completeProfile)
	auth.GET("/email-exists", h.checkEmailExists)
	auth.GET("/session", h.sessionMiddleware, h.getCurrentSession)
	auth.POST("/logout", h.logout)
}

type requestCodeInput struct {
	Email   string `json:"email" binding:"required,email,max=254"`
	Purpose string `json:"purpose" binding:"required,oneof=login signup"`
}

type verifyCodeInput struct {
	Email string `json:"email" binding:"required,email,max=254"`
	Code  string `json:"code" binding:"required,otpcode"`
}

type requestMagicLinkInput struct {
	Email string `json:"email" binding:"required,email,max=254"`
}

type verifyMagicLinkInput struct {
	Token string `form:"token" binding:"required"`
	Email string `form:"email" binding:"required,email,max=254"`
}

type completeProfileInput struct {
	Ticket string `json:"ticket" binding:"required"`
	Name   string `json:"name" binding:"required,max=255"`
}

type emailExistsInput struct {
	Email string `form:"email" binding:"required,email,max=254"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type sessionResponse struct {
	Token      string    `json:"token"`
	IdentityID uuid.UUID `json:"identity_id"`
	Email      string    `json:"email"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type profileTicketResponse struct {
	Ticket    string    `json:"ticket"`
	ExpiresAt time.Time `json:"expires_at"`
}

type verificationResponse struct {
	IsNewIdentity bool                   `json:"is_new_identity"`
	IdentityID    *uuid.UUID             `json:"identity_id,omitempty"`
	Session       *sessionResponse       `json:"session,omitempty"`
	ProfileTicket *profileTicketResponse `json:"profile_ticket,omitempty"`
}

type completeProfileResponse struct {
	Identity *domain.Identity `json:"identity"`
	Session  *sessionResponse `json:"session"`
}

type currentSessionResponse struct {
	Identity  *domain.Identity `json:"identity"`
	IssuedAt  time.Time        `json:"issued_at"`
	ExpiresAt time.Time        `json:"expires_at"`
}

type emailExistsResponse struct {
	Exists bool `json:"exists"`
}

func newSessionResponse(s *service.Session) *sessionResponse {
	return &sessionResponse{
		Token:      s.Token,
		IdentityID: s.IdentityID,
		Email:      s.Email,
		IssuedAt:   s.IssuedAt,
		ExpiresAt:  s.ExpiresAt,
	}
}

// @Summary Request a sign-in code
// @Tags Auth
// @Description Emails a one-time numeric code
// @ModuleID requestCode
// @Accept  json
// @Produce  json
// @Param input body requestCodeInput true "email and purpose"
// @Success 200 {object} messageResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 429 {object} ErrorStruct
// @Failure 503 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /auth/code [post]
func (h *Handler) requestCode(c *gin.Context) {
	var inp requestCodeInput
	if err := c.ShouldBindJSON(&inp); err != nil {
		bindingErrorResponse(c, err)
		return
	}

	if err := h.services.Codes.RequestCode(c.Request.Context(), inp.Email, domain.CodePurpose(inp.Purpose)); err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "code sent"})
}

// @Summary Verify a sign-in code
// @Tags Auth
// @Description Returns a session for a known identity or a profile ticket for a new one
// @ModuleID verifyCode
// @Accept  json
// @Produce  json
// @Param input body verifyCodeInput true "email and code"
// @Success 200 {object} verificationResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 401 {object} ErrorStruct
// @Failure 429 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /auth/code/verify [post]
func (h *Handler) verifyCode(c *gin.Context) {
	var inp verifyCodeInput
	if err := c.ShouldBindJSON(&inp); err != nil {
		bindingErrorResponse(c, err)
		return
	}

	verification, err := h.services.Codes.VerifyCode(c.Request.Context(), inp.Email, inp.Code, clientInfo(c))
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	h.signIn(c, verification)
}

// @Summary Request a magic link
// @Tags Auth
// @Description Emails a single-use sign-in link. The link is never returned in the response.
// @ModuleID requestMagicLink
// @Accept  json
// @Produce  json
// @Param input body requestMagicLinkInput true "email"
// @Success 200 {object} messageResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 429 {object} ErrorStruct
// @Failure 503 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /auth/magic-link [post]
func (h *Handler) requestMagicLink(c *gin.Context) {
	var inp requestMagicLinkInput
	if err := c.ShouldBindJSON(&inp); err != nil {
		bindingErrorResponse(c, err)
		return
	}

	if _, err := h.services.MagicLinks.RequestMagicLink(c.Request.Context(), inp.Email); err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "link sent"})
}

// @Summary Verify a magic link
// @Tags Auth
// @Description Returns a session for a known identity or a profile ticket for a new one
// @ModuleID verifyMagicLink
// @Produce  json
// @Param token query string true "link token"
// @Param email query string true "email the link was sent to"
// @Success 200 {object} verificationResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 401 {object} ErrorStruct
// @Failure 429 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /auth/magic-link/verify [get]
func (h *Handler) verifyMagicLink(c *gin.Context) {
	var inp verifyMagicLinkInput
	if err := c.ShouldBindQuery(&inp); err != nil {
		bindingErrorResponse(c, err)
		return
	}

	verification, err := h.services.MagicLinks.VerifyMagicLink(c.Request.Context(), inp.Token, inp.Email, clientInfo(c))
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	h.signIn(c, verification)
}

func (h *Handler) signIn(c *gin.Context, verification *service.Verification) {
	res, err := h.services.Sessions.SignIn(c.Request.Context(), verification, clientInfo(c))
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	response := verificationResponse{
		IsNewIdentity: res.IsNewIdentity,
		IdentityID:    res.IdentityID,
	}

	if res.Session != nil {
		response.Session = newSessionResponse(res.Session)
		h.setSessionCookie(c, res.Session)
	}

	if res.ProfileTicket != nil {
		response.ProfileTicket = &profileTicketResponse{
			Ticket:    res.ProfileTicket.Ticket,
			ExpiresAt: res.ProfileTicket.ExpiresAt,
		}
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Complete a new identity
// @Tags Auth
// @Description Creates the identity named in the profile ticket and signs it in
// @ModuleID completeProfile
// @Accept  json
// @Produce  json
// @Param input body completeProfileInput true "profile ticket and display name"
// @Success 201 {object} completeProfileResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 401 {object} ErrorStruct
// @Failure 409 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /auth/profile [post]
func (h *Handler) completeProfile(c *gin.Context) {
	var inp completeProfileInput
	if err := c.ShouldBindJSON(&inp); err != nil {
		bindingErrorResponse(c, err)
		return
	}

	identity, session, err := h.services.Sessions.CompleteProfile(c.Request.Context(), inp.Ticket, inp.Name, clientInfo(c))
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	h.setSessionCookie(c, session)

	c.JSON(http.StatusCreated, completeProfileResponse{
		Identity: identity,
		Session:  newSessionResponse(session),
	})
}

// @Summary Check whether an identity exists
// @Tags Auth
// @ModuleID checkEmailExists
// @Produce  json
// @Param email query string true "email"
// @Success 200 {object} emailExistsResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /auth/email-exists [get]
func (h *Handler) checkEmailExists(c *gin.Context) {
	var inp emailExistsInput
	if err := c.ShouldBindQuery(&inp); err != nil {
		bindingErrorResponse(c, err)
		return
	}

	exists, err := h.services.Sessions.CheckEmailExists(c.Request.Context(), inp.Email)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, emailExistsResponse{Exists: exists})
}

// @Summary Current session
// @Tags Auth
// @ModuleID getCurrentSession
// @Produce  json
// @Success 200 {object} currentSessionResponse
// @Failure 401 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Security SessionAuth
// @Router /auth/session [get]
func (h *Handler) getCurrentSession(c *gin.Context) {
	identity, session, ok := getIdentity(c)
	if !ok {
		errorResponse(c, http.StatusUnauthorized, SessionNotFoundCode)
		return
	}

	c.JSON(http.StatusOK, currentSessionResponse{
		Identity:  identity,
		IssuedAt:  session.IssuedAt,
		ExpiresAt: session.ExpiresAt,
	})
}

// @Summary Log out
// @Tags Auth
// @Description Clears the session cookie. Issued tokens stay valid until they expire.
// @ModuleID logout
// @Success 204
// @Router /auth/logout [post]
func (h *Handler) logout(c *gin.Context) {
	h.clearSessionCookie(c)
	c.Status(http.StatusNoContent)
}
