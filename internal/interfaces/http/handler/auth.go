package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	identityapp "github.com/mangodeliveries/backend/internal/application/identity"
	"github.com/mangodeliveries/backend/internal/domain/admin"
	"github.com/mangodeliveries/backend/internal/infrastructure/config"
	"github.com/mangodeliveries/backend/internal/infrastructure/logger"
	"github.com/mangodeliveries/backend/internal/interfaces/http/dto"
	"github.com/mangodeliveries/backend/internal/interfaces/http/middleware"
)

// LoginFlow drives the identity-provider handshake
type LoginFlow interface {
	BeginLogin(ctx context.Context) (string, error)
	Callback(ctx context.Context, state, code string) (*identityapp.CallbackResult, error)
}

// SessionIssuer mints session cookies for a provider token
type SessionIssuer interface {
	Issue(characterToken string) (string, time.Time, error)
}

// AuthHandler serves login, callback and the session-aware page data
type AuthHandler struct {
	BaseHandler
	login        LoginFlow
	sessions     SessionIssuer
	destinations admin.DestinationRepository
	cookies      config.SessionConfig
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(login LoginFlow, sessions SessionIssuer, destinations admin.DestinationRepository, cookies config.SessionConfig) *AuthHandler {
	return &AuthHandler{
		login:        login,
		sessions:     sessions,
		destinations: destinations,
		cookies:      cookies,
	}
}

// RegisterRoutes registers the auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/login", h.Login)
	rg.POST("/callback", h.Callback)
	rg.GET("/index", h.Index)
	rg.GET("/character", h.Character)
}

// Login redirects to the identity provider with a fresh state nonce
func (h *AuthHandler) Login(c *gin.Context) {
	redirect, err := h.login.BeginLogin(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, redirect)
}

// Callback completes the provider handshake. A successful, authorized
// login gets a session cookie and lands on the home page; a valid login
// that fails the access policy is sent to /unauthorized without one.
func (h *AuthHandler) Callback(c *gin.Context) {
	state := c.Query("state")
	if state == "" {
		state = c.PostForm("state")
	}
	code := c.Query("code")
	if code == "" {
		code = c.PostForm("code")
	}

	result, err := h.login.Callback(c.Request.Context(), state, code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if !result.Authorized {
		c.Redirect(http.StatusFound, "/unauthorized")
		return
	}

	cookie, expires, err := h.sessions.Issue(result.Character.Token)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	maxAge := int(time.Until(expires).Seconds())
	c.SetSameSite(h.sameSite())
	c.SetCookie(h.cookies.CookieName, cookie, maxAge, "/", h.cookies.Domain, h.cookies.Secure, true)
	c.Redirect(http.StatusFound, "/")
}

// Index returns the public landing page data. The identity block is
// empty for anonymous visitors.
func (h *AuthHandler) Index(c *gin.Context) {
	destinations, err := h.destinations.All(c.Request.Context())
	if err != nil {
		logger.GetGinLogger(c).Warn("destination catalog unavailable", zap.Error(err))
		destinations = nil
	}

	var characterBlock interface{} = gin.H{}
	if character := middleware.CharacterFrom(c); character != nil {
		characterBlock = dto.NewCharacterView(character)
	}

	c.JSON(http.StatusOK, gin.H{
		"character":    characterBlock,
		"destinations": destinationViews(destinations),
		"title":        "Home - Mango Deliveries",
		"active":       "Home",
	})
}

// Character returns the current identity snapshot, or redirects an
// anonymous visitor to the login flow.
func (h *AuthHandler) Character(c *gin.Context) {
	character := middleware.CharacterFrom(c)
	if character == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	c.JSON(http.StatusOK, dto.NewCharacterView(character))
}

func (h *AuthHandler) sameSite() http.SameSite {
	switch h.cookies.SameSite {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func destinationViews(destinations []admin.Destination) []gin.H {
	views := make([]gin.H, 0, len(destinations))
	for _, d := range destinations {
		views = append(views, gin.H{"name": d.Name, "image": d.Image})
	}
	return views
}
