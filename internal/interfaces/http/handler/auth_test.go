package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identityapp "github.com/mangodeliveries/backend/internal/application/identity"
	"github.com/mangodeliveries/backend/internal/domain/admin"
	"github.com/mangodeliveries/backend/internal/domain/identity"
	"github.com/mangodeliveries/backend/internal/domain/shared"
	"github.com/mangodeliveries/backend/internal/infrastructure/config"
	"github.com/mangodeliveries/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeLoginFlow struct {
	redirect string
	result   *identityapp.CallbackResult
	err      error
}

func (f *fakeLoginFlow) BeginLogin(context.Context) (string, error) {
	return f.redirect, f.err
}

func (f *fakeLoginFlow) Callback(context.Context, string, string) (*identityapp.CallbackResult, error) {
	return f.result, f.err
}

type fakeIssuer struct{}

func (fakeIssuer) Issue(string) (string, time.Time, error) {
	return "signed-cookie", time.Now().Add(time.Hour), nil
}

type fakeDestinations struct {
	all []admin.Destination
	err error
}

func (f *fakeDestinations) All(context.Context) ([]admin.Destination, error) { return f.all, f.err }
func (f *fakeDestinations) Add(context.Context, admin.Destination) error     { return nil }
func (f *fakeDestinations) Remove(context.Context, string) error             { return nil }

func testPilot() *identity.Character {
	return &identity.Character{
		ID:              91000001,
		Token:           "provider-token",
		CharacterName:   "Test Pilot",
		CorporationName: "Test Corp",
	}
}

// withCharacter injects a session identity the way the session
// middleware would.
func withCharacter(ch *identity.Character) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ch != nil {
			c.Set(middleware.CharacterKey, ch)
		}
		c.Next()
	}
}

func authEngine(flow LoginFlow, destinations admin.DestinationRepository, ch *identity.Character) *gin.Engine {
	engine := gin.New()
	engine.Use(withCharacter(ch))
	handler := NewAuthHandler(flow, fakeIssuer{}, destinations, config.SessionConfig{
		CookieName: "mango_session",
		SameSite:   "lax",
	})
	handler.RegisterRoutes(engine.Group("/"))
	return engine
}

func TestAuthHandler_LoginRedirects(t *testing.T) {
	engine := authEngine(&fakeLoginFlow{redirect: "https://login.eveonline.com/oauth/authorize/?state=x"}, &fakeDestinations{}, nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "login.eveonline.com")
}

func TestAuthHandler_CallbackIssuesCookie(t *testing.T) {
	flow := &fakeLoginFlow{result: &identityapp.CallbackResult{Character: testPilot(), Authorized: true}}
	engine := authEngine(flow, &fakeDestinations{}, nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/callback?state=s&code=c", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "mango_session", cookies[0].Name)
	assert.Equal(t, "signed-cookie", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestAuthHandler_CallbackUnauthorizedSkipsCookie(t *testing.T) {
	flow := &fakeLoginFlow{result: &identityapp.CallbackResult{Character: testPilot(), Authorized: false}}
	engine := authEngine(flow, &fakeDestinations{}, nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/callback?state=s&code=c", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/unauthorized", w.Header().Get("Location"))
	assert.Empty(t, w.Result().Cookies())
}

func TestAuthHandler_CallbackStateMismatch(t *testing.T) {
	flow := &fakeLoginFlow{err: shared.NewDomainError("FORBIDDEN", "Login state mismatch. Please retry from the start.")}
	engine := authEngine(flow, &fakeDestinations{}, nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/callback?state=wrong&code=c", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "state mismatch")
}

func TestAuthHandler_CallbackUpstreamFailure(t *testing.T) {
	flow := &fakeLoginFlow{err: shared.NewDomainError("UPSTREAM_ERROR", "The identity provider is unavailable. Please try again.")}
	engine := authEngine(flow, &fakeDestinations{}, nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/callback?state=s&code=c", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthHandler_IndexAnonymous(t *testing.T) {
	destinations := &fakeDestinations{all: []admin.Destination{{Name: "O3L-95", Image: "o3l.png"}}}
	engine := authEngine(&fakeLoginFlow{}, destinations, nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/index", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.JSONEq(t, `{}`, string(body["character"]))
	assert.Contains(t, string(body["destinations"]), "O3L-95")
	assert.Contains(t, string(body["title"]), "Home - Mango Deliveries")
}

func TestAuthHandler_IndexWithSession(t *testing.T) {
	engine := authEngine(&fakeLoginFlow{}, &fakeDestinations{}, testPilot())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/index", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Test Pilot")
	assert.NotContains(t, w.Body.String(), "provider-token")
}

func TestAuthHandler_CharacterRedirectsAnonymous(t *testing.T) {
	engine := authEngine(&fakeLoginFlow{}, &fakeDestinations{}, nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/character", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestAuthHandler_CharacterSnapshot(t *testing.T) {
	engine := authEngine(&fakeLoginFlow{}, &fakeDestinations{}, testPilot())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/character", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"characterName":"Test Pilot"`)
	assert.NotContains(t, w.Body.String(), "provider-token")
}
