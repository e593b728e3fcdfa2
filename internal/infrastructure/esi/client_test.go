package esi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mangodeliveries/backend/internal/domain/pricing"
	"github.com/mangodeliveries/backend/internal/infrastructure/config"
)

func testClient(server *httptest.Server) *Client {
	return NewClient(config.ESIConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		CallbackURL:  "https://mango.example/callback",
		LoginURL:     server.URL,
		BaseURL:      server.URL,
		ImageURL:     server.URL,
		Timeout:      2 * time.Second,
	})
}

func TestClient_AuthorizeURL(t *testing.T) {
	client := NewClient(config.ESIConfig{
		ClientID:    "client-id",
		CallbackURL: "https://mango.example/callback",
		LoginURL:    "https://login.eveonline.com",
	})

	raw := client.AuthorizeURL("nonce-123")

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "login.eveonline.com", parsed.Host)
	assert.Equal(t, "/oauth/authorize/", parsed.Path)
	assert.Equal(t, "code", parsed.Query().Get("response_type"))
	assert.Equal(t, "client-id", parsed.Query().Get("client_id"))
	assert.Equal(t, "nonce-123", parsed.Query().Get("state"))
	assert.Equal(t, "https://mango.example/callback", parsed.Query().Get("redirect_uri"))
}

func TestClient_ExchangeCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/oauth/token", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "auth-code", r.PostForm.Get("code"))

		json.NewEncoder(w).Encode(map[string]string{"access_token": "token-abc"})
	}))
	defer server.Close()

	token, err := testClient(server).ExchangeCode(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "token-abc", token)
}

func TestClient_ExchangeCode_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := testClient(server).ExchangeCode(context.Background(), "auth-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}

func TestClient_Verify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/verify", r.URL.Path)
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]int64{"CharacterID": 91000001})
	}))
	defer server.Close()

	id, err := testClient(server).Verify(context.Background(), "token-abc")
	require.NoError(t, err)
	assert.Equal(t, int64(91000001), id)
}

func TestClient_Profile(t *testing.T) {
	allianceID := int64(99000002)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/characters/91000001/", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"name":           "Test Pilot",
			"birthday":       "2015-03-24T11:37:00Z",
			"corporation_id": 98000001,
			"alliance_id":    allianceID,
		})
	}))
	defer server.Close()

	profile, err := testClient(server).Profile(context.Background(), 91000001)
	require.NoError(t, err)
	assert.Equal(t, "Test Pilot", profile.Name)
	assert.Equal(t, int64(98000001), profile.CorporationID)
	require.NotNil(t, profile.AllianceID)
	assert.Equal(t, allianceID, *profile.AllianceID)
	assert.Equal(t, 2015, profile.Birthday.Year())
}

func TestClient_Profile_NoAlliance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"name":           "Lone Pilot",
			"birthday":       "2020-01-01T00:00:00Z",
			"corporation_id": 98000001,
		})
	}))
	defer server.Close()

	profile, err := testClient(server).Profile(context.Background(), 91000002)
	require.NoError(t, err)
	assert.Nil(t, profile.AllianceID)
}

func TestClient_Portrait_ForcesHTTPS(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/characters/91000001/portrait/", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{
			"px64x64": "http://images.evetech.net/characters/91000001/portrait?size=64",
		})
	}))
	defer server.Close()

	portrait, err := testClient(server).Portrait(context.Background(), 91000001)
	require.NoError(t, err)
	assert.Equal(t, "https://images.evetech.net/characters/91000001/portrait?size=64", portrait)
}

func TestClient_Corporation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/corporations/98000001/":
			json.NewEncoder(w).Encode(map[string]string{"name": "Test Corp"})
		case "/corporations/98000001/icons/":
			json.NewEncoder(w).Encode(map[string]string{"px64x64": "https://images.evetech.net/corporations/98000001/logo?size=64"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	name, icon, err := testClient(server).Corporation(context.Background(), 98000001)
	require.NoError(t, err)
	assert.Equal(t, "Test Corp", name)
	assert.Contains(t, icon, "/corporations/98000001/logo")
}

func TestClient_ResolveSystem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/universe/ids/", r.URL.Path)

		var names []string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&names))
		require.Equal(t, []string{"Jita"}, names)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"systems": []map[string]interface{}{{"id": 30000142, "name": "Jita"}},
		})
	}))
	defer server.Close()

	id, ok, err := testClient(server).ResolveSystem(context.Background(), "Jita")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(30000142), id)
}

func TestClient_ResolveSystem_Unknown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{})
	}))
	defer server.Close()

	_, ok, err := testClient(server).ResolveSystem(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_Route(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/route/30000142/30002053/", r.URL.Path)
		assert.Equal(t, "secure", r.URL.Query().Get("flag"))
		json.NewEncoder(w).Encode([]int64{30000142, 30000144, 30002053})
	}))
	defer server.Close()

	route, err := testClient(server).Route(context.Background(), 30000142, 30002053, pricing.PreferenceSecure)
	require.NoError(t, err)
	assert.Len(t, route, 3)
}
