package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OnyinyeO/Tinyapp/internal/db/memorystorage"
	"github.com/OnyinyeO/Tinyapp/internal/ipchecker"
	"github.com/OnyinyeO/Tinyapp/internal/keygen"
	"github.com/OnyinyeO/Tinyapp/internal/logger"
	"github.com/OnyinyeO/Tinyapp/internal/service"
	"github.com/OnyinyeO/Tinyapp/internal/session"
)

const (
	testShortURLBase  = "http://localhost:8080"
	testCookieName    = "session"
	testTrustedSubnet = "127.0.0.0/8"
)

var testSigningKey = []byte("supersecretkey")

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	require.NoError(t, logger.Init("debug"))

	db, err := memorystorage.New()
	require.NoError(t, err)

	checker, err := ipchecker.New(testTrustedSubnet)
	require.NoError(t, err)

	keys := keygen.New(keygen.DefaultLength)
	sessions := session.New(db, testCookieName, testSigningKey, 24*time.Hour)

	srv := httptest.NewServer(New(
		service.NewAuth(db, keys),
		service.NewURLs(db, keys, testShortURLBase),
		sessions,
		checker,
	))
	t.Cleanup(srv.Close)

	return srv
}

// registerUser registers a test user and returns the session token
// from the Authorization response header.
func registerUser(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()

	resp, err := resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(fmt.Sprintf(`{"email": %q, "password": "secret1"}`, email)).
		Post(srv.URL + "/api/user/register")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	token := resp.Header().Get("Authorization")
	require.NotEmpty(t, token)

	return token
}

func createURL(t *testing.T, srv *httptest.Server, token, longURL string) string {
	t.Helper()

	resp, err := resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", token).
		SetBody(fmt.Sprintf(`{"url": %q}`, longURL)).
		Post(srv.URL + "/api/user/urls")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode())

	body := string(resp.Body())
	require.Contains(t, body, testShortURLBase+"/")

	start := strings.Index(body, testShortURLBase+"/") + len(testShortURLBase) + 1
	short := body[start : start+keygen.DefaultLength]

	return short
}

func TestPostAPIUserRegister(t *testing.T) {
	srv := newTestServer(t)

	type tRequest struct {
		body string
	}
	type tExpectedResponse struct {
		code       int
		bodySubstr string
	}
	testCases := []struct {
		name             string
		request          tRequest
		expectedResponse tExpectedResponse
	}{
		{
			name:    "positive",
			request: tRequest{`{"email": "bob@example.com", "password": "secret1"}`},
			expectedResponse: tExpectedResponse{
				code:       http.StatusOK,
				bodySubstr: `"user_id"`,
			},
		},
		{
			name:    "duplicate_email_other_case",
			request: tRequest{`{"email": "BOB@example.com", "password": "secret2"}`},
			expectedResponse: tExpectedResponse{
				code: http.StatusConflict,
			},
		},
		{
			name:    "empty_password",
			request: tRequest{`{"email": "alice@example.com", "password": ""}`},
			expectedResponse: tExpectedResponse{
				code: http.StatusBadRequest,
			},
		},
		{
			name:    "empty_email",
			request: tRequest{`{"email": "", "password": "secret1"}`},
			expectedResponse: tExpectedResponse{
				code: http.StatusBadRequest,
			},
		},
		{
			name:    "malformed_JSON",
			request: tRequest{`{`},
			expectedResponse: tExpectedResponse{
				code: http.StatusBadRequest,
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			resp, err := resty.New().R().
				SetHeader("Content-Type", "application/json").
				SetBody(testCase.request.body).
				Post(srv.URL + "/api/user/register")
			assert.NoError(t, err, "error making HTTP request")

			assert.Equal(t, testCase.expectedResponse.code, resp.StatusCode(), "Response code didn't match expected value")

			if testCase.expectedResponse.bodySubstr != "" {
				assert.Contains(t, string(resp.Body()), testCase.expectedResponse.bodySubstr)
			}
		})
	}
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	srv := newTestServer(t)

	resp, err := resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(`{"email": "bob@example.com", "password": "secret1"}`).
		Post(srv.URL + "/api/user/register")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	var sessionCookieFound bool
	for _, cookie := range resp.Cookies() {
		if cookie.Name == testCookieName && cookie.Value != "" {
			sessionCookieFound = true
		}
	}
	assert.True(t, sessionCookieFound, "registration should start a session")
}

func TestPostAPIUserLogin(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "bob@EXAMPLE.com")

	testCases := []struct {
		name         string
		body         string
		expectedCode int
	}{
		{
			name:         "correct_credentials_other_case",
			body:         `{"email": "bob@example.com", "password": "secret1"}`,
			expectedCode: http.StatusOK,
		},
		{
			name:         "wrong_password",
			body:         `{"email": "bob@example.com", "password": "secret2"}`,
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "unknown_email",
			body:         `{"email": "alice@example.com", "password": "secret1"}`,
			expectedCode: http.StatusUnauthorized,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			resp, err := resty.New().R().
				SetHeader("Content-Type", "application/json").
				SetBody(testCase.body).
				Post(srv.URL + "/api/user/login")
			assert.NoError(t, err)
			assert.Equal(t, testCase.expectedCode, resp.StatusCode())
		})
	}
}

func TestURLLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "bob@example.com")
	client := resty.New()

	short := createURL(t, srv, token, "http://example.com")

	resp, err := client.R().
		SetHeader("Authorization", token).
		Get(srv.URL + "/api/user/urls/" + short)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "http://example.com")

	resp, err = client.R().
		SetHeader("Authorization", token).
		Get(srv.URL + "/api/user/urls")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), short)

	resp, err = client.R().
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", token).
		SetBody(`{"url": "http://example.org"}`).
		Put(srv.URL + "/api/user/urls/" + short)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	resp, err = client.R().
		SetHeader("Authorization", token).
		Get(srv.URL + "/api/user/urls/" + short)
	require.NoError(t, err)
	assert.Contains(t, string(resp.Body()), "http://example.org")

	resp, err = client.R().
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", token).
		SetBody(`{"url": "http://example.org"}`).
		Put(srv.URL + "/api/user/urls/zzzzzz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode(), "editing a missing code is a not-found")

	resp, err = client.R().
		SetHeader("Authorization", token).
		Delete(srv.URL + "/api/user/urls/" + short)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	resp, err = client.R().
		SetHeader("Authorization", token).
		Get(srv.URL + "/api/user/urls/" + short)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())

	resp, err = client.R().
		SetHeader("Authorization", token).
		Get(srv.URL + "/api/user/urls")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())
}

func TestOwnershipIsolation(t *testing.T) {
	srv := newTestServer(t)
	ownerToken := registerUser(t, srv, "owner@example.com")
	otherToken := registerUser(t, srv, "other@example.com")

	short := createURL(t, srv, ownerToken, "http://example.com")

	resp, err := resty.New().R().
		SetHeader("Authorization", otherToken).
		Get(srv.URL + "/api/user/urls/" + short)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode(), "a guessed short code of another user stays unreachable")

	resp, err = resty.New().R().
		SetHeader("Authorization", otherToken).
		Get(srv.URL + "/api/user/urls")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())
}

func TestURLEndpointsRequireSession(t *testing.T) {
	srv := newTestServer(t)

	resp, err := resty.New().R().Get(srv.URL + "/api/user/urls")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())

	resp, err = resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(`{"url": "http://example.com"}`).
		Post(srv.URL + "/api/user/urls")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())
}

func TestPostAPIUserLogout(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "bob@example.com")

	resp, err := resty.New().R().
		SetHeader("Authorization", token).
		Post(srv.URL + "/api/user/logout")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	var destroyed bool
	for _, cookie := range resp.Cookies() {
		if cookie.Name == testCookieName && cookie.Value == "" && cookie.MaxAge < 0 {
			destroyed = true
		}
	}
	assert.True(t, destroyed, "logout should destroy the whole session cookie")
}

func TestGetRedirectToLongURL(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "bob@example.com")
	short := createURL(t, srv, token, "http://example.com")

	client := resty.New().SetRedirectPolicy(resty.NoRedirectPolicy())

	resp, _ := client.R().
		SetHeader("Authorization", token).
		Get(srv.URL + "/" + short)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode())
	assert.Equal(t, "http://example.com", resp.Header().Get("Location"))

	resp, err := client.R().Get(srv.URL + "/" + short)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode(), "redirects are scoped to the session user's collection")
}

func TestGetAPIInternalStats(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "bob@example.com")
	createURL(t, srv, token, "http://example.com")

	resp, err := resty.New().R().
		SetHeader("X-Real-IP", "127.0.0.1").
		Get(srv.URL + "/api/internal/stats")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), `"users":1`)
	assert.Contains(t, string(resp.Body()), `"urls":1`)

	resp, err = resty.New().R().
		SetHeader("X-Real-IP", "10.1.1.1").
		Get(srv.URL + "/api/internal/stats")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode())
}

func TestGetPing(t *testing.T) {
	srv := newTestServer(t)

	resp, err := resty.New().R().Get(srv.URL + "/ping")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
}
