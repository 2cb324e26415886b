package examples

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"

	"github.com/OnyinyeO/Tinyapp/internal/config"
	"github.com/OnyinyeO/Tinyapp/internal/db/memorystorage"
	"github.com/OnyinyeO/Tinyapp/internal/ipchecker"
	"github.com/OnyinyeO/Tinyapp/internal/keygen"
	"github.com/OnyinyeO/Tinyapp/internal/logger"
	"github.com/OnyinyeO/Tinyapp/internal/models"
	"github.com/OnyinyeO/Tinyapp/internal/router"
	"github.com/OnyinyeO/Tinyapp/internal/service"
	"github.com/OnyinyeO/Tinyapp/internal/session"
)

func setupExampleServer() *httptest.Server {
	cfg, err := config.New(config.WithDisableFlagsParsing(true))
	if err != nil {
		panic(err)
	}

	db, err := memorystorage.New()
	if err != nil {
		panic(err)
	}

	signingKey, err := base64.URLEncoding.DecodeString(cfg.SessionSigningSecretKey)
	if err != nil {
		panic(err)
	}

	checker, err := ipchecker.New(cfg.TrustedSubnet)
	if err != nil {
		panic(err)
	}

	keys := keygen.New(keygen.DefaultLength)
	sessions := session.New(db, cfg.SessionCookieName, signingKey, cfg.SessionTTL)

	if err := logger.Init("debug"); err != nil {
		panic(err)
	}

	return httptest.NewServer(router.New(
		service.NewAuth(db, keys),
		service.NewURLs(db, keys, cfg.ShortURLBase),
		sessions,
		checker,
	))
}

func ExampleRouter_GetPing() {
	server := setupExampleServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/ping")
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	fmt.Println("Status Code:", resp.StatusCode)

	// Output:
	// Status Code: 200
}

func ExampleRouter_PostAPIUserRegister() {
	server := setupExampleServer()
	defer server.Close()

	payload := models.RegisterRequest{Email: "bob@example.com", Password: "secret1"}
	body, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}

	resp, err := http.Post(server.URL+"/api/user/register", "application/json", bytes.NewReader(body))
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		panic(err)
	}

	re := regexp.MustCompile(`\{\s*"user_id"\s*:\s*"\w{6}"\s*\}`)

	fmt.Println("Status Code:", resp.StatusCode)
	fmt.Println("re.Match(b):", re.Match(b))

	// Output:
	// Status Code: 200
	// re.Match(b): true
}

func ExampleRouter_PostAPIUserUrls() {
	server := setupExampleServer()
	defer server.Close()

	registerBody, err := json.Marshal(models.RegisterRequest{Email: "bob@example.com", Password: "secret1"})
	if err != nil {
		panic(err)
	}

	registerResp, err := http.Post(server.URL+"/api/user/register", "application/json", bytes.NewReader(registerBody))
	if err != nil {
		panic(err)
	}
	defer registerResp.Body.Close()

	token := registerResp.Header.Get("Authorization")

	shortenBody, err := json.Marshal(models.ShortenRequest{URL: "https://example.com"})
	if err != nil {
		panic(err)
	}

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/user/urls", bytes.NewReader(shortenBody))
	if err != nil {
		panic(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		panic(err)
	}

	re := regexp.MustCompile(`\{\s*"result"\s*:\s*"http://localhost:8080/\w{6}"\s*\}`)

	fmt.Println("Status Code:", resp.StatusCode)
	fmt.Println("re.Match(b):", re.Match(b))

	// Output:
	// Status Code: 201
	// re.Match(b): true
}
