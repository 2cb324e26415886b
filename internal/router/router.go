// Package router wires the JSON API: route registration, request decoding
// and validation, and the mapping of service errors to HTTP status codes.
// The core services never see HTTP.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/thoas/go-funk"
	"go.uber.org/zap"

	"github.com/OnyinyeO/Tinyapp/internal/gzippedhttp"
	"github.com/OnyinyeO/Tinyapp/internal/ipchecker"
	"github.com/OnyinyeO/Tinyapp/internal/logger"
	"github.com/OnyinyeO/Tinyapp/internal/models"
	"github.com/OnyinyeO/Tinyapp/internal/service"
	"github.com/OnyinyeO/Tinyapp/internal/session"
	"github.com/OnyinyeO/Tinyapp/internal/user"
)

type authService interface {
	Register(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type urlsService interface {
	List(ctx context.Context, userID string) (map[string]user.URLRecord, error)
	Create(ctx context.Context, userID, longURL string) (string, error)
	Get(ctx context.Context, userID, short string) (user.URLRecord, error)
	Edit(ctx context.Context, userID, short, newLongURL string) error
	Delete(ctx context.Context, userID, short string) error
	GetInternalStats(ctx context.Context) (models.InternalStatsResponse, error)
	Ping(ctx context.Context) error
	GetShortURL(shortKey string) string
}

type sessioner interface {
	Set(response http.ResponseWriter, userID string) error
	Destroy(response http.ResponseWriter)
	RequireUser(h http.Handler) http.Handler
}

// Router holds the handlers of the JSON API.
type Router struct {
	auth     authService
	urls     urlsService
	sessions sessioner
	checker  *ipchecker.IPChecker
	validate *validator.Validate
}

// New assembles the chi router with the middleware chain and all routes.
func New(
	auth authService,
	urls urlsService,
	sessions sessioner,
	checker *ipchecker.IPChecker,
) *chi.Mux {
	myRouter := &Router{
		auth:     auth,
		urls:     urls,
		sessions: sessions,
		checker:  checker,
		validate: validator.New(),
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		gzippedhttp.UngzipRequest,
		gzippedhttp.GzipResponse,
	)

	router.Post(`/api/user/register`, myRouter.PostAPIUserRegister)
	router.Post(`/api/user/login`, myRouter.PostAPIUserLogin)
	router.Post(`/api/user/logout`, myRouter.PostAPIUserLogout)

	router.With(sessions.RequireUser).Route(`/api/user/urls`, func(r chi.Router) {
		r.Get(`/`, myRouter.GetAPIUserUrls)
		r.Post(`/`, myRouter.PostAPIUserUrls)
		r.Get(`/{short}`, myRouter.GetAPIUserURL)
		r.Put(`/{short}`, myRouter.PutAPIUserURL)
		r.Delete(`/{short}`, myRouter.DeleteAPIUserURL)
	})

	router.Get(`/api/internal/stats`, myRouter.GetAPIInternalStats)
	router.Get(`/ping`, myRouter.GetPing)
	router.With(sessions.RequireUser).Get(`/{short}`, myRouter.GetRedirectToLongURL)

	return router
}

// PostAPIUserRegister handles POST /api/user/register.
func (router *Router) PostAPIUserRegister(response http.ResponseWriter, request *http.Request) {
	registerRequest := models.RegisterRequest{}
	if !router.decodeAndValidate(response, request, &registerRequest, http.StatusBadRequest) {
		return
	}

	userID, err := router.auth.Register(request.Context(), registerRequest.Email, registerRequest.Password)
	if err != nil {
		router.writeServiceError(response, err)
		return
	}

	if err := router.sessions.Set(response, userID); err != nil {
		logger.Log.Debugln("Error calling the `router.sessions.Set()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(response, http.StatusOK, models.AuthResponse{UserID: userID})
}

// PostAPIUserLogin handles POST /api/user/login.
func (router *Router) PostAPIUserLogin(response http.ResponseWriter, request *http.Request) {
	loginRequest := models.LoginRequest{}
	if !router.decodeAndValidate(response, request, &loginRequest, http.StatusBadRequest) {
		return
	}

	userID, err := router.auth.Login(request.Context(), loginRequest.Email, loginRequest.Password)
	if err != nil {
		router.writeServiceError(response, err)
		return
	}

	if err := router.sessions.Set(response, userID); err != nil {
		logger.Log.Debugln("Error calling the `router.sessions.Set()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(response, http.StatusOK, models.AuthResponse{UserID: userID})
}

// PostAPIUserLogout handles POST /api/user/logout.
// The whole session is destroyed, not just the user id inside it.
func (router *Router) PostAPIUserLogout(response http.ResponseWriter, request *http.Request) {
	router.sessions.Destroy(response)
	response.WriteHeader(http.StatusOK)
}

// GetAPIUserUrls handles GET /api/user/urls.
func (router *Router) GetAPIUserUrls(response http.ResponseWriter, request *http.Request) {
	userID := userIDFromContext(request)

	records, err := router.urls.List(request.Context(), userID)
	if err != nil {
		router.writeServiceError(response, err)
		return
	}

	if len(records) == 0 {
		response.WriteHeader(http.StatusNoContent)
		return
	}

	shortCodes := funk.Keys(records).([]string)
	sort.Strings(shortCodes)

	result := make(models.OwnedURLs, 0, len(records))
	for _, short := range shortCodes {
		result = append(result, models.OwnedURL{
			ShortCode: short,
			ShortURL:  router.urls.GetShortURL(short),
			LongURL:   records[short].LongURL,
		})
	}

	writeJSON(response, http.StatusOK, result)
}

// PostAPIUserUrls handles POST /api/user/urls.
func (router *Router) PostAPIUserUrls(response http.ResponseWriter, request *http.Request) {
	shortenRequest := models.ShortenRequest{}
	if !router.decodeAndValidate(response, request, &shortenRequest, http.StatusUnprocessableEntity) {
		return
	}

	short, err := router.urls.Create(request.Context(), userIDFromContext(request), shortenRequest.URL)
	if err != nil {
		router.writeServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusCreated, models.ShortenResponse{
		Result: router.urls.GetShortURL(short),
	})
}

// GetAPIUserURL handles GET /api/user/urls/{short}.
func (router *Router) GetAPIUserURL(response http.ResponseWriter, request *http.Request) {
	short := chi.URLParam(request, "short")

	record, err := router.urls.Get(request.Context(), userIDFromContext(request), short)
	if err != nil {
		router.writeServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, models.OwnedURL{
		ShortCode: record.ShortCode,
		ShortURL:  router.urls.GetShortURL(record.ShortCode),
		LongURL:   record.LongURL,
	})
}

// PutAPIUserURL handles PUT /api/user/urls/{short}.
func (router *Router) PutAPIUserURL(response http.ResponseWriter, request *http.Request) {
	editRequest := models.EditURLRequest{}
	if !router.decodeAndValidate(response, request, &editRequest, http.StatusUnprocessableEntity) {
		return
	}

	short := chi.URLParam(request, "short")
	err := router.urls.Edit(request.Context(), userIDFromContext(request), short, editRequest.URL)
	if err != nil {
		router.writeServiceError(response, err)
		return
	}

	response.WriteHeader(http.StatusOK)
}

// DeleteAPIUserURL handles DELETE /api/user/urls/{short}.
func (router *Router) DeleteAPIUserURL(response http.ResponseWriter, request *http.Request) {
	short := chi.URLParam(request, "short")

	err := router.urls.Delete(request.Context(), userIDFromContext(request), short)
	if err != nil {
		router.writeServiceError(response, err)
		return
	}

	response.WriteHeader(http.StatusOK)
}

// GetRedirectToLongURL handles GET /{short}: it redirects to the long URL
// stored under the short code in the session user's own collection.
func (router *Router) GetRedirectToLongURL(response http.ResponseWriter, request *http.Request) {
	short := chi.URLParam(request, "short")

	record, err := router.urls.Get(request.Context(), userIDFromContext(request), short)
	if err != nil {
		router.writeServiceError(response, err)
		return
	}

	http.Redirect(response, request, record.LongURL, http.StatusTemporaryRedirect)
}

// GetPing handles GET /ping.
func (router *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := router.urls.Ping(request.Context()); err != nil {
		logger.Log.Debugln("Error calling the `router.urls.Ping()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.WriteHeader(http.StatusOK)
}

// GetAPIInternalStats handles GET /api/internal/stats.
// The endpoint is reachable only from the configured trusted subnet.
func (router *Router) GetAPIInternalStats(response http.ResponseWriter, request *http.Request) {
	if router.checker.IsTrustedSubnetEmpty() {
		response.WriteHeader(http.StatusForbidden)
		return
	}

	clientIP, err := router.checker.GetClientIP(request)
	if err != nil || !router.checker.Check(clientIP) {
		response.WriteHeader(http.StatusForbidden)
		return
	}

	stats, err := router.urls.GetInternalStats(request.Context())
	if err != nil {
		router.writeServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, stats)
}

func (router *Router) decodeAndValidate(
	response http.ResponseWriter,
	request *http.Request,
	target interface{},
	invalidStatus int,
) bool {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		logger.Log.Debugln("Error decoding the request body: ", zap.Error(err))
		response.WriteHeader(http.StatusBadRequest)
		return false
	}

	if err := router.validate.Struct(target); err != nil {
		response.WriteHeader(invalidStatus)
		return false
	}

	return true
}

func (router *Router) writeServiceError(response http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyCredentials):
		http.Error(response, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrEmailTaken):
		http.Error(response, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrInvalidCredentials):
		http.Error(response, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, service.ErrUnauthorized):
		http.Error(response, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, service.ErrNotFound):
		http.Error(response, err.Error(), http.StatusNotFound)
	default:
		logger.Log.Errorln("Unexpected service error:", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
	}
}

func userIDFromContext(request *http.Request) string {
	userID, _ := request.Context().Value(session.UserIDKey).(string)

	return userID
}

func writeJSON(response http.ResponseWriter, status int, payload interface{}) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)
	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugln("Error encoding the response body: ", zap.Error(err))
	}
}
