// Package server implements the per-user hotkeys API that hkm talks to, so
// the tool can be used and tested without a labeling server.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Options configures New.
type Options struct {
	// Path is the hotkeys route, e.g. "/api/current-user/hotkeys/".
	Path string
	// Tokens, when non-empty, are the accepted "Authorization: Token" values.
	// Each token owns its own document.
	Tokens []string
}

// New builds the echo instance serving store.
func New(store *Store, opts Options) *echo.Echo {
	path := opts.Path
	if path == "" {
		path = "/api/current-user/hotkeys/"
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Pre(middleware.AddTrailingSlash())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(logRequests)
	e.Use(authenticate(opts.Tokens))

	e.GET(path, GetHotkeys(store))
	e.PATCH(path, UpdateHotkeys(store))
	e.POST(path, UpdateHotkeys(store))
	return e
}

// logRequests writes one line per request to the structured log.
func logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		begin := time.Now()
		err := next(c)
		slog.Info("serve",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", c.Response().Status,
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"duration", time.Since(begin),
			"err", err,
		)
		return err
	}
}

// authenticate resolves the caller from the Authorization header and stores
// its user key in the context. Without configured tokens every caller is
// the same anonymous user.
func authenticate(tokens []string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(tokens) == 0 {
				c.Set(userKey, UserKey(""))
				return next(c)
			}
			given, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Token ")
			if ok {
				for _, t := range tokens {
					if subtle.ConstantTimeCompare([]byte(given), []byte(t)) == 1 {
						c.Set(userKey, UserKey(t))
						return next(c)
					}
				}
			}
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: msgAuthRequired})
		}
	}
}

// Run serves e on addr until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() { errCh <- e.Start(addr) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	}
}
