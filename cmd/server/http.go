package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/enjoys-in/airsend-webmail/cmd/server/routes"
	"github.com/enjoys-in/airsend-webmail/cmd/wireframe"
)

const shutdownTimeout = 10 * time.Second

// NewHandler returns the routed API wrapped in the access log, rate
// limit and panic recovery middleware.
func NewHandler(app *wireframe.AppWireframe) http.Handler {
	mux := routes.InitRoutes(app)
	limiter := rate.NewLimiter(rate.Limit(app.Config.API.RateLimit), app.Config.API.RateBurst)
	return accessLogMiddleware(recoverMiddleware(rateLimitMiddleware(limiter, mux)))
}

// RunHttpApi serves the API on the configured port, over TLS when a
// certificate is configured, until ctx is cancelled. It then shuts the
// server down gracefully.
func RunHttpApi(ctx context.Context, app *wireframe.AppWireframe) error {
	server := &http.Server{
		Addr:              ":" + app.Config.API.PORT,
		Handler:           NewHandler(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if app.Config.TLSEnabled() {
			tlsConfig, tlsErr := app.Config.LoadTLS()
			if tlsErr != nil {
				errCh <- tlsErr
				return
			}
			server.TLSConfig = tlsConfig
			log.Infof("🔒 HTTPS API running on %s", server.Addr)
			err = server.ListenAndServeTLS("", "")
		} else {
			log.Infof("🚀 HTTP API running on %s", server.Addr)
			err = server.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("🛑 Shutting down HTTP API...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
