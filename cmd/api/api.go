package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vicinity/docs" // registers the swagger spec
	"vicinity/internal/auth"
	"vicinity/internal/domain/proximity"
	"vicinity/internal/domain/ratings"
	"vicinity/internal/domain/reviews"
	"vicinity/internal/domain/storage"
	"vicinity/internal/mailer"
	"vicinity/internal/metrics"
	"vicinity/internal/ratelimiter"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

// aggregates is the part of ratings.Aggregator the handlers and the
// background reconciler use.
type aggregates interface {
	Recompute(ctx context.Context, businessID int64) (ratings.Aggregate, error)
	Reconcile(ctx context.Context) (int, error)
}

type application struct {
	config        config
	store         *storage.Container
	logger        *zap.SugaredLogger
	images        imageStore
	mailer        mailer.Client
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
	metrics       *metrics.Metrics
	reviews       *reviews.Service
	nearby        *proximity.Searcher
	aggregates    aggregates
}

type config struct {
	addr        string
	db          dbConfig
	env         string
	apiURL      string
	frontendURL string
	mail        mailConfig
	auth        authConfig
	rateLimiter ratelimiter.Config
	natsURL     string
	expo        expoConfig
	background  backgroundConfig
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	refreshSecret   string
	secret          string
	accessTokenExp  time.Duration
	refreshTokenExp time.Duration
	iss             string
	aud             string
}

type basicConfig struct {
	user string
	pass string
}

type mailConfig struct {
	fromEmail string
	smtp      smtpConfig
}

type smtpConfig struct {
	host     string
	port     int
	username string
	password string
}

type expoConfig struct {
	accessToken string
}

type backgroundConfig struct {
	reconcileInterval time.Duration
	pushTokenMaxAge   time.Duration
}

type dbConfig struct {
	addr        string
	maxConns    int32
	minConns    int32
	maxIdleTime string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if app.metrics != nil {
		r.Use(app.metrics.Middleware)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Use(app.RateLimiterMiddleware)

	// signal through ctx.Done() that the request has timed out
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)
		if app.metrics != nil {
			r.With(app.BasicAuthMiddleware()).Handle("/metrics", app.metrics.Handler())
		}

		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.Route("/authentication", func(r chi.Router) {
			r.Post("/user", app.registerUserHandler)
			r.Post("/token", app.createTokenHandler)
			r.Post("/refresh", app.refreshTokenHandler)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/me", app.getCurrentUserHandler)
			r.Patch("/me", app.updateCurrentUserHandler)
			r.Post("/logout", app.logoutHandler)
			r.Post("/profile-picture", app.uploadProfilePictureHandler)
			r.Post("/push-tokens", app.savePushTokenHandler)
			r.Delete("/push-tokens", app.deletePushTokenHandler)
		})

		r.Route("/businesses", func(r chi.Router) {
			r.Get("/", app.listBusinessesHandler)
			r.With(app.AuthTokenMiddleware).Post("/", app.createBusinessHandler)

			r.Route("/{businessID}", func(r chi.Router) {
				r.Get("/", app.getBusinessHandler)
				r.Get("/nearby", app.nearbyBusinessesHandler)
				r.Get("/reviews", app.listBusinessReviewsHandler)
				r.Get("/images", app.listBusinessImagesHandler)

				r.Group(func(r chi.Router) {
					r.Use(app.AuthTokenMiddleware)
					r.Patch("/", app.updateBusinessHandler)
					r.Delete("/", app.deleteBusinessHandler)
					r.Post("/images", app.uploadBusinessImagesHandler)
					r.Put("/images/{imageID}/primary", app.setPrimaryBusinessImageHandler)
					r.Delete("/images/{imageID}", app.deleteBusinessImageHandler)
				})
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", app.listReviewsHandler)
			r.With(app.AuthTokenMiddleware).Post("/", app.createReviewHandler)

			r.Route("/{reviewID}", func(r chi.Router) {
				r.Get("/", app.getReviewHandler)
				r.Get("/images", app.listReviewImagesHandler)

				r.Group(func(r chi.Router) {
					r.Use(app.AuthTokenMiddleware)
					r.Put("/", app.replaceReviewHandler)
					r.Patch("/", app.updateReviewHandler)
					r.Delete("/", app.deleteReviewHandler)
					r.Post("/images", app.uploadReviewImagesHandler)
					r.Delete("/images/{imageID}", app.deleteReviewImageHandler)
				})
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Use(app.RequireAdmin)
			r.Patch("/businesses/{businessID}/verification", app.setBusinessVerificationHandler)
			r.Post("/businesses/{businessID}/aggregates", app.recomputeAggregatesHandler)
			r.Post("/aggregates/reconcile", app.reconcileAggregatesHandler)
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	app.startBackgroundJobs(ctx)

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		stop()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
