package main

import (
	"errors"
	"expvar"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"vicinity/internal/auth"
	"vicinity/internal/db"
	"vicinity/internal/domain/proximity"
	"vicinity/internal/domain/ratings"
	"vicinity/internal/domain/reviews"
	"vicinity/internal/domain/storage"
	"vicinity/internal/events"
	"vicinity/internal/mailer"
	"vicinity/internal/metrics"
	"vicinity/internal/notifications"
	"vicinity/internal/ratelimiter"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	defaultRequests := 200
	defaultEnabled := false

	requestsPerTimeFrame := defaultRequests
	if val, exists := os.LookupEnv("RATELIMITER_REQUESTS_COUNT"); exists {
		if parsedVal, err := strconv.Atoi(val); err == nil && parsedVal > 0 {
			requestsPerTimeFrame = parsedVal
		} else {
			fmt.Println("Invalid RATELIMITER_REQUESTS_COUNT, defaulting to", defaultRequests)
		}
	}

	enabled := defaultEnabled
	if val, exists := os.LookupEnv("RATE_LIMITER_ENABLED"); exists {
		if parsedVal, err := strconv.ParseBool(val); err == nil {
			enabled = parsedVal
		} else {
			fmt.Println("Invalid RATE_LIMITER_ENABLED, defaulting to", defaultEnabled)
		}
	}

	return ratelimiter.Config{
		RequestsPerTimeFrame: requestsPerTimeFrame,
		TimeFrame:            envDuration("RATELIMITER_TIME_FRAME", 5*time.Second),
		Enabled:              enabled,
	}
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		fmt.Printf("Invalid %s, defaulting to %d\n", key, fallback)
		return fallback
	}
	return n
}

// envDuration accepts Go durations such as "30m"; "0" disables a job.
func envDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		fmt.Printf("Invalid %s, defaulting to %s\n", key, fallback)
		return fallback
	}
	return d
}

func loadConfig() (config, error) {
	cfg := config{
		addr:        envString("ADDR", ":8080"),
		env:         envString("ENV", "development"),
		frontendURL: envString("FRONTEND_URL", "http://localhost:3000"),
		apiURL:      envString("EXTERNAL_URL", "localhost:8080"),
		db: dbConfig{
			addr:        os.Getenv("DB_ADDR"),
			maxConns:    int32(envInt("DB_MAX_OPEN_CONNS", 30)),
			minConns:    int32(envInt("DB_MAX_IDLE_CONNS", 5)),
			maxIdleTime: envString("DB_MAX_IDLE_TIME", "15m"),
		},
		mail: mailConfig{
			fromEmail: os.Getenv("MAIL_FROM_EMAIL"),
			smtp: smtpConfig{
				host:     os.Getenv("SMTP_HOST"),
				port:     envInt("SMTP_PORT", 587),
				username: os.Getenv("SMTP_USERNAME"),
				password: os.Getenv("SMTP_PASSWORD"),
			},
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			token: tokenConfig{
				refreshSecret:   os.Getenv("AUTH_TOKEN_REFRESH_SECRET"),
				secret:          os.Getenv("AUTH_TOKEN_SECRET"),
				accessTokenExp:  envDuration("AUTH_ACCESS_TOKEN_EXP", time.Hour*24),
				refreshTokenExp: envDuration("AUTH_REFRESH_TOKEN_EXP", time.Hour*24*9),
				iss:             "Vicinity",
				aud:             "Vicinity",
			},
		},
		rateLimiter: LoadRateLimiterConfig(),
		natsURL:     os.Getenv("NATS_URL"),
		expo: expoConfig{
			accessToken: os.Getenv("EXPO_ACCESS_TOKEN"),
		},
		background: backgroundConfig{
			reconcileInterval: envDuration("AGGREGATE_RECONCILE_INTERVAL", 30*time.Minute),
			pushTokenMaxAge:   envDuration("PUSH_TOKEN_MAX_AGE", 70*24*time.Hour),
		},
	}

	switch {
	case cfg.db.addr == "":
		return cfg, errors.New("DB_ADDR is required")
	case cfg.auth.token.secret == "" || cfg.auth.token.refreshSecret == "":
		return cfg, errors.New("AUTH_TOKEN_SECRET and AUTH_TOKEN_REFRESH_SECRET are required")
	}
	return cfg, nil
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	level := zapcore.InfoLevel
	if lvl, ok := os.LookupEnv("LOG_LEVEL"); ok {
		if err := level.Set(lvl); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}

	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level)

	return zap.New(core).Sugar(), nil
}

var version = "0.1.0"

//	@title			Vicinity API
//	@description	API for Vicinity, a directory of local businesses with reviews and nearby search.

//	@contact.name	API Support
//	@contact.url	http://www.swagger.io/support
//	@contact.email	support@swagger.io

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@BasePath					/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@securityDefinitions.basic	BasicAuth

func main() {
	// a missing .env is fine when the environment is set by the platform
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Println("Error loading .env file:", err)
		os.Exit(1)
	}

	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal(err)
	}

	// Database
	pool, err := db.New(cfg.db.addr, cfg.db.maxConns, cfg.db.minConns, cfg.db.maxIdleTime)
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()
	logger.Info("database connection pool established")

	store := storage.NewContainer(pool)
	m := metrics.New()

	// Images
	var images imageStore
	if cloudinaryURL := os.Getenv("CLOUDINARY_URL"); cloudinaryURL != "" {
		cld, err := newCloudinaryStore(cloudinaryURL, envString("HASHIDS_SALT", "vicinity"))
		if err != nil {
			logger.Fatal(err)
		}
		images = cld
	} else {
		logger.Warn("CLOUDINARY_URL not set, image uploads are disabled")
	}

	// Mail
	var mail mailer.Client
	smtp, err := mailer.NewSMTPClient(cfg.mail.smtp.host, cfg.mail.smtp.port,
		cfg.mail.smtp.username, cfg.mail.smtp.password, cfg.mail.fromEmail, logger)
	switch {
	case err == nil:
		mail = smtp
	case errors.Is(err, mailer.ErrNotConfigured):
		logger.Warn("SMTP not configured, e-mails are only logged")
		mail = mailer.NewNoopClient(logger)
	default:
		logger.Fatal(err)
	}

	// Review listeners: domain events and owner push notifications
	var listeners []reviews.Listener
	if cfg.natsURL != "" {
		publisher, nc, err := events.NewNatsPublisher(cfg.natsURL, logger)
		if err != nil {
			logger.Fatal(err)
		}
		defer nc.Drain()
		listeners = append(listeners, publisher)
		logger.Infow("publishing review events", "nats", cfg.natsURL)
	}
	push := notifications.NewExpoAdapter(cfg.expo.accessToken)
	listeners = append(listeners, notifications.NewReviewNotifier(push, store.Businesses, store.PushTokens, logger))

	aggregator := ratings.NewAggregator(pool, logger)
	reviewService := reviews.NewService(store.Reviews, aggregator, logger, m.AggregateFailures, listeners...)

	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)
	defer rateLimiter.Close()

	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.refreshSecret,
		cfg.auth.token.iss,
		cfg.auth.token.aud,
		cfg.auth.token.accessTokenExp,
		cfg.auth.token.refreshTokenExp,
	)

	app := &application{
		config:        cfg,
		store:         store,
		logger:        logger,
		images:        images,
		mailer:        mail,
		authenticator: jwtAuthenticator,
		rateLimiter:   rateLimiter,
		metrics:       m,
		reviews:       reviewService,
		nearby:        proximity.NewSearcher(store.Businesses),
		aggregates:    aggregator,
	}

	// Metrics collected http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		s := pool.Stat()
		return map[string]int32{
			"total_conns":    s.TotalConns(),
			"idle_conns":     s.IdleConns(),
			"acquired_conns": s.AcquiredConns(),
			"max_conns":      s.MaxConns(),
		}
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	if err := app.run(mux); err != nil {
		logger.Fatal(err)
	}
}
