package router

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"showbiz/internal/auth"
	"showbiz/internal/config"
	"showbiz/internal/errors"
	"showbiz/internal/handler"
	"showbiz/internal/metrics"
)

// AdminKeyHeader carries the admin API key when one is configured.
const AdminKeyHeader = "X-Admin-Key"

// Handlers groups the HTTP handlers by route group.
type Handlers struct {
	TalentAuth    *handler.AuthHandler
	HirerAuth     *handler.AuthHandler
	TalentProfile *handler.AccountHandler
	HirerProfile  *handler.AccountHandler
	Admin         *handler.AdminHandler
	Submissions   *handler.SubmissionHandler
	Talents       *handler.TalentHandler
}

// Deps are the collaborators of the router.
type Deps struct {
	Config   *config.Config
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	JWT      *auth.JWTService
	Tokens   auth.TokenStoreInterface
	Handlers Handlers
}

// Register wires routes and middleware.
func Register(e *echo.Echo, deps Deps) {
	cfg, h := deps.Config, deps.Handlers
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if deps.Metrics != nil {
		e.Use(deps.Metrics.Middleware())
	}

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if deps.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	bearer := bearerAuth(deps.JWT, deps.Tokens)
	limit := authRateLimit(cfg.AuthRateLimit)
	profileBody := middleware.BodyLimit("25M")

	talent := api.Group("/talent")
	hirer := api.Group("/hirer")
	for _, g := range []struct {
		group   *echo.Group
		auth    *handler.AuthHandler
		profile *handler.AccountHandler
	}{
		{talent, h.TalentAuth, h.TalentProfile},
		{hirer, h.HirerAuth, h.HirerProfile},
	} {
		g.group.POST("/register", g.auth.Register, limit...)
		g.group.POST("/login", g.auth.Login, limit...)
		g.group.POST("/forgot-password", g.auth.ForgotPassword, limit...)
		g.group.POST("/reset-password/:token", g.auth.ResetPassword, limit...)
		g.group.POST("/verify-otp", g.auth.VerifyOTP, bearer)
		g.group.POST("/resend-otp", g.auth.ResendOTP, bearer)
		g.group.POST("/logout", g.auth.Logout, bearer)
		g.group.GET("/get-profile", g.profile.GetProfile, bearer)
		g.group.PUT("/update-profile", g.profile.UpdateProfile, bearer, profileBody)
	}

	talent.GET("/all-talents", h.Talents.ForHirer, bearer)
	talent.GET("/public-talents", h.Talents.Public)

	hirer.GET("/submissions", h.Submissions.List)
	hirer.POST("/submit", h.Submissions.Create, bearer)
	hirer.PUT("/submissions/:submissionId", h.Submissions.Update, bearer)
	hirer.DELETE("/submissions/:submissionId", h.Submissions.Delete, bearer)
	hirer.GET("/hirer/:hirerId/submissions", h.Submissions.ListByHirer, bearer)

	var admin []echo.MiddlewareFunc
	if cfg.AdminAPIKey != "" {
		admin = append(admin, adminKeyAuth(cfg.AdminAPIKey))
	} else {
		logger.Warn("ADMIN_API_KEY is not set, hirer admin routes are unauthenticated")
	}
	hirer.POST("/manage-status/:hirerId", h.Admin.ManageStatus, admin...)
	hirer.GET("/pending-hirers", h.Admin.PendingHirers, admin...)
	hirer.GET("/all-hirers", h.Admin.AllHirers, admin...)
	hirer.GET("/accepted-hirers", h.Admin.AcceptedHirers, admin...)
}

func unauthorized(message string) error {
	return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
		Error: message,
		Code:  "UNAUTHORIZED",
	})
}

// bearerAuth validates the bearer token and rejects revoked ones. The claims are
// stored under handler.ClaimsContextKey.
func bearerAuth(jwtService *auth.JWTService, tokens auth.TokenStoreInterface) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:  handler.ClaimsContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				return nil, err
			}
			if tokens != nil {
				revoked, err := tokens.IsRevoked(c.Request().Context(), claims.ID)
				if err != nil {
					return nil, err
				}
				if revoked {
					return nil, auth.ErrTokenRevoked
				}
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return unauthorized("invalid or expired token")
		},
	})
}

func adminKeyAuth(key string) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup: "header:" + AdminKeyHeader,
		Validator: func(got string, c echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(got), []byte(key)) == 1, nil
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return unauthorized("invalid admin key")
		},
	})
}

// authRateLimit limits unauthenticated auth routes per client IP. A non-positive
// limit disables it.
func authRateLimit(perSecond float64) []echo.MiddlewareFunc {
	if perSecond <= 0 {
		return nil
	}
	burst := int(perSecond * 2)
	if burst < 1 {
		burst = 1
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
	return []echo.MiddlewareFunc{middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, errors.ErrorResponse{
				Error: "too many requests",
				Code:  "RATE_LIMITED",
			})
		},
	})}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				if v.Status >= http.StatusInternalServerError {
					level = slog.LevelError
				}
			}
			logger.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
