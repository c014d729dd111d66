package routes

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bankdki/stock-api/api/controllers"
	"github.com/bankdki/stock-api/api/middleware"
	"github.com/bankdki/stock-api/internal/auth"
	"github.com/bankdki/stock-api/internal/media"
	"github.com/bankdki/stock-api/internal/stocks"
	"github.com/bankdki/stock-api/pkg/config"
	"github.com/bankdki/stock-api/pkg/logger"
	"github.com/bankdki/stock-api/pkg/metrics"
	"github.com/bankdki/stock-api/pkg/redis"
)

// Params carries everything the router needs to wire the HTTP surface.
type Params struct {
	Config       *config.Config
	Logger       *logger.Logger
	Database     controllers.Pinger
	Redis        *redis.Client
	Users        middleware.IdentityResolver
	AuthService  auth.Service
	StockService stocks.Service
	HTTPMetrics  *metrics.HTTPMetrics
	Registry     *prometheus.Registry
}

// NewRouter assembles the chi router: public auth and health endpoints,
// token-protected stock endpoints, the metrics scrape target, and static
// serving for uploaded images.
func NewRouter(p Params) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(p.Config.App.CORSOrigins),
	)
	if p.HTTPMetrics != nil {
		r.Use(middleware.Metrics(p.HTTPMetrics))
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, p.Database, cachePinger(p.Redis)))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		p.Config.AuthRateLimit.LoginWindow,
		p.Config.AuthRateLimit.LoginIPLimit,
		p.Config.AuthRateLimit.LoginUsernameLimit,
	)

	r.Route("/auth", func(r chi.Router) {
		login := r.With()
		if p.Redis != nil {
			login = r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, p.Logger))
		}
		login.Post("/login", controllers.AuthLogin(p.AuthService, p.Logger))
	})

	r.Route("/api/v1/stocks", func(r chi.Router) {
		r.Use(middleware.Auth(p.Config.JWT, p.Users, p.Logger))

		r.Post("/create", controllers.StockCreate(p.StockService, p.Config.Media, p.Logger))
		r.Get("/list", controllers.StockList(p.StockService, p.Logger))
		r.Get("/detail/{id}", controllers.StockDetail(p.StockService, p.Logger))
		r.Put("/update/{id}", controllers.StockUpdate(p.StockService, p.Config.Media, p.Logger))
		r.Delete("/delete/{id}", controllers.StockDelete(p.StockService, p.Logger))
	})

	mountUploads(r, p.Config.Media.UploadDir)

	return r
}

// mountUploads serves stored images read-only from the upload directory.
func mountUploads(r chi.Router, dir string) {
	root := http.Dir(filepath.Clean(dir))
	fs := http.StripPrefix(media.URLPrefix, http.FileServer(root))
	r.Get(strings.TrimSuffix(media.URLPrefix, "/")+"/*", func(w http.ResponseWriter, req *http.Request) {
		fs.ServeHTTP(w, req)
	})
}

// cachePinger avoids handing a typed nil to the readiness check.
func cachePinger(c *redis.Client) controllers.Pinger {
	if c == nil {
		return nil
	}
	return c
}
