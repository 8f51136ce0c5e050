// Package http реализует маршрутизацию HTTP-слоя сервера OralVis.
//
// Пакет отвечает за:
//   - регистрацию HTTP-маршрутов и настройку роутера (chi);
//   - общие middleware: request id, recover, логирование, метрики, CORS;
//   - группу маршрутов, защищённых bearer-токеном.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/IvanChernomyrdin/go-oralvis/internal/server/api"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/config"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/middleware"

	_ "github.com/IvanChernomyrdin/go-oralvis/swagger/docs"
)

// Options - то, что роутеру нужно кроме хендлеров.
type Options struct {
	CORS          config.CORSConfig
	Observability config.ObservabilityConfig
	// Registry для /metrics. nil при выключенных метриках.
	Registry *prometheus.Registry
}

// NewRouter создаёт и настраивает HTTP-роутер сервера.
//
// Роутер использует chi.Router и регистрирует:
//   - публичные эндпоинты (/, /healthz, /swagger, регистрация и логин);
//   - метрики Prometheus и pprof, если включены в конфиге;
//   - группу защищённых эндпоинтов /api/auth/profile и /api/scans.
func NewRouter(h *api.Handler, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	// логирование всех запросов
	r.Use(middleware.LoggerMiddleware(h.Log))

	metricsOn := opts.Observability.Metrics.Enabled && opts.Registry != nil
	if metricsOn {
		r.Use(middleware.NewHTTPMetrics(opts.Registry).Middleware)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORS.AllowedOrigins,
		AllowedMethods:   opts.CORS.AllowedMethods,
		AllowedHeaders:   opts.CORS.AllowedHeaders,
		AllowCredentials: opts.CORS.AllowCredentials,
		MaxAge:           300,
	}))

	r.Get("/", h.Root)
	r.Get("/healthz", h.Healthz)

	// добавляем swagger
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	if metricsOn {
		r.Handle(opts.Observability.Metrics.Path, promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}
	if opts.Observability.Pprof.Enabled {
		r.Mount(opts.Observability.Pprof.PathPrefix, chimw.Profiler())
	}

	r.Route("/api", func(r chi.Router) {
		// Публичные пути
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		// защищены пути
		r.Group(func(r chi.Router) {
			// проверка access токена
			r.Use(h.Verifier.AuthMiddleware())

			r.Get("/auth/profile", h.Profile)

			r.Route("/scans", func(r chi.Router) {
				r.Post("/upload", h.UploadScan) // только technician
				r.Get("/list", h.ListScans)     // только dentist
				r.Get("/mine", h.MyScans)       // свои снимки техника
				r.Get("/{id}", h.GetScan)
				r.Get("/{id}/pdf", h.ScanReport)
			})
		})
	})

	return r
}
