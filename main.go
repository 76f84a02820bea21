package main

import (
	"os"

	"github.com/fasthttp/router"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"trafficinsight/internal/config"
	"trafficinsight/internal/db"
	"trafficinsight/internal/http/handlers"
	appmw "trafficinsight/internal/http/middleware"
	"trafficinsight/internal/metrics"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	if err := db.EnsureBootstrapAPIKey(gormDB, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure bootstrap API key")
	}

	engine := metrics.NewEngine(db.NewMetricStore(gormDB))

	handlers.InitPrometheusMetrics()
	db.StartSummaryExporter(engine, log, cfg.SummaryExportInterval)

	r := router.New()

	r.GET("/healthz", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	})

	r.POST("/v1/metrics", appmw.BearerAuth(gormDB)(handlers.RecordMetric(engine)))
	r.GET("/v1/metrics", handlers.TrafficMetrics(engine))
	r.GET("/v1/metrics/summary", handlers.DashboardSummary(engine))
	r.GET("/v1/metrics/recent", handlers.RecentMetrics(engine))
	r.GET("/v1/metrics/trends", handlers.TrendSeries(engine))

	r.GET("/metrics", handlers.PrometheusHandler())

	handler := appmw.RequestLogger(log)(r.Handler)

	log.Info().Str("addr", cfg.ListenAddr).Msg("trafficinsight listening")
	if err := fasthttp.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
