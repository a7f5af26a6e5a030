package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "go.uber.org/automaxprocs"

	"github.com/gestaozabele/condominio/internal/assembleia"
	"github.com/gestaozabele/condominio/internal/auth"
	"github.com/gestaozabele/condominio/internal/bootstrap"
	"github.com/gestaozabele/condominio/internal/config"
	internalhttp "github.com/gestaozabele/condominio/internal/http"
	"github.com/gestaozabele/condominio/internal/metrics"
	"github.com/gestaozabele/condominio/internal/notify"
	"github.com/gestaozabele/condominio/internal/presenca"
	"github.com/gestaozabele/condominio/internal/relatorio"
	"github.com/gestaozabele/condominio/internal/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	store, err := bootstrap.OpenStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	uploader, err := storage.New(ctx, cfg.Storage.Provider, storage.S3Config{
		Endpoint:     cfg.Storage.Endpoint,
		Region:       cfg.Storage.Region,
		Bucket:       cfg.Storage.Bucket,
		AccessKey:    cfg.Storage.AccessKey,
		SecretKey:    cfg.Storage.SecretKey,
		PublicDomain: cfg.Storage.PublicDomain,
	})
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	links, err := presenca.NewLinks(cfg.PublicBaseURL)
	if err != nil {
		return err
	}

	var (
		registry      *prometheus.Registry
		metricsHandle http.Handler
	)
	if cfg.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metricsHandle = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	notifier := notify.NewRedisNotifier(redisClient, log.With().Str("component", "notify").Logger())
	destinos := notify.Fanout{notifier}
	if webhook := notify.NewWebhookNotifier(cfg.NotifyWebhookURL); webhook != nil {
		destinos = append(destinos, webhook)
	}
	svc := assembleia.NewService(store,
		assembleia.WithNotifier(destinos),
		assembleia.WithCache(redisClient, cfg.ApuracaoCacheTTL),
		assembleia.WithMetrics(metricsFor(registry)),
		assembleia.WithLogger(log.With().Str("component", "assembleia").Logger()),
	)

	shutdownCh := make(chan struct{})
	handler, err := internalhttp.NewRouter(internalhttp.Deps{
		Config:      cfg,
		JWT:         auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL),
		Assembleias: svc,
		Relatorios:  relatorio.NewExporter(store),
		Links:       links,
		Storage:     uploader,
		Eventos:     notifier,
		Metrics:     metricsHandle,
		Checks: map[string]internalhttp.Check{
			"database": store.Ping,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
		Shutdown: shutdownCh,
	})
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	// sem WriteTimeout: o stream de eventos fica aberto durante a assembleia
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(func() { close(shutdownCh) })

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("driver", cfg.Database.Driver).Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func metricsFor(registry *prometheus.Registry) *metrics.Metrics {
	if registry == nil {
		return nil
	}
	return metrics.New(registry)
}
