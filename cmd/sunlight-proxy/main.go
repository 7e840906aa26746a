package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sunlightlabs/sunlight-go/pkg/client"
	"github.com/sunlightlabs/sunlight-go/pkg/config"
	"github.com/sunlightlabs/sunlight-go/pkg/logging"
	"github.com/sunlightlabs/sunlight-go/pkg/metrics"
	"github.com/sunlightlabs/sunlight-go/pkg/pagination"
	"github.com/sunlightlabs/sunlight-go/pkg/services/capitolwords"
	"github.com/sunlightlabs/sunlight-go/pkg/services/congress"
	"github.com/sunlightlabs/sunlight-go/pkg/services/openstates"
)

type pagers map[string]*pagination.Paginator[client.Entity]

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Setup(cfg.LoggingConfig())
	logger := logging.NewLogger(logging.ComponentProxy)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		logger.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis, quota tracking enabled")
	}

	clientCfg := cfg.ClientConfig()
	clientCfg.Redis = redisClient
	sunlight, err := client.New(clientCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Sunlight client")
	}
	defer sunlight.Close()

	services, err := newPagers(sunlight, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to set up services")
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newRouter(redisClient, sunlight, services, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info().
		Str("addr", cfg.ListenAddr).
		Str("user_agent", cfg.UserAgent).
		Dur("page_delay", cfg.PageDelay).
		Msg("Starting Sunlight proxy server")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Server failed")
	}
	logger.Info().Msg("Server stopped")
}

// newPagers builds a paginator for every Sunlight service, honoring base URL overrides.
func newPagers(c *client.Client, cfg *config.Config) (pagers, error) {
	opts := []pagination.Option{
		pagination.WithDelay(cfg.PageDelay),
		pagination.WithLogger(logging.NewLogger(logging.ComponentPaginator)),
	}

	cg, err := congress.NewPaging(congress.New(c, cfg.CongressURL), opts...)
	if err != nil {
		return nil, fmt.Errorf("congress: %w", err)
	}
	st, err := openstates.NewPaging(openstates.New(c, cfg.OpenStatesURL), opts...)
	if err != nil {
		return nil, fmt.Errorf("openstates: %w", err)
	}
	cw, err := capitolwords.NewPaging(capitolwords.New(c, cfg.CapitolWordsURL), opts...)
	if err != nil {
		return nil, fmt.Errorf("capitolwords: %w", err)
	}

	return pagers{
		congress.Endpoint.Name:     cg.Paginator(),
		openstates.Endpoint.Name:   st.Paginator(),
		capitolwords.Endpoint.Name: cw.Paginator(),
	}, nil
}

func newRouter(redisClient *redis.Client, sunlight *client.Client, services pagers, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /ready", readyHandler(redisClient, sunlight))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /v1/{service}/{operation}", recordsHandler(services, logger))
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// readyHandler checks the quota store when one is configured.
func readyHandler(redisClient *redis.Client, sunlight *client.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				http.Error(w, fmt.Sprintf("redis unavailable: %v", err), http.StatusServiceUnavailable)
				return
			}
		}
		if err := sunlight.Ping(ctx); err != nil {
			http.Error(w, fmt.Sprintf("client not ready: %v", err), http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

type errorLine struct {
	Error string `json:"error"`
}

// recordsHandler streams the records of one operation as newline delimited JSON.
// page, per_page and limit are honored by the paginator. An error before the
// first record becomes an HTTP error; after that it ends the stream with an
// error line.
func recordsHandler(services pagers, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serviceName := r.PathValue("service")
		operation := r.PathValue("operation")
		logger := logging.ForService(logger, serviceName).With().Str(logging.FieldOperation, operation).Logger()

		pager, ok := services[serviceName]
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Errorf("unknown service: %s", serviceName))
			return
		}

		params := r.URL.Query()
		params.Del("apikey")

		enc := json.NewEncoder(w)
		flusher, _ := w.(http.Flusher)
		started := false
		count := 0

		start := func() {
			w.Header().Set("Content-Type", "application/x-ndjson")
			w.WriteHeader(http.StatusOK)
			started = true
		}

		for rec, err := range pager.Records(r.Context(), operation, params) {
			if err != nil {
				logger.Warn().
					Err(err).
					Int("count", count).
					Msg("Record stream failed")

				if !started {
					writeError(w, errorStatus(err), err)
					return
				}
				enc.Encode(errorLine{Error: err.Error()})
				return
			}

			if !started {
				start()
			}
			if err := enc.Encode(rec); err != nil {
				logger.Debug().Err(err).Msg("Client went away")
				return
			}
			count++
			if flusher != nil {
				flusher.Flush()
			}
		}

		if !started {
			start()
		}

		logger.Info().
			Int("count", count).
			Msg("Streamed records")
	}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, pagination.ErrUnknownOperation):
		return http.StatusNotFound
	case errors.Is(err, pagination.ErrInvalidParam):
		return http.StatusBadRequest
	case errors.Is(err, client.ErrQuotaExhausted):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorLine{Error: err.Error()})
}
