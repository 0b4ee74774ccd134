package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"careermind-api/internal/ats"
	"careermind-api/internal/inference"
	"careermind-api/internal/market"
	"careermind-api/internal/roadmap"
	"careermind-api/internal/routers"
	"careermind-api/internal/shared"
	"careermind-api/internal/slots"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/manifold-inc/manifold-sdk/lib/eflag"
)

func main() {
	// A missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	// Flags / ENV Variables
	listenAddr := flag.String("listen-addr", ":80", "Address to serve on")
	debug := flag.Bool("debug", false, "Debug enabled")
	metricsAPIKey := flag.String("metrics-api-key", "", "Metrics api key")

	modelRepo := flag.String("model-repo", shared.DefaultModelRepo, "Hub repository of the roadmap model")
	inferenceURL := flag.String("inference-url", shared.DefaultInferenceURL, "Inference endpoint base url")
	hubURL := flag.String("hub-url", shared.DefaultHubURL, "Model hub base url")
	hfToken := flag.String("hf-token", "", "Hugging Face access token")
	generationTimeout := flag.Duration("generation-timeout", shared.DefaultGenerationTimeout, "Upper bound on one roadmap generation, including the slot wait")
	maxGenerations := flag.Int("max-generations", shared.DefaultMaxGenerations, "Concurrent generations allowed, 0 for unbounded")
	redisAddr := flag.String("redis-addr", "", "Redis host:port, shares generation slots across replicas when set")

	googleAPIKey := flag.String("google-api-key", "", "Gemini api key, enables resume analysis")
	geminiModel := flag.String("gemini-model", shared.DefaultGeminiModel, "Gemini model for resume analysis")
	jobsCSV := flag.String("jobs-csv", "", "Job postings csv, enables the job market routes")

	err := eflag.SetFlagsFromEnvironment()
	if err != nil {
		panic(err)
	}
	flag.Parse()

	var logger *zap.Logger
	if !*debug {
		logger, err = zap.NewProduction()
		if err != nil {
			panic("Failed init logger")
		}
	}
	if *debug {
		logger, err = zap.NewDevelopment()
		if err != nil {
			panic("Failed init logger")
		}
	}
	log := logger.Sugar()
	defer func() {
		_ = log.Sync()
	}()

	// Load the model once, serving without it is not an option
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), shared.DefaultStartupTimeout)
	model, err := inference.Load(startupCtx, inference.Config{
		Model:        *modelRepo,
		InferenceURL: *inferenceURL,
		HubURL:       *hubURL,
		Token:        *hfToken,
	}, log)
	cancelStartup()
	if err != nil {
		log.Fatalw("Failed loading model", "error", err)
	}

	local := slots.NewLocalLimiter(*maxGenerations)
	var limiter slots.Limiter = local
	if *redisAddr == "" {
		log.Infow("Generation slots held in process", "slots", local.Size())
	} else {
		if *maxGenerations <= 0 {
			log.Fatal("max-generations must be positive when redis-addr is set")
		}
		redisClient := redis.NewClient(&redis.Options{
			Addr:     *redisAddr,
			Password: "",
			DB:       0,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			panic(fmt.Sprintf("failed ping to redis db: %s", err))
		}
		defer func() {
			_ = redisClient.Close()
		}()
		limiter, err = slots.NewRedisLimiter(redisClient, slots.RedisConfig{
			Prefix: shared.SlotKeyPrefix + ":" + *modelRepo,
			Size:   *maxGenerations,
			TTL:    *generationTimeout + shared.SlotTTLMargin,
			Poll:   shared.SlotPollInterval,
		}, log)
		if err != nil {
			panic(err)
		}
		log.Infow("Generation slots shared through redis", "slots", *maxGenerations)
	}

	svc, err := roadmap.NewService(model, limiter, roadmap.Config{
		Model:   *modelRepo,
		Timeout: *generationTimeout,
	}, log)
	if err != nil {
		panic(err)
	}

	e, base := routers.NewServer(routers.ServerConfig{MetricsAPIKey: *metricsAPIKey}, log)
	e.Server.ReadHeaderTimeout = shared.DefaultReadHeaderTimeout

	// Register routes
	if err := routers.RegisterRoadmapRoutes(base, svc, *modelRepo); err != nil {
		panic(err)
	}

	if *googleAPIKey != "" {
		gemini, err := ats.NewGeminiModel(context.Background(), *googleAPIKey, *geminiModel)
		if err != nil {
			panic(err)
		}
		if err := routers.RegisterATSRoutes(base, ats.NewAnalyzer(gemini, ats.DefaultPrompts(), log)); err != nil {
			panic(err)
		}
		log.Infow("ATS routes registered", "model", gemini.Name())
	}

	if *jobsCSV != "" {
		ds, err := market.LoadFile(*jobsCSV)
		if err != nil {
			log.Fatalw("Failed loading job market data", "path", *jobsCSV, "error", err)
		}
		if err := routers.RegisterMarketRoutes(base, ds); err != nil {
			panic(err)
		}
		log.Infow("Job market routes registered", "jobs", len(ds.Jobs()), "dropped_rows", ds.Dropped())
	}

	go func() {
		if err := e.Start(*listenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("Server stopped", "error", err)
		}
	}()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), shared.DefaultShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Errorw("Failed graceful shutdown", "error", err)
	}
}
