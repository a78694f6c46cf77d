package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"stratego_oracle/internal/adapters"
	"stratego_oracle/internal/bootstrap"
	strategistDelivery "stratego_oracle/internal/delivery/strategist"
	ownMiddleware "stratego_oracle/internal/middleware"
	"stratego_oracle/internal/repository"
	strategistUC "stratego_oracle/internal/usecase/strategist"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP (and optional gRPC health) server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

type storages struct {
	sessions repository.SessionStorage
	archive  strategistUC.ArchiveStore
	closers  []func(context.Context) error
}

func runServe(ctx context.Context) error {
	cfg, err := bootstrap.Setup(cfgPath)
	if err != nil {
		return err
	}
	logger := NewLogger(cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	llmAdapter := adapters.NewLlmAdapter(cfg)
	if err := llmAdapter.Init(ctx); err != nil {
		logger.Errorw("Failed to initialize oracle client", "error", err)
		return err
	}

	st, err := initStorages(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer func() {
		for _, closeFn := range st.closers {
			if err := closeFn(context.Background()); err != nil {
				logger.Warnf("close storage: %v", err)
			}
		}
	}()

	oracle := repository.NewLlmRepository(llmAdapter, st.sessions, logger)
	uc := strategistUC.NewStrategist(oracle, st.archive, logger, strategistUC.Options{
		OracleTimeout: cfg.OracleTimeout,
		OracleRetries: cfg.OracleRetries,
	})

	r := chi.NewRouter()
	if cfg.IsLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	strategistDelivery.NewStrategistHandler(logger, uc).Routes(r)

	srv := &http.Server{Addr: cfg.ServerPort, Handler: r}

	var (
		grpcServer *grpc.Server
		grpcLis    net.Listener
	)
	if cfg.GrpcPort != "" {
		grpcLis, err = net.Listen("tcp", cfg.GrpcPort)
		if err != nil {
			return err
		}
		grpcServer = grpc.NewServer()
		healthServer := health.NewServer()
		healthpb.RegisterHealthServer(grpcServer, healthServer)
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		defer healthServer.Shutdown()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Server is running on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if grpcServer != nil {
		g.Go(func() error {
			logger.Infof("gRPC health is running on port %s", cfg.GrpcPort)
			return grpcServer.Serve(grpcLis)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Received shutdown signal")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if grpcServer != nil {
			grpcServer.GracefulStop()
		}
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func initStorages(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) (*storages, error) {
	st := &storages{}

	if cfg.RedisUrl != "" {
		redisAdapter := adapters.NewAdapterRedis(cfg)
		if err := redisAdapter.Init(ctx); err != nil {
			log.Errorw("Failed to initialize redis", "error", err)
			return nil, err
		}
		st.sessions = repository.NewSessionRedisStorage(redisAdapter.GetClient(), cfg.SessionTTL)
		st.closers = append(st.closers, redisAdapter.Close)
		log.Infof("Game sessions are stored in redis at %s", cfg.RedisUrl)
	} else {
		st.sessions = repository.NewMemorySessionStorage(cfg.SessionTTL)
		log.Warn("REDIS_URL is not set, game sessions are kept in memory")
	}

	if cfg.MongoUri != "" {
		mongoAdapter := adapters.NewAdapterMongo(cfg)
		if err := mongoAdapter.Init(ctx); err != nil {
			log.Errorw("Failed to initialize mongo", "error", err)
			return nil, err
		}
		st.archive = repository.NewMongoAnalysisStorage(mongoAdapter.Database, log)
		st.closers = append(st.closers, mongoAdapter.Close)
		log.Infof("Analyses are archived in mongo database %s", cfg.MongoDatabase)
	} else {
		st.archive = repository.NewMemoryAnalysisStorage()
		log.Warn("MONGO_URI is not set, analyses are kept in memory")
	}

	return st, nil
}
