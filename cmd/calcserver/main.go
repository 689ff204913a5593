// Package main provides the calculator server binary: a gRPC endpoint that
// evaluates spoken dice formulas and recognizer payloads.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/cory-johannsen/dicecalc/internal/calcserver"
	"github.com/cory-johannsen/dicecalc/internal/config"
	"github.com/cory-johannsen/dicecalc/internal/dice"
	"github.com/cory-johannsen/dicecalc/internal/observability"
	"github.com/cory-johannsen/dicecalc/internal/pipeline"
	"github.com/cory-johannsen/dicecalc/internal/scripting"
	"github.com/cory-johannsen/dicecalc/internal/server"
	"github.com/cory-johannsen/dicecalc/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	healthInterval := flag.Duration("db-health", 30*time.Second, "database health check interval")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	calc := dice.NewCalculator(dice.NewCryptoSource(), logger)

	logger.Info("starting calculator server",
		zap.String("grpc_addr", cfg.Server.Addr()),
		zap.Bool("history", cfg.History.Enabled),
		zap.Bool("scripting", cfg.Scripting.Enabled()),
	)

	var opts []pipeline.Option

	if cfg.Scripting.Enabled() {
		scriptMgr := scripting.NewManager(calc, logger)
		if err := scriptMgr.Load(cfg.Scripting.ScriptDir, cfg.Scripting.InstructionLimit); err != nil {
			logger.Fatal("loading scripts", zap.Error(err))
		}
		defer scriptMgr.Close()
		opts = append(opts, pipeline.WithRewriter(scriptMgr))
	}

	lifecycle := server.NewLifecycle(logger)

	if cfg.History.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		if err := pool.VerifySchema(ctx); err != nil {
			pool.Close()
			logger.Fatal("history schema unavailable; run cmd/migrate", zap.Error(err))
		}
		opts = append(opts, pipeline.WithHistory(pool.History(), cfg.History.ListLimit))

		healthCtx, stopHealth := context.WithCancel(ctx)
		lifecycle.Add("postgres", &server.FuncService{
			StartFn: func() error {
				ticker := time.NewTicker(*healthInterval)
				defer ticker.Stop()
				for {
					select {
					case <-healthCtx.Done():
						return nil
					case <-ticker.C:
						if err := pool.Health(healthCtx, 5*time.Second); err != nil {
							logger.Warn("database health check failed", zap.Error(err))
						}
					}
				}
			},
			StopFn: func() {
				stopHealth()
				pool.Close()
			},
		})
	}

	svc := calcserver.NewCalculatorService(pipeline.New(calc, logger, opts...), logger)

	grpcServer := grpc.NewServer()
	calcserver.RegisterCalculatorServer(grpcServer, svc)

	lifecycle.Add("grpc", &server.FuncService{
		StartFn: func() error {
			lis, err := net.Listen("tcp", cfg.Server.Addr())
			if err != nil {
				return fmt.Errorf("listening on %s: %w", cfg.Server.Addr(), err)
			}
			logger.Info("gRPC server listening",
				zap.String("addr", lis.Addr().String()),
			)
			return grpcServer.Serve(lis)
		},
		StopFn: func() {
			grpcServer.GracefulStop()
		},
	})

	logger.Info("calculator server initialized",
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
