package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/codex-employee-record/internal/adapters/repository/postgres"
	"github.com/ogurasousui/codex-employee-record/internal/core/employee"
	"github.com/ogurasousui/codex-employee-record/internal/platform/config"
	pg "github.com/ogurasousui/codex-employee-record/internal/platform/db/postgres"
	"github.com/ogurasousui/codex-employee-record/internal/platform/logger"
	"github.com/ogurasousui/codex-employee-record/internal/platform/server"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	dbPool, err := pg.NewPool(ctx, cfg.Database, zl)
	if err != nil {
		zl.Fatal("failed to initialize database pool", zap.Error(err))
	}
	defer dbPool.Close()

	employeeRepo := postgres.NewEmployeeRepository(dbPool)
	txManager := pg.NewTransactionManager(dbPool)
	employeeSvc := employee.NewService(employeeRepo, nil, txManager)
	grpcServer := server.New(cfg.Server.ListenAddr, employeeSvc, zl)

	if err := grpcServer.Run(ctx); err != nil {
		zl.Fatal("server stopped with error", zap.Error(err))
	}

	zl.Info("server stopped")
}
