package service

import (
	"log/slog"

	"github.com/propdesk-cashbook/internal/config"
	"github.com/propdesk-cashbook/internal/domain/report"
)

// CreateProjectionService wraps the projection service in a worker pool,
// falling back to the plain service when the pool cannot be built.
func CreateProjectionService(readModel report.ReadModel, logger *slog.Logger, cfg *config.Config) ProjectionService {
	baseService := NewProjectionService(readModel, logger)

	workerPoolService, err := NewWorkerPoolProjectionService(
		baseService,
		WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool projection service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
