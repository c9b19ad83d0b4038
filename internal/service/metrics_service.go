package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/marisa-playground/labeling-service/internal/models"
	"github.com/marisa-playground/labeling-service/internal/repository"
)

type MetricsService interface {
	PoolMetrics(ctx context.Context, poolID string) (*models.PoolMetrics, error)
}

type metricsService struct {
	poolRepo repository.PoolRepository
	taskRepo repository.TaskRepository
	logger   zerolog.Logger
}

func NewMetricsService(poolRepo repository.PoolRepository, taskRepo repository.TaskRepository, logger zerolog.Logger) MetricsService {
	return &metricsService{
		poolRepo: poolRepo,
		taskRepo: taskRepo,
		logger:   logger,
	}
}

// PoolMetrics пересчитывается полностью на каждый вызов; кэша нет.
func (s *metricsService) PoolMetrics(ctx context.Context, poolID string) (*models.PoolMetrics, error) {
	exists, err := s.poolRepo.Exists(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pool existence: %w", err)
	}
	if !exists {
		return nil, errors.New("pool not found")
	}

	metrics, err := s.taskRepo.GetPoolMetrics(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool metrics: %w", err)
	}

	return metrics, nil
}
