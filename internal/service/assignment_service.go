package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/marisa-playground/labeling-service/internal/models"
	"github.com/marisa-playground/labeling-service/internal/repository"
)

// ErrNoTaskAvailable — в пуле нет задачи для этого воркера. Для клиента это
// "работа закончилась", а не ошибка сервера.
var ErrNoTaskAvailable = errors.New("no task available")

type AssignmentService interface {
	NextTask(ctx context.Context, poolID, workerID string) (*models.NextTaskResponse, error)
}

type assignmentService struct {
	poolRepo repository.PoolRepository
	taskRepo repository.TaskRepository
	logger   zerolog.Logger
}

func NewAssignmentService(poolRepo repository.PoolRepository, taskRepo repository.TaskRepository, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		poolRepo: poolRepo,
		taskRepo: taskRepo,
		logger:   logger,
	}
}

func (s *assignmentService) NextTask(ctx context.Context, poolID, workerID string) (*models.NextTaskResponse, error) {
	exists, err := s.poolRepo.Exists(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pool existence: %w", err)
	}
	if !exists {
		return nil, errors.New("pool not found")
	}

	task, err := s.taskRepo.ClaimNext(ctx, poolID, workerID)
	if errors.Is(err, repository.ErrNoEligibleTask) {
		return nil, ErrNoTaskAvailable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim task: %w", err)
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("pool_id", poolID).
		Str("worker_id", workerID).
		Msg("Task assigned")

	return &models.NextTaskResponse{
		TaskID:   task.ID,
		FileName: task.FileName,
		FileType: task.FileType,
		FileURL:  task.FileURL,
	}, nil
}
