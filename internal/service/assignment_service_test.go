package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/marisa-playground/labeling-service/internal/models"
	"github.com/marisa-playground/labeling-service/internal/repository"
)

func TestAssignmentService_NextTask(t *testing.T) {
	t.Run("pool not found", func(t *testing.T) {
		poolRepo := new(MockPoolRepository)
		poolRepo.On("Exists", mock.Anything, "pool-1").Return(false, nil)

		svc := NewAssignmentService(poolRepo, new(MockTaskRepository), zerolog.Nop())

		_, err := svc.NextTask(context.Background(), "pool-1", "worker-1")
		assert.EqualError(t, err, "pool not found")
	})

	t.Run("no eligible task", func(t *testing.T) {
		poolRepo := new(MockPoolRepository)
		poolRepo.On("Exists", mock.Anything, "pool-1").Return(true, nil)

		taskRepo := new(MockTaskRepository)
		taskRepo.On("ClaimNext", mock.Anything, "pool-1", "worker-1").Return(nil, repository.ErrNoEligibleTask)

		svc := NewAssignmentService(poolRepo, taskRepo, zerolog.Nop())

		_, err := svc.NextTask(context.Background(), "pool-1", "worker-1")
		assert.ErrorIs(t, err, ErrNoTaskAvailable)
	})

	t.Run("task claimed", func(t *testing.T) {
		poolRepo := new(MockPoolRepository)
		poolRepo.On("Exists", mock.Anything, "pool-1").Return(true, nil)

		task := &models.Task{
			ID:       "task-1",
			FileName: "cat.jpg",
			FileType: "image",
			FileURL:  "http://storage.local/labeling-files/pools/pool-1/cat.jpg",
		}
		taskRepo := new(MockTaskRepository)
		taskRepo.On("ClaimNext", mock.Anything, "pool-1", "worker-1").Return(task, nil)

		svc := NewAssignmentService(poolRepo, taskRepo, zerolog.Nop())

		response, err := svc.NextTask(context.Background(), "pool-1", "worker-1")

		assert.NoError(t, err)
		assert.Equal(t, "task-1", response.TaskID)
		assert.Equal(t, "cat.jpg", response.FileName)
		assert.Equal(t, "image", response.FileType)
		assert.Equal(t, task.FileURL, response.FileURL)
	})
}
