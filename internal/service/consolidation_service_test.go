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

func TestConsolidationService_Apply_Validation(t *testing.T) {
	testCases := []struct {
		name        string
		req         *models.ConsolidateRequest
		expectedErr string
	}{
		{
			name:        "consolidate without answers",
			req:         &models.ConsolidateRequest{Action: models.ConsolidateActionConsolidate},
			expectedErr: "answers are required",
		},
		{
			name:        "ignore with blank reason",
			req:         &models.ConsolidateRequest{Action: models.ConsolidateActionIgnore, Reason: "   "},
			expectedErr: "reason is required",
		},
		{
			name:        "return to pipe without extra repetitions",
			req:         &models.ConsolidateRequest{Action: models.ConsolidateActionReturnToPipe},
			expectedErr: "extra_repetitions must be at least 1",
		},
		{
			name:        "unknown action",
			req:         &models.ConsolidateRequest{Action: "archive"},
			expectedErr: "invalid action",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			taskRepo := new(MockTaskRepository)
			svc := NewConsolidationService(taskRepo, new(MockEvaluationRepository), new(MockQuestionRepository), nil, zerolog.Nop())

			err := svc.Apply(context.Background(), "task-1", "admin-1", tc.req)

			assert.EqualError(t, err, tc.expectedErr)
			// Невалидный запрос не должен доходить до хранилища
			taskRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		})
	}
}

func TestConsolidationService_Apply_TaskNotFound(t *testing.T) {
	taskRepo := new(MockTaskRepository)
	taskRepo.On("GetByID", mock.Anything, "task-1").Return(nil, nil)

	svc := NewConsolidationService(taskRepo, new(MockEvaluationRepository), new(MockQuestionRepository), nil, zerolog.Nop())

	req := &models.ConsolidateRequest{
		Action:  models.ConsolidateActionConsolidate,
		Answers: []models.ConsolidatedAnswerInput{{QuestionID: "q-1", Value: "yes"}},
	}
	err := svc.Apply(context.Background(), "task-1", "admin-1", req)

	assert.EqualError(t, err, "task not found")
}

func TestConsolidationService_Apply_Consolidate(t *testing.T) {
	task := &models.Task{ID: "task-1", PoolID: "pool-1", Status: "active"}

	taskRepo := new(MockTaskRepository)
	taskRepo.On("GetByID", mock.Anything, "task-1").Return(task, nil)
	taskRepo.On("Consolidate", mock.Anything, "task-1", "admin-1", "looks good", mock.MatchedBy(func(answers []models.ConsolidatedAnswer) bool {
		return len(answers) == 2 && answers[0].QuestionID == "q-1" && answers[1].FreeText == "blurry photo"
	})).Return(nil)

	events := new(MockEventPublisher)
	events.On("PublishTaskLifecycle", mock.Anything, mock.MatchedBy(func(event *models.TaskLifecycleEvent) bool {
		return event.TaskID == "task-1" && event.Action == "consolidated" && event.ActorID == "admin-1"
	})).Return(nil)

	svc := NewConsolidationService(taskRepo, new(MockEvaluationRepository), new(MockQuestionRepository), events, zerolog.Nop())

	req := &models.ConsolidateRequest{
		Action: models.ConsolidateActionConsolidate,
		Notes:  "looks good",
		Answers: []models.ConsolidatedAnswerInput{
			{QuestionID: "q-1", Value: "yes"},
			{QuestionID: "q-2", FreeText: "blurry photo"},
		},
	}
	err := svc.Apply(context.Background(), "task-1", "admin-1", req)

	assert.NoError(t, err)
	taskRepo.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestConsolidationService_Apply_InvalidTransition(t *testing.T) {
	task := &models.Task{ID: "task-1", PoolID: "pool-1", Status: "consolidated"}

	taskRepo := new(MockTaskRepository)
	taskRepo.On("GetByID", mock.Anything, "task-1").Return(task, nil)
	taskRepo.On("Ignore", mock.Anything, "task-1", "admin-1", "duplicate").Return(repository.ErrInvalidTransition)

	svc := NewConsolidationService(taskRepo, new(MockEvaluationRepository), new(MockQuestionRepository), nil, zerolog.Nop())

	req := &models.ConsolidateRequest{Action: models.ConsolidateActionIgnore, Reason: "duplicate"}
	err := svc.Apply(context.Background(), "task-1", "admin-1", req)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "does not allow")
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)
}

func TestConsolidationService_Apply_ReturnToPipe(t *testing.T) {
	task := &models.Task{ID: "task-1", PoolID: "pool-1", Status: "active"}

	taskRepo := new(MockTaskRepository)
	taskRepo.On("GetByID", mock.Anything, "task-1").Return(task, nil)
	taskRepo.On("ReturnToPipe", mock.Anything, "task-1", "admin-1", 2, "need more passes").Return(nil)

	svc := NewConsolidationService(taskRepo, new(MockEvaluationRepository), new(MockQuestionRepository), nil, zerolog.Nop())

	req := &models.ConsolidateRequest{
		Action:           models.ConsolidateActionReturnToPipe,
		ExtraRepetitions: 2,
		Notes:            "need more passes",
	}
	err := svc.Apply(context.Background(), "task-1", "admin-1", req)

	assert.NoError(t, err)
	taskRepo.AssertExpectations(t)
}

func TestConsolidationService_Deconsolidate(t *testing.T) {
	t.Run("task not found", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		taskRepo.On("GetByID", mock.Anything, "task-1").Return(nil, nil)

		svc := NewConsolidationService(taskRepo, new(MockEvaluationRepository), new(MockQuestionRepository), nil, zerolog.Nop())

		err := svc.Deconsolidate(context.Background(), "task-1", "admin-1")
		assert.EqualError(t, err, "task not found")
	})

	t.Run("task is not consolidated", func(t *testing.T) {
		task := &models.Task{ID: "task-1", Status: "active"}
		taskRepo := new(MockTaskRepository)
		taskRepo.On("GetByID", mock.Anything, "task-1").Return(task, nil)

		svc := NewConsolidationService(taskRepo, new(MockEvaluationRepository), new(MockQuestionRepository), nil, zerolog.Nop())

		err := svc.Deconsolidate(context.Background(), "task-1", "admin-1")
		assert.EqualError(t, err, "task is not consolidated")
		taskRepo.AssertNotCalled(t, "Deconsolidate", mock.Anything, mock.Anything)
	})

	t.Run("success", func(t *testing.T) {
		task := &models.Task{ID: "task-1", PoolID: "pool-1", Status: "consolidated"}
		taskRepo := new(MockTaskRepository)
		taskRepo.On("GetByID", mock.Anything, "task-1").Return(task, nil)
		taskRepo.On("Deconsolidate", mock.Anything, "task-1").Return(nil)

		events := new(MockEventPublisher)
		events.On("PublishTaskLifecycle", mock.Anything, mock.MatchedBy(func(event *models.TaskLifecycleEvent) bool {
			return event.Action == "deconsolidated"
		})).Return(nil)

		svc := NewConsolidationService(taskRepo, new(MockEvaluationRepository), new(MockQuestionRepository), events, zerolog.Nop())

		err := svc.Deconsolidate(context.Background(), "task-1", "admin-1")
		assert.NoError(t, err)
		taskRepo.AssertExpectations(t)
		events.AssertExpectations(t)
	})
}

func TestConsolidationService_GetDetail(t *testing.T) {
	task := &models.Task{ID: "task-1", PoolID: "pool-1", Status: "ignored"}

	taskRepo := new(MockTaskRepository)
	taskRepo.On("GetByID", mock.Anything, "task-1").Return(task, nil)
	taskRepo.On("GetConsolidatedAnswers", mock.Anything, "task-1").Return([]models.ConsolidatedAnswer{
		{TaskID: "task-1", QuestionID: "q-1", Value: "yes"},
	}, nil)

	questionRepo := new(MockQuestionRepository)
	questionRepo.On("GetByPool", mock.Anything, "pool-1").Return([]models.Question{{ID: "q-1"}}, nil)

	evaluationRepo := new(MockEvaluationRepository)
	evaluationRepo.On("GetByTask", mock.Anything, "task-1").Return([]models.EvaluationWithAnswers{
		{Evaluation: models.Evaluation{ID: "e-1", TaskID: "task-1"}},
	}, nil)

	svc := NewConsolidationService(taskRepo, evaluationRepo, questionRepo, nil, zerolog.Nop())

	detail, err := svc.GetDetail(context.Background(), "task-1")

	assert.NoError(t, err)
	assert.Equal(t, "task-1", detail.Task.ID)
	assert.Len(t, detail.Questions, 1)
	assert.Len(t, detail.Evaluations, 1)
	assert.Len(t, detail.ConsolidatedAnswers, 1)
}

func TestConsolidationService_TaskMetrics(t *testing.T) {
	task := &models.Task{
		ID:                   "task-1",
		RequiredRepetitions:  3,
		CompletedRepetitions: 2,
		ExtraRepetitions:     1,
	}

	taskRepo := new(MockTaskRepository)
	taskRepo.On("GetByID", mock.Anything, "task-1").Return(task, nil)

	evaluationRepo := new(MockEvaluationRepository)
	evaluationRepo.On("CountByTask", mock.Anything, "task-1").Return(2, nil)

	svc := NewConsolidationService(taskRepo, evaluationRepo, new(MockQuestionRepository), nil, zerolog.Nop())

	metrics, err := svc.TaskMetrics(context.Background(), "task-1")

	assert.NoError(t, err)
	assert.Equal(t, 2, metrics.CompletedRepetitions)
	assert.Equal(t, 3, metrics.RequiredRepetitions)
	assert.Equal(t, 1, metrics.ExtraRepetitions)
	assert.Equal(t, 2, metrics.RecordedEvaluations)
	assert.InDelta(t, 50.0, metrics.CompletionPercentage, 0.001)
}
