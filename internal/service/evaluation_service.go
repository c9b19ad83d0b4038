package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/marisa-playground/labeling-service/internal/models"
	"github.com/marisa-playground/labeling-service/internal/repository"
)

type EvaluationService interface {
	RecordEvaluation(ctx context.Context, workerID string, req *models.RecordEvaluationRequest) (*models.RecordEvaluationResponse, error)
}

type evaluationService struct {
	taskRepo       repository.TaskRepository
	evaluationRepo repository.EvaluationRepository
	questionRepo   repository.QuestionRepository
	logger         zerolog.Logger
}

func NewEvaluationService(
	taskRepo repository.TaskRepository,
	evaluationRepo repository.EvaluationRepository,
	questionRepo repository.QuestionRepository,
	logger zerolog.Logger,
) EvaluationService {
	return &evaluationService{
		taskRepo:       taskRepo,
		evaluationRepo: evaluationRepo,
		questionRepo:   questionRepo,
		logger:         logger,
	}
}

func (s *evaluationService) RecordEvaluation(ctx context.Context, workerID string, req *models.RecordEvaluationRequest) (*models.RecordEvaluationResponse, error) {
	if req.TaskID == "" || req.SessionID == "" {
		return nil, errors.New("task_id and session_id are required")
	}
	if len(req.Answers) == 0 {
		return nil, errors.New("answers are required")
	}

	task, err := s.taskRepo.GetByID(ctx, req.TaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, errors.New("task not found")
	}

	// Ответы должны ссылаться на вопросы пула этой задачи.
	questions, err := s.questionRepo.GetByPool(ctx, task.PoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	known := make(map[string]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}
	for _, answer := range req.Answers {
		if !known[answer.QuestionID] {
			return nil, errors.New("unknown question")
		}
	}

	evaluation := &models.Evaluation{
		ID:        uuid.New().String(),
		TaskID:    req.TaskID,
		WorkerID:  workerID,
		SessionID: req.SessionID,
		CreatedAt: time.Now(),
	}

	answers := make([]models.EvaluationAnswer, 0, len(req.Answers))
	for _, input := range req.Answers {
		answers = append(answers, models.EvaluationAnswer{
			ID:           uuid.New().String(),
			EvaluationID: evaluation.ID,
			QuestionID:   input.QuestionID,
			Value:        input.Value,
			FreeText:     input.FreeText,
		})
	}

	if err := s.evaluationRepo.CreateWithAnswers(ctx, evaluation, answers); err != nil {
		return nil, fmt.Errorf("failed to record evaluation: %w", err)
	}

	s.logger.Info().
		Str("evaluation_id", evaluation.ID).
		Str("task_id", req.TaskID).
		Str("worker_id", workerID).
		Int("answers", len(answers)).
		Msg("Evaluation recorded")

	return &models.RecordEvaluationResponse{
		EvaluationID: evaluation.ID,
		TaskID:       req.TaskID,
		CreatedAt:    evaluation.CreatedAt,
	}, nil
}
