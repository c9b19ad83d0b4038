package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/marisa-playground/labeling-service/internal/models"
	"github.com/marisa-playground/labeling-service/internal/repository"
	"github.com/marisa-playground/labeling-service/internal/service/integration"
)

type ConsolidationService interface {
	GetDetail(ctx context.Context, taskID string) (*models.ConsolidationDetail, error)
	Apply(ctx context.Context, taskID, adminID string, req *models.ConsolidateRequest) error
	Deconsolidate(ctx context.Context, taskID, adminID string) error
	TaskMetrics(ctx context.Context, taskID string) (*models.TaskMetrics, error)
}

type consolidationService struct {
	taskRepo       repository.TaskRepository
	evaluationRepo repository.EvaluationRepository
	questionRepo   repository.QuestionRepository
	events         integration.EventPublisher
	logger         zerolog.Logger
}

func NewConsolidationService(
	taskRepo repository.TaskRepository,
	evaluationRepo repository.EvaluationRepository,
	questionRepo repository.QuestionRepository,
	events integration.EventPublisher,
	logger zerolog.Logger,
) ConsolidationService {
	return &consolidationService{
		taskRepo:       taskRepo,
		evaluationRepo: evaluationRepo,
		questionRepo:   questionRepo,
		events:         events,
		logger:         logger,
	}
}

func (s *consolidationService) GetDetail(ctx context.Context, taskID string) (*models.ConsolidationDetail, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, errors.New("task not found")
	}

	questions, err := s.questionRepo.GetByPool(ctx, task.PoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	evaluations, err := s.evaluationRepo.GetByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluations: %w", err)
	}

	// При повторной консолидации админ видит уже записанные ответы.
	consolidated, err := s.taskRepo.GetConsolidatedAnswers(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get consolidated answers: %w", err)
	}

	return &models.ConsolidationDetail{
		Task:                *task,
		Questions:           questions,
		Evaluations:         evaluations,
		ConsolidatedAnswers: consolidated,
	}, nil
}

// Apply выполняет одно из трёх действий админа над задачей. Валидация входа
// идёт до любого обращения к хранилищу; сами переводы статусов атомарны на
// уровне репозитория.
func (s *consolidationService) Apply(ctx context.Context, taskID, adminID string, req *models.ConsolidateRequest) error {
	switch req.Action {
	case models.ConsolidateActionConsolidate:
		if len(req.Answers) == 0 {
			return errors.New("answers are required")
		}
	case models.ConsolidateActionIgnore:
		if strings.TrimSpace(req.Reason) == "" {
			return errors.New("reason is required")
		}
	case models.ConsolidateActionReturnToPipe:
		if req.ExtraRepetitions < 1 {
			return errors.New("extra_repetitions must be at least 1")
		}
	default:
		return errors.New("invalid action")
	}

	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return errors.New("task not found")
	}

	switch req.Action {
	case models.ConsolidateActionConsolidate:
		answers := make([]models.ConsolidatedAnswer, 0, len(req.Answers))
		for _, input := range req.Answers {
			answers = append(answers, models.ConsolidatedAnswer{
				TaskID:             taskID,
				QuestionID:         input.QuestionID,
				Value:              input.Value,
				FreeText:           input.FreeText,
				SourceEvaluationID: input.SourceEvaluationID,
			})
		}
		err = s.taskRepo.Consolidate(ctx, taskID, adminID, req.Notes, answers)
	case models.ConsolidateActionIgnore:
		err = s.taskRepo.Ignore(ctx, taskID, adminID, strings.TrimSpace(req.Reason))
	case models.ConsolidateActionReturnToPipe:
		err = s.taskRepo.ReturnToPipe(ctx, taskID, adminID, req.ExtraRepetitions, req.Notes)
	}

	if errors.Is(err, repository.ErrInvalidTransition) {
		return fmt.Errorf("task status %q does not allow %s: %w", task.Status, req.Action, err)
	}
	if err != nil {
		return fmt.Errorf("failed to apply %s: %w", req.Action, err)
	}

	s.publishLifecycle(ctx, task, adminID, lifecycleAction(req.Action))

	s.logger.Info().
		Str("task_id", taskID).
		Str("admin_id", adminID).
		Str("action", req.Action).
		Msg("Consolidation action applied")

	return nil
}

// Deconsolidate возвращает задачу в active, удаляя все её консолидированные
// ответы. Статус перечитывается непосредственно перед действием.
func (s *consolidationService) Deconsolidate(ctx context.Context, taskID, adminID string) error {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return errors.New("task not found")
	}
	if task.Status != models.TaskStatusConsolidated.String() {
		return errors.New("task is not consolidated")
	}

	if err := s.taskRepo.Deconsolidate(ctx, taskID); err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return errors.New("task is not consolidated")
		}
		return fmt.Errorf("failed to deconsolidate task: %w", err)
	}

	s.publishLifecycle(ctx, task, adminID, "deconsolidated")

	s.logger.Info().
		Str("task_id", taskID).
		Str("admin_id", adminID).
		Msg("Task deconsolidated")

	return nil
}

func (s *consolidationService) TaskMetrics(ctx context.Context, taskID string) (*models.TaskMetrics, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, errors.New("task not found")
	}

	// completed_repetitions считает выдачи; реально записанных оценок может
	// быть меньше, если воркер взял задачу и не отправил ответы.
	recorded, err := s.evaluationRepo.CountByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to count evaluations: %w", err)
	}

	metrics := &models.TaskMetrics{
		TaskID:               task.ID,
		CompletedRepetitions: task.CompletedRepetitions,
		RequiredRepetitions:  task.RequiredRepetitions,
		ExtraRepetitions:     task.ExtraRepetitions,
		RecordedEvaluations:  recorded,
	}

	expected := task.RequiredRepetitions + task.ExtraRepetitions
	if expected > 0 {
		metrics.CompletionPercentage = float64(task.CompletedRepetitions) / float64(expected) * 100
	}

	return metrics, nil
}

func (s *consolidationService) publishLifecycle(ctx context.Context, task *models.Task, adminID, action string) {
	if s.events == nil {
		return
	}

	event := &models.TaskLifecycleEvent{
		TaskID:    task.ID,
		PoolID:    task.PoolID,
		Action:    action,
		ActorID:   adminID,
		Timestamp: time.Now().Unix(),
	}
	if err := s.events.PublishTaskLifecycle(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("task_id", task.ID).Msg("Failed to publish lifecycle event")
	}
}

func lifecycleAction(action string) string {
	switch action {
	case models.ConsolidateActionConsolidate:
		return "consolidated"
	case models.ConsolidateActionIgnore:
		return "ignored"
	case models.ConsolidateActionReturnToPipe:
		return "returned_to_pipe"
	default:
		return action
	}
}
