package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/marisa-playground/labeling-service/internal/models"
	"github.com/marisa-playground/labeling-service/internal/repository"
)

type PoolService interface {
	CreatePool(ctx context.Context, req *models.CreatePoolRequest) (*models.Pool, error)
	GetPoolByID(ctx context.Context, id string) (*models.Pool, error)
	GetAllPools(ctx context.Context, page, limit int) ([]models.Pool, int, error)
	CreateQuestion(ctx context.Context, poolID string, req *models.CreateQuestionRequest) (*models.Question, error)
	GetQuestions(ctx context.Context, poolID string) ([]models.Question, error)
	ListTasks(ctx context.Context, poolID, status string, page, limit int) ([]models.Task, int, error)
}

type poolService struct {
	poolRepo     repository.PoolRepository
	questionRepo repository.QuestionRepository
	taskRepo     repository.TaskRepository
	logger       zerolog.Logger
}

func NewPoolService(poolRepo repository.PoolRepository, questionRepo repository.QuestionRepository, taskRepo repository.TaskRepository, logger zerolog.Logger) PoolService {
	return &poolService{
		poolRepo:     poolRepo,
		questionRepo: questionRepo,
		taskRepo:     taskRepo,
		logger:       logger,
	}
}

func (s *poolService) CreatePool(ctx context.Context, req *models.CreatePoolRequest) (*models.Pool, error) {
	if req.RequiredRepetitions < 1 {
		return nil, errors.New("required_repetitions must be at least 1")
	}

	pool := &models.Pool{
		ID:                  uuid.New().String(),
		Name:                req.Name,
		Description:         req.Description,
		Status:              models.PoolStatusOpen.String(),
		RequiredRepetitions: req.RequiredRepetitions,
		AutoTarget:          req.AutoTarget,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}

	if err := s.poolRepo.Create(ctx, pool); err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	s.logger.Info().
		Str("pool_id", pool.ID).
		Str("name", pool.Name).
		Msg("Pool created")

	return pool, nil
}

func (s *poolService) GetPoolByID(ctx context.Context, id string) (*models.Pool, error) {
	pool, err := s.poolRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}
	if pool == nil {
		return nil, errors.New("pool not found")
	}

	return pool, nil
}

func (s *poolService) GetAllPools(ctx context.Context, page, limit int) ([]models.Pool, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit

	pools, total, err := s.poolRepo.GetAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get pools: %w", err)
	}

	return pools, total, nil
}

func (s *poolService) CreateQuestion(ctx context.Context, poolID string, req *models.CreateQuestionRequest) (*models.Question, error) {
	exists, err := s.poolRepo.Exists(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pool existence: %w", err)
	}
	if !exists {
		return nil, errors.New("pool not found")
	}

	if !models.IsValidQuestionKind(req.Kind) {
		return nil, errors.New("invalid question kind")
	}
	if req.Kind != models.QuestionKindText.String() && len(req.Options) == 0 {
		return nil, errors.New("options are required for select questions")
	}

	var options json.RawMessage
	if len(req.Options) > 0 {
		options, err = json.Marshal(req.Options)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal options: %w", err)
		}
	}

	question := &models.Question{
		ID:        uuid.New().String(),
		PoolID:    poolID,
		Text:      req.Text,
		Kind:      req.Kind,
		Options:   options,
		Position:  req.Position,
		CreatedAt: time.Now(),
	}

	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	return question, nil
}

func (s *poolService) GetQuestions(ctx context.Context, poolID string) ([]models.Question, error) {
	exists, err := s.poolRepo.Exists(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pool existence: %w", err)
	}
	if !exists {
		return nil, errors.New("pool not found")
	}

	questions, err := s.questionRepo.GetByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	return questions, nil
}

func (s *poolService) ListTasks(ctx context.Context, poolID, status string, page, limit int) ([]models.Task, int, error) {
	exists, err := s.poolRepo.Exists(ctx, poolID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to check pool existence: %w", err)
	}
	if !exists {
		return nil, 0, errors.New("pool not found")
	}

	if status != "" && !models.IsValidTaskStatus(status) {
		return nil, 0, errors.New("invalid task status")
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit

	tasks, total, err := s.taskRepo.GetByPool(ctx, poolID, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get tasks: %w", err)
	}

	return tasks, total, nil
}
