package service

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/marisa-playground/labeling-service/internal/models"
	"github.com/marisa-playground/labeling-service/internal/repository"
)

type MockPoolRepository struct {
	mock.Mock
}

func (m *MockPoolRepository) Create(ctx context.Context, pool *models.Pool) error {
	args := m.Called(ctx, pool)
	return args.Error(0)
}

func (m *MockPoolRepository) GetByID(ctx context.Context, id string) (*models.Pool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pool), args.Error(1)
}

func (m *MockPoolRepository) GetAll(ctx context.Context, limit, offset int) ([]models.Pool, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Pool), args.Int(1), args.Error(2)
}

func (m *MockPoolRepository) UpdateTargetEvaluations(ctx context.Context, id string, target int) error {
	args := m.Called(ctx, id, target)
	return args.Error(0)
}

func (m *MockPoolRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByPool(ctx context.Context, poolID string) ([]models.Question, error) {
	args := m.Called(ctx, poolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id string) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskRepository) GetByPool(ctx context.Context, poolID, status string, limit, offset int) ([]models.Task, int, error) {
	args := m.Called(ctx, poolID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Task), args.Int(1), args.Error(2)
}

func (m *MockTaskRepository) CountByPool(ctx context.Context, poolID string) (int, error) {
	args := m.Called(ctx, poolID)
	return args.Int(0), args.Error(1)
}

func (m *MockTaskRepository) ClaimNext(ctx context.Context, poolID, workerID string) (*models.Task, error) {
	args := m.Called(ctx, poolID, workerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskRepository) Consolidate(ctx context.Context, taskID, adminID, notes string, answers []models.ConsolidatedAnswer) error {
	args := m.Called(ctx, taskID, adminID, notes, answers)
	return args.Error(0)
}

func (m *MockTaskRepository) Ignore(ctx context.Context, taskID, adminID, reason string) error {
	args := m.Called(ctx, taskID, adminID, reason)
	return args.Error(0)
}

func (m *MockTaskRepository) ReturnToPipe(ctx context.Context, taskID, adminID string, extraRepetitions int, notes string) error {
	args := m.Called(ctx, taskID, adminID, extraRepetitions, notes)
	return args.Error(0)
}

func (m *MockTaskRepository) Deconsolidate(ctx context.Context, taskID string) error {
	args := m.Called(ctx, taskID)
	return args.Error(0)
}

func (m *MockTaskRepository) GetConsolidatedAnswers(ctx context.Context, taskID string) ([]models.ConsolidatedAnswer, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ConsolidatedAnswer), args.Error(1)
}

func (m *MockTaskRepository) GetExportRows(ctx context.Context, poolID string) ([]repository.ExportRow, error) {
	args := m.Called(ctx, poolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.ExportRow), args.Error(1)
}

func (m *MockTaskRepository) GetPoolMetrics(ctx context.Context, poolID string) (*models.PoolMetrics, error) {
	args := m.Called(ctx, poolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PoolMetrics), args.Error(1)
}

type MockEvaluationRepository struct {
	mock.Mock
}

func (m *MockEvaluationRepository) CreateWithAnswers(ctx context.Context, evaluation *models.Evaluation, answers []models.EvaluationAnswer) error {
	args := m.Called(ctx, evaluation, answers)
	return args.Error(0)
}

func (m *MockEvaluationRepository) GetByTask(ctx context.Context, taskID string) ([]models.EvaluationWithAnswers, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EvaluationWithAnswers), args.Error(1)
}

func (m *MockEvaluationRepository) CountByTask(ctx context.Context, taskID string) (int, error) {
	args := m.Called(ctx, taskID)
	return args.Int(0), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockStorageRepository struct {
	mock.Mock
}

func (m *MockStorageRepository) UploadFile(ctx context.Context, objectKey string, file io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, objectKey, file, size, contentType)
	return args.Error(0)
}

func (m *MockStorageRepository) DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, int64, error) {
	return nil, 0, nil
}

func (m *MockStorageRepository) DeleteFile(ctx context.Context, objectKey string) error {
	return nil
}

func (m *MockStorageRepository) FileExists(ctx context.Context, objectKey string) (bool, error) {
	return false, nil
}

func (m *MockStorageRepository) PublicURL(objectKey string) string {
	return "http://storage.local/labeling-files/" + objectKey
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishPoolIngested(ctx context.Context, event *models.PoolIngestedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishTaskLifecycle(ctx context.Context, event *models.TaskLifecycleEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	return nil
}
