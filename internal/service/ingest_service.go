package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/marisa-playground/labeling-service/internal/models"
	"github.com/marisa-playground/labeling-service/internal/repository"
	"github.com/marisa-playground/labeling-service/internal/service/integration"
)

type IngestService interface {
	IngestArchive(ctx context.Context, poolID string, archive []byte) (*models.IngestResponse, error)
}

type IngestConfig struct {
	MaxArchiveSize int64
}

type ingestService struct {
	poolRepo    repository.PoolRepository
	taskRepo    repository.TaskRepository
	storageRepo repository.StorageRepository
	events      integration.EventPublisher
	cfg         IngestConfig
	logger      zerolog.Logger
}

func NewIngestService(
	poolRepo repository.PoolRepository,
	taskRepo repository.TaskRepository,
	storageRepo repository.StorageRepository,
	events integration.EventPublisher,
	cfg IngestConfig,
	logger zerolog.Logger,
) IngestService {
	return &ingestService{
		poolRepo:    poolRepo,
		taskRepo:    taskRepo,
		storageRepo: storageRepo,
		events:      events,
		cfg:         cfg,
		logger:      logger,
	}
}

// IngestArchive разворачивает zip-архив в задачи пула: по одной задаче на
// каждый валидный файл. Пропущенные записи (каталоги, скрытые файлы,
// неподдерживаемые расширения, сбои загрузки) не фатальны для батча; уже
// созданные задачи не откатываются.
func (s *ingestService) IngestArchive(ctx context.Context, poolID string, archive []byte) (*models.IngestResponse, error) {
	pool, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}
	if pool == nil {
		return nil, errors.New("pool not found")
	}

	if s.cfg.MaxArchiveSize > 0 && int64(len(archive)) > s.cfg.MaxArchiveSize {
		return nil, errors.New("archive size exceeds limit")
	}

	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, errors.New("failed to read archive")
	}

	var created []models.TaskSummary
	skipped := 0

	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		if isHiddenEntry(entry.Name) {
			skipped++
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name))
		fileType, ok := models.ClassifyExtension(ext)
		if !ok {
			skipped++
			continue
		}

		content, err := readZipEntry(entry)
		if err != nil {
			s.logger.Error().Err(err).Str("entry", entry.Name).Msg("Failed to read archive entry")
			skipped++
			continue
		}

		baseName := path.Base(entry.Name)
		objectKey := fmt.Sprintf("pools/%s/%d_%s", poolID, time.Now().UnixNano(), baseName)

		err = s.storageRepo.UploadFile(ctx, objectKey, bytes.NewReader(content), int64(len(content)), mime.TypeByExtension(ext))
		if err != nil {
			s.logger.Error().Err(err).Str("entry", entry.Name).Msg("Failed to upload file, skipping entry")
			skipped++
			continue
		}

		// Задача создаётся только после успешной загрузки файла.
		task := &models.Task{
			ID:                  uuid.New().String(),
			PoolID:              poolID,
			FileName:            baseName,
			FileType:            fileType.String(),
			StoragePath:         objectKey,
			FileURL:             s.storageRepo.PublicURL(objectKey),
			FileSize:            int64(len(content)),
			RequiredRepetitions: pool.RequiredRepetitions,
			Status:              models.TaskStatusActive.String(),
			CreatedAt:           time.Now(),
			UpdatedAt:           time.Now(),
		}

		if err := s.taskRepo.Create(ctx, task); err != nil {
			s.logger.Error().Err(err).Str("entry", entry.Name).Msg("Failed to create task, skipping entry")
			skipped++
			continue
		}

		created = append(created, models.TaskSummary{
			ID:       task.ID,
			FileName: task.FileName,
			FileType: task.FileType,
			FileURL:  task.FileURL,
			FileSize: task.FileSize,
		})
	}

	if pool.AutoTarget && len(created) > 0 {
		taskCount, err := s.taskRepo.CountByPool(ctx, poolID)
		if err != nil {
			s.logger.Error().Err(err).Str("pool_id", poolID).Msg("Failed to count tasks for auto target")
		} else {
			target := taskCount * pool.RequiredRepetitions
			if err := s.poolRepo.UpdateTargetEvaluations(ctx, poolID, target); err != nil {
				s.logger.Error().Err(err).Str("pool_id", poolID).Msg("Failed to update target evaluations")
			}
		}
	}

	if s.events != nil {
		event := &models.PoolIngestedEvent{
			PoolID:       poolID,
			CreatedTasks: len(created),
			SkippedFiles: skipped,
			Timestamp:    time.Now().Unix(),
		}
		if err := s.events.PublishPoolIngested(ctx, event); err != nil {
			s.logger.Error().Err(err).Msg("Failed to publish pool ingested event")
		}
	}

	s.logger.Info().
		Str("pool_id", poolID).
		Int("created", len(created)).
		Int("skipped", skipped).
		Msg("Archive ingested")

	return &models.IngestResponse{
		Message:      fmt.Sprintf("Created %d tasks", len(created)),
		Tasks:        created,
		CreatedCount: len(created),
		SkippedCount: skipped,
	}, nil
}

// isHiddenEntry отсекает служебный мусор архиваторов: точечные файлы и
// каталог __MACOSX.
func isHiddenEntry(name string) bool {
	normalized := strings.ReplaceAll(name, "\\", "/")
	for _, part := range strings.Split(normalized, "/") {
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, ".") || part == "__MACOSX" {
			return true
		}
	}
	return false
}

func readZipEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}
