package service

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/marisa-playground/labeling-service/internal/models"
)

func buildZip(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := writer.Create(name)
		assert.NoError(t, err)
		_, err = f.Write(content)
		assert.NoError(t, err)
	}
	assert.NoError(t, writer.Close())

	return buf.Bytes()
}

func TestIngestService_IngestArchive(t *testing.T) {
	t.Run("pool not found", func(t *testing.T) {
		poolRepo := new(MockPoolRepository)
		poolRepo.On("GetByID", mock.Anything, "pool-1").Return(nil, nil)

		svc := NewIngestService(poolRepo, new(MockTaskRepository), new(MockStorageRepository), nil, IngestConfig{}, zerolog.Nop())

		_, err := svc.IngestArchive(context.Background(), "pool-1", []byte("whatever"))
		assert.EqualError(t, err, "pool not found")
	})

	t.Run("archive too large", func(t *testing.T) {
		pool := &models.Pool{ID: "pool-1", RequiredRepetitions: 3}
		poolRepo := new(MockPoolRepository)
		poolRepo.On("GetByID", mock.Anything, "pool-1").Return(pool, nil)

		svc := NewIngestService(poolRepo, new(MockTaskRepository), new(MockStorageRepository), nil, IngestConfig{MaxArchiveSize: 4}, zerolog.Nop())

		_, err := svc.IngestArchive(context.Background(), "pool-1", []byte("too big"))
		assert.EqualError(t, err, "archive size exceeds limit")
	})

	t.Run("not a zip archive", func(t *testing.T) {
		pool := &models.Pool{ID: "pool-1", RequiredRepetitions: 3}
		poolRepo := new(MockPoolRepository)
		poolRepo.On("GetByID", mock.Anything, "pool-1").Return(pool, nil)

		svc := NewIngestService(poolRepo, new(MockTaskRepository), new(MockStorageRepository), nil, IngestConfig{}, zerolog.Nop())

		_, err := svc.IngestArchive(context.Background(), "pool-1", []byte("not a zip"))
		assert.EqualError(t, err, "failed to read archive")
	})

	t.Run("valid files become tasks, junk is skipped", func(t *testing.T) {
		archive := buildZip(t, map[string][]byte{
			"photos/cat.jpg":     []byte("jpg-bytes"),
			"docs/manual.pdf":    []byte("pdf-bytes"),
			"notes.txt":          []byte("text-bytes"),
			"script.exe":         []byte("nope"),
			".DS_Store":          []byte("junk"),
			"__MACOSX/._cat.jpg": []byte("junk"),
			"photos/.hidden.png": []byte("junk"),
		})

		pool := &models.Pool{ID: "pool-1", RequiredRepetitions: 3, AutoTarget: true}
		poolRepo := new(MockPoolRepository)
		poolRepo.On("GetByID", mock.Anything, "pool-1").Return(pool, nil)
		poolRepo.On("UpdateTargetEvaluations", mock.Anything, "pool-1", 9).Return(nil)

		storageRepo := new(MockStorageRepository)
		storageRepo.On("UploadFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		taskRepo := new(MockTaskRepository)
		taskRepo.On("Create", mock.Anything, mock.MatchedBy(func(task *models.Task) bool {
			return task.PoolID == "pool-1" && task.RequiredRepetitions == 3 && task.Status == "active"
		})).Return(nil)
		taskRepo.On("CountByPool", mock.Anything, "pool-1").Return(3, nil)

		events := new(MockEventPublisher)
		events.On("PublishPoolIngested", mock.Anything, mock.MatchedBy(func(event *models.PoolIngestedEvent) bool {
			return event.PoolID == "pool-1" && event.CreatedTasks == 3 && event.SkippedFiles == 4
		})).Return(nil)

		svc := NewIngestService(poolRepo, taskRepo, storageRepo, events, IngestConfig{}, zerolog.Nop())

		response, err := svc.IngestArchive(context.Background(), "pool-1", archive)

		assert.NoError(t, err)
		assert.Equal(t, 3, response.CreatedCount)
		assert.Equal(t, 4, response.SkippedCount)
		assert.Len(t, response.Tasks, 3)
		poolRepo.AssertExpectations(t)
		events.AssertExpectations(t)
		taskRepo.AssertNumberOfCalls(t, "Create", 3)
	})

	t.Run("upload failure skips entry without aborting", func(t *testing.T) {
		archive := buildZip(t, map[string][]byte{
			"a.jpg": []byte("a"),
		})

		pool := &models.Pool{ID: "pool-1", RequiredRepetitions: 2}
		poolRepo := new(MockPoolRepository)
		poolRepo.On("GetByID", mock.Anything, "pool-1").Return(pool, nil)

		storageRepo := new(MockStorageRepository)
		storageRepo.On("UploadFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

		taskRepo := new(MockTaskRepository)

		svc := NewIngestService(poolRepo, taskRepo, storageRepo, nil, IngestConfig{}, zerolog.Nop())

		response, err := svc.IngestArchive(context.Background(), "pool-1", archive)

		assert.NoError(t, err)
		assert.Equal(t, 0, response.CreatedCount)
		assert.Equal(t, 1, response.SkippedCount)
		taskRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestIsHiddenEntry(t *testing.T) {
	assert.True(t, isHiddenEntry(".DS_Store"))
	assert.True(t, isHiddenEntry("__MACOSX/._photo.jpg"))
	assert.True(t, isHiddenEntry("photos/.thumbs/small.jpg"))
	assert.True(t, isHiddenEntry(`photos\.hidden.png`))
	assert.False(t, isHiddenEntry("photos/cat.jpg"))
	assert.False(t, isHiddenEntry("docs/manual.pdf"))
}
