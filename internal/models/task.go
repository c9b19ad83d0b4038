package models

import (
	"time"
)

type Task struct {
	ID                   string     `json:"id" db:"id"`
	PoolID               string     `json:"pool_id" db:"pool_id"`
	FileName             string     `json:"file_name" db:"file_name"`
	FileType             string     `json:"file_type" db:"file_type"` // image, document, text
	StoragePath          string     `json:"storage_path" db:"storage_path"`
	FileURL              string     `json:"file_url" db:"file_url"`
	FileSize             int64      `json:"file_size" db:"file_size"`
	RequiredRepetitions  int        `json:"required_repetitions" db:"required_repetitions"`
	CompletedRepetitions int        `json:"completed_repetitions" db:"completed_repetitions"`
	ExtraRepetitions     int        `json:"extra_repetitions" db:"extra_repetitions"`
	Status               string     `json:"status" db:"status"` // active, consolidated, ignored, returned_to_pipe
	Notes                string     `json:"notes" db:"notes"`
	IgnoreReason         string     `json:"ignore_reason" db:"ignore_reason"`
	ConsolidatedBy       *string    `json:"consolidated_by,omitempty" db:"consolidated_by"`
	ConsolidatedAt       *time.Time `json:"consolidated_at,omitempty" db:"consolidated_at"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}

type TaskStatus string

const (
	TaskStatusActive         TaskStatus = "active"
	TaskStatusConsolidated   TaskStatus = "consolidated"
	TaskStatusIgnored        TaskStatus = "ignored"
	TaskStatusReturnedToPipe TaskStatus = "returned_to_pipe"
)

func (ts TaskStatus) String() string {
	return string(ts)
}

func IsValidTaskStatus(status string) bool {
	switch status {
	case "active", "consolidated", "ignored", "returned_to_pipe":
		return true
	default:
		return false
	}
}

type FileType string

const (
	FileTypeImage    FileType = "image"
	FileTypeDocument FileType = "document"
	FileTypeText     FileType = "text"
)

func (ft FileType) String() string {
	return string(ft)
}

// ClassifyExtension определяет тип файла по расширению.
// Неизвестные расширения не попадают в пул задач.
func ClassifyExtension(ext string) (FileType, bool) {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp":
		return FileTypeImage, true
	case ".pdf":
		return FileTypeDocument, true
	case ".txt":
		return FileTypeText, true
	default:
		return "", false
	}
}
