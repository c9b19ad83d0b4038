package models

import "time"

// Data Transfer Objects

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Role     string `json:"role" validate:"required,oneof=admin worker"`
	Password string `json:"password" validate:"required,min=8"`
}

type CreatePoolRequest struct {
	Name                string `json:"name" validate:"required,min=3,max=255"`
	Description         string `json:"description" validate:"max=1000"`
	RequiredRepetitions int    `json:"required_repetitions" validate:"required,min=1"`
	AutoTarget          bool   `json:"auto_target"`
}

type CreateQuestionRequest struct {
	Text     string   `json:"text" validate:"required,min=1,max=1000"`
	Kind     string   `json:"kind" validate:"required,oneof=select text both"`
	Options  []string `json:"options,omitempty"`
	Position int      `json:"position"`
}

type TaskSummary struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
	FileURL  string `json:"file_url"`
	FileSize int64  `json:"file_size"`
}

type IngestResponse struct {
	Message      string        `json:"message"`
	Tasks        []TaskSummary `json:"tasks"`
	CreatedCount int           `json:"created_count"`
	SkippedCount int           `json:"skipped_count"`
}

type NextTaskResponse struct {
	TaskID   string `json:"task_id"`
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
	FileURL  string `json:"file_url"`
}

type AnswerInput struct {
	QuestionID string `json:"question_id" validate:"required,uuid"`
	Value      string `json:"value"`
	FreeText   string `json:"free_text"`
}

type RecordEvaluationRequest struct {
	TaskID    string        `json:"task_id" validate:"required,uuid"`
	SessionID string        `json:"session_id" validate:"required"`
	Answers   []AnswerInput `json:"answers" validate:"required,min=1"`
}

type RecordEvaluationResponse struct {
	EvaluationID string    `json:"evaluation_id"`
	TaskID       string    `json:"task_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// Действия консолидации разделяют один маршрут: поле action выбирает вариант.
const (
	ConsolidateActionConsolidate  = "consolidate"
	ConsolidateActionIgnore       = "ignore"
	ConsolidateActionReturnToPipe = "return_to_pipe"
)

type ConsolidatedAnswerInput struct {
	QuestionID         string  `json:"question_id" validate:"required,uuid"`
	Value              string  `json:"value"`
	FreeText           string  `json:"free_text"`
	SourceEvaluationID *string `json:"source_evaluation_id,omitempty"`
}

type ConsolidateRequest struct {
	Action           string                    `json:"action" validate:"required,oneof=consolidate ignore return_to_pipe"`
	Answers          []ConsolidatedAnswerInput `json:"answers,omitempty"`
	Notes            string                    `json:"notes,omitempty"`
	Reason           string                    `json:"reason,omitempty"`
	ExtraRepetitions int                       `json:"extra_repetitions,omitempty"`
}

type ConsolidationDetail struct {
	Task                Task                    `json:"task"`
	Questions           []Question              `json:"questions"`
	Evaluations         []EvaluationWithAnswers `json:"evaluations"`
	ConsolidatedAnswers []ConsolidatedAnswer    `json:"consolidated_answers,omitempty"`
}

type PoolMetrics struct {
	PoolID               string  `json:"pool_id"`
	TotalTasks           int     `json:"total_tasks"`
	ActiveTasks          int     `json:"active_tasks"`
	ConsolidatedTasks    int     `json:"consolidated_tasks"`
	IgnoredTasks         int     `json:"ignored_tasks"`
	ReturnedTasks        int     `json:"returned_tasks"`
	CompletedEvaluations int     `json:"completed_evaluations"`
	ExpectedEvaluations  int     `json:"expected_evaluations"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

type TaskMetrics struct {
	TaskID               string  `json:"task_id"`
	CompletedRepetitions int     `json:"completed_repetitions"`
	RequiredRepetitions  int     `json:"required_repetitions"`
	ExtraRepetitions     int     `json:"extra_repetitions"`
	RecordedEvaluations  int     `json:"recorded_evaluations"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

type TasksResponse struct {
	Tasks []Task `json:"tasks"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

// ExportRecord — одна консолидированная задача в экспорте: фиксированные поля
// плюс карта "текст вопроса → ответ" (колонки — объединение по всем задачам).
type ExportRecord struct {
	FileName       string            `json:"file_name"`
	FileType       string            `json:"file_type"`
	FileURL        string            `json:"file_url"`
	ConsolidatedAt time.Time         `json:"consolidated_at"`
	Notes          string            `json:"notes,omitempty"`
	Answers        map[string]string `json:"answers"`
}
