package models

import (
	"time"
)

// Evaluation — один полный проход воркера по задаче в рамках одной сессии.
// Запись неизменяемая: консолидация её только читает.
type Evaluation struct {
	ID        string    `json:"id" db:"id"`
	TaskID    string    `json:"task_id" db:"task_id"`
	WorkerID  string    `json:"worker_id" db:"worker_id"`
	SessionID string    `json:"session_id" db:"session_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EvaluationAnswer struct {
	ID           string `json:"id" db:"id"`
	EvaluationID string `json:"evaluation_id" db:"evaluation_id"`
	QuestionID   string `json:"question_id" db:"question_id"`
	Value        string `json:"value" db:"value"`
	FreeText     string `json:"free_text" db:"free_text"`
}

type EvaluationWithAnswers struct {
	Evaluation
	Answers []EvaluationAnswer `json:"answers"`
}

// ConsolidatedAnswer — авторитетный ответ админа на пару (задача, вопрос).
// Уникальность по паре обеспечивается upsert-ом в репозитории.
type ConsolidatedAnswer struct {
	TaskID             string    `json:"task_id" db:"task_id"`
	QuestionID         string    `json:"question_id" db:"question_id"`
	Value              string    `json:"value" db:"value"`
	FreeText           string    `json:"free_text" db:"free_text"`
	SourceEvaluationID *string   `json:"source_evaluation_id,omitempty" db:"source_evaluation_id"`
	ConsolidatedBy     string    `json:"consolidated_by" db:"consolidated_by"`
	ConsolidatedAt     time.Time `json:"consolidated_at" db:"consolidated_at"`
}
