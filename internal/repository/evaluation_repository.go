package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/marisa-playground/labeling-service/internal/models"
)

type EvaluationRepository interface {
	CreateWithAnswers(ctx context.Context, evaluation *models.Evaluation, answers []models.EvaluationAnswer) error
	GetByTask(ctx context.Context, taskID string) ([]models.EvaluationWithAnswers, error)
	CountByTask(ctx context.Context, taskID string) (int, error)
}

type evaluationRepository struct {
	*PostgresRepository
}

func NewEvaluationRepository(db *sql.DB, logger zerolog.Logger) EvaluationRepository {
	return &evaluationRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

// CreateWithAnswers сохраняет оценку и все её ответы одной транзакцией:
// либо записан весь проход воркера, либо ничего.
func (r *evaluationRepository) CreateWithAnswers(ctx context.Context, evaluation *models.Evaluation, answers []models.EvaluationAnswer) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	evalQuery := `
		INSERT INTO evaluations (id, task_id, worker_id, session_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = tx.ExecContext(ctx, evalQuery,
		evaluation.ID,
		evaluation.TaskID,
		evaluation.WorkerID,
		evaluation.SessionID,
		evaluation.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert evaluation: %w", err)
	}

	answerQuery := `
		INSERT INTO evaluation_answers (id, evaluation_id, question_id, value, free_text)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, answer := range answers {
		_, err := tx.ExecContext(ctx, answerQuery,
			answer.ID,
			answer.EvaluationID,
			answer.QuestionID,
			answer.Value,
			answer.FreeText,
		)
		if err != nil {
			return fmt.Errorf("failed to insert evaluation answer: %w", err)
		}
	}

	return tx.Commit()
}

func (r *evaluationRepository) GetByTask(ctx context.Context, taskID string) ([]models.EvaluationWithAnswers, error) {
	evalQuery := `
		SELECT id, task_id, worker_id, session_id, created_at
		FROM evaluations
		WHERE task_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, evalQuery, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evaluations []models.EvaluationWithAnswers
	for rows.Next() {
		evaluation := models.EvaluationWithAnswers{}
		err := rows.Scan(
			&evaluation.ID,
			&evaluation.TaskID,
			&evaluation.WorkerID,
			&evaluation.SessionID,
			&evaluation.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		evaluations = append(evaluations, evaluation)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	answerQuery := `
		SELECT a.id, a.evaluation_id, a.question_id, a.value, a.free_text
		FROM evaluation_answers a
		JOIN evaluations e ON e.id = a.evaluation_id
		WHERE e.task_id = $1
	`

	answerRows, err := r.db.QueryContext(ctx, answerQuery, taskID)
	if err != nil {
		return nil, err
	}
	defer answerRows.Close()

	answersByEval := make(map[string][]models.EvaluationAnswer)
	for answerRows.Next() {
		answer := models.EvaluationAnswer{}
		err := answerRows.Scan(
			&answer.ID,
			&answer.EvaluationID,
			&answer.QuestionID,
			&answer.Value,
			&answer.FreeText,
		)
		if err != nil {
			return nil, err
		}
		answersByEval[answer.EvaluationID] = append(answersByEval[answer.EvaluationID], answer)
	}

	for i := range evaluations {
		evaluations[i].Answers = answersByEval[evaluations[i].ID]
	}

	return evaluations, nil
}

func (r *evaluationRepository) CountByTask(ctx context.Context, taskID string) (int, error) {
	query := `SELECT COUNT(*) FROM evaluations WHERE task_id = $1`
	var count int
	err := r.db.QueryRowContext(ctx, query, taskID).Scan(&count)
	return count, err
}
