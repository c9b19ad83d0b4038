package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/marisa-playground/labeling-service/internal/models"
)

// ErrNoEligibleTask возвращается аллокатором, когда в пуле нет задачи,
// доступной данному воркеру. Это штатная ситуация, а не сбой.
var ErrNoEligibleTask = errors.New("no eligible task")

// ErrInvalidTransition возвращается, когда перевод статуса не прошёл
// guard-условие в WHERE (задачу успели перевести параллельно).
var ErrInvalidTransition = errors.New("invalid status transition")

// ExportRow — одна строка join-а консолидированных задач с их ответами.
type ExportRow struct {
	TaskID         string
	FileName       string
	FileType       string
	FileURL        string
	Notes          string
	ConsolidatedAt time.Time
	QuestionText   string
	Value          string
	FreeText       string
}

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	GetByPool(ctx context.Context, poolID, status string, limit, offset int) ([]models.Task, int, error)
	CountByPool(ctx context.Context, poolID string) (int, error)
	ClaimNext(ctx context.Context, poolID, workerID string) (*models.Task, error)
	Consolidate(ctx context.Context, taskID, adminID, notes string, answers []models.ConsolidatedAnswer) error
	Ignore(ctx context.Context, taskID, adminID, reason string) error
	ReturnToPipe(ctx context.Context, taskID, adminID string, extraRepetitions int, notes string) error
	Deconsolidate(ctx context.Context, taskID string) error
	GetConsolidatedAnswers(ctx context.Context, taskID string) ([]models.ConsolidatedAnswer, error)
	GetExportRows(ctx context.Context, poolID string) ([]ExportRow, error)
	GetPoolMetrics(ctx context.Context, poolID string) (*models.PoolMetrics, error)
}

type taskRepository struct {
	*PostgresRepository
}

func NewTaskRepository(db *sql.DB, logger zerolog.Logger) TaskRepository {
	return &taskRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (
			id, pool_id, file_name, file_type, storage_path, file_url, file_size,
			required_repetitions, completed_repetitions, extra_repetitions,
			status, notes, ignore_reason, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.PoolID,
		task.FileName,
		task.FileType,
		task.StoragePath,
		task.FileURL,
		task.FileSize,
		task.RequiredRepetitions,
		task.CompletedRepetitions,
		task.ExtraRepetitions,
		task.Status,
		task.Notes,
		task.IgnoreReason,
		task.CreatedAt,
		task.UpdatedAt,
	)

	return err
}

const taskColumns = `
	id, pool_id, file_name, file_type, storage_path, file_url, file_size,
	required_repetitions, completed_repetitions, extra_repetitions,
	status, notes, ignore_reason, consolidated_by, consolidated_at,
	created_at, updated_at
`

func scanTask(row interface{ Scan(...interface{}) error }) (*models.Task, error) {
	task := &models.Task{}
	err := row.Scan(
		&task.ID,
		&task.PoolID,
		&task.FileName,
		&task.FileType,
		&task.StoragePath,
		&task.FileURL,
		&task.FileSize,
		&task.RequiredRepetitions,
		&task.CompletedRepetitions,
		&task.ExtraRepetitions,
		&task.Status,
		&task.Notes,
		&task.IgnoreReason,
		&task.ConsolidatedBy,
		&task.ConsolidatedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	return task, err
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) GetByPool(ctx context.Context, poolID, status string, limit, offset int) ([]models.Task, int, error) {
	countQuery := `SELECT COUNT(*) FROM tasks WHERE pool_id = $1`
	countArgs := []interface{}{poolID}

	if status != "" {
		countQuery += ` AND status = $2`
		countArgs = append(countArgs, status)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE pool_id = $1`
	queryArgs := []interface{}{poolID}
	argCount := 2

	if status != "" {
		query += ` AND status = $2`
		queryArgs = append(queryArgs, status)
		argCount++
	}

	query += ` ORDER BY created_at LIMIT $` + fmt.Sprint(argCount) + ` OFFSET $` + fmt.Sprint(argCount+1)
	queryArgs = append(queryArgs, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, *task)
	}

	return tasks, total, nil
}

func (r *taskRepository) CountByPool(ctx context.Context, poolID string) (int, error) {
	query := `SELECT COUNT(*) FROM tasks WHERE pool_id = $1`
	var count int
	err := r.db.QueryRowContext(ctx, query, poolID).Scan(&count)
	return count, err
}

// ClaimNext выдаёт воркеру одну задачу пула и инкрементирует счётчик
// выполнений в той же транзакции. FOR UPDATE SKIP LOCKED исключает выдачу
// одной задачи двум воркерам одновременно; подзапрос по evaluations — повторную
// выдачу той же задачи тому же воркеру. Кандидаты упорядочены: сначала
// наименее отработанные, при равенстве — старейшие.
func (r *taskRepository) ClaimNext(ctx context.Context, poolID, workerID string) (*models.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	selectQuery := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE pool_id = $1
		  AND status IN ('active', 'returned_to_pipe')
		  AND completed_repetitions < required_repetitions + extra_repetitions
		  AND NOT EXISTS (
			SELECT 1 FROM evaluations e
			WHERE e.task_id = tasks.id AND e.worker_id = $2
		  )
		ORDER BY completed_repetitions, created_at
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`

	task, err := scanTask(tx.QueryRowContext(ctx, selectQuery, poolID, workerID))
	if err == sql.ErrNoRows {
		return nil, ErrNoEligibleTask
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select eligible task: %w", err)
	}

	updateQuery := `
		UPDATE tasks
		SET completed_repetitions = completed_repetitions + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	if _, err := tx.ExecContext(ctx, updateQuery, task.ID); err != nil {
		return nil, fmt.Errorf("failed to increment repetitions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}

	task.CompletedRepetitions++

	r.logger.Debug().
		Str("task_id", task.ID).
		Str("worker_id", workerID).
		Int("completed", task.CompletedRepetitions).
		Msg("Task claimed")

	return task, nil
}

// Consolidate выполняет перевод в consolidated и upsert ответов одной
// транзакцией: незавершённого промежуточного состояния не бывает.
func (r *taskRepository) Consolidate(ctx context.Context, taskID, adminID, notes string, answers []models.ConsolidatedAnswer) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	updateQuery := `
		UPDATE tasks
		SET status = 'consolidated',
		    notes = $1,
		    ignore_reason = '',
		    consolidated_by = $2,
		    consolidated_at = CURRENT_TIMESTAMP,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $3 AND status IN ('active', 'returned_to_pipe', 'ignored', 'consolidated')
	`

	result, err := tx.ExecContext(ctx, updateQuery, notes, adminID, taskID)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInvalidTransition
	}

	upsertQuery := `
		INSERT INTO consolidated_answers (task_id, question_id, value, free_text, source_evaluation_id, consolidated_by, consolidated_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
		ON CONFLICT (task_id, question_id) DO UPDATE SET
			value = EXCLUDED.value,
			free_text = EXCLUDED.free_text,
			source_evaluation_id = EXCLUDED.source_evaluation_id,
			consolidated_by = EXCLUDED.consolidated_by,
			consolidated_at = EXCLUDED.consolidated_at
	`

	for _, answer := range answers {
		_, err := tx.ExecContext(ctx, upsertQuery,
			taskID,
			answer.QuestionID,
			answer.Value,
			answer.FreeText,
			answer.SourceEvaluationID,
			adminID,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert consolidated answer: %w", err)
		}
	}

	return tx.Commit()
}

func (r *taskRepository) Ignore(ctx context.Context, taskID, adminID, reason string) error {
	query := `
		UPDATE tasks
		SET status = 'ignored',
		    ignore_reason = $1,
		    consolidated_by = $2,
		    consolidated_at = CURRENT_TIMESTAMP,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $3 AND status IN ('active', 'returned_to_pipe')
	`

	result, err := r.db.ExecContext(ctx, query, reason, adminID, taskID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInvalidTransition
	}

	return nil
}

func (r *taskRepository) ReturnToPipe(ctx context.Context, taskID, adminID string, extraRepetitions int, notes string) error {
	query := `
		UPDATE tasks
		SET status = 'returned_to_pipe',
		    extra_repetitions = extra_repetitions + $1,
		    notes = $2,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $3 AND status IN ('active', 'returned_to_pipe')
	`

	result, err := r.db.ExecContext(ctx, query, extraRepetitions, notes, taskID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInvalidTransition
	}

	r.logger.Info().
		Str("task_id", taskID).
		Str("admin_id", adminID).
		Int("extra_repetitions", extraRepetitions).
		Msg("Task returned to pipe")

	return nil
}

// Deconsolidate — точная инверсия Consolidate: удаление ответов и сброс
// статуса в active идут одной транзакцией.
func (r *taskRepository) Deconsolidate(ctx context.Context, taskID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleteQuery := `DELETE FROM consolidated_answers WHERE task_id = $1`
	if _, err := tx.ExecContext(ctx, deleteQuery, taskID); err != nil {
		return fmt.Errorf("failed to delete consolidated answers: %w", err)
	}

	updateQuery := `
		UPDATE tasks
		SET status = 'active',
		    notes = '',
		    consolidated_by = NULL,
		    consolidated_at = NULL,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = 'consolidated'
	`

	result, err := tx.ExecContext(ctx, updateQuery, taskID)
	if err != nil {
		return fmt.Errorf("failed to reset task status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInvalidTransition
	}

	return tx.Commit()
}

func (r *taskRepository) GetConsolidatedAnswers(ctx context.Context, taskID string) ([]models.ConsolidatedAnswer, error) {
	query := `
		SELECT task_id, question_id, value, free_text, source_evaluation_id, consolidated_by, consolidated_at
		FROM consolidated_answers
		WHERE task_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []models.ConsolidatedAnswer
	for rows.Next() {
		answer := models.ConsolidatedAnswer{}
		err := rows.Scan(
			&answer.TaskID,
			&answer.QuestionID,
			&answer.Value,
			&answer.FreeText,
			&answer.SourceEvaluationID,
			&answer.ConsolidatedBy,
			&answer.ConsolidatedAt,
		)
		if err != nil {
			return nil, err
		}
		answers = append(answers, answer)
	}

	return answers, nil
}

func (r *taskRepository) GetExportRows(ctx context.Context, poolID string) ([]ExportRow, error) {
	query := `
		SELECT t.id, t.file_name, t.file_type, t.file_url, t.notes, t.consolidated_at,
		       q.text, ca.value, ca.free_text
		FROM tasks t
		LEFT JOIN consolidated_answers ca ON ca.task_id = t.id
		LEFT JOIN questions q ON q.id = ca.question_id
		WHERE t.pool_id = $1 AND t.status = 'consolidated'
		ORDER BY t.created_at, q.position
	`

	rows, err := r.db.QueryContext(ctx, query, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ExportRow
	for rows.Next() {
		row := ExportRow{}
		var questionText, value, freeText sql.NullString
		var consolidatedAt sql.NullTime
		err := rows.Scan(
			&row.TaskID,
			&row.FileName,
			&row.FileType,
			&row.FileURL,
			&row.Notes,
			&consolidatedAt,
			&questionText,
			&value,
			&freeText,
		)
		if err != nil {
			return nil, err
		}
		if consolidatedAt.Valid {
			row.ConsolidatedAt = consolidatedAt.Time
		}
		row.QuestionText = questionText.String
		row.Value = value.String
		row.FreeText = freeText.String
		result = append(result, row)
	}

	return result, nil
}

func (r *taskRepository) GetPoolMetrics(ctx context.Context, poolID string) (*models.PoolMetrics, error) {
	metrics := &models.PoolMetrics{PoolID: poolID}

	taskQuery := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'active') AS active,
			COUNT(*) FILTER (WHERE status = 'consolidated') AS consolidated,
			COUNT(*) FILTER (WHERE status = 'ignored') AS ignored,
			COUNT(*) FILTER (WHERE status = 'returned_to_pipe') AS returned,
			COALESCE(SUM(completed_repetitions), 0) AS completed,
			COALESCE(SUM(required_repetitions + extra_repetitions), 0) AS expected
		FROM tasks
		WHERE pool_id = $1
	`

	err := r.db.QueryRowContext(ctx, taskQuery, poolID).Scan(
		&metrics.TotalTasks,
		&metrics.ActiveTasks,
		&metrics.ConsolidatedTasks,
		&metrics.IgnoredTasks,
		&metrics.ReturnedTasks,
		&metrics.CompletedEvaluations,
		&metrics.ExpectedEvaluations,
	)
	if err != nil {
		return nil, err
	}

	if metrics.ExpectedEvaluations > 0 {
		metrics.CompletionPercentage = float64(metrics.CompletedEvaluations) / float64(metrics.ExpectedEvaluations) * 100
	}

	return metrics, nil
}
