package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/marisa-playground/labeling-service/internal/models"
)

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByPool(ctx context.Context, poolID string) ([]models.Question, error)
	GetByID(ctx context.Context, id string) (*models.Question, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type questionRepository struct {
	*PostgresRepository
}

func NewQuestionRepository(db *sql.DB, logger zerolog.Logger) QuestionRepository {
	return &questionRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *questionRepository) Create(ctx context.Context, question *models.Question) error {
	query := `
		INSERT INTO questions (id, pool_id, text, kind, options, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		question.ID,
		question.PoolID,
		question.Text,
		question.Kind,
		question.Options,
		question.Position,
		question.CreatedAt,
	)

	return err
}

func (r *questionRepository) GetByPool(ctx context.Context, poolID string) ([]models.Question, error) {
	query := `
		SELECT id, pool_id, text, kind, options, position, created_at
		FROM questions
		WHERE pool_id = $1
		ORDER BY position, created_at
	`

	rows, err := r.db.QueryContext(ctx, query, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		question := models.Question{}
		err := rows.Scan(
			&question.ID,
			&question.PoolID,
			&question.Text,
			&question.Kind,
			&question.Options,
			&question.Position,
			&question.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}

	return questions, nil
}

func (r *questionRepository) GetByID(ctx context.Context, id string) (*models.Question, error) {
	query := `
		SELECT id, pool_id, text, kind, options, position, created_at
		FROM questions
		WHERE id = $1
	`

	question := &models.Question{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&question.ID,
		&question.PoolID,
		&question.Text,
		&question.Kind,
		&question.Options,
		&question.Position,
		&question.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return question, err
}

func (r *questionRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM questions WHERE id = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}
