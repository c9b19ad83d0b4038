package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/marisa-playground/labeling-service/internal/models"
)

type PoolRepository interface {
	Create(ctx context.Context, pool *models.Pool) error
	GetByID(ctx context.Context, id string) (*models.Pool, error)
	GetAll(ctx context.Context, limit, offset int) ([]models.Pool, int, error)
	UpdateTargetEvaluations(ctx context.Context, id string, target int) error
	Exists(ctx context.Context, id string) (bool, error)
}

type poolRepository struct {
	*PostgresRepository
}

func NewPoolRepository(db *sql.DB, logger zerolog.Logger) PoolRepository {
	return &poolRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *poolRepository) Create(ctx context.Context, pool *models.Pool) error {
	query := `
		INSERT INTO pools (id, name, description, status, required_repetitions, target_evaluations, auto_target, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		pool.ID,
		pool.Name,
		pool.Description,
		pool.Status,
		pool.RequiredRepetitions,
		pool.TargetEvaluations,
		pool.AutoTarget,
		pool.CreatedAt,
		pool.UpdatedAt,
	)

	return err
}

func (r *poolRepository) GetByID(ctx context.Context, id string) (*models.Pool, error) {
	query := `
		SELECT id, name, description, status, required_repetitions, target_evaluations, auto_target, created_at, updated_at
		FROM pools
		WHERE id = $1
	`

	pool := &models.Pool{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&pool.ID,
		&pool.Name,
		&pool.Description,
		&pool.Status,
		&pool.RequiredRepetitions,
		&pool.TargetEvaluations,
		&pool.AutoTarget,
		&pool.CreatedAt,
		&pool.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return pool, err
}

func (r *poolRepository) GetAll(ctx context.Context, limit, offset int) ([]models.Pool, int, error) {
	countQuery := `SELECT COUNT(*) FROM pools`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, name, description, status, required_repetitions, target_evaluations, auto_target, created_at, updated_at
		FROM pools
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var pools []models.Pool
	for rows.Next() {
		pool := models.Pool{}
		err := rows.Scan(
			&pool.ID,
			&pool.Name,
			&pool.Description,
			&pool.Status,
			&pool.RequiredRepetitions,
			&pool.TargetEvaluations,
			&pool.AutoTarget,
			&pool.CreatedAt,
			&pool.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		pools = append(pools, pool)
	}

	return pools, total, nil
}

func (r *poolRepository) UpdateTargetEvaluations(ctx context.Context, id string, target int) error {
	query := `
		UPDATE pools
		SET target_evaluations = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`

	_, err := r.db.ExecContext(ctx, query, target, id)
	return err
}

func (r *poolRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM pools WHERE id = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}
